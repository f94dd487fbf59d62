package handler

import (
	"net/http"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/service"
)

// guestSessionRequest is the body of POST /session/guest.
type guestSessionRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// loginRequest is the body of POST /session/login.
type loginRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// sessionResponse is the body of GET /session.
type sessionResponse struct {
	IsLoggedIn bool                `json:"isLoggedIn"`
	Profile    *domain.UserProfile `json:"profile,omitempty"`
}

// CreateGuestSession handles POST /session/guest.
func (s *Server) CreateGuestSession(w http.ResponseWriter, r *http.Request) {
	var req guestSessionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	profile, err := s.sessions.CreateGuestSession(r.Context(), service.GuestParams{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

// CreateAuthenticatedSession handles POST /session/login.
func (s *Server) CreateAuthenticatedSession(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	profile, err := s.sessions.CreateAuthenticatedSession(r.Context(), service.AuthParams{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

// GetSession handles GET /session. When nobody is signed in the response is
// 200 with isLoggedIn=false and no profile — an absent session is a normal
// state, not an error.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.IsLoggedIn(r.Context()) {
		writeJSON(w, http.StatusOK, sessionResponse{IsLoggedIn: false})
		return
	}
	profile, err := s.sessions.Profile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.sessions.TouchProfile(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{IsLoggedIn: true, Profile: &profile})
}

// SignOut handles POST /session/logout.
func (s *Server) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.SignOut(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecalculateStats handles POST /session/stats/recalculate.
func (s *Server) RecalculateStats(w http.ResponseWriter, r *http.Request) {
	profile, err := s.sessions.RecalculateStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
