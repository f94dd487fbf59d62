package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jhartung/tripvault/internal/domain"
)

// sendInvitationRequest is the body of POST /invitations.
type sendInvitationRequest struct {
	TripID string      `json:"tripId"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
}

// respondInvitationRequest is the body of POST /invitations/{id}/respond.
type respondInvitationRequest struct {
	Response domain.InvitationStatus `json:"response"`
}

// SendInvitation handles POST /invitations.
func (s *Server) SendInvitation(w http.ResponseWriter, r *http.Request) {
	var req sendInvitationRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	inv, err := s.invitations.Send(r.Context(), req.TripID, req.Email, req.Role, s.currentEmail(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// RespondInvitation handles POST /invitations/{id}/respond.
func (s *Server) RespondInvitation(w http.ResponseWriter, r *http.Request) {
	var req respondInvitationRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	err := s.invitations.Respond(r.Context(), chi.URLParam(r, "id"), req.Response, s.currentEmail(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPendingInvitations handles GET /invitations. The list is scoped to
// the signed-in user's email.
func (s *Server) ListPendingInvitations(w http.ResponseWriter, r *http.Request) {
	pending, err := s.invitations.ListPending(r.Context(), s.currentEmail(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.PendingInvitation]{Data: pending})
}
