package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/service"
)

// createTripRequest is the body of POST /trips. CreatedBy is optional; it
// defaults to the signed-in user's email.
type createTripRequest struct {
	Title               string            `json:"title"`
	Destination         string            `json:"destination"`
	StartDate           string            `json:"startDate"`
	EndDate             string            `json:"endDate"`
	PlannedDurationDays int               `json:"plannedDurationDays"`
	Image               string            `json:"image"`
	Visibility          domain.Visibility `json:"visibility"`
	Currency            string            `json:"currency"`
	CreatedBy           string            `json:"createdBy"`
	CreatorName         string            `json:"creatorName"`
}

// updateTripRequest is the body of PUT /trips/{id}. Absent fields are left
// unchanged.
type updateTripRequest struct {
	Title               *string            `json:"title"`
	Destination         *string            `json:"destination"`
	StartDate           *string            `json:"startDate"`
	EndDate             *string            `json:"endDate"`
	PlannedDurationDays *int               `json:"plannedDurationDays"`
	Image               *string            `json:"image"`
	Visibility          *domain.Visibility `json:"visibility"`
	Currency            *string            `json:"currency"`
}

// memberRequest is the body for adding a partner or fellow traveller.
type memberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// listResponse wraps collection responses so the top-level JSON is always
// an object.
type listResponse[T any] struct {
	Data []T `json:"data"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = s.currentEmail(r)
	}

	trip, err := s.trips.Create(r.Context(), service.CreateTripParams{
		Title:               req.Title,
		Destination:         req.Destination,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		PlannedDurationDays: req.PlannedDurationDays,
		Image:               req.Image,
		Visibility:          req.Visibility,
		Currency:            req.Currency,
		CreatedBy:           req.CreatedBy,
		CreatorName:         req.CreatorName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// ListTrips handles GET /trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Trip]{Data: trips})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// UpdateTrip handles PUT /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	var req updateTripRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	trip, err := s.trips.Update(r.Context(), chi.URLParam(r, "id"), service.TripPatch{
		Title:               req.Title,
		Destination:         req.Destination,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		PlannedDurationDays: req.PlannedDurationDays,
		Image:               req.Image,
		Visibility:          req.Visibility,
		Currency:            req.Currency,
	}, s.currentEmail(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.trips.Delete(r.Context(), chi.URLParam(r, "id"), s.currentEmail(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPublicTrips handles GET /trips/public.
func (s *Server) GetPublicTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.GetPublicTrips(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Trip]{Data: trips})
}

// GetTripByShareID handles GET /trips/share/{shareId}.
func (s *Server) GetTripByShareID(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.FindTripByShareID(r.Context(), chi.URLParam(r, "shareId"))
	if err != nil {
		writeError(w, err)
		return
	}
	if trip == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: "no trip with that share id"}})
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// AddPartner handles POST /trips/{id}/partners.
func (s *Server) AddPartner(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	partner, err := s.trips.AddPartner(r.Context(), chi.URLParam(r, "id"), req.Name, req.Email, s.currentEmail(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, partner)
}

// RemovePartner handles DELETE /trips/{id}/partners/{partnerId}.
func (s *Server) RemovePartner(w http.ResponseWriter, r *http.Request) {
	err := s.trips.RemovePartner(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "partnerId"), s.currentEmail(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddFellowTraveller handles POST /trips/{id}/travellers.
func (s *Server) AddFellowTraveller(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	traveller, err := s.trips.AddFellowTraveller(r.Context(), chi.URLParam(r, "id"), req.Name, req.Email, s.currentEmail(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, traveller)
}

// RemoveFellowTraveller handles DELETE /trips/{id}/travellers/{travellerId}.
func (s *Server) RemoveFellowTraveller(w http.ResponseWriter, r *http.Request) {
	err := s.trips.RemoveFellowTraveller(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "travellerId"), s.currentEmail(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
