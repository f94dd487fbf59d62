package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/service"
)

// updatePlaceRequest is the body of PUT /places/{id}. Absent fields are
// left unchanged.
type updatePlaceRequest struct {
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Rating        *float64 `json:"rating"`
	Image         *string  `json:"image"`
	Description   *string  `json:"description"`
	Location      *string  `json:"location"`
	EstimatedTime *string  `json:"estimatedTime"`
	Price         *string  `json:"price"`
	Saved         *bool    `json:"saved"`
	TripID        *string  `json:"tripId"`
}

// ListPlaces handles GET /places.
func (s *Server) ListPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := s.places.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Place]{Data: places})
}

// ListTripPlaces handles GET /trips/{id}/places.
func (s *Server) ListTripPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := s.places.ListByTrip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Place]{Data: places})
}

// AddPlace handles POST /places. A duplicate id is not an error: the
// stored item is kept and the add is a no-op downstream.
func (s *Server) AddPlace(w http.ResponseWriter, r *http.Request) {
	var place domain.Place
	if err := decodeBody(r, &place); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	added, err := s.places.Add(r.Context(), place)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// UpdatePlace handles PUT /places/{id}.
func (s *Server) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	var req updatePlaceRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	place, err := s.places.Update(r.Context(), chi.URLParam(r, "id"), service.PlacePatch{
		Name:          req.Name,
		Category:      req.Category,
		Rating:        req.Rating,
		Image:         req.Image,
		Description:   req.Description,
		Location:      req.Location,
		EstimatedTime: req.EstimatedTime,
		Price:         req.Price,
		Saved:         req.Saved,
		TripID:        req.TripID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}
