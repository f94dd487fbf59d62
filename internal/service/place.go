package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/repo"
)

// TripCounts is the slice of the trip service the place flow needs to keep
// the per-trip place counter current.
type TripCounts interface {
	SetPlacesCount(ctx context.Context, tripID string, count int) error
}

// PlaceService implements business logic for place operations.
// Self-healing of corrupted ids happens below it, in the repo's GetAll.
type PlaceService struct {
	places repo.PlaceRepo
	trips  TripCounts
}

// NewPlaceService constructs a PlaceService backed by the provided repo.
// Trip assignments are reported to trips so each trip's placesCount tracks
// the places bucket.
func NewPlaceService(places repo.PlaceRepo, trips TripCounts) *PlaceService {
	return &PlaceService{places: places, trips: trips}
}

// PlacePatch carries the fields a place update may change.
type PlacePatch struct {
	Name          *string
	Category      *string
	Rating        *float64
	Image         *string
	Description   *string
	Location      *string
	EstimatedTime *string
	Price         *string
	Saved         *bool
	TripID        *string
}

// List returns all places. Read failures degrade to an empty list (logged).
func (s *PlaceService) List(ctx context.Context) ([]domain.Place, error) {
	places, err := s.places.GetAll(ctx)
	if err != nil {
		slog.Error("place list read failed, returning empty", "error", err)
		return []domain.Place{}, nil
	}
	return places, nil
}

// ListByTrip returns the places assigned to one trip.
func (s *PlaceService) ListByTrip(ctx context.Context, tripID string) ([]domain.Place, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Place{}
	for _, p := range all {
		if p.TripID == tripID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Add validates and stores a place. A missing id is assigned; an id that
// already exists is a soft skip — the stored item is left untouched and the
// skip is logged, not raised, so retries stay idempotent.
func (s *PlaceService) Add(ctx context.Context, place domain.Place) (domain.Place, error) {
	if strings.TrimSpace(place.Name) == "" {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Add: %w: name is required", domain.ErrValidation)
	}
	if place.ID == "" || domain.IsLegacyID(place.ID) {
		place.ID = domain.NewID("place")
	}
	added, err := s.places.Add(ctx, place)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Add: %w", err)
	}
	if !added {
		slog.Warn("place with duplicate id skipped", "id", place.ID)
		return place, nil
	}
	if err := s.refreshTripCount(ctx, place.TripID); err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Add: %w", err)
	}
	return place, nil
}

// Update shallow-merges the patch into the stored place.
func (s *PlaceService) Update(ctx context.Context, id string, patch PlacePatch) (domain.Place, error) {
	all, err := s.places.GetAll(ctx)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Update: %w", err)
	}
	for _, p := range all {
		if p.ID != id {
			continue
		}
		oldTripID := p.TripID
		applyPlacePatch(&p, patch)
		if strings.TrimSpace(p.Name) == "" {
			return domain.Place{}, fmt.Errorf("service.PlaceService.Update: %w: name is required", domain.ErrValidation)
		}
		if err := s.places.Update(ctx, p); err != nil {
			return domain.Place{}, fmt.Errorf("service.PlaceService.Update: %w", err)
		}
		if p.TripID != oldTripID {
			if err := s.refreshTripCount(ctx, oldTripID); err != nil {
				return domain.Place{}, fmt.Errorf("service.PlaceService.Update: %w", err)
			}
			if err := s.refreshTripCount(ctx, p.TripID); err != nil {
				return domain.Place{}, fmt.Errorf("service.PlaceService.Update: %w", err)
			}
		}
		return p, nil
	}
	return domain.Place{}, fmt.Errorf("service.PlaceService.Update: %w", domain.ErrNotFound)
}

// refreshTripCount recounts the places assigned to tripID and reports the
// total to the trip store.
func (s *PlaceService) refreshTripCount(ctx context.Context, tripID string) error {
	if tripID == "" {
		return nil
	}
	all, err := s.places.GetAll(ctx)
	if err != nil {
		return err
	}
	count := 0
	for _, p := range all {
		if p.TripID == tripID {
			count++
		}
	}
	return s.trips.SetPlacesCount(ctx, tripID, count)
}

func applyPlacePatch(p *domain.Place, patch PlacePatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.EstimatedTime != nil {
		p.EstimatedTime = *patch.EstimatedTime
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Saved != nil {
		p.Saved = *patch.Saved
	}
	if patch.TripID != nil {
		p.TripID = *patch.TripID
	}
}
