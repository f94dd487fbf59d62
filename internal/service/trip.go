// Package service contains the business logic for the TripVault engine.
// Services validate inputs, enforce invariants, and orchestrate repo calls.
// No storage access lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/repo"
)

// TripService implements business logic for trip operations, including the
// maintenance of the public feed index: every transition into or out of
// public visibility and every delete goes through here, which is what keeps
// the index exactly equal to the public subset of the trips bucket.
type TripService struct {
	trips repo.TripRepo
	feed  repo.PublicFeedRepo
	now   func() time.Time
}

// NewTripService constructs a TripService backed by the provided repos.
func NewTripService(trips repo.TripRepo, feed repo.PublicFeedRepo) *TripService {
	return &TripService{trips: trips, feed: feed, now: time.Now}
}

// CreateTripParams carries caller-supplied fields for a new trip. The
// service assembles everything else (id, timestamps, owner collaborator,
// shareId) rather than trusting the caller to supply the invariants.
type CreateTripParams struct {
	Title               string
	Destination         string
	StartDate           string
	EndDate             string
	PlannedDurationDays int
	Image               string
	Visibility          domain.Visibility
	Currency            string
	CreatedBy           string // creator's email, becomes the owner collaborator
	CreatorName         string
}

// TripPatch carries the fields a trip update may change. Nil pointers mean
// "leave unchanged" — the merge is shallow and field-by-field.
type TripPatch struct {
	Title               *string
	Destination         *string
	StartDate           *string
	EndDate             *string
	PlannedDurationDays *int
	Image               *string
	Visibility          *domain.Visibility
	Currency            *string
}

// Create validates and persists a new trip. Exactly one owner collaborator
// (the creator) is attached, and a shareId is generated iff the trip is
// private. Public trips are inserted into the public feed index.
func (s *TripService) Create(ctx context.Context, p CreateTripParams) (domain.Trip, error) {
	if err := validateCreateTrip(p); err != nil {
		return domain.Trip{}, err
	}
	if p.Visibility == "" {
		p.Visibility = domain.VisibilityPrivate
	}

	now := s.now().UTC()
	trip := domain.Trip{
		ID:                  domain.NewID("trip"),
		Title:               strings.TrimSpace(p.Title),
		Destination:         strings.TrimSpace(p.Destination),
		StartDate:           p.StartDate,
		EndDate:             p.EndDate,
		PlannedDurationDays: p.PlannedDurationDays,
		Image:               p.Image,
		Visibility:          p.Visibility,
		Currency:            p.Currency,
		CreatedBy:           p.CreatedBy,
		CreatedAt:           now,
		UpdatedAt:           now,
		Collaborators: []domain.TripCollaborator{{
			ID:       domain.NewID("collab"),
			Email:    p.CreatedBy,
			Name:     displayName(p.CreatorName, p.CreatedBy),
			Role:     domain.RoleOwner,
			JoinedAt: now,
		}},
		Invitations:      []domain.TripInvitation{},
		Partners:         []domain.TripPartner{},
		FellowTravellers: []domain.FellowTraveller{},
	}
	if trip.Visibility == domain.VisibilityPrivate {
		trip.ShareID = domain.NewShareID()
	}
	trip.Participants = trip.MemberCount()

	if err := s.trips.Upsert(ctx, trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	if trip.Visibility == domain.VisibilityPublic {
		if err := s.feed.AddOrReplace(ctx, trip); err != nil {
			return domain.Trip{}, fmt.Errorf("service.TripService.Create: sync public feed: %w", err)
		}
	}
	return trip, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns all trips. A storage read failure degrades to an empty list
// (logged) so the UI can render an empty state instead of crashing.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.trips.GetAll(ctx)
	if err != nil {
		slog.Error("trip list read failed, returning empty", "error", err)
		return []domain.Trip{}, nil
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// Update shallow-merges the patch into the stored trip, always stamps
// UpdatedAt, and re-syncs the public feed index when the visibility changes:
// going private grants a fresh shareId and leaves the feed, going public
// clears the shareId and enters the feed. Owners and editors may update;
// anyone else gets domain.ErrForbidden.
func (s *TripService) Update(ctx context.Context, id string, patch TripPatch, actor string) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	if !trip.CanEdit(actor) {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", domain.ErrForbidden)
	}

	oldVisibility := trip.Visibility
	applyTripPatch(&trip, patch)
	if strings.TrimSpace(trip.Title) == "" {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w: title is required", domain.ErrValidation)
	}
	trip.UpdatedAt = s.now().UTC()

	if trip.Visibility != oldVisibility {
		switch trip.Visibility {
		case domain.VisibilityPrivate:
			trip.ShareID = domain.NewShareID()
		case domain.VisibilityPublic:
			trip.ShareID = ""
		default:
			return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w: unknown visibility %q", domain.ErrValidation, trip.Visibility)
		}
	}

	if err := s.trips.Upsert(ctx, trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	if err := s.syncFeed(ctx, trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return trip, nil
}

// Delete removes a trip and unconditionally purges it from the public feed
// index (cheap no-op when absent). Only the owner may delete.
func (s *TripService) Delete(ctx context.Context, id, actor string) error {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if !trip.IsOwner(actor) {
		return fmt.Errorf("service.TripService.Delete: %w", domain.ErrForbidden)
	}
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.feed.Remove(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: purge public feed: %w", err)
	}
	return nil
}

// SetPlacesCount records how many places are assigned to the trip. Called
// by the place flow whenever an assignment changes. A count for a trip that
// no longer exists (or was never synced to this device) is a no-op, and an
// unchanged count skips the write entirely.
func (s *TripService) SetPlacesCount(ctx context.Context, tripID string, count int) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("service.TripService.SetPlacesCount: %w", err)
	}
	if trip.PlacesCount == count {
		return nil
	}

	trip.PlacesCount = count
	trip.UpdatedAt = s.now().UTC()
	if err := s.trips.Upsert(ctx, trip); err != nil {
		return fmt.Errorf("service.TripService.SetPlacesCount: %w", err)
	}
	if err := s.syncFeed(ctx, trip); err != nil {
		return fmt.Errorf("service.TripService.SetPlacesCount: %w", err)
	}
	return nil
}

// GetPublicTrips returns the public feed. Read failures degrade to empty.
func (s *TripService) GetPublicTrips(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.feed.GetAll(ctx)
	if err != nil {
		slog.Error("public feed read failed, returning empty", "error", err)
		return []domain.Trip{}, nil
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// FindTripByShareID returns the trip carrying the given shareId, or nil for
// any unknown id — including the empty string and ids of deleted trips.
func (s *TripService) FindTripByShareID(ctx context.Context, shareID string) (*domain.Trip, error) {
	if shareID == "" {
		return nil, nil
	}
	trips, err := s.trips.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.FindTripByShareID: %w", err)
	}
	for _, t := range trips {
		if t.ShareID == shareID {
			return &t, nil
		}
	}
	return nil, nil
}

// GenerateUniqueShareID returns a share id no existing trip carries.
func (s *TripService) GenerateUniqueShareID(ctx context.Context) (string, error) {
	trips, err := s.trips.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("service.TripService.GenerateUniqueShareID: %w", err)
	}
	taken := make(map[string]bool, len(trips))
	for _, t := range trips {
		if t.ShareID != "" {
			taken[t.ShareID] = true
		}
	}
	for {
		id := domain.NewShareID()
		if !taken[id] {
			return id, nil
		}
	}
}

// AddPartner appends a partner to the trip. Partners carry no access rights,
// so only the participant bookkeeping changes.
func (s *TripService) AddPartner(ctx context.Context, tripID, name, email, actor string) (domain.TripPartner, error) {
	if strings.TrimSpace(name) == "" {
		return domain.TripPartner{}, fmt.Errorf("service.TripService.AddPartner: %w: name is required", domain.ErrValidation)
	}
	partner := domain.TripPartner{
		ID:      domain.NewID("partner"),
		Name:    strings.TrimSpace(name),
		Email:   email,
		AddedAt: s.now().UTC(),
		AddedBy: actor,
	}
	err := s.mutateMembers(ctx, tripID, actor, func(t *domain.Trip) error {
		t.Partners = append(t.Partners, partner)
		return nil
	})
	if err != nil {
		return domain.TripPartner{}, fmt.Errorf("service.TripService.AddPartner: %w", err)
	}
	return partner, nil
}

// RemovePartner drops a partner by id.
func (s *TripService) RemovePartner(ctx context.Context, tripID, partnerID, actor string) error {
	err := s.mutateMembers(ctx, tripID, actor, func(t *domain.Trip) error {
		for i, p := range t.Partners {
			if p.ID == partnerID {
				t.Partners = append(t.Partners[:i], t.Partners[i+1:]...)
				return nil
			}
		}
		return domain.ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("service.TripService.RemovePartner: %w", err)
	}
	return nil
}

// AddFellowTraveller appends a fellow traveller to the trip.
func (s *TripService) AddFellowTraveller(ctx context.Context, tripID, name, email, actor string) (domain.FellowTraveller, error) {
	if strings.TrimSpace(name) == "" {
		return domain.FellowTraveller{}, fmt.Errorf("service.TripService.AddFellowTraveller: %w: name is required", domain.ErrValidation)
	}
	traveller := domain.FellowTraveller{
		ID:      domain.NewID("traveller"),
		Name:    strings.TrimSpace(name),
		Email:   email,
		AddedAt: s.now().UTC(),
		AddedBy: actor,
	}
	err := s.mutateMembers(ctx, tripID, actor, func(t *domain.Trip) error {
		t.FellowTravellers = append(t.FellowTravellers, traveller)
		return nil
	})
	if err != nil {
		return domain.FellowTraveller{}, fmt.Errorf("service.TripService.AddFellowTraveller: %w", err)
	}
	return traveller, nil
}

// RemoveFellowTraveller drops a fellow traveller by id.
func (s *TripService) RemoveFellowTraveller(ctx context.Context, tripID, travellerID, actor string) error {
	err := s.mutateMembers(ctx, tripID, actor, func(t *domain.Trip) error {
		for i, ft := range t.FellowTravellers {
			if ft.ID == travellerID {
				t.FellowTravellers = append(t.FellowTravellers[:i], t.FellowTravellers[i+1:]...)
				return nil
			}
		}
		return domain.ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("service.TripService.RemoveFellowTraveller: %w", err)
	}
	return nil
}

// mutateMembers loads the trip, checks edit permission, applies fn, refreshes
// the participant count and UpdatedAt, persists, and keeps the public feed
// copy current.
func (s *TripService) mutateMembers(ctx context.Context, tripID, actor string, fn func(*domain.Trip) error) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if !trip.CanEdit(actor) {
		return domain.ErrForbidden
	}
	if err := fn(&trip); err != nil {
		return err
	}
	trip.Participants = trip.MemberCount()
	trip.UpdatedAt = s.now().UTC()
	if err := s.trips.Upsert(ctx, trip); err != nil {
		return err
	}
	return s.syncFeed(ctx, trip)
}

// syncFeed reconciles the public feed copy of one trip with its current
// state: public trips are upserted, everything else is removed. The index
// holds copies, so even a non-visibility edit of a public trip must refresh
// its feed entry or the two diverge.
func (s *TripService) syncFeed(ctx context.Context, trip domain.Trip) error {
	if trip.Visibility == domain.VisibilityPublic {
		return s.feed.AddOrReplace(ctx, trip)
	}
	return s.feed.Remove(ctx, trip.ID)
}

// applyTripPatch copies the set fields of patch onto trip.
func applyTripPatch(trip *domain.Trip, patch TripPatch) {
	if patch.Title != nil {
		trip.Title = *patch.Title
	}
	if patch.Destination != nil {
		trip.Destination = *patch.Destination
	}
	if patch.StartDate != nil {
		trip.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		trip.EndDate = *patch.EndDate
	}
	if patch.PlannedDurationDays != nil {
		trip.PlannedDurationDays = *patch.PlannedDurationDays
	}
	if patch.Image != nil {
		trip.Image = *patch.Image
	}
	if patch.Visibility != nil {
		trip.Visibility = *patch.Visibility
	}
	if patch.Currency != nil {
		trip.Currency = *patch.Currency
	}
}

func validateCreateTrip(p CreateTripParams) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(p.CreatedBy) == "" {
		return fmt.Errorf("%w: creator email is required", domain.ErrValidation)
	}
	if p.Visibility != "" && p.Visibility != domain.VisibilityPublic && p.Visibility != domain.VisibilityPrivate {
		return fmt.Errorf("%w: unknown visibility %q", domain.ErrValidation, p.Visibility)
	}
	if p.StartDate == "" && p.EndDate == "" && p.PlannedDurationDays <= 0 {
		return fmt.Errorf("%w: either dates or a planned duration is required", domain.ErrValidation)
	}
	if p.StartDate == "" && p.EndDate != "" {
		return fmt.Errorf("%w: end date without start date", domain.ErrValidation)
	}
	return nil
}

// displayName prefers the supplied name, falling back to the email's local
// part ("ana" from "ana@example.com") when no display name is known.
func displayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
