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

// SessionService manages the locally simulated session and the single user
// profile. Session and profile are deliberately separate records: signing
// out removes the session but only deactivates the profile, so stats and
// history survive a sign-out/sign-in cycle.
type SessionService struct {
	profiles repo.ProfileRepo
	sessions repo.SessionRepo
	trips    repo.TripRepo
	places   repo.PlaceRepo
	expenses repo.ExpenseRepo
	now      func() time.Time
}

// NewSessionService constructs a SessionService. The trip, place and expense
// repos are only consulted by RecalculateStats.
func NewSessionService(profiles repo.ProfileRepo, sessions repo.SessionRepo, trips repo.TripRepo, places repo.PlaceRepo, expenses repo.ExpenseRepo) *SessionService {
	return &SessionService{
		profiles: profiles,
		sessions: sessions,
		trips:    trips,
		places:   places,
		expenses: expenses,
		now:      time.Now,
	}
}

// GuestParams carries the fields of a guest sign-in.
type GuestParams struct {
	FullName string
	Email    string
}

// AuthParams carries the fields of an authenticated sign-in.
type AuthParams struct {
	Name   string
	Email  string
	Avatar string
}

// CreateGuestSession builds a fresh guest profile with restrictive default
// preferences and zeroed stats, replaces any stored profile, and opens a
// session. Guests always start from scratch.
func (s *SessionService) CreateGuestSession(ctx context.Context, p GuestParams) (domain.UserProfile, error) {
	if strings.TrimSpace(p.Email) == "" {
		return domain.UserProfile{}, fmt.Errorf("service.SessionService.CreateGuestSession: %w: email is required", domain.ErrValidation)
	}

	now := s.now().UTC()
	profile := domain.UserProfile{
		ID:       domain.NewID("user"),
		Name:     displayName(p.FullName, p.Email),
		Email:    p.Email,
		UserType: domain.UserGuest,
		IsActive: true,
		Preferences: domain.Preferences{
			Notifications:   false,
			LocationSharing: false,
			PublicProfile:   false,
		},
		CreatedAt:    now,
		LastActiveAt: now,
	}
	if err := s.open(ctx, profile); err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.SessionService.CreateGuestSession: %w", err)
	}
	return profile, nil
}

// CreateAuthenticatedSession builds an authenticated profile and opens a
// session. When a prior profile exists — typically a guest upgrading — its
// stats and creation time are preserved rather than reset.
func (s *SessionService) CreateAuthenticatedSession(ctx context.Context, p AuthParams) (domain.UserProfile, error) {
	if strings.TrimSpace(p.Email) == "" {
		return domain.UserProfile{}, fmt.Errorf("service.SessionService.CreateAuthenticatedSession: %w: email is required", domain.ErrValidation)
	}

	now := s.now().UTC()
	profile := domain.UserProfile{
		ID:       domain.NewID("user"),
		Name:     displayName(p.Name, p.Email),
		Email:    p.Email,
		Avatar:   p.Avatar,
		UserType: domain.UserAuthenticated,
		IsActive: true,
		Preferences: domain.Preferences{
			Notifications:   true,
			LocationSharing: false,
			PublicProfile:   false,
		},
		CreatedAt:    now,
		LastActiveAt: now,
	}

	if prior, err := s.profiles.Get(ctx); err == nil {
		profile.ID = prior.ID
		profile.Stats = prior.Stats
		profile.CreatedAt = prior.CreatedAt
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.UserProfile{}, fmt.Errorf("service.SessionService.CreateAuthenticatedSession: %w", err)
	}

	if err := s.open(ctx, profile); err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.SessionService.CreateAuthenticatedSession: %w", err)
	}
	return profile, nil
}

// open persists the profile and the session record.
func (s *SessionService) open(ctx context.Context, profile domain.UserProfile) error {
	if err := s.profiles.Save(ctx, profile); err != nil {
		return err
	}
	return s.sessions.Save(ctx, domain.Session{
		IsLoggedIn: true,
		Email:      profile.Email,
		CreatedAt:  s.now().UTC(),
	})
}

// IsLoggedIn is true iff the session record says logged in AND the stored
// profile is active. Any read failure degrades to false — an unreadable
// store never grants access.
func (s *SessionService) IsLoggedIn(ctx context.Context) bool {
	session, err := s.sessions.Get(ctx)
	if err != nil || !session.IsLoggedIn {
		return false
	}
	profile, err := s.profiles.Get(ctx)
	if err != nil {
		return false
	}
	return profile.IsActive
}

// SignOut marks the profile inactive (the profile itself is retained) and
// removes the session record.
func (s *SessionService) SignOut(ctx context.Context) error {
	profile, err := s.profiles.Get(ctx)
	switch {
	case err == nil:
		profile.IsActive = false
		if err := s.profiles.Save(ctx, profile); err != nil {
			return fmt.Errorf("service.SessionService.SignOut: %w", err)
		}
	case errors.Is(err, domain.ErrNotFound):
		// Nothing to deactivate.
	default:
		return fmt.Errorf("service.SessionService.SignOut: %w", err)
	}
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("service.SessionService.SignOut: %w", err)
	}
	return nil
}

// Profile returns the stored profile without side effects.
// Returns domain.ErrNotFound when no profile exists.
func (s *SessionService) Profile(ctx context.Context) (domain.UserProfile, error) {
	profile, err := s.profiles.Get(ctx)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.SessionService.Profile: %w", err)
	}
	return profile, nil
}

// TouchProfile bumps the profile's LastActiveAt. Kept separate from Profile
// so reads stay idempotent; callers that want the old read-bumps-activity
// behavior call both.
func (s *SessionService) TouchProfile(ctx context.Context) error {
	if err := s.profiles.Touch(ctx); err != nil {
		return fmt.Errorf("service.SessionService.TouchProfile: %w", err)
	}
	return nil
}

// RecalculateStats recomputes the profile's derived counters from the other
// stores and persists the result: completed trips (end date in the past),
// saved places, total expense amount, and distinct people connected across
// all trips (collaborators and partners, excluding the user).
func (s *SessionService) RecalculateStats(ctx context.Context) (domain.UserProfile, error) {
	profile, err := s.profiles.Get(ctx)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.SessionService.RecalculateStats: %w", err)
	}

	trips, err := s.trips.GetAll(ctx)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.SessionService.RecalculateStats: %w", err)
	}
	places, err := s.places.GetAll(ctx)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.SessionService.RecalculateStats: %w", err)
	}
	expenses, err := s.expenses.GetAll(ctx)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.SessionService.RecalculateStats: %w", err)
	}

	today := s.now().UTC().Format("2006-01-02")
	stats := domain.Stats{}
	friends := map[string]bool{}
	for _, t := range trips {
		if t.EndDate != "" && t.EndDate < today {
			stats.TripsCompleted++
		}
		for _, c := range t.Collaborators {
			if c.Email != profile.Email {
				friends[c.Email] = true
			}
		}
		for _, p := range t.Partners {
			key := p.Email
			if key == "" {
				key = p.Name
			}
			friends[key] = true
		}
	}
	for _, p := range places {
		if p.Saved {
			stats.PlacesVisited++
		}
	}
	for _, e := range expenses {
		stats.TotalExpenses += e.Amount
	}
	stats.FriendsConnected = len(friends)

	profile.Stats = stats
	if err := s.profiles.Save(ctx, profile); err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.SessionService.RecalculateStats: %w", err)
	}
	slog.Info("profile stats recalculated",
		"tripsCompleted", stats.TripsCompleted,
		"placesVisited", stats.PlacesVisited,
		"friendsConnected", stats.FriendsConnected,
	)
	return profile, nil
}
