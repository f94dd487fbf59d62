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

// InvitationService implements the invitation lifecycle. Every invitation
// exists twice — embedded in its trip and in the flat lookup store — and the
// two copies must transition together. The underlying storage has no
// multi-bucket transactions, so the paired writes are wrapped here: the flat
// copy is written first and rolled back if the embedded write fails.
type InvitationService struct {
	trips       repo.TripRepo
	invitations repo.InvitationRepo
	feed        repo.PublicFeedRepo
	now         func() time.Time
}

// NewInvitationService constructs an InvitationService backed by the
// provided repos.
func NewInvitationService(trips repo.TripRepo, invitations repo.InvitationRepo, feed repo.PublicFeedRepo) *InvitationService {
	return &InvitationService{trips: trips, invitations: invitations, feed: feed, now: time.Now}
}

// Send creates a pending invitation for email on the trip. The inviter must
// hold edit rights; the invited role must be editor or viewer — ownership is
// never granted by invitation.
func (s *InvitationService) Send(ctx context.Context, tripID, email string, role domain.Role, invitedBy string) (domain.TripInvitation, error) {
	if strings.TrimSpace(email) == "" {
		return domain.TripInvitation{}, fmt.Errorf("service.InvitationService.Send: %w: email is required", domain.ErrValidation)
	}
	if role != domain.RoleEditor && role != domain.RoleViewer {
		return domain.TripInvitation{}, fmt.Errorf("service.InvitationService.Send: %w: role must be editor or viewer", domain.ErrValidation)
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.TripInvitation{}, fmt.Errorf("service.InvitationService.Send: %w", err)
	}
	if !trip.CanEdit(invitedBy) {
		return domain.TripInvitation{}, fmt.Errorf("service.InvitationService.Send: %w", domain.ErrForbidden)
	}
	if _, already := trip.RoleOf(email); already {
		return domain.TripInvitation{}, fmt.Errorf("service.InvitationService.Send: %w: %s is already a collaborator", domain.ErrValidation, email)
	}

	inv := domain.TripInvitation{
		ID:        domain.NewID("invitation"),
		TripID:    tripID,
		Email:     email,
		InvitedBy: invitedBy,
		InvitedAt: s.now().UTC(),
		Status:    domain.InvitationPending,
		Role:      role,
	}

	// Two writes, one logical transaction: flat copy first, then embedded.
	if err := s.invitations.Upsert(ctx, inv); err != nil {
		return domain.TripInvitation{}, fmt.Errorf("service.InvitationService.Send: %w", err)
	}
	trip.Invitations = append(trip.Invitations, inv)
	trip.UpdatedAt = s.now().UTC()
	if err := s.trips.Upsert(ctx, trip); err != nil {
		if rbErr := s.invitations.Delete(ctx, inv.ID); rbErr != nil {
			slog.Error("invitation stores diverged: embedded write failed and flat rollback failed",
				"invitation", inv.ID, "trip", tripID, "error", err, "rollbackError", rbErr)
		}
		return domain.TripInvitation{}, fmt.Errorf("service.InvitationService.Send: %w", err)
	}
	if err := s.refreshFeed(ctx, trip); err != nil {
		return domain.TripInvitation{}, fmt.Errorf("service.InvitationService.Send: %w", err)
	}
	return inv, nil
}

// Respond transitions a pending invitation to accepted or declined. Both are
// terminal. Accepting synthesizes a collaborator on the trip with the
// invitation's role; declining only updates status. The responder's email
// must match the invitee.
func (s *InvitationService) Respond(ctx context.Context, invitationID string, response domain.InvitationStatus, userEmail string) error {
	if response != domain.InvitationAccepted && response != domain.InvitationDeclined {
		return fmt.Errorf("service.InvitationService.Respond: %w: response must be accepted or declined", domain.ErrValidation)
	}

	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("service.InvitationService.Respond: invitation not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("service.InvitationService.Respond: %w", err)
	}
	if inv.Email != userEmail {
		return fmt.Errorf("service.InvitationService.Respond: %w: invitation addressed to someone else", domain.ErrForbidden)
	}
	if inv.Status != domain.InvitationPending {
		return fmt.Errorf("service.InvitationService.Respond: %w: invitation already %s", domain.ErrValidation, inv.Status)
	}

	inv.Status = response
	if err := s.invitations.Upsert(ctx, inv); err != nil {
		return fmt.Errorf("service.InvitationService.Respond: %w", err)
	}

	trip, err := s.trips.GetByID(ctx, inv.TripID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The trip was deleted after inviting. The flat copy has
			// transitioned; there is no embedded copy left to update.
			slog.Warn("invitation responded to on a deleted trip", "invitation", inv.ID, "trip", inv.TripID)
			return nil
		}
		s.rollbackRespond(ctx, inv, err)
		return fmt.Errorf("service.InvitationService.Respond: %w", err)
	}

	for i := range trip.Invitations {
		if trip.Invitations[i].ID == inv.ID {
			trip.Invitations[i].Status = response
		}
	}
	if response == domain.InvitationAccepted {
		trip.Collaborators = append(trip.Collaborators, domain.TripCollaborator{
			ID:       domain.NewID("collab"),
			Email:    userEmail,
			Name:     displayName("", userEmail),
			Role:     inv.Role,
			JoinedAt: s.now().UTC(),
		})
		trip.Participants = trip.MemberCount()
	}
	trip.UpdatedAt = s.now().UTC()
	if err := s.trips.Upsert(ctx, trip); err != nil {
		s.rollbackRespond(ctx, inv, err)
		return fmt.Errorf("service.InvitationService.Respond: %w", err)
	}
	if err := s.refreshFeed(ctx, trip); err != nil {
		return fmt.Errorf("service.InvitationService.Respond: %w", err)
	}
	return nil
}

// rollbackRespond returns the flat copy to pending after the embedded write
// could not complete, so a retry can transition the pair together. A response
// is terminal only once both copies carry it.
func (s *InvitationService) rollbackRespond(ctx context.Context, inv domain.TripInvitation, cause error) {
	inv.Status = domain.InvitationPending
	if rbErr := s.invitations.Upsert(ctx, inv); rbErr != nil {
		slog.Error("invitation stores diverged: embedded write failed and flat rollback failed",
			"invitation", inv.ID, "trip", inv.TripID, "error", cause, "rollbackError", rbErr)
	}
}

// refreshFeed keeps the public feed copy of the trip current after an
// invitation mutates it. Visibility never changes here, so a non-public
// trip needs no feed write at all.
func (s *InvitationService) refreshFeed(ctx context.Context, trip domain.Trip) error {
	if trip.Visibility != domain.VisibilityPublic {
		return nil
	}
	return s.feed.AddOrReplace(ctx, trip)
}

// ListPending returns the pending invitations addressed to email, enriched
// with the parent trip's title. A trip deleted after inviting yields
// "Unknown Trip" — never an error. Read failures degrade to an empty list.
func (s *InvitationService) ListPending(ctx context.Context, email string) ([]domain.PendingInvitation, error) {
	invs, err := s.invitations.GetAll(ctx)
	if err != nil {
		slog.Error("invitation list read failed, returning empty", "error", err)
		return []domain.PendingInvitation{}, nil
	}

	out := []domain.PendingInvitation{}
	for _, inv := range invs {
		if inv.Email != email || inv.Status != domain.InvitationPending {
			continue
		}
		title := "Unknown Trip"
		if trip, err := s.trips.GetByID(ctx, inv.TripID); err == nil {
			title = trip.Title
		}
		out = append(out, domain.PendingInvitation{TripInvitation: inv, TripTitle: title})
	}
	return out, nil
}
