package repo

import (
	"context"
	"fmt"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/kv"
)

// InvitationRepo is the flat invitation lookup store, keyed by invitation ID.
// It is a denormalized copy of the invitations embedded in trips, maintained
// so per-user invitation queries don't scan every trip. The invitation
// service keeps both copies in step.
type InvitationRepo interface {
	// GetAll returns every invitation in the flat store.
	GetAll(ctx context.Context) ([]domain.TripInvitation, error)

	// GetByID returns a single invitation. Returns domain.ErrNotFound if no
	// invitation with that ID exists.
	GetByID(ctx context.Context, id string) (domain.TripInvitation, error)

	// Upsert inserts the invitation, or replaces the stored one with the
	// same ID (used for status transitions).
	Upsert(ctx context.Context, inv domain.TripInvitation) error

	// Delete removes an invitation by ID. No-op when absent — it exists to
	// roll back the flat copy when the embedded write fails.
	Delete(ctx context.Context, id string) error
}

type kvInvitationRepo struct {
	store kv.Store
}

// NewInvitationRepo constructs an InvitationRepo backed by the provided store.
func NewInvitationRepo(store kv.Store) InvitationRepo {
	return &kvInvitationRepo{store: store}
}

func (r *kvInvitationRepo) GetAll(ctx context.Context) ([]domain.TripInvitation, error) {
	raw, err := r.store.Get(ctx, kv.BucketInvitations)
	if err != nil {
		return nil, fmt.Errorf("repo.InvitationRepo.GetAll: %w", err)
	}
	invs, err := decodeList[domain.TripInvitation](kv.BucketInvitations, raw)
	if err != nil {
		return nil, fmt.Errorf("repo.InvitationRepo.GetAll: %w", err)
	}
	return invs, nil
}

func (r *kvInvitationRepo) GetByID(ctx context.Context, id string) (domain.TripInvitation, error) {
	invs, err := r.GetAll(ctx)
	if err != nil {
		return domain.TripInvitation{}, err
	}
	for _, inv := range invs {
		if inv.ID == id {
			return inv, nil
		}
	}
	return domain.TripInvitation{}, fmt.Errorf("repo.InvitationRepo.GetByID: %w", domain.ErrNotFound)
}

func (r *kvInvitationRepo) Upsert(ctx context.Context, inv domain.TripInvitation) error {
	err := r.store.Update(ctx, kv.BucketInvitations, func(old []byte) ([]byte, error) {
		invs, err := decodeList[domain.TripInvitation](kv.BucketInvitations, old)
		if err != nil {
			return nil, err
		}
		for i := range invs {
			if invs[i].ID == inv.ID {
				invs[i] = inv
				return encodeList(kv.BucketInvitations, invs)
			}
		}
		return encodeList(kv.BucketInvitations, append(invs, inv))
	})
	if err != nil {
		return fmt.Errorf("repo.InvitationRepo.Upsert: %w", err)
	}
	return nil
}

func (r *kvInvitationRepo) Delete(ctx context.Context, id string) error {
	err := r.store.Update(ctx, kv.BucketInvitations, func(old []byte) ([]byte, error) {
		invs, err := decodeList[domain.TripInvitation](kv.BucketInvitations, old)
		if err != nil {
			return nil, err
		}
		kept := invs[:0]
		for _, inv := range invs {
			if inv.ID != id {
				kept = append(kept, inv)
			}
		}
		return encodeList(kv.BucketInvitations, kept)
	})
	if err != nil {
		return fmt.Errorf("repo.InvitationRepo.Delete: %w", err)
	}
	return nil
}
