package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/kv"
)

// SessionRepo persists the ephemeral login record. Unlike the profile, the
// session is removed outright on sign-out.
type SessionRepo interface {
	// Get returns the stored session. Returns domain.ErrNotFound when no
	// session exists (signed out or never signed in).
	Get(ctx context.Context) (domain.Session, error)

	// Save overwrites the session record.
	Save(ctx context.Context, session domain.Session) error

	// Clear removes the session record. No-op when absent.
	Clear(ctx context.Context) error
}

type kvSessionRepo struct {
	store kv.Store
}

// NewSessionRepo constructs a SessionRepo backed by the provided store.
func NewSessionRepo(store kv.Store) SessionRepo {
	return &kvSessionRepo{store: store}
}

func (r *kvSessionRepo) Get(ctx context.Context) (domain.Session, error) {
	raw, err := r.store.Get(ctx, kv.BucketSession)
	if err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.Get: %w", err)
	}
	if len(raw) == 0 {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.Get: %w", domain.ErrNotFound)
	}
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.Get: decode: %w", err)
	}
	return s, nil
}

func (r *kvSessionRepo) Save(ctx context.Context, session domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("repo.SessionRepo.Save: encode: %w", err)
	}
	if err := r.store.Put(ctx, kv.BucketSession, raw); err != nil {
		return fmt.Errorf("repo.SessionRepo.Save: %w", err)
	}
	return nil
}

func (r *kvSessionRepo) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, kv.BucketSession); err != nil {
		return fmt.Errorf("repo.SessionRepo.Clear: %w", err)
	}
	return nil
}
