package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/kv"
)

// ProfileRepo persists the single local user profile.
// Get is a pure read; the activity-timestamp side effect lives in Touch so
// reads stay idempotent where tests need them to be.
type ProfileRepo interface {
	// Get returns the stored profile. Returns domain.ErrNotFound when no
	// profile has been created yet.
	Get(ctx context.Context) (domain.UserProfile, error)

	// Save overwrites the profile. At most one profile resides in storage.
	Save(ctx context.Context, profile domain.UserProfile) error

	// Touch bumps the profile's LastActiveAt to now. No-op (without error)
	// when no profile exists.
	Touch(ctx context.Context) error
}

type kvProfileRepo struct {
	store kv.Store
	now   func() time.Time
}

// NewProfileRepo constructs a ProfileRepo backed by the provided store.
func NewProfileRepo(store kv.Store) ProfileRepo {
	return &kvProfileRepo{store: store, now: time.Now}
}

func (r *kvProfileRepo) Get(ctx context.Context) (domain.UserProfile, error) {
	raw, err := r.store.Get(ctx, kv.BucketProfile)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("repo.ProfileRepo.Get: %w", err)
	}
	if len(raw) == 0 {
		return domain.UserProfile{}, fmt.Errorf("repo.ProfileRepo.Get: %w", domain.ErrNotFound)
	}
	var p domain.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.UserProfile{}, fmt.Errorf("repo.ProfileRepo.Get: decode: %w", err)
	}
	return p, nil
}

func (r *kvProfileRepo) Save(ctx context.Context, profile domain.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("repo.ProfileRepo.Save: encode: %w", err)
	}
	if err := r.store.Put(ctx, kv.BucketProfile, raw); err != nil {
		return fmt.Errorf("repo.ProfileRepo.Save: %w", err)
	}
	return nil
}

func (r *kvProfileRepo) Touch(ctx context.Context) error {
	err := r.store.Update(ctx, kv.BucketProfile, func(old []byte) ([]byte, error) {
		if len(old) == 0 {
			return old, nil
		}
		var p domain.UserProfile
		if err := json.Unmarshal(old, &p); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		p.LastActiveAt = r.now().UTC()
		return json.Marshal(p)
	})
	if err != nil {
		return fmt.Errorf("repo.ProfileRepo.Touch: %w", err)
	}
	return nil
}
