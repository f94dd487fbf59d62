package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/kv"
)

// ShareCacheRepo stores the most recently exported snapshot, so the UI can
// re-surface the last generated share link without rebuilding the export.
type ShareCacheRepo interface {
	// Get returns the cached snapshot. Returns domain.ErrNotFound when no
	// export has been cached yet.
	Get(ctx context.Context) (domain.SharedData, error)

	// Save overwrites the cached snapshot.
	Save(ctx context.Context, data domain.SharedData) error
}

type kvShareCacheRepo struct {
	store kv.Store
}

// NewShareCacheRepo constructs a ShareCacheRepo backed by the provided store.
func NewShareCacheRepo(store kv.Store) ShareCacheRepo {
	return &kvShareCacheRepo{store: store}
}

func (r *kvShareCacheRepo) Get(ctx context.Context) (domain.SharedData, error) {
	raw, err := r.store.Get(ctx, kv.BucketShareCache)
	if err != nil {
		return domain.SharedData{}, fmt.Errorf("repo.ShareCacheRepo.Get: %w", err)
	}
	if len(raw) == 0 {
		return domain.SharedData{}, fmt.Errorf("repo.ShareCacheRepo.Get: %w", domain.ErrNotFound)
	}
	var data domain.SharedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.SharedData{}, fmt.Errorf("repo.ShareCacheRepo.Get: decode: %w", err)
	}
	return data, nil
}

func (r *kvShareCacheRepo) Save(ctx context.Context, data domain.SharedData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("repo.ShareCacheRepo.Save: encode: %w", err)
	}
	if err := r.store.Put(ctx, kv.BucketShareCache, raw); err != nil {
		return fmt.Errorf("repo.ShareCacheRepo.Save: %w", err)
	}
	return nil
}
