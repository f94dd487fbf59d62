package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/kv"
)

// PlaceRepo defines the persistence operations for places.
type PlaceRepo interface {
	// GetAll returns every place, after self-healing normalization: any
	// place whose ID is legacy-format, empty, or duplicates an earlier ID
	// in the same pass is assigned a fresh ID, and the corrected list is
	// persisted before returning. Running it twice changes nothing the
	// second time.
	GetAll(ctx context.Context) ([]domain.Place, error)

	// Add appends the place unless one with the same ID already exists.
	// The duplicate case is a soft skip, not an error: added reports
	// whether the place was stored.
	Add(ctx context.Context, place domain.Place) (added bool, err error)

	// Update replaces the stored place with the same ID.
	// Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, place domain.Place) error

	// SaveAll replaces the entire bucket. Used by the merge routine.
	SaveAll(ctx context.Context, places []domain.Place) error
}

type kvPlaceRepo struct {
	store kv.Store
}

// NewPlaceRepo constructs a PlaceRepo backed by the provided bucket store.
func NewPlaceRepo(store kv.Store) PlaceRepo {
	return &kvPlaceRepo{store: store}
}

func (r *kvPlaceRepo) GetAll(ctx context.Context) ([]domain.Place, error) {
	var out []domain.Place
	err := r.store.Update(ctx, kv.BucketPlaces, func(old []byte) ([]byte, error) {
		places, err := decodeList[domain.Place](kv.BucketPlaces, old)
		if err != nil {
			return nil, err
		}
		healed := healIDs(places, "place", func(p *domain.Place) *string { return &p.ID })
		out = places
		if healed == 0 {
			return old, nil
		}
		slog.Warn("repaired place ids on load", "count", healed)
		return encodeList(kv.BucketPlaces, places)
	})
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.GetAll: %w", err)
	}
	if out == nil {
		out = []domain.Place{}
	}
	return out, nil
}

func (r *kvPlaceRepo) Add(ctx context.Context, place domain.Place) (bool, error) {
	added := false
	err := r.store.Update(ctx, kv.BucketPlaces, func(old []byte) ([]byte, error) {
		places, err := decodeList[domain.Place](kv.BucketPlaces, old)
		if err != nil {
			return nil, err
		}
		for _, p := range places {
			if p.ID == place.ID {
				// Existing item wins; retries of the same add are no-ops.
				return old, nil
			}
		}
		added = true
		return encodeList(kv.BucketPlaces, append(places, place))
	})
	if err != nil {
		return false, fmt.Errorf("repo.PlaceRepo.Add: %w", err)
	}
	return added, nil
}

func (r *kvPlaceRepo) Update(ctx context.Context, place domain.Place) error {
	err := r.store.Update(ctx, kv.BucketPlaces, func(old []byte) ([]byte, error) {
		places, err := decodeList[domain.Place](kv.BucketPlaces, old)
		if err != nil {
			return nil, err
		}
		for i := range places {
			if places[i].ID == place.ID {
				places[i] = place
				return encodeList(kv.BucketPlaces, places)
			}
		}
		return nil, domain.ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("repo.PlaceRepo.Update: %w", err)
	}
	return nil
}

func (r *kvPlaceRepo) SaveAll(ctx context.Context, places []domain.Place) error {
	raw, err := encodeList(kv.BucketPlaces, places)
	if err != nil {
		return fmt.Errorf("repo.PlaceRepo.SaveAll: %w", err)
	}
	if err := r.store.Put(ctx, kv.BucketPlaces, raw); err != nil {
		return fmt.Errorf("repo.PlaceRepo.SaveAll: %w", err)
	}
	return nil
}

// healIDs assigns a fresh id to every item whose id is empty, legacy-format,
// or duplicates an id already seen in this pass. Returns how many were
// repaired. Fresh ids never match the legacy detector, so a second pass
// repairs nothing.
func healIDs[T any](items []T, prefix string, id func(*T) *string) int {
	seen := make(map[string]bool, len(items))
	healed := 0
	for i := range items {
		p := id(&items[i])
		if *p == "" || domain.IsLegacyID(*p) || seen[*p] {
			*p = domain.NewID(prefix)
			healed++
		}
		seen[*p] = true
	}
	return healed
}
