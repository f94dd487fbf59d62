package repo

import (
	"context"
	"fmt"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/kv"
)

// TripRepo defines the persistence operations for trips.
// The service layer depends on this interface, not the kv-backed
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// GetAll returns every trip in the bucket. An absent bucket reads as an
	// empty list.
	GetAll(ctx context.Context) ([]domain.Trip, error)

	// GetByID returns a single trip. Returns domain.ErrNotFound if no trip
	// with that ID exists.
	GetByID(ctx context.Context, id string) (domain.Trip, error)

	// Upsert inserts the trip, or replaces the stored trip with the same ID.
	Upsert(ctx context.Context, trip domain.Trip) error

	// SaveAll replaces the entire bucket. Used by the merge routine.
	SaveAll(ctx context.Context, trips []domain.Trip) error

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does
	// not exist.
	Delete(ctx context.Context, id string) error
}

// kvTripRepo is the bucket-store implementation of TripRepo.
type kvTripRepo struct {
	store kv.Store
}

// NewTripRepo constructs a TripRepo backed by the provided bucket store.
func NewTripRepo(store kv.Store) TripRepo {
	return &kvTripRepo{store: store}
}

func (r *kvTripRepo) GetAll(ctx context.Context) ([]domain.Trip, error) {
	raw, err := r.store.Get(ctx, kv.BucketTrips)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.GetAll: %w", err)
	}
	trips, err := decodeList[domain.Trip](kv.BucketTrips, raw)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.GetAll: %w", err)
	}
	return trips, nil
}

func (r *kvTripRepo) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	trips, err := r.GetAll(ctx)
	if err != nil {
		return domain.Trip{}, err
	}
	for _, t := range trips {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
}

func (r *kvTripRepo) Upsert(ctx context.Context, trip domain.Trip) error {
	err := r.store.Update(ctx, kv.BucketTrips, func(old []byte) ([]byte, error) {
		trips, err := decodeList[domain.Trip](kv.BucketTrips, old)
		if err != nil {
			return nil, err
		}
		replaced := false
		for i := range trips {
			if trips[i].ID == trip.ID {
				trips[i] = trip
				replaced = true
				break
			}
		}
		if !replaced {
			trips = append(trips, trip)
		}
		return encodeList(kv.BucketTrips, trips)
	})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Upsert: %w", err)
	}
	return nil
}

func (r *kvTripRepo) SaveAll(ctx context.Context, trips []domain.Trip) error {
	raw, err := encodeList(kv.BucketTrips, trips)
	if err != nil {
		return fmt.Errorf("repo.TripRepo.SaveAll: %w", err)
	}
	if err := r.store.Put(ctx, kv.BucketTrips, raw); err != nil {
		return fmt.Errorf("repo.TripRepo.SaveAll: %w", err)
	}
	return nil
}

func (r *kvTripRepo) Delete(ctx context.Context, id string) error {
	err := r.store.Update(ctx, kv.BucketTrips, func(old []byte) ([]byte, error) {
		trips, err := decodeList[domain.Trip](kv.BucketTrips, old)
		if err != nil {
			return nil, err
		}
		kept := trips[:0]
		found := false
		for _, t := range trips {
			if t.ID == id {
				found = true
				continue
			}
			kept = append(kept, t)
		}
		if !found {
			return nil, domain.ErrNotFound
		}
		return encodeList(kv.BucketTrips, kept)
	})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	return nil
}
