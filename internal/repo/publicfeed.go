package repo

import (
	"context"
	"fmt"

	"github.com/jhartung/tripvault/internal/domain"
	"github.com/jhartung/tripvault/internal/kv"
)

// PublicFeedRepo is the denormalized secondary index of public trips.
// It holds copies, not references: the trip service must invoke it on every
// transition into or out of public visibility and on every delete, so that
// GetAll always equals the public subset of the trips bucket. Divergence is
// a correctness bug, not a caching artifact.
type PublicFeedRepo interface {
	// GetAll returns every trip in the public feed.
	GetAll(ctx context.Context) ([]domain.Trip, error)

	// AddOrReplace upserts the trip into the feed by ID.
	AddOrReplace(ctx context.Context, trip domain.Trip) error

	// Remove drops the trip from the feed. No-op when absent.
	Remove(ctx context.Context, tripID string) error
}

type kvPublicFeedRepo struct {
	store kv.Store
}

// NewPublicFeedRepo constructs a PublicFeedRepo backed by the provided store.
func NewPublicFeedRepo(store kv.Store) PublicFeedRepo {
	return &kvPublicFeedRepo{store: store}
}

func (r *kvPublicFeedRepo) GetAll(ctx context.Context) ([]domain.Trip, error) {
	raw, err := r.store.Get(ctx, kv.BucketPublicTrips)
	if err != nil {
		return nil, fmt.Errorf("repo.PublicFeedRepo.GetAll: %w", err)
	}
	trips, err := decodeList[domain.Trip](kv.BucketPublicTrips, raw)
	if err != nil {
		return nil, fmt.Errorf("repo.PublicFeedRepo.GetAll: %w", err)
	}
	return trips, nil
}

func (r *kvPublicFeedRepo) AddOrReplace(ctx context.Context, trip domain.Trip) error {
	err := r.store.Update(ctx, kv.BucketPublicTrips, func(old []byte) ([]byte, error) {
		trips, err := decodeList[domain.Trip](kv.BucketPublicTrips, old)
		if err != nil {
			return nil, err
		}
		for i := range trips {
			if trips[i].ID == trip.ID {
				trips[i] = trip
				return encodeList(kv.BucketPublicTrips, trips)
			}
		}
		return encodeList(kv.BucketPublicTrips, append(trips, trip))
	})
	if err != nil {
		return fmt.Errorf("repo.PublicFeedRepo.AddOrReplace: %w", err)
	}
	return nil
}

func (r *kvPublicFeedRepo) Remove(ctx context.Context, tripID string) error {
	err := r.store.Update(ctx, kv.BucketPublicTrips, func(old []byte) ([]byte, error) {
		trips, err := decodeList[domain.Trip](kv.BucketPublicTrips, old)
		if err != nil {
			return nil, err
		}
		kept := trips[:0]
		for _, t := range trips {
			if t.ID != tripID {
				kept = append(kept, t)
			}
		}
		return encodeList(kv.BucketPublicTrips, kept)
	})
	if err != nil {
		return fmt.Errorf("repo.PublicFeedRepo.Remove: %w", err)
	}
	return nil
}
