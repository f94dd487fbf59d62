// Package kv provides the on-device key-value bucket store that backs every
// entity repo. Each bucket holds one JSON-serialized value (an array for the
// collection buckets, a single object for profile and session).
//
// Bucket names are part of the persisted format: renaming one breaks
// existing installs.
package kv

import "context"

// Persisted bucket keys. Stable across versions.
const (
	BucketTrips       = "trips"
	BucketPlaces      = "places"
	BucketExpenses    = "expenses"
	BucketProfile     = "profile"
	BucketSession     = "user-session"
	BucketShareCache  = "shared-data-cache"
	BucketPublicTrips = "public-trips"
	BucketInvitations = "trip-invitations"
	BucketSettlements = "expense-settlements"
)

// Store is the minimal persistence contract the repos depend on.
//
// The engine is not designed for concurrent writers at the item level: every
// repo operation reads a full bucket, mutates it in memory, and writes the
// full bucket back. Implementations must serialize Update calls per bucket
// so that pattern is safe.
type Store interface {
	// Get returns the raw value of a bucket, or nil when the bucket has
	// never been written.
	Get(ctx context.Context, bucket string) ([]byte, error)

	// Put overwrites the bucket's value.
	Put(ctx context.Context, bucket string, value []byte) error

	// Update applies fn to the bucket's current value (nil when absent) and
	// persists the result, atomically with respect to other Update and Put
	// calls on the same bucket. If fn returns an error nothing is written
	// and the error is returned unchanged.
	Update(ctx context.Context, bucket string, fn func(old []byte) ([]byte, error)) error

	// Delete removes the bucket. Deleting an absent bucket is a no-op.
	Delete(ctx context.Context, bucket string) error
}
