// Package repo contains all persistence access for the TripVault engine.
// Each bucket has its own file with an interface and a kv-backed
// implementation. No business logic lives here — only JSON (de)serialization
// over the kv bucket store.
//
// Every mutation follows the same pattern: read the full bucket, mutate the
// decoded list in memory, write the full bucket back. The kv store
// serializes those cycles per bucket.
package repo

import (
	"encoding/json"
	"fmt"
)

// decodeList unmarshals a bucket payload into a slice, treating an absent
// bucket (nil/empty payload) as an empty list.
func decodeList[T any](bucket string, raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("repo: decode bucket %q: %w", bucket, err)
	}
	return items, nil
}

// encodeList marshals a slice for storage, normalizing nil to an empty JSON
// array so a bucket never holds the literal "null".
func encodeList[T any](bucket string, items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("repo: encode bucket %q: %w", bucket, err)
	}
	return raw, nil
}
