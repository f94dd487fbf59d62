package domain

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// idAlphabet is the character set for the random ID suffix. Base36 keeps ids
// lowercase and URL-safe.
const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a collision-resistant entity id of the form
// "prefix_<base36 unix millis>_<8 random chars>", e.g. "trip_mf3k2x9a_q7c01xk2".
// Practically unique within a single device's history.
func NewID(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return prefix + "_" + ts + "_" + randomSuffix(8)
}

// IsLegacyID reports whether id uses the old timestamp-only scheme:
// one or more digits, nothing else. Ids produced by NewID always contain
// underscores and letters, so this never matches them.
func IsLegacyID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NewShareID returns a globally unique share id for private trips,
// used for join-by-ID across devices.
func NewShareID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// randomSuffix returns n characters drawn from idAlphabet via crypto/rand.
func randomSuffix(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms; keep the id
		// unique anyway by falling back to uuid-derived bytes.
		copy(b, []byte(strings.ReplaceAll(uuid.NewString(), "-", "")))
	}
	var sb strings.Builder
	sb.Grow(n)
	for _, c := range b {
		sb.WriteByte(idAlphabet[int(c)%len(idAlphabet)])
	}
	return sb.String()
}
