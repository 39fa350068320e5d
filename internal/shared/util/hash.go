package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// anonymousOwner keys objects uploaded without an authenticated user.
const anonymousOwner = "anonymous"

// HashUserKey returns a filesystem-safe identifier for a user ID. Empty IDs map
// to a fixed anonymous segment so unauthenticated uploads still group together.
func HashUserKey(userID string) string {
	if userID == "" {
		return anonymousOwner
	}
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:16])
}
