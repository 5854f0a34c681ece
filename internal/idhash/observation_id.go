package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeObservationID computes a deterministic observation_id using SHA256.
// Formula: SHA256(token_id|lower(seller)|price|observed_at)
// Returns hex-encoded hash (64 characters).
func ComputeObservationID(
	tokenID int64,
	seller string,
	price string,
	observedAt int64,
) string {
	data := fmt.Sprintf("%d|%s|%s|%d",
		tokenID,
		strings.ToLower(seller),
		price,
		observedAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
