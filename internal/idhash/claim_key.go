// Package idhash computes deterministic identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"zombie-scanner/internal/domain"
)

// ComputeClaimKey computes the idempotency key for a claim using SHA256.
// Formula: SHA256(address|network|claimed_before|points)
// A retry of the same claim yields the same key; the key changes once a
// claim succeeds because claimed_before moves.
// Returns hex-encoded hash (64 characters).
func ComputeClaimKey(
	address string,
	network domain.Network,
	claimedBefore int64,
	points int64,
) string {
	data := fmt.Sprintf("%s|%s|%d|%d",
		address,
		string(network),
		claimedBefore,
		points,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
