package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32
	pdaMarker     = "ProgramDerivedAddress"
)

var (
	// ErrInvalidPubkey is returned when a base58 key does not decode to 32 bytes.
	ErrInvalidPubkey = errors.New("invalid public key")

	// ErrNoViableBump is returned when every bump seed yields an on-curve point.
	ErrNoViableBump = errors.New("no viable bump seed")

	errOnCurve = errors.New("derived address is on curve")
)

// DecodePubkey decodes a base58 public key and checks its length.
func DecodePubkey(key string) ([]byte, error) {
	b, err := base58.Decode(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPubkey, key, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidPubkey, key, len(b))
	}
	return b, nil
}

// CreateProgramAddress hashes seeds with programID and rejects on-curve results.
func CreateProgramAddress(seeds [][]byte, programID []byte) ([]byte, error) {
	if len(seeds) > maxSeeds {
		return nil, fmt.Errorf("too many seeds: %d", len(seeds))
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return nil, fmt.Errorf("seed exceeds %d bytes", maxSeedLength)
		}
		h.Write(seed)
	}
	h.Write(programID)
	h.Write([]byte(pdaMarker))
	hash := h.Sum(nil)

	if isOnCurve(hash) {
		return nil, errOnCurve
	}
	return hash, nil
}

// FindProgramAddress searches bump seeds from 255 down to 0 for the first
// off-curve address.
func FindProgramAddress(seeds [][]byte, programID []byte) (string, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if errors.Is(err, errOnCurve) {
			continue
		}
		if err != nil {
			return "", 0, err
		}
		return base58.Encode(addr), uint8(bump), nil
	}

	return "", 0, ErrNoViableBump
}

// MetadataPDA derives the Metaplex metadata account address for mint.
func MetadataPDA(mint string) (string, error) {
	mintKey, err := DecodePubkey(mint)
	if err != nil {
		return "", err
	}
	programKey, err := DecodePubkey(MetadataProgramID)
	if err != nil {
		return "", err
	}

	addr, _, err := FindProgramAddress([][]byte{
		[]byte("metadata"),
		programKey,
		mintKey,
	}, programKey)
	return addr, err
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
