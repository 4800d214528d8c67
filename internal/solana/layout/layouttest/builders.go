// Package layouttest builds binary account payloads for tests.
package layouttest

import (
	"encoding/binary"

	"github.com/mr-tron/base58"
)

// Key returns a deterministic base58 public key whose bytes are all b.
func Key(b byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = b
	}
	return base58.Encode(raw)
}

func mustKey(key string) []byte {
	raw, err := base58.Decode(key)
	if err != nil || len(raw) != 32 {
		panic("layouttest: invalid key " + key)
	}
	return raw
}

// TokenAccount builds a 165-byte initialized SPL token account.
func TokenAccount(mint, owner string, amount uint64) []byte {
	buf := make([]byte, 165)
	copy(buf[0:32], mustKey(mint))
	copy(buf[32:64], mustKey(owner))
	binary.LittleEndian.PutUint64(buf[64:72], amount)
	// delegate COption None at 72..108
	buf[108] = 1 // initialized
	return buf
}

// Mint builds an 82-byte initialized mint with no authorities.
func Mint(supply uint64, decimals uint8) []byte {
	buf := make([]byte, 82)
	binary.LittleEndian.PutUint64(buf[36:44], supply)
	buf[44] = decimals
	buf[45] = 1
	return buf
}

// MetadataOpts are the optional trailing sections of a metadata account.
type MetadataOpts struct {
	Creators      []string
	TokenStandard *uint8
	Collection    string
	Truncate      bool // stop after uri
}

// Metadata builds a Metaplex MetadataV1 payload.
func Metadata(mint, name, symbol, uri string, opts MetadataOpts) []byte {
	buf := []byte{4}
	buf = append(buf, make([]byte, 32)...) // update authority
	buf = append(buf, mustKey(mint)...)
	buf = appendString(buf, name)
	buf = appendString(buf, symbol)
	buf = appendString(buf, uri)
	if opts.Truncate {
		return buf
	}

	buf = binary.LittleEndian.AppendUint16(buf, 500)
	if len(opts.Creators) == 0 {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(opts.Creators)))
		for _, c := range opts.Creators {
			buf = append(buf, mustKey(c)...)
			buf = append(buf, 1, 100)
		}
	}
	buf = append(buf, 1, 0)    // primary sale happened, not mutable
	buf = append(buf, 1, 0xfe) // edition nonce
	if opts.TokenStandard == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1, *opts.TokenStandard)
	}
	if opts.Collection == "" {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1, 1)
		buf = append(buf, mustKey(opts.Collection)...)
	}
	return buf
}

// appendString writes a borsh string padded with NULs to a fixed width,
// as Metaplex stores names.
func appendString(buf []byte, s string) []byte {
	width := len(s) + 4
	buf = binary.LittleEndian.AppendUint32(buf, uint32(width))
	buf = append(buf, s...)
	return append(buf, make([]byte, width-len(s))...)
}
