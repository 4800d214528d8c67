// Package layout decodes Solana account payloads into typed structs.
// Every read is bounds-checked; malformed accounts produce errors, never panics.
package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// PubkeyLength is the size of an ed25519 public key in bytes.
const PubkeyLength = 32

var (
	// ErrShortBuffer is returned when a payload ends before a required field.
	ErrShortBuffer = errors.New("layout: short buffer")

	// ErrInvalidLength is returned when a length prefix exceeds its allowed maximum.
	ErrInvalidLength = errors.New("layout: invalid length")

	// ErrInvalidTag is returned when an option or enum tag has an unknown value.
	ErrInvalidTag = errors.New("layout: invalid tag")
)

// reader walks a little-endian byte buffer.
type reader struct {
	buf []byte
	off int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) need(n int) error {
	if n < 0 || n > r.remaining() {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.off, r.remaining())
	}
	return nil
}

func (r *reader) skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) boolean() (bool, error) {
	v, err := r.u8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: bool value %d at offset %d", ErrInvalidTag, v, r.off-1)
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) pubkey() (string, error) {
	b, err := r.bytes(PubkeyLength)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

// option reads a borsh Option tag (1 byte).
func (r *reader) option() (bool, error) {
	return r.boolean()
}

// coptionPubkey reads an SPL COption<Pubkey>: u32 tag followed by 32 bytes that are
// always present regardless of the tag.
func (r *reader) coptionPubkey() (*string, error) {
	tag, err := r.u32()
	if err != nil {
		return nil, err
	}
	key, err := r.pubkey()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		return &key, nil
	}
	return nil, fmt.Errorf("%w: coption tag %d", ErrInvalidTag, tag)
}

// str reads a borsh string (u32 length prefix) and trims NUL padding.
func (r *reader) str(maxLen int) (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if int64(n) > int64(maxLen) {
		return "", fmt.Errorf("%w: string length %d exceeds %d", ErrInvalidLength, n, maxLen)
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\x00"), nil
}
