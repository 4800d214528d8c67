package layout

import "fmt"

// MintSize is the size of an SPL Token mint account without extensions.
const MintSize = 82

// Mint is a decoded SPL Token mint.
// Layout: mintAuthority COption(36) | supply(8) | decimals(1) | isInitialized(1) | freezeAuthority COption(36)
type Mint struct {
	MintAuthority   *string
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *string
}

// DecodeMint decodes an SPL Token or Token-2022 mint payload.
func DecodeMint(data []byte) (*Mint, error) {
	if len(data) < MintSize {
		return nil, fmt.Errorf("%w: mint is %d bytes, want at least %d", ErrShortBuffer, len(data), MintSize)
	}

	r := newReader(data)
	var m Mint
	var err error

	if m.MintAuthority, err = r.coptionPubkey(); err != nil {
		return nil, fmt.Errorf("mint authority: %w", err)
	}
	if m.Supply, err = r.u64(); err != nil {
		return nil, fmt.Errorf("supply: %w", err)
	}
	if m.Decimals, err = r.u8(); err != nil {
		return nil, fmt.Errorf("decimals: %w", err)
	}
	if m.IsInitialized, err = r.boolean(); err != nil {
		return nil, fmt.Errorf("is initialized: %w", err)
	}
	if m.FreezeAuthority, err = r.coptionPubkey(); err != nil {
		return nil, fmt.Errorf("freeze authority: %w", err)
	}

	return &m, nil
}
