package layout

import (
	"errors"
	"fmt"
)

// MetadataKeyV1 is the Metaplex account discriminator for MetadataV1.
const MetadataKeyV1 = 4

const (
	maxNameLength   = 100
	maxSymbolLength = 20
	maxURILength    = 400
	maxCreators     = 5
)

// Creator is one entry of the Metaplex creators list.
type Creator struct {
	Address  string
	Verified bool
	Share    uint8
}

// Collection is the verified-collection section of Metaplex metadata.
type Collection struct {
	Verified bool
	Key      string
}

// Metadata is decoded Metaplex Token Metadata.
// Layout: key(1) | updateAuthority(32) | mint(32) | name | symbol | uri |
// sellerFeeBasisPoints(2) | creators Option<Vec> | primarySaleHappened(1) |
// isMutable(1) | editionNonce Option<u8> | tokenStandard Option<u8> | collection Option
//
// Everything after uri is optional: older accounts may be truncated and the
// decoder returns what it could read.
type Metadata struct {
	UpdateAuthority      string
	Mint                 string
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	PrimarySaleHappened  bool
	IsMutable            bool
	TokenStandard        *uint8
	Collection           *Collection
}

// DecodeMetadata decodes a Metaplex metadata account payload.
func DecodeMetadata(data []byte) (*Metadata, error) {
	r := newReader(data)

	key, err := r.u8()
	if err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	if key != MetadataKeyV1 {
		return nil, fmt.Errorf("%w: metadata key %d", ErrInvalidTag, key)
	}

	var md Metadata
	if md.UpdateAuthority, err = r.pubkey(); err != nil {
		return nil, fmt.Errorf("update authority: %w", err)
	}
	if md.Mint, err = r.pubkey(); err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	if md.Name, err = r.str(maxNameLength); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if md.Symbol, err = r.str(maxSymbolLength); err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	if md.URI, err = r.str(maxURILength); err != nil {
		return nil, fmt.Errorf("uri: %w", err)
	}

	if err := md.decodeOptional(r); err != nil && !errors.Is(err, ErrShortBuffer) {
		return nil, err
	}

	return &md, nil
}

// decodeOptional reads the sections following uri. A short buffer stops decoding
// and is not treated as malformed by the caller.
func (md *Metadata) decodeOptional(r *reader) error {
	var err error
	if md.SellerFeeBasisPoints, err = r.u16(); err != nil {
		return err
	}

	hasCreators, err := r.option()
	if err != nil {
		return fmt.Errorf("creators: %w", err)
	}
	if hasCreators {
		n, err := r.u32()
		if err != nil {
			return err
		}
		if n > maxCreators {
			return fmt.Errorf("%w: %d creators", ErrInvalidLength, n)
		}
		creators := make([]Creator, 0, n)
		for i := uint32(0); i < n; i++ {
			var c Creator
			if c.Address, err = r.pubkey(); err != nil {
				return err
			}
			if c.Verified, err = r.boolean(); err != nil {
				return err
			}
			if c.Share, err = r.u8(); err != nil {
				return err
			}
			creators = append(creators, c)
		}
		md.Creators = creators
	}

	if md.PrimarySaleHappened, err = r.boolean(); err != nil {
		return err
	}
	if md.IsMutable, err = r.boolean(); err != nil {
		return err
	}

	// editionNonce
	if has, err := r.option(); err != nil {
		return err
	} else if has {
		if err := r.skip(1); err != nil {
			return err
		}
	}

	if has, err := r.option(); err != nil {
		return err
	} else if has {
		ts, err := r.u8()
		if err != nil {
			return err
		}
		md.TokenStandard = &ts
	}

	if has, err := r.option(); err != nil {
		return err
	} else if has {
		var c Collection
		if c.Verified, err = r.boolean(); err != nil {
			return err
		}
		if c.Key, err = r.pubkey(); err != nil {
			return err
		}
		md.Collection = &c
	}

	return nil
}
