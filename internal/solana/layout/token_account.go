package layout

import "fmt"

// TokenAccountSize is the size of an SPL Token account without extensions.
// Token-2022 accounts carry extensions after this prefix.
const TokenAccountSize = 165

// AccountState is the SPL token account state enum.
type AccountState uint8

const (
	AccountStateUninitialized AccountState = 0
	AccountStateInitialized   AccountState = 1
	AccountStateFrozen        AccountState = 2
)

// TokenAccount is the decoded prefix of an SPL token account.
// Layout: mint(32) | owner(32) | amount(8) | delegate COption(36) | state(1) | ...
type TokenAccount struct {
	Mint     string
	Owner    string
	Amount   uint64
	Delegate *string
	State    AccountState
}

// DecodeTokenAccount decodes an SPL Token or Token-2022 account payload.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) < TokenAccountSize {
		return nil, fmt.Errorf("%w: token account is %d bytes, want at least %d", ErrShortBuffer, len(data), TokenAccountSize)
	}

	r := newReader(data)
	var acct TokenAccount
	var err error

	if acct.Mint, err = r.pubkey(); err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	if acct.Owner, err = r.pubkey(); err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	if acct.Amount, err = r.u64(); err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	if acct.Delegate, err = r.coptionPubkey(); err != nil {
		return nil, fmt.Errorf("delegate: %w", err)
	}
	state, err := r.u8()
	if err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	if state > uint8(AccountStateFrozen) {
		return nil, fmt.Errorf("%w: account state %d", ErrInvalidTag, state)
	}
	acct.State = AccountState(state)

	return &acct, nil
}
