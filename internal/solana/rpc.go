package solana

import "context"

// LedgerClient defines the read-only Solana RPC surface used by the scanner.
type LedgerClient interface {
	// GetTokenAccountsByOwner lists token accounts owned by owner under programID.
	GetTokenAccountsByOwner(ctx context.Context, owner, programID string) ([]KeyedAccount, error)

	// GetAccountInfo retrieves a single account. Returns nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetMultipleAccounts retrieves accounts in request order; missing accounts are nil.
	GetMultipleAccounts(ctx context.Context, pubkeys []string) ([]*AccountInfo, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)
}
