package stub

import (
	"context"
	"sync"

	"zombie-scanner/internal/solana"
)

// LedgerClient implements solana.LedgerClient from in-memory maps for testing.
// Calls counts every method invocation by RPC method name.
type LedgerClient struct {
	mu sync.Mutex

	TokenAccounts map[string][]solana.KeyedAccount // key: owner + "/" + program
	Accounts      map[string]*solana.AccountInfo
	Signatures    map[string][]solana.SignatureInfo

	// Err, when set, is returned by every call. MethodErrs overrides per method.
	Err        error
	MethodErrs map[string]error

	Calls map[string]int
}

// NewLedgerClient creates a new stub ledger client.
func NewLedgerClient() *LedgerClient {
	return &LedgerClient{
		TokenAccounts: make(map[string][]solana.KeyedAccount),
		Accounts:      make(map[string]*solana.AccountInfo),
		Signatures:    make(map[string][]solana.SignatureInfo),
		MethodErrs:    make(map[string]error),
		Calls:         make(map[string]int),
	}
}

func (c *LedgerClient) record(method string) error {
	c.Calls[method]++
	if err, ok := c.MethodErrs[method]; ok {
		return err
	}
	return c.Err
}

// GetTokenAccountsByOwner returns accounts registered with AddTokenAccount.
func (c *LedgerClient) GetTokenAccountsByOwner(_ context.Context, owner, programID string) ([]solana.KeyedAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("getTokenAccountsByOwner"); err != nil {
		return nil, err
	}
	accounts := c.TokenAccounts[owner+"/"+programID]
	return append([]solana.KeyedAccount(nil), accounts...), nil
}

// GetAccountInfo returns the account stored under pubkey, or nil.
func (c *LedgerClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("getAccountInfo"); err != nil {
		return nil, err
	}
	return c.Accounts[pubkey], nil
}

// GetMultipleAccounts returns stored accounts in request order.
func (c *LedgerClient) GetMultipleAccounts(_ context.Context, pubkeys []string) ([]*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("getMultipleAccounts"); err != nil {
		return nil, err
	}
	out := make([]*solana.AccountInfo, len(pubkeys))
	for i, key := range pubkeys {
		out[i] = c.Accounts[key]
	}
	return out, nil
}

// GetSignaturesForAddress retrieves signatures for an address from the stub store.
func (c *LedgerClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.record("getSignaturesForAddress"); err != nil {
		return nil, err
	}

	sigs := c.Signatures[address]
	if opts != nil && opts.Limit > 0 && opts.Limit < len(sigs) {
		return sigs[:opts.Limit], nil
	}
	return sigs, nil
}

// AddTokenAccount registers a token account for owner under programID.
func (c *LedgerClient) AddTokenAccount(owner, programID, pubkey string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := owner + "/" + programID
	c.TokenAccounts[key] = append(c.TokenAccounts[key], solana.KeyedAccount{
		Pubkey:  pubkey,
		Account: solana.AccountInfo{Owner: programID, Data: data},
	})
}

// AddAccount stores raw account data under pubkey.
func (c *LedgerClient) AddAccount(pubkey, owner string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Accounts[pubkey] = &solana.AccountInfo{Owner: owner, Data: data}
}

// AddSignatures adds signatures for an address to the stub store.
func (c *LedgerClient) AddSignatures(address string, sigs []solana.SignatureInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Signatures[address] = sigs
}

// SetMethodErr makes method fail with err.
func (c *LedgerClient) SetMethodErr(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.MethodErrs[method] = err
}

// CallCount returns how many times method was invoked.
func (c *LedgerClient) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.Calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (c *LedgerClient) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, n := range c.Calls {
		total += n
	}
	return total
}

var _ solana.LedgerClient = (*LedgerClient)(nil)
