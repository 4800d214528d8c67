package domain

// ClaimProvider identifies which rewards path executed a claim.
type ClaimProvider string

const (
	ClaimProviderPrimary ClaimProvider = "primary"
	ClaimProviderLocal   ClaimProvider = "local"
)

// ClaimStatus is the outcome of a claim attempt.
type ClaimStatus string

const (
	ClaimStatusSuccess ClaimStatus = "success"
	ClaimStatusFailed  ClaimStatus = "failed"
)

// ClaimRecord is one executed claim.
// Corresponds to claims table in PostgreSQL.
type ClaimRecord struct {
	ClaimID        string        // uuid
	IdempotencyKey string        // deterministic key sent to the provider
	Address        string        // wallet public key
	Network        Network       // ledger cluster
	Points         int64         // points submitted for this claim
	ClaimedAmount  int64         // amount acknowledged by the provider
	TxReference    string        // opaque provider reference
	Provider       ClaimProvider // primary or local fallback
	Status         ClaimStatus   // success or failed
	ErrorMessage   *string       // failure reason (nullable)
	CreatedAt      int64         // ms
}
