// Package rewards executes point claims against a rewards provider with a
// local fallback.
package rewards

import (
	"context"

	"zombie-scanner/internal/domain"
)

// ClaimRequest is one claim submitted to a provider.
type ClaimRequest struct {
	Address        string
	Network        domain.Network
	Points         int64
	IdempotencyKey string
}

// ClaimResult is a provider's answer to a claim.
type ClaimResult struct {
	Success       bool
	ClaimedAmount int64
	TxReference   string
	Message       string
}

// Provider executes claims.
type Provider interface {
	Claim(ctx context.Context, req ClaimRequest) (ClaimResult, error)
}
