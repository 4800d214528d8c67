package storage

import (
	"context"

	"zombie-scanner/internal/domain"
)

// SessionStore provides access to wallet_sessions storage.
type SessionStore interface {
	// RecordConnect upserts the session for (address, network). The first
	// connection timestamp is set on insert and never moved afterwards.
	// Returns the session as stored.
	RecordConnect(ctx context.Context, address string, network domain.Network, at int64) (*domain.WalletSession, error)

	// Get retrieves a session. Returns ErrNotFound if not exists.
	Get(ctx context.Context, address string, network domain.Network) (*domain.WalletSession, error)

	// MarkScanned sets last_scan_at. Returns ErrNotFound if the session does not exist.
	MarkScanned(ctx context.Context, address string, network domain.Network, at int64) error

	// ListConnectedSince retrieves sessions last connected at or after since,
	// ordered by last_connected_at DESC.
	ListConnectedSince(ctx context.Context, network domain.Network, since int64) ([]*domain.WalletSession, error)
}

// ClaimStore provides access to claims storage.
type ClaimStore interface {
	// Insert adds a claim. Returns ErrDuplicateKey if claim_id exists or a
	// successful claim already holds the idempotency_key.
	Insert(ctx context.Context, c *domain.ClaimRecord) error

	// GetByID retrieves a claim by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, claimID string) (*domain.ClaimRecord, error)

	// GetByAddress retrieves all claims for a wallet, ordered by created_at ASC.
	GetByAddress(ctx context.Context, address string, network domain.Network) ([]*domain.ClaimRecord, error)

	// SumClaimedPoints returns the total points of successful claims for a wallet.
	SumClaimedPoints(ctx context.Context, address string, network domain.Network) (int64, error)
}

// ScanSnapshotStore provides access to scan_snapshots storage.
type ScanSnapshotStore interface {
	// Insert appends a snapshot.
	Insert(ctx context.Context, s *domain.ScanSnapshot) error

	// InsertBulk appends multiple snapshots.
	InsertBulk(ctx context.Context, snapshots []*domain.ScanSnapshot) error

	// GetByAddress retrieves snapshots for a wallet, ordered by captured_at ASC.
	GetByAddress(ctx context.Context, address string, network domain.Network) ([]*domain.ScanSnapshot, error)

	// GetByTimeRange retrieves snapshots captured within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ScanSnapshot, error)
}
