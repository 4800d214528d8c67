package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/storage"
)

// ClaimStore implements storage.ClaimStore using PostgreSQL.
type ClaimStore struct {
	pool *Pool
}

// NewClaimStore creates a new ClaimStore.
func NewClaimStore(pool *Pool) *ClaimStore {
	return &ClaimStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClaimStore = (*ClaimStore)(nil)

const claimColumns = `
	claim_id, idempotency_key, address, network, points, claimed_amount,
	tx_reference, provider, status, error_message, created_at
`

// Insert adds a claim. Returns ErrDuplicateKey if claim_id or idempotency_key exists.
func (s *ClaimStore) Insert(ctx context.Context, c *domain.ClaimRecord) error {
	if c == nil || c.ClaimID == "" || c.Address == "" {
		return storage.ErrInvalidInput
	}

	idem := c.IdempotencyKey
	if idem == "" {
		idem = c.ClaimID
	}

	query := `
		INSERT INTO claims (` + claimColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		c.ClaimID, idem, c.Address, string(c.Network), c.Points, c.ClaimedAmount,
		c.TxReference, string(c.Provider), string(c.Status), c.ErrorMessage, c.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

// GetByID retrieves a claim by its ID. Returns ErrNotFound if not exists.
func (s *ClaimStore) GetByID(ctx context.Context, claimID string) (*domain.ClaimRecord, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE claim_id = $1
	`

	c, err := scanClaim(s.pool.QueryRow(ctx, query, claimID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get claim by id: %w", err)
	}
	return c, nil
}

// GetByAddress retrieves all claims for a wallet, ordered by created_at ASC.
func (s *ClaimStore) GetByAddress(ctx context.Context, address string, network domain.Network) ([]*domain.ClaimRecord, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE address = $1 AND network = $2
		ORDER BY created_at ASC, claim_id ASC
	`

	rows, err := s.pool.Query(ctx, query, address, string(network))
	if err != nil {
		return nil, fmt.Errorf("get claims by address: %w", err)
	}
	defer rows.Close()

	var result []*domain.ClaimRecord
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// SumClaimedPoints returns the total points of successful claims for a wallet.
func (s *ClaimStore) SumClaimedPoints(ctx context.Context, address string, network domain.Network) (int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0)::BIGINT
		FROM claims
		WHERE address = $1 AND network = $2 AND status = $3
	`, address, string(network), string(domain.ClaimStatusSuccess)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum claimed points: %w", err)
	}
	return total, nil
}

func scanClaim(row pgx.Row) (*domain.ClaimRecord, error) {
	var (
		c                         domain.ClaimRecord
		network, provider, status string
	)
	err := row.Scan(
		&c.ClaimID, &c.IdempotencyKey, &c.Address, &network, &c.Points, &c.ClaimedAmount,
		&c.TxReference, &provider, &status, &c.ErrorMessage, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Network = domain.Network(network)
	c.Provider = domain.ClaimProvider(provider)
	c.Status = domain.ClaimStatus(status)
	return &c, nil
}
