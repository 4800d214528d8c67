package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/storage"
)

// SessionStore implements storage.SessionStore using PostgreSQL.
type SessionStore struct {
	pool *Pool
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(pool *Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SessionStore = (*SessionStore)(nil)

const sessionColumns = `
	address, network, first_connected_at, last_connected_at, last_scan_at, connect_count
`

// RecordConnect upserts the session. first_connected_at is only written on insert.
func (s *SessionStore) RecordConnect(ctx context.Context, address string, network domain.Network, at int64) (*domain.WalletSession, error) {
	if address == "" || network == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO wallet_sessions (address, network, first_connected_at, last_connected_at, connect_count)
		VALUES ($1, $2, $3, $3, 1)
		ON CONFLICT (address, network) DO UPDATE
		SET last_connected_at = GREATEST(wallet_sessions.last_connected_at, EXCLUDED.last_connected_at),
		    connect_count = wallet_sessions.connect_count + 1
		RETURNING ` + sessionColumns

	sess, err := scanSession(s.pool.QueryRow(ctx, query, address, string(network), at))
	if err != nil {
		return nil, fmt.Errorf("record connect: %w", err)
	}
	return sess, nil
}

// Get retrieves a session. Returns ErrNotFound if not exists.
func (s *SessionStore) Get(ctx context.Context, address string, network domain.Network) (*domain.WalletSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM wallet_sessions
		WHERE address = $1 AND network = $2
	`

	sess, err := scanSession(s.pool.QueryRow(ctx, query, address, string(network)))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// MarkScanned sets last_scan_at. Returns ErrNotFound if the session does not exist.
func (s *SessionStore) MarkScanned(ctx context.Context, address string, network domain.Network, at int64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE wallet_sessions
		SET last_scan_at = $3
		WHERE address = $1 AND network = $2
	`, address, string(network), at)
	if err != nil {
		return fmt.Errorf("mark scanned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListConnectedSince retrieves sessions last connected at or after since.
func (s *SessionStore) ListConnectedSince(ctx context.Context, network domain.Network, since int64) ([]*domain.WalletSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM wallet_sessions
		WHERE network = $1 AND last_connected_at >= $2
		ORDER BY last_connected_at DESC, address ASC
	`

	rows, err := s.pool.Query(ctx, query, string(network), since)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var result []*domain.WalletSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		result = append(result, sess)
	}
	return result, rows.Err()
}

func scanSession(row pgx.Row) (*domain.WalletSession, error) {
	var (
		sess    domain.WalletSession
		network string
	)
	err := row.Scan(
		&sess.Address, &network, &sess.FirstConnectedAt, &sess.LastConnectedAt,
		&sess.LastScanAt, &sess.ConnectCount,
	)
	if err != nil {
		return nil, err
	}
	sess.Network = domain.Network(network)
	return &sess, nil
}
