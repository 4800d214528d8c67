package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/storage"
)

// ScanSnapshotStore implements storage.ScanSnapshotStore using ClickHouse.
type ScanSnapshotStore struct {
	conn *Conn
}

// NewScanSnapshotStore creates a new ScanSnapshotStore.
func NewScanSnapshotStore(conn *Conn) *ScanSnapshotStore {
	return &ScanSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScanSnapshotStore = (*ScanSnapshotStore)(nil)

const snapshotColumns = `
	address, network, asset_count, dust_count, dormant_count, nft_count, dead_count,
	points_per_day, duration_ms, from_cache, captured_at
`

// Insert appends a snapshot.
func (s *ScanSnapshotStore) Insert(ctx context.Context, snap *domain.ScanSnapshot) error {
	if snap == nil || snap.Address == "" {
		return storage.ErrInvalidInput
	}
	return s.InsertBulk(ctx, []*domain.ScanSnapshot{snap})
}

// InsertBulk appends snapshots in a single batch.
func (s *ScanSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.ScanSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	for _, snap := range snapshots {
		if snap == nil || snap.Address == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO scan_snapshots ("+snapshotColumns+")")
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.Address, string(snap.Network),
			uint32(snap.AssetCount), uint32(snap.DustCount), uint32(snap.DormantCount),
			uint32(snap.NFTCount), uint32(snap.DeadCount),
			snap.PointsPerDay, snap.DurationMs, snap.FromCache, snap.CapturedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByAddress retrieves snapshots for a wallet, ordered by captured_at ASC.
func (s *ScanSnapshotStore) GetByAddress(ctx context.Context, address string, network domain.Network) ([]*domain.ScanSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM scan_snapshots
		WHERE network = ? AND address = ?
		ORDER BY captured_at ASC
	`

	rows, err := s.conn.Query(ctx, query, string(network), address)
	if err != nil {
		return nil, fmt.Errorf("query by address: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByTimeRange retrieves snapshots captured within [start, end] (inclusive).
func (s *ScanSnapshotStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ScanSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM scan_snapshots
		WHERE captured_at >= ? AND captured_at <= ?
		ORDER BY captured_at ASC, address ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

func scanSnapshots(rows driver.Rows) ([]*domain.ScanSnapshot, error) {
	var result []*domain.ScanSnapshot
	for rows.Next() {
		var (
			snap                           domain.ScanSnapshot
			network                        string
			assets, dust, dormant, nft, dd uint32
		)
		err := rows.Scan(
			&snap.Address, &network,
			&assets, &dust, &dormant, &nft, &dd,
			&snap.PointsPerDay, &snap.DurationMs, &snap.FromCache, &snap.CapturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		snap.Network = domain.Network(network)
		snap.AssetCount = int(assets)
		snap.DustCount = int(dust)
		snap.DormantCount = int(dormant)
		snap.NFTCount = int(nft)
		snap.DeadCount = int(dd)
		result = append(result, &snap)
	}
	return result, rows.Err()
}
