package domain

// ScanSnapshot is an append-only analytics row written after each successful scan.
// Corresponds to scan_snapshots table in ClickHouse.
type ScanSnapshot struct {
	Address      string
	Network      Network
	AssetCount   int
	DustCount    int
	DormantCount int
	NFTCount     int
	DeadCount    int
	PointsPerDay int64
	DurationMs   int64
	FromCache    bool
	CapturedAt   int64 // ms
}

// NewScanSnapshot builds a snapshot from a scan result.
func NewScanSnapshot(address string, network Network, assets []Asset, pointsPerDay, durationMs, capturedAt int64, fromCache bool) *ScanSnapshot {
	counts := CountByCategory(assets)
	return &ScanSnapshot{
		Address:      address,
		Network:      network,
		AssetCount:   len(assets),
		DustCount:    counts[CategoryDustToken],
		DormantCount: counts[CategoryDormantToken],
		NFTCount:     counts[CategoryAbandonedNFT],
		DeadCount:    counts[CategoryDeadProject],
		PointsPerDay: pointsPerDay,
		DurationMs:   durationMs,
		FromCache:    fromCache,
		CapturedAt:   capturedAt,
	}
}
