package memory

import (
	"context"
	"sort"
	"sync"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/storage"
)

// ScanSnapshotStore is an in-memory implementation of storage.ScanSnapshotStore.
type ScanSnapshotStore struct {
	mu   sync.RWMutex
	data []*domain.ScanSnapshot
}

// NewScanSnapshotStore creates a new in-memory snapshot store.
func NewScanSnapshotStore() *ScanSnapshotStore {
	return &ScanSnapshotStore{}
}

// Compile-time interface check.
var _ storage.ScanSnapshotStore = (*ScanSnapshotStore)(nil)

// Insert appends a snapshot.
func (s *ScanSnapshotStore) Insert(_ context.Context, snap *domain.ScanSnapshot) error {
	if snap == nil || snap.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapCopy := *snap
	s.data = append(s.data, &snapCopy)
	return nil
}

// InsertBulk appends multiple snapshots. Fails the whole batch on invalid input.
func (s *ScanSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.ScanSnapshot) error {
	for _, snap := range snapshots {
		if snap == nil || snap.Address == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snapshots {
		snapCopy := *snap
		s.data = append(s.data, &snapCopy)
	}
	return nil
}

// GetByAddress retrieves snapshots for a wallet, ordered by captured_at ASC.
func (s *ScanSnapshotStore) GetByAddress(_ context.Context, address string, network domain.Network) ([]*domain.ScanSnapshot, error) {
	return s.filter(func(snap *domain.ScanSnapshot) bool {
		return snap.Address == address && snap.Network == network
	}), nil
}

// GetByTimeRange retrieves snapshots captured within [start, end] (inclusive).
func (s *ScanSnapshotStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.ScanSnapshot, error) {
	return s.filter(func(snap *domain.ScanSnapshot) bool {
		return snap.CapturedAt >= start && snap.CapturedAt <= end
	}), nil
}

func (s *ScanSnapshotStore) filter(keep func(*domain.ScanSnapshot) bool) []*domain.ScanSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ScanSnapshot
	for _, snap := range s.data {
		if keep(snap) {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CapturedAt < result[j].CapturedAt
	})
	return result
}
