package memory

import (
	"context"
	"sort"
	"sync"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/storage"
)

// ClaimStore is an in-memory implementation of storage.ClaimStore.
type ClaimStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.ClaimRecord // keyed by claim_id
	byIdem map[string]string              // idempotency_key -> successful claim_id
}

// NewClaimStore creates a new in-memory claim store.
func NewClaimStore() *ClaimStore {
	return &ClaimStore{
		data:   make(map[string]*domain.ClaimRecord),
		byIdem: make(map[string]string),
	}
}

// Compile-time interface check.
var _ storage.ClaimStore = (*ClaimStore)(nil)

// Insert adds a claim. Returns ErrDuplicateKey if claim_id exists or a
// successful claim already holds the idempotency_key.
func (s *ClaimStore) Insert(_ context.Context, c *domain.ClaimRecord) error {
	if c == nil || c.ClaimID == "" || c.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.ClaimID]; exists {
		return storage.ErrDuplicateKey
	}
	if c.IdempotencyKey != "" && c.Status == domain.ClaimStatusSuccess {
		if _, exists := s.byIdem[c.IdempotencyKey]; exists {
			return storage.ErrDuplicateKey
		}
		s.byIdem[c.IdempotencyKey] = c.ClaimID
	}

	s.data[c.ClaimID] = copyClaim(c)
	return nil
}

// GetByID retrieves a claim by its ID. Returns ErrNotFound if not exists.
func (s *ClaimStore) GetByID(_ context.Context, claimID string) (*domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[claimID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyClaim(c), nil
}

// GetByAddress retrieves all claims for a wallet, ordered by created_at ASC.
func (s *ClaimStore) GetByAddress(_ context.Context, address string, network domain.Network) ([]*domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ClaimRecord
	for _, c := range s.data {
		if c.Address == address && c.Network == network {
			result = append(result, copyClaim(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ClaimID < result[j].ClaimID
	})

	return result, nil
}

// SumClaimedPoints returns the total points of successful claims for a wallet.
func (s *ClaimStore) SumClaimedPoints(_ context.Context, address string, network domain.Network) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, c := range s.data {
		if c.Address == address && c.Network == network && c.Status == domain.ClaimStatusSuccess {
			total += c.Points
		}
	}
	return total, nil
}

func copyClaim(c *domain.ClaimRecord) *domain.ClaimRecord {
	out := *c
	if c.ErrorMessage != nil {
		msg := *c.ErrorMessage
		out.ErrorMessage = &msg
	}
	return &out
}
