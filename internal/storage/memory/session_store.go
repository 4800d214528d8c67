package memory

import (
	"context"
	"sort"
	"sync"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/storage"
)

type sessionKey struct {
	address string
	network domain.Network
}

// SessionStore is an in-memory implementation of storage.SessionStore.
type SessionStore struct {
	mu   sync.RWMutex
	data map[sessionKey]*domain.WalletSession
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		data: make(map[sessionKey]*domain.WalletSession),
	}
}

// Compile-time interface check.
var _ storage.SessionStore = (*SessionStore)(nil)

// RecordConnect upserts the session, preserving the first connection timestamp.
func (s *SessionStore) RecordConnect(_ context.Context, address string, network domain.Network, at int64) (*domain.WalletSession, error) {
	if address == "" || network == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey{address, network}
	sess, exists := s.data[key]
	if !exists {
		sess = &domain.WalletSession{
			Address:          address,
			Network:          network,
			FirstConnectedAt: at,
		}
		s.data[key] = sess
	}
	if at > sess.LastConnectedAt {
		sess.LastConnectedAt = at
	}
	sess.ConnectCount++

	return copySession(sess), nil
}

// Get retrieves a session. Returns ErrNotFound if not exists.
func (s *SessionStore) Get(_ context.Context, address string, network domain.Network) (*domain.WalletSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.data[sessionKey{address, network}]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copySession(sess), nil
}

// MarkScanned sets the last scan timestamp.
func (s *SessionStore) MarkScanned(_ context.Context, address string, network domain.Network, at int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.data[sessionKey{address, network}]
	if !exists {
		return storage.ErrNotFound
	}
	sess.LastScanAt = &at
	return nil
}

// ListConnectedSince retrieves sessions last connected at or after since.
func (s *SessionStore) ListConnectedSince(_ context.Context, network domain.Network, since int64) ([]*domain.WalletSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WalletSession
	for _, sess := range s.data {
		if sess.Network == network && sess.LastConnectedAt >= since {
			result = append(result, copySession(sess))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].LastConnectedAt != result[j].LastConnectedAt {
			return result[i].LastConnectedAt > result[j].LastConnectedAt
		}
		return result[i].Address < result[j].Address
	})

	return result, nil
}

func copySession(sess *domain.WalletSession) *domain.WalletSession {
	out := *sess
	if sess.LastScanAt != nil {
		at := *sess.LastScanAt
		out.LastScanAt = &at
	}
	return &out
}
