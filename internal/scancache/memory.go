package scancache

import (
	"container/list"
	"context"
	"sync"

	"zombie-scanner/internal/domain"
)

// Memory is an in-process LRU cache with TTL. Safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	cfg   Config
	items map[string]*list.Element
	order *list.List

	hits      int64
	misses    int64
	evictions int64
}

type memEntry struct {
	address string
	entry   Entry
}

// NewMemory creates an in-memory cache.
func NewMemory(cfg Config) *Memory {
	cfg = cfg.withDefaults()
	return &Memory{
		cfg:   cfg,
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Get returns cached assets for address.
func (m *Memory) Get(_ context.Context, address string) ([]domain.Asset, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[address]
	if !ok {
		m.misses++
		return nil, false, nil
	}

	e := elem.Value.(*memEntry)
	if !e.entry.valid(m.cfg.Network, m.cfg.TTL, m.cfg.Now()) {
		m.removeElement(elem)
		m.evictions++
		m.misses++
		return nil, false, nil
	}

	m.order.MoveToFront(elem)
	m.hits++
	return cloneAssets(e.entry.Assets), true, nil
}

// Put stores assets for address, evicting the least recently used entry at capacity.
func (m *Memory) Put(_ context.Context, address string, assets []domain.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := Entry{
		Assets:     cloneAssets(assets),
		CapturedAt: m.cfg.Now().UnixMilli(),
		Network:    m.cfg.Network,
	}

	if elem, ok := m.items[address]; ok {
		m.order.MoveToFront(elem)
		elem.Value.(*memEntry).entry = entry
		return nil
	}

	if m.order.Len() >= m.cfg.Capacity {
		if oldest := m.order.Back(); oldest != nil {
			m.removeElement(oldest)
			m.evictions++
		}
	}

	m.items[address] = m.order.PushFront(&memEntry{address: address, entry: entry})
	return nil
}

// Delete removes the entry for address.
func (m *Memory) Delete(_ context.Context, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[address]; ok {
		m.removeElement(elem)
	}
	return nil
}

// Sweep removes every entry that is expired or on another network.
func (m *Memory) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.cfg.Now()
	removed := 0
	for elem := m.order.Back(); elem != nil; {
		prev := elem.Prev()
		if !elem.Value.(*memEntry).entry.valid(m.cfg.Network, m.cfg.TTL, now) {
			m.removeElement(elem)
			removed++
		}
		elem = prev
	}
	m.evictions += int64(removed)
	return removed, nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// Stats returns cumulative counters.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Hits:      m.hits,
		Misses:    m.misses,
		Evictions: m.evictions,
		Size:      m.order.Len(),
	}
}

func (m *Memory) removeElement(elem *list.Element) {
	m.order.Remove(elem)
	delete(m.items, elem.Value.(*memEntry).address)
}

var _ Cache = (*Memory)(nil)
