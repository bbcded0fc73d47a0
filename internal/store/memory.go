// Package store provides the persistence implementations behind the link
// and analytics contracts: PostgreSQL for durability, an in-memory variant
// for tests and local development, and a Redis decorator for cached reads.
package store

import (
	"context"
	"sync"

	"github.com/grafheim/linklytics/internal/analytics"
	"github.com/grafheim/linklytics/internal/link"
)

// MemoryLinkStore is an in-memory implementation of link.Repository.
type MemoryLinkStore struct {
	mu     sync.RWMutex
	byID   map[string]*link.Link
	byCode map[string]*link.Link
}

// NewMemoryLinkStore creates a new in-memory link store.
func NewMemoryLinkStore() *MemoryLinkStore {
	return &MemoryLinkStore{
		byID:   make(map[string]*link.Link),
		byCode: make(map[string]*link.Link),
	}
}

func (m *MemoryLinkStore) Save(_ context.Context, l *link.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *l
	m.byID[l.ID] = &clone
	m.byCode[l.ShortCode] = &clone

	return nil
}

func (m *MemoryLinkStore) FindByIDOrCode(_ context.Context, code string) (*link.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if l, ok := m.byID[code]; ok {
		clone := *l
		return &clone, nil
	}

	if l, ok := m.byCode[code]; ok {
		clone := *l
		return &clone, nil
	}

	return nil, link.ErrNotFound
}

// MemoryClickStore is an in-memory, append-only implementation of
// analytics.Store. Appends are safe from concurrent redirects.
type MemoryClickStore struct {
	mu     sync.RWMutex
	events []analytics.ClickEvent
}

// NewMemoryClickStore creates a new in-memory click store.
func NewMemoryClickStore() *MemoryClickStore {
	return &MemoryClickStore{}
}

func (m *MemoryClickStore) AppendClick(_ context.Context, event *analytics.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, *event)

	return nil
}

func (m *MemoryClickStore) ListClicks(_ context.Context, filter analytics.Filter) ([]analytics.ClickEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []analytics.ClickEvent

	for _, e := range m.events {
		if filter.LinkID != "" && e.LinkID != filter.LinkID {
			continue
		}

		if !filter.From.IsZero() && e.OccurredAt.Before(filter.From) {
			continue
		}

		if !filter.To.IsZero() && !e.OccurredAt.Before(filter.To) {
			continue
		}

		out = append(out, e)
	}

	return out, nil
}

// Compile-time checks.
var (
	_ link.Repository = (*MemoryLinkStore)(nil)
	_ analytics.Store = (*MemoryClickStore)(nil)
)
