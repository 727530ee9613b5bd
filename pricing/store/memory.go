// Package store provides in-memory pricing.CatalogProvider implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/rate-engine/pricing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	catalogs map[pricing.PropertyID]*pricing.Catalog
}

func NewMemory() *Memory {
	return &Memory{catalogs: make(map[pricing.PropertyID]*pricing.Catalog)}
}

// Put validates and stores a catalog, replacing any previous snapshot. The
// store keeps the pointer; callers must not mutate the catalog afterwards.
func (m *Memory) Put(_ context.Context, cat *pricing.Catalog) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs[cat.Property.ID] = cat
	return nil
}

// Catalog returns the current snapshot for a property.
func (m *Memory) Catalog(_ context.Context, id pricing.PropertyID) (*pricing.Catalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cat, ok := m.catalogs[id]
	if !ok {
		return nil, fmt.Errorf("catalog for property %q: %w", id, pricing.ErrNotFound)
	}
	return cat, nil
}

var _ pricing.CatalogProvider = (*Memory)(nil)
