// Package store provides in-memory legacy.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/rate-engine/legacy"
	"github.com/warp/rate-engine/pricing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.Mutex
	modifiers map[pricing.ModifierID]legacy.RateModifier
	overrides map[key]legacy.OverrideRecord
	now       func() time.Time
}

type key struct {
	ModifierID pricing.ModifierID
	SeasonID   pricing.SeasonID
}

func NewMemory() *Memory {
	return &Memory{
		modifiers: make(map[pricing.ModifierID]legacy.RateModifier),
		overrides: make(map[key]legacy.OverrideRecord),
		now:       time.Now,
	}
}

// SaveRateModifier upserts mod unless its ID belongs to another property.
func (m *Memory) SaveRateModifier(_ context.Context, mod legacy.RateModifier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.modifiers[mod.ID]; ok {
		if err := mod.CheckOwner(prev); err != nil {
			return err
		}
	}
	m.modifiers[mod.ID] = mod
	return nil
}

func (m *Memory) GetRateModifier(_ context.Context, id pricing.ModifierID) (legacy.RateModifier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mod, ok := m.modifiers[id]
	if !ok {
		return legacy.RateModifier{}, legacy.ErrRateModifierNotFound
	}
	return mod, nil
}

// ListRateModifiers returns modifiers by channel, sort order, then name.
func (m *Memory) ListRateModifiers(_ context.Context) ([]legacy.RateModifier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]legacy.RateModifier, 0, len(m.modifiers))
	for _, mod := range m.modifiers {
		out = append(out, mod)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ChannelID != b.ChannelID {
			return a.ChannelID < b.ChannelID
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Name < b.Name
	})
	return out, nil
}

// UpdateOverride holds the store lock across read, fn and write.
func (m *Memory) UpdateOverride(_ context.Context, modifier pricing.ModifierID, season pricing.SeasonID, fn legacy.UpdateFunc) (legacy.OverrideRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mod, ok := m.modifiers[modifier]
	if !ok {
		return legacy.OverrideRecord{}, legacy.ErrRateModifierNotFound
	}
	k := key{ModifierID: modifier, SeasonID: season}
	cur, exists := m.overrides[k]

	next, err := fn(mod, cur, exists)
	if err != nil {
		return legacy.OverrideRecord{}, err
	}
	if exists && next == cur {
		return cur, nil
	}
	if next.ID == "" {
		next.ID = uuid.NewString()
	}
	next.ModifierID, next.SeasonID = modifier, season
	next.UpdatedAt = m.now()
	m.overrides[k] = next
	return next, nil
}

func (m *Memory) ResyncNonCustomized(_ context.Context, modifier pricing.ModifierID, newBase decimal.Decimal) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mod, ok := m.modifiers[modifier]
	if !ok {
		return 0, legacy.ErrRateModifierNotFound
	}
	mod.DiscountPercent = newBase
	m.modifiers[modifier] = mod

	changed := 0
	for k, rec := range m.overrides {
		if k.ModifierID != modifier {
			continue
		}
		if next, ok := rec.Synced(newBase); ok {
			next.UpdatedAt = m.now()
			m.overrides[k] = next
			changed++
		}
	}
	return changed, nil
}

func (m *Memory) ListOverrides(_ context.Context, modifier pricing.ModifierID) ([]legacy.OverrideRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []legacy.OverrideRecord
	for k, rec := range m.overrides {
		if k.ModifierID == modifier {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeasonID < out[j].SeasonID })
	return out, nil
}
