package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rate-engine/pricing"
)

func TestMemory_PutAndCatalog(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	cat := &pricing.Catalog{
		Property:  pricing.Property{ID: "p1", ReferenceBaseRate: decimal.NewNullDecimal(decimal.NewFromInt(100))},
		RoomTypes: []pricing.RoomType{{ID: "dlx", PricingMethod: pricing.PricingIndex, RoomIndex: decimal.NewFromInt(2)}},
	}
	require.NoError(t, m.Put(ctx, cat))

	got, err := m.Catalog(ctx, "p1")
	require.NoError(t, err)
	assert.Same(t, cat, got)

	_, err = m.Catalog(ctx, "p2")
	assert.True(t, pricing.IsNotFound(err))
}

func TestMemory_PutRejectsInvalidCatalog(t *testing.T) {
	m := NewMemory()
	cat := &pricing.Catalog{
		Property:  pricing.Property{ID: "p1"},
		RoomTypes: []pricing.RoomType{{ID: "dlx", PricingMethod: pricing.PricingIndex}},
	}

	err := m.Put(context.Background(), cat)

	assert.ErrorIs(t, err, pricing.ErrMissingReference)
	_, err = m.Catalog(context.Background(), "p1")
	assert.True(t, pricing.IsNotFound(err))
}
