package sqlite_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rate-engine/factory"
	"github.com/warp/rate-engine/legacy"
	"github.com/warp/rate-engine/pricing"
	"github.com/warp/rate-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seasideDoc() factory.CatalogJSON {
	ref := d("100")
	return factory.CatalogJSON{
		Property: factory.PropertyJSON{ID: "seaside", Name: "Seaside", ReferenceBaseRate: &ref},
		RoomTypes: []factory.RoomTypeJSON{
			{ID: "std", Name: "Standard", BaseRate: d("85")},
			{ID: "dlx", Name: "Deluxe", PricingMethod: "index", RoomIndex: d("1.2")},
		},
		Seasons: []factory.SeasonJSON{
			{ID: "high", Name: "High", StartDate: "2025-07-01", EndDate: "2025-08-31", SeasonIndex: d("1.3")},
			{ID: "low", Name: "Low", StartDate: "2025-01-01", EndDate: "2025-03-31"},
		},
		Channels:  []factory.ChannelJSON{{ID: "ota", Name: "OTA", CommissionPercent: d("18")}},
		RatePlans: []factory.RatePlanJSON{{ID: "bb", Name: "B&B", MealSupplement: d("6")}},
		RateModifiers: []factory.RateModifierJSON{
			{ID: "genius", Channel: "ota", Name: "Genius", DiscountPercent: d("10")},
		},
	}
}

// =============================================================================
// CATALOGS
// =============================================================================

func TestStore_SaveCatalog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bundle, err := s.SaveCatalog(ctx, seasideDoc())
	require.NoError(t, err)
	assert.Len(t, bundle.Catalog.RoomTypes, 2)

	cat, err := s.Catalog(ctx, "seaside")
	require.NoError(t, err)
	dlx, err := cat.RoomType("dlx")
	require.NoError(t, err)
	rate, err := cat.Property.BaseRateFor(dlx)
	require.NoError(t, err)
	assert.Equal(t, "120.00", pricing.Money(rate))

	// Rate modifiers ride along with the document.
	mod, err := s.GetRateModifier(ctx, "genius")
	require.NoError(t, err)
	assert.Equal(t, pricing.ChannelID("ota"), mod.ChannelID)
	assert.Equal(t, pricing.PropertyID("seaside"), mod.PropertyID)
	assert.True(t, mod.Active)
	assert.True(t, mod.DiscountPercent.Equal(d("10")))
}

func TestStore_SaveCatalog_BumpsVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveCatalog(ctx, seasideDoc())
	require.NoError(t, err)
	doc := seasideDoc()
	doc.Property.Name = "Seaside Resort"
	_, err = s.SaveCatalog(ctx, doc)
	require.NoError(t, err)

	rec, err := s.GetCatalogRecord(ctx, "seaside")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Version)
	assert.Equal(t, "Seaside Resort", rec.Name)

	cat, err := s.Catalog(ctx, "seaside")
	require.NoError(t, err)
	assert.Equal(t, "Seaside Resort", cat.Property.Name, "cache is replaced on save")
}

func TestStore_SaveCatalog_RejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := seasideDoc()
	doc.Property.ReferenceBaseRate = nil

	_, err := s.SaveCatalog(ctx, doc)
	assert.ErrorIs(t, err, pricing.ErrMissingReference)

	_, err = s.Catalog(ctx, "seaside")
	assert.True(t, pricing.IsNotFound(err))
}

func TestStore_CatalogSurvivesReparse(t *testing.T) {
	// GIVEN: A document stored by one Store
	// WHEN: A second Store on the same file reads it
	// THEN: The document parses back into an equivalent catalog

	path := t.TempDir() + "/rates.db"
	first, err := sqlite.New(path)
	require.NoError(t, err)
	_, err = first.SaveCatalog(context.Background(), seasideDoc())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	cat, err := second.Catalog(context.Background(), "seaside")
	require.NoError(t, err)
	high, err := cat.Season("high")
	require.NoError(t, err)
	assert.True(t, high.Index.Equal(d("1.3")))
}

func TestStore_DeleteCatalog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveCatalog(ctx, seasideDoc())
	require.NoError(t, err)
	require.NoError(t, s.DeleteCatalog(ctx, "seaside"))

	_, err = s.Catalog(ctx, "seaside")
	assert.True(t, pricing.IsNotFound(err))
	assert.True(t, pricing.IsNotFound(s.DeleteCatalog(ctx, "seaside")))
}

// =============================================================================
// SEASON OVERRIDES
// =============================================================================

func TestStore_OverrideLifecycle(t *testing.T) {
	// GIVEN: Genius at 10%, customized to 15% in high season
	// WHEN: The base moves to 12%
	// THEN: High keeps 15%, low follows to 12%

	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.SaveCatalog(ctx, seasideDoc())
	require.NoError(t, err)
	r := legacy.NewResolver(s)

	created, err := r.EnsureForModifier(ctx, "genius", []pricing.SeasonID{"high", "low"})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	_, err = r.Customize(ctx, "genius", "high", d("15"), "peak demand")
	require.NoError(t, err)

	changed, err := r.ChangeBase(ctx, "genius", d("12"))
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	rows, err := s.ListOverrides(ctx, "genius")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, pricing.SeasonID("high"), rows[0].SeasonID)
	assert.True(t, rows[0].DiscountPercent.Equal(d("15")))
	assert.True(t, rows[0].IsCustomized)
	assert.Equal(t, "peak demand", rows[0].Notes)
	assert.True(t, rows[1].DiscountPercent.Equal(d("12")))
	assert.False(t, rows[1].IsCustomized)

	rec, err := r.Reset(ctx, "genius", "high")
	require.NoError(t, err)
	assert.True(t, rec.DiscountPercent.Equal(d("12")))
	assert.False(t, rec.IsCustomized)
}

func TestStore_SaveCatalog_ResyncsChangedBase(t *testing.T) {
	// GIVEN: Genius at 10% with rows for both seasons, low customized to 15%
	// WHEN: The catalog is saved again with Genius at 12%
	// THEN: High follows to 12%, low keeps 15%

	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.SaveCatalog(ctx, seasideDoc())
	require.NoError(t, err)
	r := legacy.NewResolver(s)

	_, err = r.GetOrCreate(ctx, "genius", "high")
	require.NoError(t, err)
	_, err = r.Customize(ctx, "genius", "low", d("15"), "")
	require.NoError(t, err)

	doc := seasideDoc()
	doc.RateModifiers[0].DiscountPercent = d("12")
	_, err = s.SaveCatalog(ctx, doc)
	require.NoError(t, err)

	high, err := r.DiscountFor(ctx, "genius", "high")
	require.NoError(t, err)
	assert.True(t, high.Equal(d("12")), "got %s", high)

	low, err := r.GetOrCreate(ctx, "genius", "low")
	require.NoError(t, err)
	assert.True(t, low.DiscountPercent.Equal(d("15")))
	assert.True(t, low.IsCustomized)

	// Saving the same base again changes nothing.
	_, err = s.SaveCatalog(ctx, doc)
	require.NoError(t, err)
	high, err = r.DiscountFor(ctx, "genius", "high")
	require.NoError(t, err)
	assert.True(t, high.Equal(d("12")))
}

func TestStore_SaveCatalog_RateModifierOwnedByOtherProperty(t *testing.T) {
	// GIVEN: "seaside" owns the genius rate modifier
	// WHEN: Another property saves a catalog declaring genius
	// THEN: The save fails and seaside's rate modifier is unchanged

	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.SaveCatalog(ctx, seasideDoc())
	require.NoError(t, err)

	other := seasideDoc()
	other.Property.ID = "harbour"
	other.RateModifiers[0].DiscountPercent = d("25")
	_, err = s.SaveCatalog(ctx, other)
	assert.ErrorIs(t, err, legacy.ErrRateModifierConflict)

	mod, err := s.GetRateModifier(ctx, "genius")
	require.NoError(t, err)
	assert.Equal(t, pricing.PropertyID("seaside"), mod.PropertyID)
	assert.True(t, mod.DiscountPercent.Equal(d("10")))

	_, err = s.Catalog(ctx, "harbour")
	assert.True(t, pricing.IsNotFound(err), "rejected catalog is not stored")
}

func TestStore_UpdateOverride_UnknownModifier(t *testing.T) {
	s := newTestStore(t)
	r := legacy.NewResolver(s)

	_, err := r.DiscountFor(context.Background(), "ghost", "high")
	assert.ErrorIs(t, err, legacy.ErrRateModifierNotFound)
	assert.True(t, pricing.IsNotFound(err))
}

func TestStore_UpdateOverride_ConcurrentSinglePair(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRateModifier(ctx, legacy.RateModifier{
		ID: "genius", ChannelID: "ota", Name: "Genius", Kind: "member", DiscountPercent: d("10"), Active: true,
	}))
	r := legacy.NewResolver(s)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.DiscountFor(ctx, "genius", "high")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rows, err := s.ListOverrides(ctx, "genius")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestStore_ListRateModifiers_Ordering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, m := range []legacy.RateModifier{
		{ID: "c", ChannelID: "ota", Name: "Zeta", SortOrder: 1, DiscountPercent: d("1")},
		{ID: "a", ChannelID: "ota", Name: "Alpha", SortOrder: 1, DiscountPercent: d("1")},
		{ID: "b", ChannelID: "direct", Name: "Mobile", SortOrder: 9, DiscountPercent: d("1")},
	} {
		require.NoError(t, s.SaveRateModifier(ctx, m))
	}

	mods, err := s.ListRateModifiers(ctx)
	require.NoError(t, err)
	require.Len(t, mods, 3)
	assert.Equal(t, []pricing.ModifierID{"b", "a", "c"}, []pricing.ModifierID{mods[0].ID, mods[1].ID, mods[2].ID})
}

// =============================================================================
// QUOTES
// =============================================================================

func TestStore_Quotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveQuote(ctx, sqlite.QuoteRecord{
		PropertyID:    "seaside",
		Kind:          sqlite.QuoteStacking,
		ContextJSON:   `{"season_id":"high"}`,
		BreakdownJSON: `{"final_rate":"199.06"}`,
		FinalRate:     d("199.06"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	got, err := s.GetQuote(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, sqlite.QuoteStacking, got.Kind)
	assert.Equal(t, `{"final_rate":"199.06"}`, got.BreakdownJSON)
	assert.True(t, got.FinalRate.Equal(d("199.06")))

	list, err := s.ListQuotes(ctx, "seaside", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.GetQuote(ctx, "missing")
	assert.True(t, pricing.IsNotFound(err))
}
