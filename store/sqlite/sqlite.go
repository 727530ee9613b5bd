/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists everything the rate engine reads or edits between requests:
  catalog documents, channel rate modifiers, their per-season overrides and
  the history of issued quotes. In production the same patterns apply to
  PostgreSQL with minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  pricing.CatalogProvider: Catalog snapshots by property
  legacy.Store:            Rate modifiers and season overrides

KEY TABLES:
  catalogs:                  One catalog document per property (versioned)
  rate_modifiers:            Channel discounts with their base percent, owned
                             by one property
  season_modifier_overrides: One row per (modifier, season)
  quotes:                    Issued quotes with context and breakdown

OVERRIDE CONSISTENCY:
  UNIQUE(modifier_id, season_id) guarantees one row per pair. Every
  read-modify-write on a pair runs inside one SQL transaction under the
  store's write lock, so concurrent customize/reset/resync never lose updates.

RATE MODIFIER OWNERSHIP:
  Rate modifier IDs are global. The first property to save an ID owns it;
  saving the same ID from another property fails with
  legacy.ErrRateModifierConflict and leaves the owner's row untouched.

CATALOG CACHE:
  Parsed catalogs are cached per property and dropped on SaveCatalog. The
  engine treats a catalog as an immutable snapshot, so readers share it.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/rates.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  bundle, err := store.SaveCatalog(ctx, doc)
  resolver := legacy.NewResolver(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - factory/catalog.go: Catalog document schema
  - legacy/override.go: legacy.Store contract
  - pricing/store/memory.go, legacy/store/memory.go: In-memory implementations
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/rate-engine/factory"
	"github.com/warp/rate-engine/legacy"
	"github.com/warp/rate-engine/pricing"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex

	cacheMu sync.Mutex
	bundles map[pricing.PropertyID]*factory.Bundle
	factory *factory.CatalogFactory
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{
		db:      db,
		bundles: make(map[pricing.PropertyID]*factory.Bundle),
		factory: factory.NewCatalogFactory(),
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Catalog documents (one per property)
	CREATE TABLE IF NOT EXISTS catalogs (
		property_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Channel rate modifiers
	CREATE TABLE IF NOT EXISTS rate_modifiers (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL DEFAULT '',
		channel_id TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'standard',
		discount_percent TEXT NOT NULL,
		stackable INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rate_modifiers_channel
		ON rate_modifiers(channel_id, sort_order, name);

	-- Season-specific discounts for rate modifiers
	CREATE TABLE IF NOT EXISTS season_modifier_overrides (
		id TEXT PRIMARY KEY,
		modifier_id TEXT NOT NULL REFERENCES rate_modifiers(id) ON DELETE CASCADE,
		season_id TEXT NOT NULL,
		discount_percent TEXT NOT NULL,
		is_customized INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL,
		UNIQUE(modifier_id, season_id)
	);

	-- Issued quotes
	CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		context_json TEXT NOT NULL,
		breakdown_json TEXT NOT NULL,
		final_rate TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_property
		ON quotes(property_id, created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	// Databases created before rate modifiers carried their property.
	return s.addColumn("rate_modifiers", "property_id", "TEXT NOT NULL DEFAULT ''")
}

// addColumn adds column to table unless it already exists.
func (s *Store) addColumn(table, column, decl string) error {
	rows, err := s.db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl))
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// CATALOG STORE (pricing.CatalogProvider interface)
// =============================================================================

// CatalogRecord is a stored catalog document.
type CatalogRecord struct {
	PropertyID pricing.PropertyID
	Name       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SaveCatalog validates a catalog document and stores it. The document's rate
// modifiers are upserted in the same transaction; when one's base discount
// changed, its non-customized season rows follow it. Returns the parsed
// bundle.
func (s *Store) SaveCatalog(ctx context.Context, doc factory.CatalogJSON) (*factory.Bundle, error) {
	bundle, err := s.factory.FromJSON(doc)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	now := formatTime(time.Now())
	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO catalogs (property_id, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(property_id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = catalogs.version + 1,
			updated_at = excluded.updated_at
	`, doc.Property.ID, doc.Property.Name, string(raw), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save catalog: %w", err)
	}

	for _, m := range bundle.RateModifiers {
		prev, existed, err := s.saveRateModifier(ctx, sqlTx, m)
		if err != nil {
			return nil, err
		}
		if existed && !prev.DiscountPercent.Equal(m.DiscountPercent) {
			if _, err := resyncOverrides(ctx, sqlTx, m.ID, m.DiscountPercent, now); err != nil {
				return nil, err
			}
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.bundles[bundle.Catalog.Property.ID] = bundle
	s.cacheMu.Unlock()
	return bundle, nil
}

// GetCatalogRecord returns the stored document for a property.
func (s *Store) GetCatalogRecord(ctx context.Context, id pricing.PropertyID) (*CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r CatalogRecord
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT property_id, name, config_json, version, created_at, updated_at FROM catalogs WHERE property_id = ?",
		id,
	).Scan(&r.PropertyID, &r.Name, &r.ConfigJSON, &r.Version, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog for property %q: %w", id, pricing.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return &r, nil
}

// ListCatalogs returns every stored document ordered by property ID.
func (s *Store) ListCatalogs(ctx context.Context) ([]CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT property_id, name, config_json, version, created_at, updated_at FROM catalogs ORDER BY property_id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CatalogRecord
	for rows.Next() {
		var r CatalogRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&r.PropertyID, &r.Name, &r.ConfigJSON, &r.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTime(createdAt)
		r.UpdatedAt = parseTime(updatedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Bundle returns the parsed catalog document for a property.
func (s *Store) Bundle(ctx context.Context, id pricing.PropertyID) (*factory.Bundle, error) {
	s.cacheMu.Lock()
	b, ok := s.bundles[id]
	s.cacheMu.Unlock()
	if ok {
		return b, nil
	}

	rec, err := s.GetCatalogRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err = s.factory.ParseCatalog(rec.ConfigJSON)
	if err != nil {
		return nil, fmt.Errorf("stored catalog %q: %w", id, err)
	}

	s.cacheMu.Lock()
	s.bundles[id] = b
	s.cacheMu.Unlock()
	return b, nil
}

// Catalog returns the current snapshot for a property.
func (s *Store) Catalog(ctx context.Context, id pricing.PropertyID) (*pricing.Catalog, error) {
	b, err := s.Bundle(ctx, id)
	if err != nil {
		return nil, err
	}
	return b.Catalog, nil
}

// DeleteCatalog removes a property's document.
func (s *Store) DeleteCatalog(ctx context.Context, id pricing.PropertyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM catalogs WHERE property_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("catalog for property %q: %w", id, pricing.ErrNotFound)
	}

	s.cacheMu.Lock()
	delete(s.bundles, id)
	s.cacheMu.Unlock()
	return nil
}

// =============================================================================
// RATE MODIFIER STORE (legacy.Store interface)
// =============================================================================

// SaveRateModifier upserts a rate modifier. Existing overrides are untouched;
// use ResyncNonCustomized to move the base.
func (s *Store) SaveRateModifier(ctx context.Context, m legacy.RateModifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _, err := s.saveRateModifier(ctx, s.db, m)
	return err
}

// saveRateModifier upserts m and returns the row it replaced, if any. It
// fails when the ID is owned by another property.
func (s *Store) saveRateModifier(ctx context.Context, db execer, m legacy.RateModifier) (legacy.RateModifier, bool, error) {
	prev, err := getRateModifier(ctx, db, m.ID)
	existed := err == nil
	if err != nil && !errors.Is(err, legacy.ErrRateModifierNotFound) {
		return legacy.RateModifier{}, false, err
	}
	if existed {
		if err := m.CheckOwner(prev); err != nil {
			return legacy.RateModifier{}, false, err
		}
	}

	query := `
		INSERT INTO rate_modifiers
		(id, property_id, channel_id, name, kind, discount_percent, stackable, active, sort_order, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			property_id = excluded.property_id,
			channel_id = excluded.channel_id,
			name = excluded.name,
			kind = excluded.kind,
			discount_percent = excluded.discount_percent,
			stackable = excluded.stackable,
			active = excluded.active,
			sort_order = excluded.sort_order,
			updated_at = excluded.updated_at
	`
	_, err = db.ExecContext(ctx, query,
		m.ID, m.PropertyID, m.ChannelID, m.Name, m.Kind, m.DiscountPercent.String(),
		m.Stackable, m.Active, m.SortOrder, formatTime(time.Now()),
	)
	if err != nil {
		return legacy.RateModifier{}, false, fmt.Errorf("failed to save rate modifier: %w", err)
	}
	return prev, existed, nil
}

const rateModifierColumns = "id, property_id, channel_id, name, kind, discount_percent, stackable, active, sort_order"

type scanner interface {
	Scan(dest ...any) error
}

func scanRateModifier(row scanner) (legacy.RateModifier, error) {
	var m legacy.RateModifier
	var pct string
	if err := row.Scan(&m.ID, &m.PropertyID, &m.ChannelID, &m.Name, &m.Kind, &pct, &m.Stackable, &m.Active, &m.SortOrder); err != nil {
		return legacy.RateModifier{}, err
	}
	d, err := decimal.NewFromString(pct)
	if err != nil {
		return legacy.RateModifier{}, fmt.Errorf("rate modifier %q: bad discount %q: %w", m.ID, pct, err)
	}
	m.DiscountPercent = d
	return m, nil
}

func (s *Store) GetRateModifier(ctx context.Context, id pricing.ModifierID) (legacy.RateModifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getRateModifier(ctx, s.db, id)
}

func getRateModifier(ctx context.Context, db execer, id pricing.ModifierID) (legacy.RateModifier, error) {
	m, err := scanRateModifier(db.QueryRowContext(ctx,
		"SELECT "+rateModifierColumns+" FROM rate_modifiers WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return legacy.RateModifier{}, legacy.ErrRateModifierNotFound
	}
	return m, err
}

// ListRateModifiers returns modifiers by channel, sort order, then name.
func (s *Store) ListRateModifiers(ctx context.Context) ([]legacy.RateModifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+rateModifierColumns+" FROM rate_modifiers ORDER BY channel_id, sort_order, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []legacy.RateModifier
	for rows.Next() {
		m, err := scanRateModifier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// =============================================================================
// SEASON OVERRIDE STORE (legacy.Store interface)
// =============================================================================

const overrideColumns = "id, modifier_id, season_id, discount_percent, is_customized, notes, updated_at"

func scanOverride(row scanner) (legacy.OverrideRecord, error) {
	var r legacy.OverrideRecord
	var pct, updatedAt string
	if err := row.Scan(&r.ID, &r.ModifierID, &r.SeasonID, &pct, &r.IsCustomized, &r.Notes, &updatedAt); err != nil {
		return legacy.OverrideRecord{}, err
	}
	d, err := decimal.NewFromString(pct)
	if err != nil {
		return legacy.OverrideRecord{}, fmt.Errorf("override %q: bad discount %q: %w", r.ID, pct, err)
	}
	r.DiscountPercent = d
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

// UpdateOverride runs fn inside one SQL transaction.
func (s *Store) UpdateOverride(ctx context.Context, modifier pricing.ModifierID, season pricing.SeasonID, fn legacy.UpdateFunc) (legacy.OverrideRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return legacy.OverrideRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	mod, err := getRateModifier(ctx, sqlTx, modifier)
	if err != nil {
		return legacy.OverrideRecord{}, err
	}

	cur, err := scanOverride(sqlTx.QueryRowContext(ctx,
		"SELECT "+overrideColumns+" FROM season_modifier_overrides WHERE modifier_id = ? AND season_id = ?",
		modifier, season))
	exists := true
	if errors.Is(err, sql.ErrNoRows) {
		exists, cur = false, legacy.OverrideRecord{}
	} else if err != nil {
		return legacy.OverrideRecord{}, err
	}

	next, err := fn(mod, cur, exists)
	if err != nil {
		return legacy.OverrideRecord{}, err
	}
	if exists && sameOverride(next, cur) {
		return cur, nil
	}
	if next.ID == "" {
		next.ID = uuid.NewString()
	}
	next.ModifierID, next.SeasonID = modifier, season
	next.UpdatedAt = time.Now().UTC()

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO season_modifier_overrides
		(id, modifier_id, season_id, discount_percent, is_customized, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(modifier_id, season_id) DO UPDATE SET
			discount_percent = excluded.discount_percent,
			is_customized = excluded.is_customized,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, next.ID, modifier, season, next.DiscountPercent.String(), next.IsCustomized, next.Notes, formatTime(next.UpdatedAt))
	if err != nil {
		return legacy.OverrideRecord{}, fmt.Errorf("failed to save override: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return legacy.OverrideRecord{}, err
	}
	return next, nil
}

// ResyncNonCustomized moves the base and every non-customized row in one
// transaction.
func (s *Store) ResyncNonCustomized(ctx context.Context, modifier pricing.ModifierID, newBase decimal.Decimal) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := getRateModifier(ctx, sqlTx, modifier); err != nil {
		return 0, err
	}

	now := formatTime(time.Now())
	if _, err := sqlTx.ExecContext(ctx,
		"UPDATE rate_modifiers SET discount_percent = ?, updated_at = ? WHERE id = ?",
		newBase.String(), now, modifier,
	); err != nil {
		return 0, fmt.Errorf("failed to update base discount: %w", err)
	}

	n, err := resyncOverrides(ctx, sqlTx, modifier, newBase, now)
	if err != nil {
		return 0, err
	}
	if err := sqlTx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// resyncOverrides copies newBase into the modifier's non-customized rows and
// returns how many changed.
func resyncOverrides(ctx context.Context, sqlTx *sql.Tx, modifier pricing.ModifierID, newBase decimal.Decimal, now string) (int, error) {
	rows, err := sqlTx.QueryContext(ctx,
		"SELECT "+overrideColumns+" FROM season_modifier_overrides WHERE modifier_id = ? AND is_customized = 0",
		modifier)
	if err != nil {
		return 0, err
	}
	var stale []legacy.OverrideRecord
	for rows.Next() {
		rec, err := scanOverride(rows)
		if err != nil {
			rows.Close()
			return 0, err
		}
		if next, ok := rec.Synced(newBase); ok {
			stale = append(stale, next)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, rec := range stale {
		if _, err := sqlTx.ExecContext(ctx,
			"UPDATE season_modifier_overrides SET discount_percent = ?, updated_at = ? WHERE id = ?",
			rec.DiscountPercent.String(), now, rec.ID,
		); err != nil {
			return 0, fmt.Errorf("failed to resync override: %w", err)
		}
	}
	return len(stale), nil
}

// ListOverrides returns the modifier's rows ordered by season.
func (s *Store) ListOverrides(ctx context.Context, modifier pricing.ModifierID) ([]legacy.OverrideRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+overrideColumns+" FROM season_modifier_overrides WHERE modifier_id = ? ORDER BY season_id",
		modifier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []legacy.OverrideRecord
	for rows.Next() {
		rec, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// sameOverride compares the persisted fields. Decimals compare by value.
func sameOverride(a, b legacy.OverrideRecord) bool {
	return a.ID == b.ID &&
		a.DiscountPercent.Equal(b.DiscountPercent) &&
		a.IsCustomized == b.IsCustomized &&
		a.Notes == b.Notes
}

// =============================================================================
// QUOTE HISTORY
// =============================================================================

// Quote kinds.
const (
	QuoteStacking = "stacking"
	QuoteLegacy   = "legacy"
)

// QuoteRecord is one issued quote. Context and breakdown are stored as the
// JSON the API returned.
type QuoteRecord struct {
	ID            string
	PropertyID    string
	Kind          string
	ContextJSON   string
	BreakdownJSON string
	FinalRate     decimal.Decimal
	CreatedAt     time.Time
}

// SaveQuote stores a quote, assigning an ID when empty.
func (s *Store) SaveQuote(ctx context.Context, q QuoteRecord) (QuoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (id, property_id, kind, context_json, breakdown_json, final_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.PropertyID, q.Kind, q.ContextJSON, q.BreakdownJSON, q.FinalRate.StringFixed(2), formatTime(q.CreatedAt))
	if err != nil {
		return QuoteRecord{}, fmt.Errorf("failed to save quote: %w", err)
	}
	return q, nil
}

const quoteColumns = "id, property_id, kind, context_json, breakdown_json, final_rate, created_at"

func scanQuote(row scanner) (QuoteRecord, error) {
	var q QuoteRecord
	var final, createdAt string
	if err := row.Scan(&q.ID, &q.PropertyID, &q.Kind, &q.ContextJSON, &q.BreakdownJSON, &final, &createdAt); err != nil {
		return QuoteRecord{}, err
	}
	q.FinalRate, _ = decimal.NewFromString(final)
	q.CreatedAt = parseTime(createdAt)
	return q, nil
}

// GetQuote retrieves a quote by ID.
func (s *Store) GetQuote(ctx context.Context, id string) (*QuoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, err := scanQuote(s.db.QueryRowContext(ctx, "SELECT "+quoteColumns+" FROM quotes WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quote %q: %w", id, pricing.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuotes returns a property's most recent quotes first.
func (s *Store) ListQuotes(ctx context.Context, propertyID string, limit int) ([]QuoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+quoteColumns+" FROM quotes WHERE property_id = ? ORDER BY created_at DESC, id LIMIT ?",
		propertyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuoteRecord
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

var (
	_ pricing.CatalogProvider = (*Store)(nil)
	_ legacy.Store            = (*Store)(nil)
)
