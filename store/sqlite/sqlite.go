/*
Package sqlite provides a SQLite-backed implementation of widget.Store.

PURPOSE:
  Persists KPI widgets: the widget record with its ordered encoding map,
  and the host settings as one row per key. Keeping settings as rows
  mirrors the host settings store (flat "kpi_"-prefixed key/value pairs)
  and lets unknown keys round-trip untouched.

KEY TABLES:
  widgets:          id, name, encodings (JSON object, key order kept)
  widget_settings:  (widget_id, key) -> value, cascades on widget delete

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Save runs in one SQL transaction
  so a widget and its settings are replaced together.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/kpi.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - widget/widget.go: Store interface
  - store/memory: in-memory implementation for tests
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

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/widget"
)

// Store implements widget.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
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
	CREATE TABLE IF NOT EXISTS widgets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		encodings_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_widgets_name
		ON widgets(name);

	CREATE TABLE IF NOT EXISTS widget_settings (
		widget_id TEXT NOT NULL REFERENCES widgets(id) ON DELETE CASCADE,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (widget_id, key)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WIDGETS
// =============================================================================

// Save creates or replaces a widget and its settings atomically.
// CreatedAt of an existing row is kept.
func (s *Store) Save(ctx context.Context, w widget.Widget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc, err := json.Marshal(w.Encodings)
	if err != nil {
		return fmt.Errorf("failed to encode encodings: %w", err)
	}

	now := time.Now().UTC()
	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO widgets (id, name, encodings_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			encodings_json = excluded.encodings_json,
			updated_at = excluded.updated_at
	`, w.ID, w.Name, string(enc), formatTime(createdAt), formatTime(now))
	if err != nil {
		return fmt.Errorf("failed to save widget: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM widget_settings WHERE widget_id = ?", w.ID); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	for key, value := range w.Settings {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO widget_settings (widget_id, key, value) VALUES (?, ?, ?)",
			w.ID, key, value,
		)
		if err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// Get returns a widget with its settings.
func (s *Store) Get(ctx context.Context, id string) (*widget.Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, err := scanWidget(s.db.QueryRowContext(ctx,
		"SELECT id, name, encodings_json, created_at, updated_at FROM widgets WHERE id = ?",
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, widget.ErrWidgetNotFound)
	}
	if err != nil {
		return nil, err
	}

	all, err := s.loadSettings(ctx, id)
	if err != nil {
		return nil, err
	}
	w.Settings = all[id]
	return &w, nil
}

// List returns all widgets ordered by name.
func (s *Store) List(ctx context.Context) ([]widget.Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, encodings_json, created_at, updated_at FROM widgets ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var widgets []widget.Widget
	for rows.Next() {
		w, err := scanWidget(rows)
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	all, err := s.loadSettings(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range widgets {
		widgets[i].Settings = all[widgets[i].ID]
	}
	return widgets, nil
}

// Delete removes a widget; its settings go with it.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM widgets WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, widget.ErrWidgetNotFound)
	}
	return nil
}

// Reset clears all data (for testing).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM widget_settings; DELETE FROM widgets;")
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanWidget(row scanner) (widget.Widget, error) {
	var w widget.Widget
	var encJSON, createdAt, updatedAt string
	if err := row.Scan(&w.ID, &w.Name, &encJSON, &createdAt, &updatedAt); err != nil {
		return widget.Widget{}, err
	}

	var enc kpi.EncodingMap
	if err := json.Unmarshal([]byte(encJSON), &enc); err != nil {
		return widget.Widget{}, fmt.Errorf("widget %s: bad encodings: %w", w.ID, err)
	}
	w.Encodings = enc
	w.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	w.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return w, nil
}

// loadSettings returns settings grouped by widget id; an empty id loads all.
func (s *Store) loadSettings(ctx context.Context, id string) (map[string]map[string]string, error) {
	query := "SELECT widget_id, key, value FROM widget_settings"
	var args []any
	if id != "" {
		query += " WHERE widget_id = ?"
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]string)
	for rows.Next() {
		var widgetID, key, value string
		if err := rows.Scan(&widgetID, &key, &value); err != nil {
			return nil, err
		}
		if out[widgetID] == nil {
			out[widgetID] = make(map[string]string)
		}
		out[widgetID][key] = value
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

var _ widget.Store = (*Store)(nil)
