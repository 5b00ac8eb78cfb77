/*
Package sqlite provides a SQLite-backed roster.Store.

PURPOSE:
  Persists saved roster templates in a single table. The roster and the
  scenario parameters are stored as JSON columns; everything queried on
  (owner, update time) is a plain column.

KEY TABLES:
  templates: One row per saved template

INDEXES:
  - idx_templates_owner_updated: ListByOwner (hot path)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. ":memory:" databases are pinned to a
  single connection so every query sees the same database.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/tips.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := roster.NewService(store)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - roster/store.go: Interface definition
  - store/memory: In-memory implementation for testing
  - store/postgres: Same schema on PostgreSQL
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/roster"
)

// Store implements roster.Store using SQLite.
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

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		location TEXT,
		time_span TEXT NOT NULL,
		scenario TEXT NOT NULL,
		employees_json TEXT NOT NULL,
		details_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_templates_owner_updated
		ON templates(owner_id, updated_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TEMPLATE STORE
// =============================================================================

const templateColumns = "id, owner_id, name, location, time_span, scenario, employees_json, details_json, created_at, updated_at"

// Create inserts a new template.
func (s *Store) Create(ctx context.Context, t roster.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	employees, details, err := encodeTemplate(t)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO templates ("+templateColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.OwnerID, t.Name, nullString(t.Location), string(t.TimeSpan), string(t.Scenario),
		employees, details, formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if isUniqueConstraintError(err) {
		return roster.ErrDuplicateTemplate
	}
	return err
}

// Get retrieves a template by ID.
func (s *Store) Get(ctx context.Context, id string) (*roster.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+templateColumns+" FROM templates WHERE id = ?", id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roster.ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByOwner returns the owner's templates, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]roster.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+templateColumns+" FROM templates WHERE owner_id = ? ORDER BY updated_at DESC, id",
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]roster.Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// Update overwrites an existing template.
func (s *Store) Update(ctx context.Context, t roster.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	employees, details, err := encodeTemplate(t)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE templates SET
			name = ?, location = ?, time_span = ?, scenario = ?,
			employees_json = ?, details_json = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, nullString(t.Location), string(t.TimeSpan), string(t.Scenario),
		employees, details, formatTime(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a template.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Helper functions

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (roster.Template, error) {
	var (
		t                          roster.Template
		location                   sql.NullString
		timeSpan, scenario         string
		employeesJSON, detailsJSON string
		createdAt, updatedAt       string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &location, &timeSpan, &scenario,
		&employeesJSON, &detailsJSON, &createdAt, &updatedAt); err != nil {
		return roster.Template{}, err
	}

	t.Location = location.String
	t.TimeSpan = allocation.TimeSpan(timeSpan)
	t.Scenario = allocation.Scenario(scenario)
	if err := json.Unmarshal([]byte(employeesJSON), &t.Employees); err != nil {
		return roster.Template{}, fmt.Errorf("template %s: decode employees: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(detailsJSON), &t.Details); err != nil {
		return roster.Template{}, fmt.Errorf("template %s: decode scenario details: %w", t.ID, err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return t, nil
}

func encodeTemplate(t roster.Template) (employees, details string, err error) {
	members := t.Employees
	if members == nil {
		members = []roster.Member{}
	}
	e, err := json.Marshal(members)
	if err != nil {
		return "", "", fmt.Errorf("encode employees: %w", err)
	}
	d, err := json.Marshal(t.Details)
	if err != nil {
		return "", "", fmt.Errorf("encode scenario details: %w", err)
	}
	return string(e), string(d), nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return roster.ErrTemplateNotFound
	}
	return nil
}

// timeLayout is fixed width so updated_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
