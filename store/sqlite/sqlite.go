/*
Package sqlite provides a SQLite-backed engine.PlanStore.

PURPOSE:
  Persists whole plan documents, one row per plan id. Each Save replaces
  the document (last writer wins) and bumps a revision counter that is
  shown to users but never checked.

KEY TABLES:
  plans: id, JSON document (factory schema), revision, timestamps

SCHEMA EVOLUTION:
  Two layers. Table changes are goose migrations embedded from
  migrations/*.sql and applied on New(). Document changes are handled by
  factory.DecodePlan, which merges every loaded document against the
  default plan, so rows written by older builds still load.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. WAL mode lets readers proceed
  while a save is in flight.

USAGE:
  store, err := sqlite.New("./data/budget.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  plan, err := store.Load(ctx, school.DefaultPlanID)

SEE ALSO:
  - engine/store.go: PlanStore interface
  - engine/store/memory.go: In-memory implementation for testing
  - factory/document.go: Document codec
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/factory"
)

//go:embed migrations/*.sql
var migrations embed.FS

const dialect = "sqlite3"

// Store implements engine.PlanStore using SQLite.
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
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// PLAN STORE
// =============================================================================

// PlanRecord is a stored plan document with its bookkeeping columns.
type PlanRecord struct {
	ID        string
	Document  string
	Revision  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Load decodes the stored document, or returns nil if none exists.
func (s *Store) Load(ctx context.Context, planID string) (*engine.Plan, error) {
	rec, err := s.Get(ctx, planID)
	if err != nil || rec == nil {
		return nil, err
	}
	plan, err := factory.DecodePlan([]byte(rec.Document))
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", planID, err)
	}
	return &plan, nil
}

// Save replaces the stored document for planID.
func (s *Store) Save(ctx context.Context, planID string, plan engine.Plan) error {
	doc, err := factory.EncodePlan(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan %s: %w", planID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO plans (id, document, revision, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			revision = plans.revision + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, query, planID, string(doc), now, now); err != nil {
		return fmt.Errorf("failed to save plan %s: %w", planID, err)
	}
	return nil
}

// Get retrieves a plan record by ID.
func (s *Store) Get(ctx context.Context, planID string) (*PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r PlanRecord
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, document, revision, created_at, updated_at FROM plans WHERE id = ?",
		planID,
	).Scan(&r.ID, &r.Document, &r.Revision, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &r, nil
}

// List returns all plan records, most recently updated first.
func (s *Store) List(ctx context.Context) ([]PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, document, revision, created_at, updated_at FROM plans ORDER BY updated_at DESC, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PlanRecord
	for rows.Next() {
		var r PlanRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&r.ID, &r.Document, &r.Revision, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Delete removes a plan.
func (s *Store) Delete(ctx context.Context, planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM plans WHERE id = ?", planID)
	return err
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM plans")
	return err
}

var _ engine.PlanStore = (*Store)(nil)
