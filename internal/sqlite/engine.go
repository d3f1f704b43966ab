// Package sqlite evaluates the front desk views with SQL. An Engine loads a
// mirror snapshot into an in-memory SQLite database and answers the same
// queries as the view package, resolving joins with LEFT JOINs on the
// lowest-rowid match. Row assembly is shared with the view package, so both
// engines apply identical fallbacks.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/frontdesk/internal/view"
	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// ErrClosed is returned by an Engine after Close.
var ErrClosed = errors.New("sqlite engine closed")

// Engine is an in-memory SQLite query engine.
type Engine struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates an empty in-memory database with the mirror schema.
func Open() (*Engine, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	for _, m := range tableMapping {
		if _, err := db.Exec(m.ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating %s: %w", m.table, err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}
	return &Engine{db: db}, nil
}

// Close releases the database. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

// Load replaces the database contents with snap.
func (e *Engine) Load(ctx context.Context, snap *types.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return ErrClosed
	}
	return load(ctx, e.db, snap)
}

// Count returns the number of rows loaded into table.
func (e *Engine) Count(ctx context.Context, table types.TableName) (int, error) {
	table, err := types.ParseTableName(string(table))
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := e.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+string(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// Build evaluates q against the loaded rows.
func (e *Engine) Build(ctx context.Context, q view.Query) (view.View, error) {
	switch q.Kind {
	case view.KindPreOperativeDefault:
		return e.PreOperativeDefault(ctx)
	case view.KindPreOperativeToolReady:
		return e.PreOperativeToolReady(ctx, q.OperationID)
	default:
		return nil, fmt.Errorf("unknown view kind %v", q.Kind)
	}
}

// Evaluate loads snap and evaluates q against it.
func (e *Engine) Evaluate(ctx context.Context, snap *types.Snapshot, q view.Query) (view.View, error) {
	if err := e.Load(ctx, snap); err != nil {
		return nil, err
	}
	return e.Build(ctx, q)
}
