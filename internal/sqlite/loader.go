package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// load replaces the contents of every table with snap. Loading is
// transactional: either every table holds the new rows or the database is
// unchanged.
func load(ctx context.Context, db *sql.DB, snap *types.Snapshot) error {
	records, err := splitSnapshot(snap)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range tableMapping {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+string(mapping.table)); err != nil {
			return fmt.Errorf("clearing %s: %w", mapping.table, err)
		}
		rows := records[string(mapping.table)]
		if len(rows) == 0 {
			continue
		}
		if err := insertRecords(ctx, tx, string(mapping.table), mapping.columns, rows); err != nil {
			return fmt.Errorf("loading %s: %w", mapping.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// splitSnapshot encodes snap and returns each table's rows as raw JSON
// objects keyed by table name.
func splitSnapshot(snap *types.Snapshot) (map[string][]json.RawMessage, error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	var records map[string][]json.RawMessage
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("splitting snapshot: %w", err)
	}
	return records, nil
}

// insertRecords inserts JSON row objects into table. Only the listed columns
// are read; absent keys and nulls become NULL.
func insertRecords(ctx context.Context, tx *sql.Tx, table string, columns []string, records []json.RawMessage) error {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for i, rec := range records {
		dec := json.NewDecoder(bytes.NewReader(rec))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return fmt.Errorf("decoding row %d: %w", i, err)
		}

		args := make([]any, len(columns))
		for j, col := range columns {
			args[j] = columnValue(obj[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}
	return nil
}

// columnValue converts a decoded JSON value to a driver value. Integers stay
// exact.
func columnValue(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return v
	}
}
