// Package view derives denormalized view rows from a mirror snapshot. Every
// builder is a pure function of the snapshot it is given: it never mutates
// the snapshot and returns the same rows when called twice.
package view

import (
	"fmt"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// Sentinels for unresolved values. NotAvailable marks an absent optional
// field or an unmatched foreign key; UnknownTool marks a broken
// operation_tool → tool → equipment chain.
const (
	NotAvailable = "N/A"
	UnknownTool  = "Unknown Tool"
)

// Kind enumerates the view shapes.
type Kind int

// View kinds.
const (
	KindPreOperativeDefault Kind = iota + 1
	KindPreOperativeToolReady
)

func (k Kind) String() string {
	switch k {
	case KindPreOperativeDefault:
		return "pre-operative-default"
	case KindPreOperativeToolReady:
		return "pre-operative-tool-ready"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// View is the closed set of materialized views. Only the types in this
// package implement it; consumers switch on the concrete type.
type View interface {
	Kind() Kind
	Len() int
	isView()
}

// Query names a view and its parameter, so a materialized view can be
// rebuilt against a newer snapshot.
type Query struct {
	Kind        Kind
	OperationID int64 // used by KindPreOperativeToolReady
}

// DefaultQuery returns the query for the unparameterized operation list.
func DefaultQuery() Query { return Query{Kind: KindPreOperativeDefault} }

// ToolReadyQuery returns the drill-down query for one operation.
func ToolReadyQuery(operationID int64) Query {
	return Query{Kind: KindPreOperativeToolReady, OperationID: operationID}
}

// Build evaluates q against snap.
func Build(snap *types.Snapshot, q Query) (View, error) {
	switch q.Kind {
	case KindPreOperativeDefault:
		return BuildPreOperativeDefault(snap), nil
	case KindPreOperativeToolReady:
		return BuildPreOperativeToolReady(snap, q.OperationID), nil
	default:
		return nil, fmt.Errorf("unknown view kind %v", q.Kind)
	}
}

// orNA dereferences s, substituting NotAvailable for an absent value.
func orNA(s *string) string {
	if s == nil {
		return NotAvailable
	}
	return *s
}

// indexByID maps ids to the first row carrying them. Rows without an id are
// not addressable and are skipped.
func indexByID[T types.Row](rows []T) map[int64]T {
	idx := make(map[int64]T, len(rows))
	for _, r := range rows {
		id, ok := r.RowID()
		if !ok {
			continue
		}
		if _, seen := idx[id]; !seen {
			idx[id] = r
		}
	}
	return idx
}

// lookup resolves an optional foreign key against idx.
func lookup[T any](idx map[int64]T, fk *int64) (T, bool) {
	var zero T
	if fk == nil {
		return zero, false
	}
	v, ok := idx[*fk]
	if !ok {
		return zero, false
	}
	return v, true
}
