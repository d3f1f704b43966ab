package types

import "errors"

// Table is a read-only accessor over one mirrored table. Every call reads the
// store's current snapshot; rows come back in backend order.
type Table interface {
	// Name returns the table name.
	Name() TableName

	// Get returns the first row whose id equals id.
	// Returns ErrNotFound if no row has that id.
	Get(id int64) (Row, error)

	// Fetch returns every row in backend order.
	Fetch() []Row

	// Len returns the number of rows.
	Len() int
}

// Mirror is the client-held copy of the backend tables. All mutation goes
// through ReplaceAll and Upsert; readers take immutable snapshots.
type Mirror interface {
	// GetTable returns the accessor for the named table.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name TableName) (Table, error)

	// ReplaceAll swaps every table for the corresponding table in snap.
	// Concurrent readers observe either the old or the new store, never a mix.
	ReplaceAll(snap *Snapshot)

	// Upsert replaces the row with the given id in the named table, or
	// appends row when no row has that id. The row's own id must equal id,
	// which keeps repeated upserts idempotent.
	Upsert(name TableName, id int64, row Row) error

	// Snapshot returns the current immutable state. Callers must not modify it.
	Snapshot() *Snapshot
}

// Table and row errors.
var (
	ErrTableNotFound = errors.New("table not found")
	ErrNotFound      = errors.New("row not found")
	ErrInvalidID     = errors.New("invalid row id")
	ErrInvalidData   = errors.New("invalid row data")
	ErrInvalidEnum   = errors.New("value outside enumeration")
)

// Message errors.
var (
	ErrMalformedEnvelope = errors.New("malformed envelope")
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrUnknownOperation  = errors.New("unknown operation")
)
