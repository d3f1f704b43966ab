// Package mirror implements the in-memory Table Store that mirrors the
// backend tables. The store keeps an immutable *types.Snapshot behind a
// read-write mutex: writers build the next snapshot and swap it in, readers
// take the current pointer and compute against it without holding any lock.
package mirror

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// Compile-time interface check: Store must implement Mirror.
var _ types.Mirror = (*Store)(nil)

// Store is the single owner of the mirrored tables.
type Store struct {
	mu          sync.RWMutex
	state       *types.Snapshot
	initialized bool   // set by the first ReplaceAll
	stale       bool   // set on disconnect, cleared by ReplaceAll
	generation  uint64 // bumped on every successful write
	log         logrus.FieldLogger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for write tracing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates an empty, uninitialized store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		state: &types.Snapshot{},
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReplaceAll swaps every table for the corresponding table in snap in one
// step. snap is cloned, so the caller may keep using it.
func (s *Store) ReplaceAll(snap *types.Snapshot) {
	next := snap.Clone()

	s.mu.Lock()
	s.state = next
	s.initialized = true
	s.stale = false
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"generation": gen,
		"operations": len(next.Operation),
	}).Debug("mirror replaced")
}

// Upsert replaces the first row with the given id in the named table, or
// appends row when none matches. The row's own id must equal id. Only the
// affected table is copied; every snapshot handed out earlier stays
// untouched. An update arriving before the first ReplaceAll is applied to an
// empty store.
func (s *Store) Upsert(name types.TableName, id int64, row types.Row) error {
	spec, err := lookup(name)
	if err != nil {
		return err
	}
	if row == nil {
		return types.ErrInvalidData
	}
	if rid, ok := row.RowID(); !ok || rid != id {
		return fmt.Errorf("%w: row id does not match %d", types.ErrInvalidID, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.state
	if err := spec.upsert(&next, id, row); err != nil {
		return err
	}
	s.state = &next
	s.generation++

	s.log.WithFields(logrus.Fields{
		"table":      name,
		"id":         id,
		"generation": s.generation,
	}).Debug("mirror row upserted")
	return nil
}

// Snapshot returns the current state. It is never nil; before the first
// ReplaceAll it is an empty snapshot. The result must be treated as read-only.
func (s *Store) Snapshot() *types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// GetTable returns a read-only accessor for the named table.
// Returns ErrTableNotFound if the name is not a standard table.
func (s *Store) GetTable(name types.TableName) (types.Table, error) {
	spec, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return &table{store: s, spec: spec}, nil
}

// Initialized reports whether an initialize snapshot has been applied.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// MarkStale records that the connection dropped and a fresh initialize is
// expected. The mirrored rows stay readable.
func (s *Store) MarkStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = true
}

// Stale reports whether the store is waiting for a fresh initialize.
func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

// Generation returns a counter bumped on every write. Consumers compare it
// to decide whether cached views need rebuilding.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}
