package mirror

import (
	"fmt"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// Compile-time interface check: table must implement Table.
var _ types.Table = (*table)(nil)

// table is a read-only accessor bound to one table of a Store. It holds no
// rows itself; each call reads the store's current snapshot.
type table struct {
	store *Store
	spec  tableSpec
}

func (t *table) Name() types.TableName { return t.spec.name }

// Get returns the first row whose id equals id.
func (t *table) Get(id int64) (types.Row, error) {
	for _, row := range t.spec.fetch(t.store.Snapshot()) {
		if rid, ok := row.RowID(); ok && rid == id {
			return row, nil
		}
	}
	return nil, fmt.Errorf("%s %d: %w", t.spec.name, id, types.ErrNotFound)
}

func (t *table) Fetch() []types.Row {
	return t.spec.fetch(t.store.Snapshot())
}

func (t *table) Len() int {
	return t.spec.length(t.store.Snapshot())
}
