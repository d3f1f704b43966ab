package mirror

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

func op(id int64, label string) types.Operation {
	return types.Operation{ID: types.Ptr(id), Label: types.Ptr(label)}
}

func seedSnapshot() *types.Snapshot {
	return &types.Snapshot{
		Operation: []types.Operation{op(1, "Knee Repair"), op(2, "Hip Replacement")},
		Patient: []types.Patient{
			{ID: types.Ptr[int64](1), FirstName: types.Ptr("Ann"), LastName: types.Ptr("Lee")},
		},
		Room: []types.Room{{ID: types.Ptr[int64](1), Name: types.Ptr("OR-3")}},
	}
}

func TestNewStoreIsEmptyAndUninitialized(t *testing.T) {
	s := NewStore()

	assert.False(t, s.Initialized())
	require.NotNil(t, s.Snapshot())
	assert.Empty(t, s.Snapshot().Operation)
	assert.Equal(t, uint64(0), s.Generation())
}

func TestReplaceAll(t *testing.T) {
	s := NewStore()
	snap := seedSnapshot()
	s.ReplaceAll(snap)

	assert.True(t, s.Initialized())
	assert.Len(t, s.Snapshot().Operation, 2)

	// The store keeps its own copy.
	snap.Operation[0] = op(99, "mutated")
	assert.Equal(t, "Knee Repair", *s.Snapshot().Operation[0].Label)

	// A second initialize replaces everything, including tables it leaves empty.
	s.ReplaceAll(&types.Snapshot{Operation: []types.Operation{op(5, "Appendectomy")}})
	got := s.Snapshot()
	assert.Len(t, got.Operation, 1)
	assert.Empty(t, got.Patient)
	assert.Empty(t, got.Room)
}

func TestUpsert(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		row       types.Row
		wantLen   int
		wantLabel string
	}{
		{name: "replaces existing row in place", id: 2, row: op(2, "Hip Revision"), wantLen: 2, wantLabel: "Hip Revision"},
		{name: "appends unknown id", id: 3, row: op(3, "Bypass"), wantLen: 3, wantLabel: "Bypass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.ReplaceAll(seedSnapshot())

			require.NoError(t, s.Upsert(types.TableOperation, tt.id, tt.row))

			ops := s.Snapshot().Operation
			require.Len(t, ops, tt.wantLen)
			tbl, err := s.GetTable(types.TableOperation)
			require.NoError(t, err)
			row, err := tbl.Get(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, *row.(types.Operation).Label)
		})
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	once := NewStore()
	once.ReplaceAll(seedSnapshot())
	twice := NewStore()
	twice.ReplaceAll(seedSnapshot())

	row := op(2, "Hip Revision")
	require.NoError(t, once.Upsert(types.TableOperation, 2, row))
	require.NoError(t, twice.Upsert(types.TableOperation, 2, row))
	require.NoError(t, twice.Upsert(types.TableOperation, 2, row))

	assert.Equal(t, once.Snapshot(), twice.Snapshot())
}

func TestUpsertLeavesEarlierSnapshotsUntouched(t *testing.T) {
	s := NewStore()
	s.ReplaceAll(seedSnapshot())
	before := s.Snapshot()

	require.NoError(t, s.Upsert(types.TableOperation, 1, op(1, "Knee Revision")))

	assert.Equal(t, "Knee Repair", *before.Operation[0].Label)
	assert.Equal(t, "Knee Revision", *s.Snapshot().Operation[0].Label)
	// Untouched tables are shared, not copied.
	assert.Equal(t, before.Patient, s.Snapshot().Patient)
}

func TestUpsertErrors(t *testing.T) {
	s := NewStore()
	s.ReplaceAll(seedSnapshot())

	t.Run("unknown table", func(t *testing.T) {
		err := s.Upsert("invoices", 1, op(1, "x"))
		assert.ErrorIs(t, err, types.ErrTableNotFound)
	})
	t.Run("row type does not match table", func(t *testing.T) {
		err := s.Upsert(types.TablePatient, 1, op(1, "x"))
		assert.ErrorIs(t, err, types.ErrInvalidData)
	})
	t.Run("row id differs from target id", func(t *testing.T) {
		err := s.Upsert(types.TableOperation, 1, op(2, "x"))
		assert.ErrorIs(t, err, types.ErrInvalidID)
	})
	t.Run("row without id", func(t *testing.T) {
		err := s.Upsert(types.TableOperation, 1, types.Operation{})
		assert.ErrorIs(t, err, types.ErrInvalidID)
	})
	t.Run("nil row", func(t *testing.T) {
		err := s.Upsert(types.TableOperation, 1, nil)
		assert.ErrorIs(t, err, types.ErrInvalidData)
	})

	assert.Len(t, s.Snapshot().Operation, 2, "failed upserts must not change the store")
}

func TestUpsertBeforeInitialize(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Upsert(types.TableOperation, 4, op(4, "Early")))

	assert.False(t, s.Initialized())
	assert.Len(t, s.Snapshot().Operation, 1)
}

func TestGetTable(t *testing.T) {
	s := NewStore()
	s.ReplaceAll(seedSnapshot())

	tbl, err := s.GetTable(types.TableOperation)
	require.NoError(t, err)
	assert.Equal(t, types.TableOperation, tbl.Name())
	assert.Equal(t, 2, tbl.Len())
	assert.Len(t, tbl.Fetch(), 2)

	_, err = tbl.Get(42)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.GetTable("invoices")
	assert.ErrorIs(t, err, types.ErrTableNotFound)

	for _, name := range types.StandardTableNames {
		_, err := s.GetTable(name)
		assert.NoError(t, err, "table %s", name)
	}
}

func TestStaleLifecycle(t *testing.T) {
	s := NewStore()
	s.ReplaceAll(seedSnapshot())
	s.MarkStale()
	assert.True(t, s.Stale())
	assert.Len(t, s.Snapshot().Operation, 2, "stale rows stay readable")

	s.ReplaceAll(seedSnapshot())
	assert.False(t, s.Stale())
}

func TestDecodeRow(t *testing.T) {
	row, err := DecodeRow(types.TableOperationTool, []byte(`{"id":3,"operation_id":1,"tool_id":2,"on_site":null}`))
	require.NoError(t, err)
	ot := row.(types.OperationTool)
	assert.Equal(t, int64(1), *ot.OperationID)
	assert.Nil(t, ot.OnSite)

	_, err = DecodeRow(types.TableOperation, []byte(`{"id":"not a number"}`))
	assert.Error(t, err)

	_, err = DecodeRow("invoices", []byte(`{}`))
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

// generationSnapshot builds a snapshot whose operation label and patient name
// both carry the generation tag, so a reader can detect a mixed store.
func generationSnapshot(tag string) *types.Snapshot {
	return &types.Snapshot{
		Operation: []types.Operation{{ID: types.Ptr[int64](1), Label: types.Ptr(tag), PatientID: types.Ptr[int64](1)}},
		Patient:   []types.Patient{{ID: types.Ptr[int64](1), FirstName: types.Ptr(tag)}},
	}
}

func TestReplaceAllIsAtomicForReaders(t *testing.T) {
	s := NewStore()
	s.ReplaceAll(generationSnapshot("gen-0"))

	const writes = 500
	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 1; i <= writes; i++ {
			s.ReplaceAll(generationSnapshot(fmt.Sprintf("gen-%d", i)))
		}
	}()

	mixed := make(chan string, 1)
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap := s.Snapshot()
				label := *snap.Operation[0].Label
				name := *snap.Patient[0].FirstName
				if label != name {
					select {
					case mixed <- label + " joined with " + name:
					default:
					}
					return
				}
			}
		}()
	}
	wg.Wait()

	select {
	case m := <-mixed:
		t.Fatalf("reader observed a partially replaced store: %s", m)
	default:
	}
	assert.Equal(t, fmt.Sprintf("gen-%d", writes), *s.Snapshot().Operation[0].Label)
}
