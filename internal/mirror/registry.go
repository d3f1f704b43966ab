package mirror

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// tableSpec binds a table name to its slice inside a Snapshot. All
// per-table behaviour (fetch, decode, upsert) is derived from that binding.
type tableSpec struct {
	name   types.TableName
	fetch  func(s *types.Snapshot) []types.Row
	length func(s *types.Snapshot) int
	decode func(data []byte) (types.Row, error)
	upsert func(s *types.Snapshot, id int64, row types.Row) error
}

func newTableSpec[T types.Row](name types.TableName, field func(*types.Snapshot) *[]T) tableSpec {
	return tableSpec{
		name: name,
		fetch: func(s *types.Snapshot) []types.Row {
			rows := *field(s)
			out := make([]types.Row, len(rows))
			for i, r := range rows {
				out[i] = r
			}
			return out
		},
		length: func(s *types.Snapshot) int { return len(*field(s)) },
		decode: func(data []byte) (types.Row, error) {
			var row T
			if err := json.Unmarshal(data, &row); err != nil {
				return nil, err
			}
			return row, nil
		},
		upsert: func(s *types.Snapshot, id int64, row types.Row) error {
			r, ok := row.(T)
			if !ok {
				return fmt.Errorf("%w: %T is not a %s row", types.ErrInvalidData, row, name)
			}
			*field(s) = upsertRow(*field(s), id, r)
			return nil
		},
	}
}

// upsertRow returns a new slice with the first row matching id replaced by
// row, or with row appended. The input slice is never written to, so
// snapshots that still reference it stay unchanged.
func upsertRow[T types.Row](rows []T, id int64, row T) []T {
	out := make([]T, len(rows), len(rows)+1)
	copy(out, rows)
	for i, r := range out {
		if rid, ok := r.RowID(); ok && rid == id {
			out[i] = row
			return out
		}
	}
	return append(out, row)
}

var registry = map[types.TableName]tableSpec{}

func register(spec tableSpec) { registry[spec.name] = spec }

func init() {
	register(newTableSpec(types.TableEquipment, func(s *types.Snapshot) *[]types.Equipment { return &s.Equipment }))
	register(newTableSpec(types.TableRoom, func(s *types.Snapshot) *[]types.Room { return &s.Room }))
	register(newTableSpec(types.TableTool, func(s *types.Snapshot) *[]types.Tool { return &s.Tool }))
	register(newTableSpec(types.TableStaff, func(s *types.Snapshot) *[]types.Staff { return &s.Staff }))
	register(newTableSpec(types.TableToolReservation, func(s *types.Snapshot) *[]types.ToolReservation { return &s.ToolReservation }))
	register(newTableSpec(types.TableToolDesignatedRoom, func(s *types.Snapshot) *[]types.ToolDesignatedRoom { return &s.ToolDesignatedRoom }))
	register(newTableSpec(types.TableToolInspector, func(s *types.Snapshot) *[]types.ToolInspector { return &s.ToolInspector }))
	register(newTableSpec(types.TablePatient, func(s *types.Snapshot) *[]types.Patient { return &s.Patient }))
	register(newTableSpec(types.TableOperation, func(s *types.Snapshot) *[]types.Operation { return &s.Operation }))
	register(newTableSpec(types.TablePatientWardRoom, func(s *types.Snapshot) *[]types.PatientWardRoom { return &s.PatientWardRoom }))
	register(newTableSpec(types.TablePatientWardAssistant, func(s *types.Snapshot) *[]types.PatientWardAssistant { return &s.PatientWardAssistant }))
	register(newTableSpec(types.TableOperationStaff, func(s *types.Snapshot) *[]types.OperationStaff { return &s.OperationStaff }))
	register(newTableSpec(types.TableOperationTool, func(s *types.Snapshot) *[]types.OperationTool { return &s.OperationTool }))
}

func lookup(name types.TableName) (tableSpec, error) {
	spec, ok := registry[name]
	if !ok {
		return tableSpec{}, types.ErrTableNotFound
	}
	return spec, nil
}

// DecodeRow unmarshals data into the row type of the named table.
func DecodeRow(name types.TableName, data []byte) (types.Row, error) {
	spec, err := lookup(name)
	if err != nil {
		return nil, err
	}
	row, err := spec.decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s row: %w", name, err)
	}
	return row, nil
}
