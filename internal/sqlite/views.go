package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/frontdesk/internal/view"
	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

const preOperativeDefaultSQL = `
SELECT o.id, o.label, o.status, o.start_time, o.end_time,
       p.rowid IS NOT NULL, p.first_name, p.last_name,
       r.rowid IS NOT NULL, r.name,
       (SELECT COUNT(*) FROM operation_tool ot WHERE ot.operation_id = o.id),
       (SELECT COUNT(*) FROM operation_tool ot WHERE ot.operation_id = o.id AND ot.on_site = 1)
FROM operation o
LEFT JOIN patient p ON p.rowid = (SELECT MIN(rowid) FROM patient WHERE id = o.patient_id)
LEFT JOIN room r ON r.rowid = (SELECT MIN(rowid) FROM room WHERE id = o.room_id)
ORDER BY o.rowid`

const preOperativeToolReadySQL = `
SELECT ot.on_site,
       t.rowid IS NOT NULL, t.status,
       e.rowid IS NOT NULL, e.name
FROM operation_tool ot
LEFT JOIN tool t ON t.rowid = (SELECT MIN(rowid) FROM tool WHERE id = ot.tool_id)
LEFT JOIN equipment e ON e.rowid = (SELECT MIN(rowid) FROM equipment WHERE id = t.info_id)
WHERE ot.operation_id = ?
ORDER BY ot.rowid`

// PreOperativeDefault returns one row per loaded operation.
func (e *Engine) PreOperativeDefault(ctx context.Context) (view.PreOperativeDefaultView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return view.PreOperativeDefaultView{}, ErrClosed
	}

	rows, err := e.db.QueryContext(ctx, preOperativeDefaultSQL)
	if err != nil {
		return view.PreOperativeDefaultView{}, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	out := view.PreOperativeDefaultView{Rows: []view.PreOperativeDefault{}}
	for rows.Next() {
		var (
			id                            sql.NullInt64
			label, status, start, end     sql.NullString
			hasPatient, hasRoom           bool
			firstName, lastName, roomName sql.NullString
			total, onSite                 int
		)
		if err := rows.Scan(&id, &label, &status, &start, &end,
			&hasPatient, &firstName, &lastName,
			&hasRoom, &roomName,
			&total, &onSite); err != nil {
			return view.PreOperativeDefaultView{}, fmt.Errorf("scanning operation: %w", err)
		}

		op := types.Operation{
			ID:        ptrInt64(id),
			Label:     ptrString(label),
			StartTime: ptrString(start),
			EndTime:   ptrString(end),
		}
		if status.Valid {
			s := types.OperationStatus(status.String)
			op.Status = &s
		}
		var patient *types.Patient
		if hasPatient {
			patient = &types.Patient{FirstName: ptrString(firstName), LastName: ptrString(lastName)}
		}
		var room *types.Room
		if hasRoom {
			room = &types.Room{Name: ptrString(roomName)}
		}
		out.Rows = append(out.Rows, view.DefaultRow(op, patient, room, total, onSite))
	}
	if err := rows.Err(); err != nil {
		return view.PreOperativeDefaultView{}, fmt.Errorf("reading operations: %w", err)
	}
	return out, nil
}

// PreOperativeToolReady returns one row per operation_tool of operationID.
// When no loaded operation carries that id the view is empty.
func (e *Engine) PreOperativeToolReady(ctx context.Context, operationID int64) (view.PreOperativeToolReadyView, error) {
	out := view.PreOperativeToolReadyView{OperationID: operationID, Rows: []view.PreOperativeToolReady{}}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return out, ErrClosed
	}

	var exists bool
	if err := e.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM operation WHERE id = ?)", operationID).Scan(&exists); err != nil {
		return out, fmt.Errorf("looking up operation %d: %w", operationID, err)
	}
	if !exists {
		return out, nil
	}

	rows, err := e.db.QueryContext(ctx, preOperativeToolReadySQL, operationID)
	if err != nil {
		return out, fmt.Errorf("querying tools of operation %d: %w", operationID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			onSite            sql.NullInt64
			hasTool, hasEquip bool
			status, name      sql.NullString
		)
		if err := rows.Scan(&onSite, &hasTool, &status, &hasEquip, &name); err != nil {
			return out, fmt.Errorf("scanning tool: %w", err)
		}

		ot := types.OperationTool{OnSite: ptrInt64(onSite)}
		var tool *types.Tool
		if hasTool {
			tool = &types.Tool{}
			if status.Valid {
				s := types.EquipmentStatus(status.String)
				tool.Status = &s
			}
		}
		var eq *types.Equipment
		if hasEquip {
			eq = &types.Equipment{Name: ptrString(name)}
		}
		out.Rows = append(out.Rows, view.ToolReadyRow(ot, tool, eq))
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("reading tools: %w", err)
	}
	return out, nil
}

func ptrInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func ptrString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
