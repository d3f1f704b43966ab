package view

import "github.com/mesh-intelligence/frontdesk/pkg/types"

// PreOperativeToolReady is one tool assigned to an operation.
type PreOperativeToolReady struct {
	EquipmentName string                `json:"equipment_name"`
	OnSite        bool                  `json:"on_site"`
	ToolStatus    types.EquipmentStatus `json:"tool_status"`
}

// PreOperativeToolReadyView lists the tools of one operation.
type PreOperativeToolReadyView struct {
	OperationID int64
	Rows        []PreOperativeToolReady
}

func (PreOperativeToolReadyView) Kind() Kind { return KindPreOperativeToolReady }
func (v PreOperativeToolReadyView) Len() int { return len(v.Rows) }
func (PreOperativeToolReadyView) isView()    {}

// BuildPreOperativeToolReady produces one row per operation_tool of the
// given operation. When no operation carries that id the view is empty.
func BuildPreOperativeToolReady(snap *types.Snapshot, operationID int64) PreOperativeToolReadyView {
	v := PreOperativeToolReadyView{OperationID: operationID, Rows: []PreOperativeToolReady{}}
	if _, ok := indexByID(snap.Operation)[operationID]; !ok {
		return v
	}
	tools := indexByID(snap.Tool)
	equipment := indexByID(snap.Equipment)

	for _, ot := range snap.OperationTool {
		if ot.OperationID == nil || *ot.OperationID != operationID {
			continue
		}
		var tool *types.Tool
		var eq *types.Equipment
		if t, ok := lookup(tools, ot.ToolID); ok {
			tool = &t
			if e, ok := lookup(equipment, t.InfoID); ok {
				eq = &e
			}
		}
		v.Rows = append(v.Rows, ToolReadyRow(ot, tool, eq))
	}
	return v
}

// ToolReadyRow assembles a row from an operation_tool and its resolved tool
// and equipment (nil when a hop fails).
func ToolReadyRow(ot types.OperationTool, tool *types.Tool, eq *types.Equipment) PreOperativeToolReady {
	row := PreOperativeToolReady{
		EquipmentName: UnknownTool,
		OnSite:        ot.IsOnSite(),
		ToolStatus:    types.EquipmentForInspection,
	}
	if tool != nil && tool.Status != nil {
		row.ToolStatus = *tool.Status
	}
	if eq != nil {
		row.EquipmentName = orNA(eq.Name)
	}
	return row
}
