package types

import "slices"

// Snapshot holds one array per mirrored table. It is both the decoded
// initialize payload and the store's immutable state: once handed to a
// Mirror, neither the snapshot nor its slices are modified again.
type Snapshot struct {
	Equipment            []Equipment            `json:"equipment"`
	Room                 []Room                 `json:"room"`
	Tool                 []Tool                 `json:"tool"`
	Staff                []Staff                `json:"staff"`
	ToolReservation      []ToolReservation      `json:"tool_reservation"`
	ToolDesignatedRoom   []ToolDesignatedRoom   `json:"tool_designated_room"`
	ToolInspector        []ToolInspector        `json:"tool_inspector"`
	Patient              []Patient              `json:"patient"`
	Operation            []Operation            `json:"operation"`
	PatientWardRoom      []PatientWardRoom      `json:"patient_ward_room"`
	PatientWardAssistant []PatientWardAssistant `json:"patient_ward_assistant"`
	OperationStaff       []OperationStaff       `json:"operation_staff"`
	OperationTool        []OperationTool        `json:"operation_tool"`
}

// Clone returns a copy whose slices do not alias s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return &Snapshot{}
	}
	return &Snapshot{
		Equipment:            slices.Clone(s.Equipment),
		Room:                 slices.Clone(s.Room),
		Tool:                 slices.Clone(s.Tool),
		Staff:                slices.Clone(s.Staff),
		ToolReservation:      slices.Clone(s.ToolReservation),
		ToolDesignatedRoom:   slices.Clone(s.ToolDesignatedRoom),
		ToolInspector:        slices.Clone(s.ToolInspector),
		Patient:              slices.Clone(s.Patient),
		Operation:            slices.Clone(s.Operation),
		PatientWardRoom:      slices.Clone(s.PatientWardRoom),
		PatientWardAssistant: slices.Clone(s.PatientWardAssistant),
		OperationStaff:       slices.Clone(s.OperationStaff),
		OperationTool:        slices.Clone(s.OperationTool),
	}
}
