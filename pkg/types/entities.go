package types

// Row is implemented by every mirrored entity. Every field of a row is
// optional because the backend may omit it; an absent id yields ok=false.
type Row interface {
	RowID() (id int64, ok bool)
}

func optionalID(id *int64) (int64, bool) {
	if id == nil {
		return 0, false
	}
	return *id, true
}

// Equipment is a catalogue entry describing a kind of tool.
type Equipment struct {
	ID     *int64  `json:"id"`
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// Room is an operating or ward room.
type Room struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

// Tool is a physical instance of an Equipment entry.
type Tool struct {
	ID     *int64           `json:"id"`
	InfoID *int64           `json:"info_id"` // Equipment.id
	Status *EquipmentStatus `json:"status"`
}

// Staff is a member of the hospital staff.
type Staff struct {
	ID        *int64  `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
}

// ToolReservation reserves a tool for a staff member.
type ToolReservation struct {
	ID         *int64  `json:"id"`
	ToolID     *int64  `json:"tool_id"`
	StaffID    *int64  `json:"staff_id"`
	ReservedAt *string `json:"reserved_at"`
}

// ToolDesignatedRoom assigns a tool to the room it is kept in.
type ToolDesignatedRoom struct {
	ID     *int64 `json:"id"`
	ToolID *int64 `json:"tool_id"`
	RoomID *int64 `json:"room_id"`
}

// ToolInspector assigns a staff member to inspect a tool.
type ToolInspector struct {
	ID      *int64 `json:"id"`
	ToolID  *int64 `json:"tool_id"`
	StaffID *int64 `json:"staff_id"`
}

// Patient is a person admitted for an operation.
type Patient struct {
	ID        *int64  `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Operation is a scheduled surgical operation. StartTime and EndTime hold the
// backend's literal timestamp strings; they are never parsed by the mirror.
type Operation struct {
	ID        *int64           `json:"id"`
	Label     *string          `json:"label"`
	Status    *OperationStatus `json:"status"`
	PatientID *int64           `json:"patient_id"`
	RoomID    *int64           `json:"room_id"`
	StartTime *string          `json:"start_time"`
	EndTime   *string          `json:"end_time"`
}

// PatientWardRoom places a patient in a ward room.
type PatientWardRoom struct {
	ID        *int64 `json:"id"`
	PatientID *int64 `json:"patient_id"`
	RoomID    *int64 `json:"room_id"`
}

// PatientWardAssistant assigns a staff member to a patient on the ward.
type PatientWardAssistant struct {
	ID        *int64 `json:"id"`
	PatientID *int64 `json:"patient_id"`
	StaffID   *int64 `json:"staff_id"`
}

// OperationStaff assigns a staff member to an operation.
type OperationStaff struct {
	ID          *int64  `json:"id"`
	OperationID *int64  `json:"operation_id"`
	StaffID     *int64  `json:"staff_id"`
	Role        *string `json:"role"`
}

// OperationTool links a tool to an operation. OnSite is tri-state: only the
// literal value 1 means the tool is on site.
type OperationTool struct {
	ID          *int64 `json:"id"`
	OperationID *int64 `json:"operation_id"`
	ToolID      *int64 `json:"tool_id"`
	OnSite      *int64 `json:"on_site"`
}

// IsOnSite reports whether the on_site flag is exactly 1.
func (ot OperationTool) IsOnSite() bool {
	return ot.OnSite != nil && *ot.OnSite == 1
}

func (e Equipment) RowID() (int64, bool)            { return optionalID(e.ID) }
func (r Room) RowID() (int64, bool)                 { return optionalID(r.ID) }
func (t Tool) RowID() (int64, bool)                 { return optionalID(t.ID) }
func (s Staff) RowID() (int64, bool)                { return optionalID(s.ID) }
func (r ToolReservation) RowID() (int64, bool)      { return optionalID(r.ID) }
func (r ToolDesignatedRoom) RowID() (int64, bool)   { return optionalID(r.ID) }
func (r ToolInspector) RowID() (int64, bool)        { return optionalID(r.ID) }
func (p Patient) RowID() (int64, bool)              { return optionalID(p.ID) }
func (o Operation) RowID() (int64, bool)            { return optionalID(o.ID) }
func (r PatientWardRoom) RowID() (int64, bool)      { return optionalID(r.ID) }
func (r PatientWardAssistant) RowID() (int64, bool) { return optionalID(r.ID) }
func (r OperationStaff) RowID() (int64, bool)       { return optionalID(r.ID) }
func (ot OperationTool) RowID() (int64, bool)       { return optionalID(ot.ID) }

// Ptr returns a pointer to v. It keeps fixtures with optional fields short.
func Ptr[T any](v T) *T { return &v }
