package sqlite

import "github.com/mesh-intelligence/frontdesk/pkg/types"

// Every mirrored table keeps its id as a plain nullable column: the backend
// may send rows without an id or with duplicate ids, and the first row in
// insertion order (lowest rowid) wins a lookup.
const (
	createEquipment = `CREATE TABLE equipment (
    id INTEGER,
    name TEXT,
    status TEXT
);`

	createRoom = `CREATE TABLE room (
    id INTEGER,
    name TEXT
);`

	createTool = `CREATE TABLE tool (
    id INTEGER,
    info_id INTEGER,
    status TEXT
);`

	createStaff = `CREATE TABLE staff (
    id INTEGER,
    first_name TEXT,
    last_name TEXT,
    role TEXT
);`

	createToolReservation = `CREATE TABLE tool_reservation (
    id INTEGER,
    tool_id INTEGER,
    staff_id INTEGER,
    reserved_at TEXT
);`

	createToolDesignatedRoom = `CREATE TABLE tool_designated_room (
    id INTEGER,
    tool_id INTEGER,
    room_id INTEGER
);`

	createToolInspector = `CREATE TABLE tool_inspector (
    id INTEGER,
    tool_id INTEGER,
    staff_id INTEGER
);`

	createPatient = `CREATE TABLE patient (
    id INTEGER,
    first_name TEXT,
    last_name TEXT
);`

	createOperation = `CREATE TABLE operation (
    id INTEGER,
    label TEXT,
    status TEXT,
    patient_id INTEGER,
    room_id INTEGER,
    start_time TEXT,
    end_time TEXT
);`

	createPatientWardRoom = `CREATE TABLE patient_ward_room (
    id INTEGER,
    patient_id INTEGER,
    room_id INTEGER
);`

	createPatientWardAssistant = `CREATE TABLE patient_ward_assistant (
    id INTEGER,
    patient_id INTEGER,
    staff_id INTEGER
);`

	createOperationStaff = `CREATE TABLE operation_staff (
    id INTEGER,
    operation_id INTEGER,
    staff_id INTEGER,
    role TEXT
);`

	createOperationTool = `CREATE TABLE operation_tool (
    id INTEGER,
    operation_id INTEGER,
    tool_id INTEGER,
    on_site INTEGER
);`
)

// Index DDL for the join keys the views use.
const (
	idxEquipmentID            = `CREATE INDEX idx_equipment_id ON equipment(id);`
	idxRoomID                 = `CREATE INDEX idx_room_id ON room(id);`
	idxToolID                 = `CREATE INDEX idx_tool_id ON tool(id);`
	idxPatientID              = `CREATE INDEX idx_patient_id ON patient(id);`
	idxOperationID            = `CREATE INDEX idx_operation_id ON operation(id);`
	idxOperationToolOperation = `CREATE INDEX idx_operation_tool_operation ON operation_tool(operation_id);`
)

// tableMapping lists every table with the columns copied from its rows, in
// the order the tables are created and loaded.
var tableMapping = []struct {
	table   types.TableName
	ddl     string
	columns []string
}{
	{types.TableEquipment, createEquipment, []string{"id", "name", "status"}},
	{types.TableRoom, createRoom, []string{"id", "name"}},
	{types.TableTool, createTool, []string{"id", "info_id", "status"}},
	{types.TableStaff, createStaff, []string{"id", "first_name", "last_name", "role"}},
	{types.TableToolReservation, createToolReservation, []string{"id", "tool_id", "staff_id", "reserved_at"}},
	{types.TableToolDesignatedRoom, createToolDesignatedRoom, []string{"id", "tool_id", "room_id"}},
	{types.TableToolInspector, createToolInspector, []string{"id", "tool_id", "staff_id"}},
	{types.TablePatient, createPatient, []string{"id", "first_name", "last_name"}},
	{types.TableOperation, createOperation, []string{"id", "label", "status", "patient_id", "room_id", "start_time", "end_time"}},
	{types.TablePatientWardRoom, createPatientWardRoom, []string{"id", "patient_id", "room_id"}},
	{types.TablePatientWardAssistant, createPatientWardAssistant, []string{"id", "patient_id", "staff_id"}},
	{types.TableOperationStaff, createOperationStaff, []string{"id", "operation_id", "staff_id", "role"}},
	{types.TableOperationTool, createOperationTool, []string{"id", "operation_id", "tool_id", "on_site"}},
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxEquipmentID,
	idxRoomID,
	idxToolID,
	idxPatientID,
	idxOperationID,
	idxOperationToolOperation,
}
