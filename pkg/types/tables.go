package types

import "strings"

// TableName identifies one of the mirrored backend tables.
type TableName string

// Standard table names. These are also the field names of the initialize
// snapshot object.
const (
	TableEquipment            TableName = "equipment"
	TableRoom                 TableName = "room"
	TableTool                 TableName = "tool"
	TableStaff                TableName = "staff"
	TableToolReservation      TableName = "tool_reservation"
	TableToolDesignatedRoom   TableName = "tool_designated_room"
	TableToolInspector        TableName = "tool_inspector"
	TablePatient              TableName = "patient"
	TableOperation            TableName = "operation"
	TablePatientWardRoom      TableName = "patient_ward_room"
	TablePatientWardAssistant TableName = "patient_ward_assistant"
	TableOperationStaff       TableName = "operation_staff"
	TableOperationTool        TableName = "operation_tool"
)

// StandardTableNames lists all mirrored tables in snapshot order.
var StandardTableNames = []TableName{
	TableEquipment,
	TableRoom,
	TableTool,
	TableStaff,
	TableToolReservation,
	TableToolDesignatedRoom,
	TableToolInspector,
	TablePatient,
	TableOperation,
	TablePatientWardRoom,
	TablePatientWardAssistant,
	TableOperationStaff,
	TableOperationTool,
}

// ParseTableName resolves a wire table name. The backend sends names either
// in snake case ("operation_tool") or flattened to lowercase
// ("operationtool"); both spellings map to the same table.
func ParseTableName(s string) (TableName, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "")
	for _, name := range StandardTableNames {
		if strings.ReplaceAll(string(name), "_", "") == key {
			return name, nil
		}
	}
	return "", ErrTableNotFound
}

func (n TableName) String() string { return string(n) }
