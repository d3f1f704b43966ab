package types

import (
	"encoding/json"
	"fmt"
)

// OperationStatus is the lifecycle stage of an operation.
type OperationStatus string

// Operation statuses. The set is closed.
const (
	StatusPreOperative  OperationStatus = "PreOperative"
	StatusInProgress    OperationStatus = "InProgress"
	StatusPostOperative OperationStatus = "PostOperative"
	StatusRecovery      OperationStatus = "Recovery"
	StatusDischarge     OperationStatus = "Discharge"
)

// OperationStatuses lists every operation status in lifecycle order.
var OperationStatuses = []OperationStatus{
	StatusPreOperative,
	StatusInProgress,
	StatusPostOperative,
	StatusRecovery,
	StatusDischarge,
}

// Valid reports whether s is one of the known operation statuses.
func (s OperationStatus) Valid() bool {
	for _, known := range OperationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s OperationStatus) String() string { return string(s) }

// UnmarshalJSON rejects values outside the closed set.
func (s *OperationStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("operation status: %w", err)
	}
	v := OperationStatus(raw)
	if !v.Valid() {
		return fmt.Errorf("%w: operation status %q", ErrInvalidEnum, raw)
	}
	*s = v
	return nil
}

// EquipmentStatus is the operational state of a physical tool. The backend
// owns the set of values; any string is kept as sent.
type EquipmentStatus string

// EquipmentForInspection is the status reported for a tool that cannot be
// resolved.
const EquipmentForInspection EquipmentStatus = "ForInspection"

// Valid reports whether s is non-empty. Unrecognised values are carried
// through unchanged.
func (s EquipmentStatus) Valid() bool { return s != "" }

func (s EquipmentStatus) String() string { return string(s) }
