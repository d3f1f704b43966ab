package view

import (
	"strings"

	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// PreOperativeDefault is one operation joined with its patient, its room and
// its tool readiness.
type PreOperativeDefault struct {
	OpID             *int64                `json:"op_id"`
	OpLabel          string                `json:"op_label"`
	PatientFullName  string                `json:"patient_full_name"`
	OpStatus         types.OperationStatus `json:"op_status"`
	RoomName         string                `json:"room_name"`
	TotalTools       int                   `json:"total_tools"`
	OnSiteTools      int                   `json:"on_site_tools"`
	OnSiteRatio      float64               `json:"on_site_ratio"`
	OnSitePercentage float64               `json:"on_site_percentage"`
	StartTime        string                `json:"start_time"`
	EndTime          string                `json:"end_time"`
}

// PreOperativeDefaultView is the unfiltered operation list. Rows follow the
// mirror's operation order.
type PreOperativeDefaultView struct {
	Rows []PreOperativeDefault
}

func (PreOperativeDefaultView) Kind() Kind { return KindPreOperativeDefault }
func (v PreOperativeDefaultView) Len() int { return len(v.Rows) }
func (PreOperativeDefaultView) isView()    {}

// BuildPreOperativeDefault produces one row per operation.
func BuildPreOperativeDefault(snap *types.Snapshot) PreOperativeDefaultView {
	patients := indexByID(snap.Patient)
	rooms := indexByID(snap.Room)

	total := make(map[int64]int)
	onSite := make(map[int64]int)
	for _, ot := range snap.OperationTool {
		if ot.OperationID == nil {
			continue
		}
		total[*ot.OperationID]++
		if ot.IsOnSite() {
			onSite[*ot.OperationID]++
		}
	}

	rows := make([]PreOperativeDefault, 0, len(snap.Operation))
	for _, op := range snap.Operation {
		var patient *types.Patient
		if p, ok := lookup(patients, op.PatientID); ok {
			patient = &p
		}
		var room *types.Room
		if r, ok := lookup(rooms, op.RoomID); ok {
			room = &r
		}
		var t, n int
		if op.ID != nil {
			t, n = total[*op.ID], onSite[*op.ID]
		}
		rows = append(rows, DefaultRow(op, patient, room, t, n))
	}
	return PreOperativeDefaultView{Rows: rows}
}

// DefaultRow assembles a row from an operation and its already-resolved
// patient and room (nil when unmatched) and tool counts. It holds every
// fallback rule, so other query engines produce identical rows.
func DefaultRow(op types.Operation, patient *types.Patient, room *types.Room, totalTools, onSiteTools int) PreOperativeDefault {
	row := PreOperativeDefault{
		OpID:            op.ID,
		OpLabel:         orNA(op.Label),
		PatientFullName: NotAvailable,
		OpStatus:        types.StatusDischarge,
		RoomName:        NotAvailable,
		TotalTools:      totalTools,
		OnSiteTools:     onSiteTools,
		StartTime:       orNA(op.StartTime),
		EndTime:         orNA(op.EndTime),
	}
	if op.Status != nil {
		row.OpStatus = *op.Status
	}
	if patient != nil {
		row.PatientFullName = orNA(patient.FirstName) + " " + orNA(patient.LastName)
	}
	if room != nil {
		row.RoomName = orNA(room.Name)
	}
	row.OnSiteRatio = Ratio(onSiteTools, totalTools)
	row.OnSitePercentage = row.OnSiteRatio * 100
	return row
}

// Ratio returns part/whole, or 0 when whole is zero.
func Ratio(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

// FilterByStatus keeps the rows whose status equals status. Presentation
// layers apply it per panel; the view itself stays unfiltered.
func FilterByStatus(rows []PreOperativeDefault, status types.OperationStatus) []PreOperativeDefault {
	out := make([]PreOperativeDefault, 0, len(rows))
	for _, r := range rows {
		if r.OpStatus == status {
			out = append(out, r)
		}
	}
	return out
}

// Search keeps the rows whose label, patient name or room name contains
// text, ignoring case. An empty text keeps every row.
func Search(rows []PreOperativeDefault, text string) []PreOperativeDefault {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return rows
	}
	out := make([]PreOperativeDefault, 0, len(rows))
	for _, r := range rows {
		for _, field := range []string{r.OpLabel, r.PatientFullName, r.RoomName} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
