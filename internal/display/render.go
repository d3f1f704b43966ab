package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mesh-intelligence/frontdesk/internal/view"
)

// RenderView writes v as a column table. now drives the schedule column of
// operation lists.
func RenderView(w io.Writer, v view.View, now time.Time) error {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	var total int
	var noun string
	switch v := v.(type) {
	case view.PreOperativeDefaultView:
		total, noun = len(v.Rows), "operation(s)"
		if total == 0 {
			_, err := fmt.Fprintln(w, "No operations found.")
			return err
		}
		fmt.Fprintln(tw, "ID\tLABEL\tPATIENT FULL NAME\tROOM NAME\tTOOLS READY\tSTARTING OPERATION\tENDING OPERATION\tSCHEDULE")
		fmt.Fprintln(tw, "--\t-----\t-----------------\t---------\t-----------\t------------------\t----------------\t--------")
		for _, r := range v.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				opID(r.OpID),
				r.OpLabel,
				r.PatientFullName,
				r.RoomName,
				toolsReady(r),
				FormatDate(r.StartTime),
				FormatDate(r.EndTime),
				Code(r.StartTime, r.EndTime, now),
			)
		}
	case view.PreOperativeToolReadyView:
		total, noun = len(v.Rows), "tool(s)"
		if total == 0 {
			_, err := fmt.Fprintf(w, "No tools found for operation %d.\n", v.OperationID)
			return err
		}
		fmt.Fprintln(tw, "EQUIPMENT NAME\tEQUIPMENT ON SITE\tTOOL STATUS")
		fmt.Fprintln(tw, "--------------\t-----------------\t-----------")
		for _, r := range v.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.EquipmentName, yesNo(r.OnSite), r.ToolStatus)
		}
	default:
		return fmt.Errorf("cannot render view %T", v)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Total: %d %s\n", total, noun)
	return err
}

func opID(id *int64) string {
	if id == nil {
		return view.NotAvailable
	}
	return strconv.FormatInt(*id, 10)
}

func toolsReady(r view.PreOperativeDefault) string {
	return fmt.Sprintf("%d/%d (%s%%)", r.OnSiteTools, r.TotalTools, strconv.FormatFloat(r.OnSitePercentage, 'f', -1, 64))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Notices shown above a panel while the mirror is not current.
const (
	NoticeAwaitingInitialize = "Waiting for the backend to send its tables."
	NoticeStale              = "Connection lost, showing the last known state until the backend resends its tables."
)

// ConnectionNotice returns the line to show for the mirror's connection
// state, or "" when the mirror is current.
func ConnectionNotice(initialized, stale bool) string {
	switch {
	case !initialized:
		return NoticeAwaitingInitialize
	case stale:
		return NoticeStale
	default:
		return ""
	}
}
