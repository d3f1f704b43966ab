package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mesh-intelligence/frontdesk/internal/display"
	"github.com/mesh-intelligence/frontdesk/internal/view"
)

// printView writes v as a table, or as indented JSON in --json mode.
func printView(w io.Writer, v view.View, jsonMode bool, now time.Time) error {
	if !jsonMode {
		return display.RenderView(w, v, now)
	}
	var payload any
	switch v := v.(type) {
	case view.PreOperativeDefaultView:
		payload = v.Rows
	case view.PreOperativeToolReadyView:
		payload = v.Rows
	default:
		return fmt.Errorf("cannot print view %T", v)
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
