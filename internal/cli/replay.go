package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/frontdesk/internal/display"
	"github.com/mesh-intelligence/frontdesk/internal/frontdesk"
	"github.com/mesh-intelligence/frontdesk/internal/nav"
	"github.com/mesh-intelligence/frontdesk/internal/recording"
	"github.com/mesh-intelligence/frontdesk/internal/sqlite"
	"github.com/mesh-intelligence/frontdesk/internal/view"
)

// Query engines for replay.
const (
	engineGo  = "go"
	engineSQL = "sql"
)

type replayFlags struct {
	panel     string
	operation int64
	search    string
	engine    string
	at        string
}

func newReplayCmd(a *app) *cobra.Command {
	var f replayFlags
	cmd := &cobra.Command{
		Use:   "replay <recording.jsonl>",
		Short: "Apply a recording and print a panel",
		Long: `Replay feeds every message of a recording through the mirror, in order,
and prints the resulting panel. Malformed lines and messages are skipped.

Use --operation to drill into the tool list of one operation, and
--engine sql to evaluate the view with the SQLite engine instead.

Example:
  frontdesk replay today.jsonl
  frontdesk replay today.jsonl --panel in-progress --search kim
  frontdesk replay today.jsonl --operation 1 --engine sql --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, a, f, args[0])
		},
	}
	cmd.Flags().StringVar(&f.panel, "panel", string(nav.PanelPreOperative), "panel to show (pre-operative, in-progress)")
	cmd.Flags().Int64Var(&f.operation, "operation", 0, "show the tool list of this operation id")
	cmd.Flags().StringVar(&f.search, "search", "", "keep operations whose label, patient or room contains this text")
	cmd.Flags().StringVar(&f.engine, "engine", engineGo, "query engine: go or sql")
	cmd.Flags().StringVar(&f.at, "at", "", "evaluate schedule codes at this time (2006-01-02 15:04:05, backend zone)")
	return cmd
}

func runReplay(cmd *cobra.Command, a *app, f replayFlags, path string) error {
	panel, err := nav.ParsePanel(f.panel)
	if err != nil {
		return err
	}
	now := time.Now()
	if f.at != "" {
		now, err = time.ParseInLocation(display.Layout, f.at, display.BackendZone)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
	}

	entries, err := recording.Load(path)
	if err != nil {
		return err
	}

	session := frontdesk.New(frontdesk.WithLogger(a.log))
	if err := session.Open(panel); err != nil {
		return err
	}
	applied := 0
	for _, e := range entries {
		if session.OnMessage([]byte(e.Message)) {
			applied++
		}
	}
	a.log.WithFields(logrus.Fields{
		"path":    path,
		"entries": len(entries),
		"applied": applied,
		"dropped": len(entries) - applied,
	}).Info("recording replayed")

	drill := cmd.Flags().Changed("operation")
	if err := session.SetSearch(panel, f.search); err != nil {
		return err
	}

	var v view.View
	switch f.engine {
	case engineGo:
		if drill {
			if err := session.Select(panel, f.operation); err != nil {
				return err
			}
		}
		v, err = session.Visible(panel)
		if err != nil {
			return err
		}
	case engineSQL:
		q := view.DefaultQuery()
		if drill {
			q = view.ToolReadyQuery(f.operation)
		}
		eng, err := sqlite.Open()
		if err != nil {
			return err
		}
		defer eng.Close()
		built, err := eng.Evaluate(cmd.Context(), session.Store().Snapshot(), q)
		if err != nil {
			return err
		}
		v = panel.Filter(built, f.search)
	default:
		return fmt.Errorf("unknown engine %q (want %s or %s)", f.engine, engineGo, engineSQL)
	}

	return printView(cmd.OutOrStdout(), v, a.flags.jsonMode, now)
}
