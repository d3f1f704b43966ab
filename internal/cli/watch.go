package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/frontdesk/internal/display"
	"github.com/mesh-intelligence/frontdesk/internal/frontdesk"
	"github.com/mesh-intelligence/frontdesk/internal/metrics"
	"github.com/mesh-intelligence/frontdesk/internal/nav"
	"github.com/mesh-intelligence/frontdesk/internal/paths"
	"github.com/mesh-intelligence/frontdesk/internal/recording"
	"github.com/mesh-intelligence/frontdesk/internal/transport"
)

type watchFlags struct {
	panel       string
	feed        string
	record      string
	metricsAddr string
	interval    time.Duration
}

func newWatchCmd(a *app) *cobra.Command {
	var f watchFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the backend and print a panel whenever it changes",
		Long: `Watch connects to the backend, mirrors its tables and prints the chosen
panel every time the mirror changes. The render loop checks for one inbound
message per tick and never blocks on the network.

Example:
  frontdesk watch
  frontdesk watch --panel in-progress --record today.jsonl
  frontdesk watch --feed nats --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, a, f)
		},
	}
	cmd.Flags().StringVar(&f.panel, "panel", string(nav.PanelPreOperative), "panel to show (pre-operative, in-progress)")
	cmd.Flags().StringVar(&f.feed, "feed", "", "feed to use: websocket or nats (overrides config.yaml)")
	cmd.Flags().StringVar(&f.record, "record", "", "append inbound messages to this JSONL file, relative to the data directory")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (overrides config.yaml)")
	cmd.Flags().DurationVar(&f.interval, "interval", 100*time.Millisecond, "render loop tick")
	return cmd
}

func runWatch(cmd *cobra.Command, a *app, f watchFlags) error {
	panel, err := nav.ParsePanel(f.panel)
	if err != nil {
		return err
	}
	cfg := a.cfg
	if f.feed != "" {
		cfg.Feed = f.feed
	}
	if f.metricsAddr != "" {
		cfg.MetricsAddr = f.metricsAddr
	}
	if f.record != "" {
		cfg.RecordPath = f.record
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if f.interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", f.interval)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, reg, a.log)
	}

	session := frontdesk.New(frontdesk.WithLogger(a.log), frontdesk.WithMetrics(m))
	if err := session.Open(panel); err != nil {
		return err
	}

	var handler transport.Handler = session
	if cfg.RecordPath != "" {
		if err := os.MkdirAll(a.dataDir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		path := paths.ResolveIn(a.dataDir, cfg.RecordPath)
		rec, err := recording.Create(path)
		if err != nil {
			return err
		}
		defer rec.Close()
		a.log.WithFields(logrus.Fields{"path": path, "session": rec.Session()}).Info("recording inbound messages")
		handler = rec.Tee(session, func(err error) {
			a.log.WithError(err).Warn("recording message")
		})
	}

	feed, err := transport.New(cfg, a.log)
	if err != nil {
		return err
	}
	feedDone := make(chan error, 1)
	go func() { feedDone <- feed.Run(ctx, handler) }()

	out := cmd.OutOrStdout()
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	var shown uint64
	notice := ""
	for {
		if n := connectionNotice(session); n != notice {
			notice = n
			if n != "" && !a.flags.jsonMode {
				fmt.Fprintln(out, n)
			}
		}
		select {
		case <-ctx.Done():
			return <-feedDone
		case err := <-feedDone:
			return err
		case <-ticker.C:
			if !session.Poll() {
				continue
			}
			gen := session.Store().Generation()
			if gen == shown {
				continue
			}
			shown = gen
			v, err := session.Visible(panel)
			if err != nil {
				return err
			}
			if err := printView(out, v, a.flags.jsonMode, time.Now()); err != nil {
				return err
			}
		}
	}
}

// connectionNotice describes the session's mirror state for the watch output.
func connectionNotice(s *frontdesk.Session) string {
	store := s.Store()
	return display.ConnectionNotice(store.Initialized(), store.Stale())
}

// serveMetrics exposes reg on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log logrus.FieldLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server stopped")
	}
}
