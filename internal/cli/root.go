// Package cli implements the frontdesk command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/frontdesk/internal/paths"
	"github.com/mesh-intelligence/frontdesk/pkg/types"
)

// exitUserError is the process exit code when a command fails.
const exitUserError = 1

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	logLevel  string
	jsonMode  bool
}

// app is the state every subcommand shares once PersistentPreRunE ran.
type app struct {
	flags   rootFlags
	cfg     types.Config
	dataDir string
	log     *logrus.Logger
}

// NewRootCmd creates the top-level "frontdesk" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}

	root := &cobra.Command{
		Use:   "frontdesk",
		Short: "Operating-room front desk mirror",
		Long: `Frontdesk mirrors the hospital backend's operation tables in memory
and shows pre-operative and in-progress operations with their tool readiness.`,
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory for recordings (default: platform data dir)")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config.yaml)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newWatchCmd(a))
	root.AddCommand(newReplayCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitUserError)
	}
}

// load resolves directories, reads config.yaml and configures logging.
func (a *app) load(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return err
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if err := configureLogger(a.log, cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	a.log.SetOutput(cmd.ErrOrStderr())

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	a.cfg = cfg
	a.dataDir = dataDir
	a.log.WithFields(logrus.Fields{"config_dir": configDir, "data_dir": dataDir}).Debug("configuration loaded")
	return nil
}
