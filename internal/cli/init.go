package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/frontdesk/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and data directories",
		Long: `Init writes config.yaml with default settings to the configuration
directory, unless one exists, and creates the data directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a)
		},
	}
}

func runInit(cmd *cobra.Command, a *app) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return err
	}
	configPath := filepath.Join(configDir, configFileExt)
	written, err := writeConfigIfMissing(configPath, defaultConfig())
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.MkdirAll(a.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	out := cmd.OutOrStdout()
	if written {
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Kept existing %s\n", configPath)
	}
	fmt.Fprintf(out, "Data directory %s\n", a.dataDir)
	return nil
}
