package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/ans-renamer/internal/config"
	"github.com/oshokin/ans-renamer/internal/logger"
	"github.com/oshokin/ans-renamer/internal/service/renamer"
	"github.com/oshokin/ans-renamer/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// rootDir overrides the configured root directory.
	rootDir string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd renames the fixed folder table when run without a subcommand.
	rootCmd = &cobra.Command{
		Use:   "ans-renamer",
		Short: "Normalize ANS data folder names",
		Long: `Renames the ANS data folders under the root directory (default "arquivos")
from their human-readable names to ASCII snake_case.

Each folder of the fixed table is attempted once. Folders that are missing or
cannot be moved are skipped silently, and the completion message is printed
in every case. Use "plan" to preview and "status" to inspect the last run.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
		RunE:              runRename,
	}
)

// Execute runs the ans-renamer CLI and exits with non-zero status on error.
func Execute() {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+")")
	flags.StringVarP(&rootDir, "root", "r", "", "directory holding the folders to rename (overrides configuration)")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides configuration)")

	rootCmd.AddCommand(renameCmd, slugCmd, planCmd, statusCmd, manifestCmd)
}

// setupLogging applies the log level from the flag or, failing that, from settings.
func setupLogging(_ *cobra.Command, _ []string) error {
	level := logLevel

	if level == "" {
		// Errors surface later, from the command that actually needs the settings.
		if cfg, err := config.Load(configPath); err == nil {
			level = cfg.LogLevel
		}
	}

	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, level)
	}

	logger.SetLevel(parsed)

	return nil
}

func runRename(cmd *cobra.Command, _ []string) error {
	return renamer.Run(cmd.Context(), &renamer.Options{
		ConfigPath: configPath,
		Root:       rootDir,
		Output:     cmd.OutOrStdout(),
	})
}
