package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/oshokin/ans-renamer/internal/service/deps"
	"github.com/oshokin/ans-renamer/internal/service/planner"
	"github.com/oshokin/ans-renamer/internal/service/renamer"
	"github.com/oshokin/ans-renamer/internal/service/status"
)

// errUnknownLogLevel is returned for a --log-level or log_level that zap does not know.
var errUnknownLogLevel = errors.New("unknown log level")

var (
	// noRecursive limits slug mode to the first level.
	noRecursive bool
	// resolvedPath is a pip freeze listing for manifest checks.
	resolvedPath string
	// indexPath is a YAML index of available versions for manifest checks.
	indexPath string

	renameCmd = &cobra.Command{
		Use:   "rename",
		Short: "Rename the fixed folder table (same as running without a subcommand)",
		Args:  cobra.NoArgs,
		RunE:  runRename,
	}

	slugCmd = &cobra.Command{
		Use:   "slug [dir]",
		Short: "Rename every folder to its ASCII snake_case slug",
		Long: `Walks the directory (default: the configured root) and renames every folder
whose slug differs from its lowercased name. Each rename and each failure is
printed; failures never stop the walk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options := &renamer.Options{
				ConfigPath: configPath,
				Root:       rootDir,
				Output:     cmd.OutOrStdout(),
			}

			if len(args) == 1 {
				options.Root = args[0]
			}

			if cmd.Flags().Changed("no-recursive") {
				recursive := !noRecursive
				options.Recursive = &recursive
			}

			return renamer.RunSlug(cmd.Context(), options)
		},
	}

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Show what the fixed table would do, without renaming anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return planner.Run(cmd.Context(), &planner.Options{
				ConfigPath: configPath,
				Root:       rootDir,
				Output:     cmd.OutOrStdout(),
			})
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the journal of the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return status.Run(cmd.Context(), &status.Options{
				ConfigPath: configPath,
				Output:     cmd.OutOrStdout(),
			})
		},
	}

	manifestCmd = &cobra.Command{
		Use:   "manifest",
		Short: "Work with the dashboard's Python dependency manifest",
	}

	manifestCheckCmd = &cobra.Command{
		Use:   "check [requirements]",
		Short: "Validate the manifest and, optionally, a version selection against it",
		Long: `Parses the manifest (default requirements.txt). With --resolved, checks a pip
freeze listing against every constraint. With --index, selects the newest
fitting version of every package from a YAML index and checks that selection.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options := &deps.Options{
				ResolvedPath: resolvedPath,
				IndexPath:    indexPath,
				Output:       cmd.OutOrStdout(),
			}

			if len(args) == 1 {
				options.ManifestPath = args[0]
			}

			return deps.Check(cmd.Context(), options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	slugCmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "only rename the first level")

	manifestCheckCmd.Flags().StringVar(&resolvedPath, "resolved", "", "pip freeze output to check")
	manifestCheckCmd.Flags().StringVar(&indexPath, "index", "", "YAML map of package -> available versions")
	manifestCmd.AddCommand(manifestCheckCmd)
}
