package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	projectDir  string
	configName  string
	listBoards  bool
	jsonOutput  bool
	nameFilter  string
	rulesFile   string
	historyPath string
	tagSuffix   string
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "relforge [board|all]",
		Short: "Relforge - firmware variant release builder",
		Long: `Relforge builds and packages firmware board variants with a tagged
version suffix, without modifying the project's source tree.

Modes:
  relforge --list-boards     list all boards and their variants
  relforge <board>           build and package every variant of a board
  relforge all               build and package every variant of every board
  relforge                   package whatever the build directory holds

Each variant build temporarily patches the project version declaration,
appends the variant's sdkconfig overrides (plus their implied
dependencies), invokes the toolchain, and archives the merged binary
under releases/. Already-packaged variants are skipped.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listBoards {
				return runList(cmd.Context())
			}
			if len(args) == 0 {
				return runPackageCurrent(cmd.Context())
			}
			return runRelease(cmd.Context(), args[0])
		},
	}

	rootCmd.Flags().StringVar(&projectDir, "project-dir", ".", "project root directory")
	rootCmd.Flags().StringVarP(&configName, "config", "c", "config.json", "board config filename")
	rootCmd.Flags().BoolVar(&listBoards, "list-boards", false, "list all boards and variants")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "with --list-boards, emit JSON")
	rootCmd.Flags().StringVar(&nameFilter, "name", "", "only build the variant with this name")
	rootCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML file with extra auto-select rules")
	rootCmd.Flags().StringVar(&historyPath, "history", "", "SQLite release history database path")
	rootCmd.Flags().StringVar(&tagSuffix, "suffix", "-verdure", "version tag suffix")

	return rootCmd
}
