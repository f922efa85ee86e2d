package main

import (
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/weykent/runitsv/pkg/logging"
	"github.com/weykent/runitsv/pkg/output"
)

var (
	verbosity    int
	outputFormat string
	rootPrefix   string
)

// NewRootCmd builds the runitsv command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "runitsv",
		Short: "Reconcile runit service directories",
		Long: `runitsv reconciles a declarative service definition against the
filesystem: it writes run scripts, extra files, envdir entries and
registration symlinks under the runit directories, removes stale
entries, and reports exactly which paths needed to change. Running it
twice is always a no-op the second time.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text",
		"Report format: text or json")
	rootCmd.PersistentFlags().StringVar(&rootPrefix, "root", "",
		"Prefix every candidate directory with this path (for testing)")

	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func reportFormat() output.Format {
	return output.Format(outputFormat)
}

// applyRootPrefix rebases candidate directories under --root.
func applyRootPrefix(dirs []string) []string {
	if rootPrefix == "" {
		return dirs
	}
	prefixed := make([]string, len(dirs))
	for i, d := range dirs {
		prefixed[i] = filepath.Join(rootPrefix, d)
	}
	return prefixed
}
