package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/weykent/runitsv/pkg/config"
	"github.com/weykent/runitsv/pkg/filesystem"
	"github.com/weykent/runitsv/pkg/output"
	"github.com/weykent/runitsv/pkg/reconciler"
)

func newApplyCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply <definition-file>",
		Short: "Reconcile a service definition against the filesystem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(args[0], dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Detect changes without applying them")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <definition-file>",
		Short: "Report pending changes without mutating anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(args[0], true)
		},
	}
}

func runReconcile(definitionPath string, dryRun bool) error {
	def, err := config.Load(definitionPath)
	if err != nil {
		return err
	}
	def.SvDirectory = applyRootPrefix(def.SvDirectory)
	def.ServiceDirectory = applyRootPrefix(def.ServiceDirectory)
	def.InitDDirectory = applyRootPrefix(def.InitDDirectory)

	fsys := filesystem.NewOS()
	plan, err := def.BuildPlan(fsys)
	if err != nil {
		return err
	}

	report, err := reconciler.New(fsys, dryRun).Run(plan)
	if err != nil {
		return err
	}
	return output.Render(os.Stdout, report, reportFormat())
}
