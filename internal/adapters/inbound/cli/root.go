package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/report"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/tui"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	v := newSettings()

	var (
		output string
		yes    bool
		dryRun bool
		noFix  bool
	)

	cmd := &cobra.Command{
		Use:   "forward-check [path]",
		Short: "Check a Tinybird Classic project for Forward compatibility",
		Long: `forward-check inspects the datafiles of a Tinybird Classic project, reports
what Tinybird Forward does not support, offers to fix what it can and writes
a migration plan. The project path defaults to ./tinybird.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureLogger(v, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := absProject(args)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			svc := newCheckService()
			run, err := svc.Check(cmd.Context(), root, engineOptions(v))
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, tui.RenderCheckReport(run.Report))

			var results []domain.FixResult
			if !noFix && len(run.Report.Fixable()) > 0 {
				results = applyFixes(cmd, root, run, yes, domain.FixOptions{DryRun: dryRun})
				fmt.Fprint(out, tui.RenderFixResults(results))

				if anyApplied(results) {
					if run, err = svc.Refresh(cmd.Context(), root, engineOptions(v)); err != nil {
						return fmt.Errorf("re-check failed: %w", err)
					}
				}
			}

			if output != "" {
				if err := report.Write(output, run.Report, results); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				fmt.Fprintf(out, "\nReport saved to: %s\n", output)
			}
			fmt.Fprintf(out, "Overall: %s\n", run.Report.Overall)
			return nil
		},
	}

	configureRootFlags(cmd, v)
	cmd.Flags().StringVarP(&output, "output", "o", report.DefaultFileName, "migration plan file (empty to skip)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply every fix without asking")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show fixes without writing anything")
	cmd.Flags().BoolVar(&noFix, "no-fix", false, "only check and write the migration plan")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCheckCmd(v))
	cmd.AddCommand(newFixCmd(v))
	cmd.AddCommand(newReportCmd(v))
	cmd.AddCommand(newRulesCmd())
	cmd.AddCommand(newWatchCmd(v))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd(v))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
