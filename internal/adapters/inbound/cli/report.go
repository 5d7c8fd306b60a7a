package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/report"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

func newReportCmd(v *viper.Viper) *cobra.Command {
	var (
		output string
		cached bool
	)

	cmd := &cobra.Command{
		Use:   "report [path]",
		Short: "Write the markdown migration plan",
		Long:  "Check the project (or reuse the last cached report with --cached) and write the migration plan. Use --output - to print it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := absProject(args)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			svc := newCheckService()
			var rep *domain.CheckReport
			if cached {
				if rep, err = svc.Cached(root); err != nil {
					return fmt.Errorf("reading cached report: %w", err)
				}
				if rep == nil {
					return fmt.Errorf("no cached report for %s; run `forward-check check` first", root)
				}
			} else {
				run, err := svc.Check(cmd.Context(), root, engineOptions(v))
				if err != nil {
					return fmt.Errorf("check failed: %w", err)
				}
				rep = run.Report
			}

			if output == "-" {
				fmt.Fprint(cmd.OutOrStdout(), report.Render(rep, nil))
				return nil
			}
			if err := report.Write(output, rep, nil); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", report.DefaultFileName, "Output file, or - for stdout")
	cmd.Flags().BoolVar(&cached, "cached", false, "Use the last cached check instead of re-checking")

	return cmd
}
