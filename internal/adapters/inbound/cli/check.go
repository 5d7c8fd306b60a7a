package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/tui"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

func newCheckCmd(v *viper.Viper) *cobra.Command {
	var (
		jsonOutput bool
		ciMode     bool
	)

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Report Forward incompatibilities without changing anything",
		Long:  "Run every enabled rule over the project and print the per-rule status and findings.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := absProject(args)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			run, err := newCheckService().Check(cmd.Context(), root, engineOptions(v))
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, run.Report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderCheckReport(run.Report))
			}

			if ciMode && run.Report.Overall == domain.StatusFail {
				return fmt.Errorf("project is not ready for Forward: %d blocking finding(s)", countBlocking(run.Report))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 when any rule fails")

	return cmd
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func countBlocking(report *domain.CheckReport) int {
	n := 0
	for _, f := range report.Findings {
		if f.Severity == domain.SeverityBlocking {
			n++
		}
	}
	return n
}
