package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/tui"
	"github.com/tinybirdco/forward-migration-checker/internal/application"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/rules"
)

func newFixCmd(v *viper.Viper) *cobra.Command {
	var (
		dryRun     bool
		yes        bool
		jsonOutput bool
		ruleNames  []string
	)

	cmd := &cobra.Command{
		Use:   "fix [path]",
		Short: "Apply the available fixes, asking before each one",
		Long: `Check the project and offer every fixable finding as a fix. Each modified
file is backed up first and rewritten atomically. Fixes are idempotent, so
running fix twice changes nothing the second time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range ruleNames {
				if _, ok := rules.Lookup(name); !ok {
					return fmt.Errorf("unknown rule %q (see `forward-check rules`)", name)
				}
			}

			root, err := absProject(args)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			svc := newCheckService()
			run, err := svc.Check(cmd.Context(), root, engineOptions(v))
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}

			opts := domain.FixOptions{DryRun: dryRun, Rules: ruleNames}
			results := applyFixes(cmd, root, run, yes, opts)
			if anyApplied(results) {
				if _, err := svc.Refresh(cmd.Context(), root, engineOptions(v)); err != nil {
					return fmt.Errorf("re-check failed: %w", err)
				}
			}

			if jsonOutput {
				if err := renderJSON(cmd, results); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderFixResults(results))
			}

			if n := countFailed(results); n > 0 {
				return fmt.Errorf("%d fix(es) failed", n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the planned changes without writing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply every fix without asking")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().StringSliceVar(&ruleNames, "rule", nil, "Only fix findings of this rule (id or slug, repeatable)")

	return cmd
}

// applyFixes runs every selected proposal of run in report order. Without
// yes each one is confirmed on the command's input; a person at a terminal
// also sees the diff first.
func applyFixes(cmd *cobra.Command, root string, run *application.CheckRun, yes bool, opts domain.FixOptions) []domain.FixResult {
	ctx := cmd.Context()
	svc := newFixService(run.Config.Backup.Suffix)
	settings := run.Config.FixSettings()

	confirm := domain.Confirm(domain.Always)
	preview := false
	if !yes {
		in := cmd.InOrStdin()
		confirm = newPrompter(in, cmd.ErrOrStderr()).Confirm
		preview = interactive(in) && !opts.DryRun
	}

	var results []domain.FixResult
	for _, p := range svc.Plan(run.Report, settings, opts) {
		if ctx.Err() != nil {
			break
		}
		if preview {
			planned := svc.Apply(ctx, root, p, confirm, domain.FixOptions{DryRun: true})
			fmt.Fprint(cmd.ErrOrStderr(), tui.RenderProposal(p, planned.Diff))
		}
		results = append(results, svc.Apply(ctx, root, p, confirm, opts))
	}

	if !opts.DryRun {
		svc.Record(root, results)
	}
	return results
}

func anyApplied(results []domain.FixResult) bool {
	for _, r := range results {
		if r.Status == domain.FixApplied {
			return true
		}
	}
	return false
}

func countFailed(results []domain.FixResult) int {
	n := 0
	for _, r := range results {
		if r.Status == domain.FixFailed {
			n++
		}
	}
	return n
}
