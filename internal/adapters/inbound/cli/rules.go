package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/config"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/tui"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/rules"
)

func newRulesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rules [path]",
		Short: "List the compatibility rules",
		Long:  "List every rule with its severity and whether it can be fixed. Rules disabled in the project's .forward-check.yaml are marked.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := absProject(args)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			cfg, err := config.New().Load(root)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if jsonOutput {
				return renderJSON(cmd, rules.Catalog(cfg))
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRules(rules.DefaultRules(), cfg.IsRuleDisabled))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
