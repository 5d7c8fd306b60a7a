package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .forward-check.yaml configuration file",
		Long:  "Create a .forward-check.yaml with the default settings in the project root.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := absProject(args)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, domain.ConfigFileName)
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", domain.ConfigFileName)
				}
			}

			content, err := generateConfig()
			if err != nil {
				return fmt.Errorf("generating config: %w", err)
			}
			if err := os.WriteFile(dest, content, 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", dest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing "+domain.ConfigFileName)

	return cmd
}

const configHeader = `# forward-check configuration
#
# exclude_paths: directories (by name or path from the project root) to skip
# rules.disable: rule ids or slugs to turn off, e.g. version-tag
# backup.suffix: appended to a file's name for its pre-fix copy
# endpoint.default_node: NODE name added to endpoint pipes that lack one

`

func generateConfig() ([]byte, error) {
	cfg := domain.DefaultConfig()
	cfg.ExcludePaths = []string{}
	cfg.Rules.Disable = []string{}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return append([]byte(configHeader), body...), nil
}
