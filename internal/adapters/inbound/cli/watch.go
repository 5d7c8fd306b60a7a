package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/tui"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/watcher"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-check the project whenever a datafile changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := absProject(args)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			svc := newCheckService()
			out := cmd.OutOrStdout()
			run, err := svc.Check(ctx, root, engineOptions(v))
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}
			fmt.Fprint(out, tui.RenderCheckReport(run.Report))
			fmt.Fprintf(out, "\nWatching %s (Ctrl+C to stop)\n", root)

			w := watcher.New(root, run.Config.SkipDirs(), watcher.DefaultDebounce)
			return w.Run(ctx, func() {
				run, err := svc.Check(ctx, root, engineOptions(v))
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "check failed: %v\n", err)
					return
				}
				fmt.Fprint(out, tui.RenderCheckReport(run.Report))
			})
		},
	}

	return cmd
}
