package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/atollweb/atoll/pkg/config"
	"github.com/atollweb/atoll/pkg/dev"
	"github.com/atollweb/atoll/pkg/logging"
	"github.com/atollweb/atoll/pkg/paths"
	"github.com/atollweb/atoll/pkg/watcher"
)

var (
	watchMode     bool
	watchDebounce time.Duration
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Run the development cycle and launch the application",
	Long: `Scans routes/ and islands/, regenerates the manifest module when the
project layout changed, bundles client assets and launches the application
runtime. With --watch, the cycle re-runs on every source change while the
application keeps serving.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := paths.New(projectRoot)
		if err != nil {
			return err
		}
		cfg, err := config.Load(p.Root())
		if err != nil {
			return err
		}

		o := dev.New(p, cfg)

		if watchMode {
			w, err := watcher.New(watchDebounce, p.RoutesDir(), p.IslandsDir())
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			go func() {
				if err := o.Watch(ctx, w.Events()); err != nil && ctx.Err() == nil {
					logger := logging.GetLogger("cli")
					logger.Error().Err(err).Msg("Watch loop stopped")
				}
			}()
		}

		return o.Run(ctx)
	},
}

func init() {
	devCmd.Flags().BoolVar(&watchMode, "watch", false, "Re-run the dev cycle when sources change")
	devCmd.Flags().DurationVar(&watchDebounce, "debounce", 250*time.Millisecond, "Settle time before reacting to a burst of file changes")
}
