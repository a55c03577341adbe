package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atollweb/atoll/pkg/config"
	"github.com/atollweb/atoll/pkg/dev"
	"github.com/atollweb/atoll/pkg/paths"
	"github.com/atollweb/atoll/pkg/ui/styles"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Produce a production build",
	Long: `Regenerates the manifest module from scratch and bundles client assets
with production settings. The application is not launched.`,
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

		if err := dev.New(p, cfg).Build(ctx); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), styles.GetStyle("Success").Render("Build complete: "+p.OutputDir()))
		return nil
	},
}
