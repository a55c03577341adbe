package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/atollweb/atoll/pkg/config"
	"github.com/atollweb/atoll/pkg/filesystem"
	"github.com/atollweb/atoll/pkg/formatter"
	"github.com/atollweb/atoll/pkg/manifest"
	"github.com/atollweb/atoll/pkg/paths"
	"github.com/atollweb/atoll/pkg/types"
	"github.com/atollweb/atoll/pkg/ui/report"
)

var (
	manifestPlain bool
	manifestWrite bool
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Scan the project and show the manifest contents",
	Long: `Scans routes/ and islands/ and prints what the generated manifest module
would contain. With --write, the manifest module is regenerated on disk
without running the bundler.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := paths.New(projectRoot)
		if err != nil {
			return err
		}

		fsys := filesystem.NewOS()

		routes, err := manifest.Collect(fsys, p.RoutesDir())
		if err != nil {
			return err
		}
		islands, err := manifest.Collect(fsys, p.IslandsDir())
		if err != nil {
			return err
		}

		m := types.Manifest{Routes: routes, Islands: islands}
		islandDescs := manifest.Islands(m, filepath.ToSlash(p.IslandsDir()))

		var r report.Renderer = report.NewTerminalRenderer()
		if manifestPlain || !isatty.IsTerminal(os.Stdout.Fd()) {
			r = report.NewPlainRenderer()
		}
		fmt.Fprintln(cmd.OutOrStdout(), r.RenderManifest(m, islandDescs))

		if !manifestWrite {
			return nil
		}

		cfg, err := config.Load(p.Root())
		if err != nil {
			return err
		}
		var f formatter.Formatter = formatter.Noop{}
		if len(cfg.Formatter.Command) > 0 {
			f = formatter.NewCommand(cfg.Formatter.Command[0], cfg.Formatter.Command[1:]...)
		}

		path, err := manifest.NewGenerator(fsys, f).Generate(cmd.Context(), p.OutputDir(), p.Root(), m)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
		return nil
	},
}

func init() {
	manifestCmd.Flags().BoolVar(&manifestPlain, "plain", false, "Disable styled output")
	manifestCmd.Flags().BoolVar(&manifestWrite, "write", false, "Regenerate the manifest module on disk")
}
