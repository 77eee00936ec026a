package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/autojs/internal/builder"
)

func newBuildCommand(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the documentation sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			b, err := builder.New(cfg, a.log)
			if err != nil {
				return err
			}

			if watch {
				a.log.WithField("docs", cfg.Docs).Info("watching for changes")
				return b.Watch(cmd.Context(), nil)
			}

			// Diagnostics are logged as they are found.
			report, err := b.Build(cmd.Context())
			if err != nil {
				return err
			}
			return report.Err()
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().BoolVar(&watch, "watch", false, "Rebuild whenever a source changes")
	return cmd
}

func newCleanCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the build directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := builder.Clean(cfg); err != nil {
				return err
			}
			a.log.WithField("out", cfg.Out).Info("removed build directory")
			return nil
		},
	}
	addConfigFlags(cmd.Flags())
	return cmd
}

func newCheckCommand(a *app) *cobra.Command {
	var golden string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare rendered pages with golden files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			b, err := builder.New(cfg, a.log)
			if err != nil {
				return err
			}

			mismatches, report, err := b.Check(cmd.Context(), golden)
			if err != nil {
				return err
			}
			for _, m := range mismatches {
				fmt.Fprint(cmd.OutOrStdout(), m.Diff)
			}
			if len(mismatches) > 0 {
				return fmt.Errorf("%d page(s) differ from %s", len(mismatches), golden)
			}
			return report.Err()
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().StringVar(&golden, "golden", "", "Directory holding the expected pages")
	_ = cmd.MarkFlagRequired("golden")
	return cmd
}
