package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heatmap/pkg/pipeline"
	"github.com/matzehuels/heatmap/pkg/sink"
)

func (c *CLI) gridCommand() *cobra.Command {
	var (
		output   string
		refresh  bool
		settings settingsFlags
		src      sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "grid <points>",
		Short: "Write the normalized density grid as JSON",
		Long: `Grid builds the density grid for a points file and writes it as JSON:

  {"size": 512, "max_score": 41.2, "cells": [[0, 0, ...], ...]}

Cells are normalized to [0, 1]. Without -o the grid goes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd, &settings)
			if err != nil {
				return err
			}
			points, err := loadPoints(ctx, args[0], src)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := pipeline.OptionsFromConfig(cfg, sink.FormatJSON)
			opts.Refresh = refresh
			opts.Logger = loggerFromContext(ctx)
			g, err := runner.BuildGrid(ctx, points, opts)
			if err != nil {
				return err
			}

			var w io.Writer = c.out
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := sink.WriteGrid(w, g); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Wrote %d×%d grid", g.Size(), g.Size())
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached grids")
	settings.register(cmd)
	src.register(cmd)

	return cmd
}
