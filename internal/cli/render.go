package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heatmap/pkg/config"
	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/pipeline"
	"github.com/matzehuels/heatmap/pkg/sink"
	"github.com/matzehuels/heatmap/pkg/source"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path
	formats  []string // png, tiff, bmp, json, chart
	title    string   // chart title
	refresh  bool     // bypass cached results
	settings settingsFlags
	source   sourceFlags
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <points>",
		Short: "Render a points file as a heatmap image",
		Long: `Render reads points from a CSV, JSON or SQLite file, accumulates them into a
density grid and writes the requested artifacts.

With a single format, -o names the output file. With several formats, -o is a
base path and each artifact gets its format's extension.`,
		Example: `  heatmap render wards.csv
  heatmap render wards.json -o map.png --background minimap.png
  heatmap render events.db --query "SELECT x, y, id FROM wards" -f png,json,chart`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sink.ValidateFormats(opts.formats); err != nil {
				return err
			}
			cfg, err := c.loadConfig(cmd, &opts.settings)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], cfg, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", []string{pipeline.DefaultFormat}, "output formats: "+strings.Join(sink.Formats, ", "))
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	opts.settings.register(cmd)
	opts.source.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(sink.Formats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, cfg config.Config, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	spinner := newSpinnerWithContext(ctx, "Loading "+filepath.Base(input)+"...")
	spinner.Start()
	defer spinner.Stop()

	points, err := loadPoints(ctx, input, opts.source)
	if err != nil {
		spinner.StopWithError("Could not read " + input)
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.OptionsFromConfig(cfg, opts.formats...)
	popts.Title = opts.title
	popts.Refresh = opts.refresh
	popts.Logger = logger

	spinner.Update(fmt.Sprintf("Rendering %d points...", len(points)))
	result, err := runner.Execute(ctx, points, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.StopWithSuccess("Rendered " + input)

	written, err := writeArtifacts(result.Artifacts, opts.formats, opts.output, input)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		printWarning("%s", w.Message)
	}
	printStats(result)
	for _, path := range written {
		printFile(path)
	}
	prog.done(fmt.Sprintf("Rendered %d artifacts", len(written)))
	return nil
}

// loadPoints reads a points file and applies the source filters.
func loadPoints(ctx context.Context, input string, f sourceFlags) ([]density.Point, error) {
	logger := loggerFromContext(ctx)
	records, err := source.Load(ctx, input, f.options())
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded points", "file", input, "count", len(records))
	return source.Points(records), nil
}

// writeArtifacts writes one file per format and returns the paths in format
// order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		path := outputPath(output, input, format, len(formats) == 1)
		if err := writeFile(path, artifacts[format]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath picks the file for one artifact. A single format writes to
// output verbatim; otherwise output (or the input name) is a base path.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" {
		return output
	}
	return basePath(output, input) + sink.Extension(format)
}

// basePath strips the longest known artifact extension from output, or derives the
// base from input when output is empty.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	var ext string
	for _, format := range sink.Formats {
		if e := sink.Extension(format); strings.HasSuffix(output, e) && len(e) > len(ext) {
			ext = e
		}
	}
	return strings.TrimSuffix(output, ext)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
