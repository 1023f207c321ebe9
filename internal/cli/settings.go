package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heatmap/pkg/config"
	"github.com/matzehuels/heatmap/pkg/core/gradient"
	"github.com/matzehuels/heatmap/pkg/core/ramp"
	"github.com/matzehuels/heatmap/pkg/source"
)

// settingsFlags holds the heatmap settings that can come from flags.
// Only flags the user changed override the config file.
type settingsFlags struct {
	gridSize   int
	ramp       string
	alpha      int
	falloff    float64
	background string
	width      int
	height     int
	resample   string
	workers    int
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.gridSize, "grid-size", config.WardGridSize, "cells per grid side")
	fs.StringVar(&f.ramp, "ramp", ramp.DefaultPreset, "color ramp: preset name ("+strings.Join(ramp.PresetNames(), ", ")+") or comma-separated colors")
	fs.IntVar(&f.alpha, "alpha", config.WardAlpha, "minimum opacity (0-255) of the overlay")
	fs.Float64Var(&f.falloff, "falloff", config.WardFalloff, "kernel radius multiplier (0 disables smoothing)")
	fs.StringVar(&f.background, "background", "", "background image (png, jpeg, gif, bmp, tiff)")
	fs.IntVar(&f.width, "width", config.DefaultWidth, "output width in pixels")
	fs.IntVar(&f.height, "height", config.DefaultHeight, "output height in pixels")
	fs.StringVar(&f.resample, "resample", "", "background resampling: nearest, bilinear, catmullrom")
	fs.IntVar(&f.workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")

	_ = cmd.RegisterFlagCompletionFunc("ramp", cobra.FixedCompletions(ramp.PresetNames(), cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("resample", cobra.FixedCompletions(
		[]string{string(gradient.ResampleNearest), string(gradient.ResampleBilinear), string(gradient.ResampleCatmullRom)},
		cobra.ShellCompDirectiveNoFileComp))
}

// sourceFlags controls how points are read.
type sourceFlags struct {
	query string
	kinds []string
	dedup bool
	flipY bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.query, "query", "", "SQL query for sqlite sources (default \""+source.DefaultQuery+"\")")
	fs.StringSliceVar(&f.kinds, "kind", nil, "keep only points of these kinds")
	fs.BoolVar(&f.dedup, "dedup", true, "count each point ID once")
	fs.BoolVar(&f.flipY, "flip-y", false, "mirror points vertically (y -> 1-y)")
}

func (f *sourceFlags) options() source.Options {
	return source.Options{Query: f.query, Kinds: f.kinds, Dedup: f.dedup, FlipY: f.flipY}
}

// configFile loads --config once. It returns nil when no file was given.
func (c *CLI) configFile() (*config.File, error) {
	if c.configPath == "" || c.file != nil {
		return c.file, nil
	}
	f, err := config.LoadFile(c.configPath)
	if err != nil {
		return nil, err
	}
	c.file = f
	return f, nil
}

// loadConfig resolves the effective configuration. Precedence, lowest first:
// core defaults, the ward preset (unless the config file sets any of its
// values), the config file, then flags changed on the command line.
func (c *CLI) loadConfig(cmd *cobra.Command, f *settingsFlags) (config.Config, error) {
	file, err := c.configFile()
	if err != nil {
		return config.Config{}, err
	}

	var opts []config.Option
	if file == nil || !file.SetsPreset() {
		opts = append(opts, config.WithWardPreset())
	}
	if file != nil {
		fileOpts, err := file.Options()
		if err != nil {
			return config.Config{}, err
		}
		opts = append(opts, fileOpts...)
	}

	changed := cmd.Flags().Changed
	if changed("grid-size") {
		opts = append(opts, config.WithGridSize(f.gridSize))
	}
	if changed("ramp") {
		r, err := ramp.Parse(splitList(f.ramp))
		if err != nil {
			return config.Config{}, err
		}
		opts = append(opts, config.WithRamp(r))
	}
	if changed("alpha") {
		opts = append(opts, config.WithAlpha(f.alpha))
	}
	if changed("falloff") {
		opts = append(opts, config.WithFalloff(f.falloff))
	}
	if changed("background") {
		opts = append(opts, config.WithBackgroundPath(f.background))
	}
	if changed("width") || changed("height") {
		w, h := f.width, f.height
		if file != nil && file.Width != nil && !changed("width") {
			w = *file.Width
		}
		if file != nil && file.Height != nil && !changed("height") {
			h = *file.Height
		}
		opts = append(opts, config.WithDimensions(w, h))
	}
	if changed("resample") {
		opts = append(opts, config.WithResample(f.resample))
	}
	if changed("workers") {
		opts = append(opts, config.WithWorkers(f.workers))
	}
	return config.New(opts...)
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
