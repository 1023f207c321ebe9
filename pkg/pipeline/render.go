package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"strconv"

	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/core/gradient"
	"github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/sink"
)

// Render rasterizes the grid once if any raster format is requested and
// encodes every format in opts.Formats. Rasterizing stops early when ctx is
// done.
func Render(ctx context.Context, g *density.Grid, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	cfg := opts.cfg

	var img image.Image
	if opts.NeedsImage() {
		opts.Logger.Debug("rasterizing grid",
			"width", cfg.Width(),
			"height", cfg.Height(),
			"alpha", cfg.Alpha(),
			"background", opts.BackgroundImage != nil)
		canvas, err := gradient.Render(g, cfg.Ramp(), cfg.Width(), cfg.Height(), cfg.Alpha(), opts.BackgroundImage,
			gradient.WithContext(ctx),
			gradient.WithResample(cfg.Resample()),
			gradient.WithWorkers(cfg.Workers()))
		if err != nil {
			return nil, err
		}
		img = canvas
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if _, ok := artifacts[format]; ok {
			continue
		}
		var (
			data []byte
			err  error
		)
		if format == sink.FormatChart {
			data, err = sink.RenderChart(g, cfg.Ramp(), sink.ChartOptions{Title: opts.Title})
		} else {
			data, err = sink.Encode(format, img, g, cfg.Ramp())
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// loadBackground resolves opts.Background into opts.BackgroundImage. A
// background that cannot be loaded is reported as a degraded-resource warning
// and the run continues on a transparent canvas.
func loadBackground(opts *Options) *errors.Warning {
	if opts.BackgroundImage != nil {
		if opts.Background != "" {
			opts.backgroundKey = fileKey(opts.Background)
		}
		return nil
	}
	if opts.Background == "" {
		return nil
	}
	img, err := gradient.LoadBackground(opts.Background)
	if err != nil {
		w := errors.Degraded("background %s unavailable, rendering without it: %s", opts.Background, errors.UserMessage(err))
		opts.degraded = true
		opts.Background = ""
		return &w
	}
	opts.BackgroundImage = img
	opts.backgroundKey = fileKey(opts.Background)
	return nil
}

// fileKey identifies a file version for cache keys.
func fileKey(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return path
	}
	return path + "@" + strconv.FormatInt(fi.ModTime().UnixNano(), 10) + ":" + strconv.FormatInt(fi.Size(), 10)
}
