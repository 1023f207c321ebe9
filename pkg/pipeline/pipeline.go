// Package pipeline runs the heatmap pipeline: build → render → encode.
//
// The CLI and the HTTP API both go through a [Runner], so caching, logging and
// observability hooks behave the same everywhere.
//
// # Stages
//
//  1. Build: accumulate points into a normalized density grid
//  2. Render: rasterize the grid over the optional background and encode
//     every requested format
//
// Each stage can run on its own and caches its output through the Runner's
// [cache.Cache].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, points, pipeline.Options{
//	    GridSize: 512,
//	    Alpha:    128,
//	    Falloff:  1.4,
//	    Formats:  []string{"png", "json"},
//	})
//	if err != nil {
//	    return err
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heatmap/pkg/cache"
	"github.com/matzehuels/heatmap/pkg/config"
	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/core/ramp"
	"github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/sink"
)

// DefaultFormat is used when Options.Formats is empty.
const DefaultFormat = sink.FormatPNG

// discard is the logger options fall back to when none is set.
var discard = log.New(io.Discard)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// It is the JSON body of API requests and the source of cache keys.
// Zero values select the defaults of [config.New].
type Options struct {
	// Build options
	GridSize int     `json:"grid_size,omitempty"`
	Falloff  float64 `json:"falloff,omitempty"`

	// Render options
	Ramp       []string `json:"ramp,omitempty"`
	Alpha      int      `json:"alpha,omitempty"`
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
	Resample   string   `json:"resample,omitempty"`
	Background string   `json:"background,omitempty"` // image path, resolved by the caller
	Formats    []string `json:"formats,omitempty"`
	Title      string   `json:"title,omitempty"` // chart title
	Refresh    bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Workers         int         `json:"-"`
	BackgroundImage image.Image `json:"-"`
	Logger          *log.Logger `json:"-"`

	cfg           config.Config
	backgroundKey string
	degraded      bool
	validated     bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Grid is the normalized density grid.
	Grid *density.Grid

	// GridHash is the content hash of the grid JSON.
	GridHash string

	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string][]byte

	// Warnings lists degraded-resource conditions the run recovered from.
	Warnings []errors.Warning

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Points     int
	Skipped    int
	Radius     float64
	MaxScore   float64
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	GridHit   bool // grid came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// OptionsFromConfig mirrors a validated configuration into Options.
func OptionsFromConfig(cfg config.Config, formats ...string) Options {
	return Options{
		GridSize:        cfg.GridSize(),
		Falloff:         cfg.Falloff(),
		Ramp:            cfg.Ramp().Hex(),
		Alpha:           int(cfg.Alpha()),
		Width:           cfg.Width(),
		Height:          cfg.Height(),
		Resample:        string(cfg.Resample()),
		Background:      cfg.BackgroundPath(),
		BackgroundImage: cfg.Background(),
		Workers:         cfg.Workers(),
		Formats:         formats,
	}
}

// Config converts the options into a validated configuration.
func (o *Options) Config() (config.Config, error) {
	var opts []config.Option
	if o.GridSize != 0 {
		opts = append(opts, config.WithGridSize(o.GridSize))
	}
	if len(o.Ramp) > 0 {
		r, err := ramp.Parse(o.Ramp)
		if err != nil {
			return config.Config{}, err
		}
		opts = append(opts, config.WithRamp(r))
	}
	if o.Width != 0 || o.Height != 0 {
		w, h := o.Width, o.Height
		if w == 0 {
			w = config.DefaultWidth
		}
		if h == 0 {
			h = config.DefaultHeight
		}
		opts = append(opts, config.WithDimensions(w, h))
	}
	opts = append(opts,
		config.WithAlpha(o.Alpha),
		config.WithFalloff(o.Falloff),
		config.WithResample(o.Resample),
		config.WithWorkers(o.Workers),
		config.WithBackground(o.BackgroundImage),
		config.WithBackgroundPath(o.Background),
	)
	return config.New(opts...)
}

// ValidateAndSetDefaults validates every option and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	cfg, err := o.Config()
	if err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := sink.ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = discard
	}

	o.cfg = cfg
	o.GridSize = cfg.GridSize()
	o.Width, o.Height = cfg.Width(), cfg.Height()
	o.Ramp = cfg.Ramp().Hex()
	o.Resample = string(cfg.Resample())
	o.Workers = cfg.Workers()
	o.validated = true
	return nil
}

// GridKeyOpts returns cache key options for the build stage.
func (o *Options) GridKeyOpts() cache.GridKeyOpts {
	return cache.GridKeyOpts{GridSize: o.GridSize, Falloff: o.Falloff}
}

// ArtifactKeyOpts returns cache key options for one artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	switch format {
	case sink.FormatJSON:
		return cache.ArtifactKeyOpts{Format: format}
	case sink.FormatChart:
		return cache.ArtifactKeyOpts{Format: format, Ramp: o.Ramp, Title: o.Title}
	}
	k := cache.ArtifactKeyOpts{Format: format, Ramp: o.Ramp}
	k.Alpha = o.Alpha
	k.Width, k.Height = o.Width, o.Height
	k.Resample = o.Resample
	k.Background = o.backgroundKey
	return k
}

// NeedsImage reports whether any requested format encodes the raster.
func (o *Options) NeedsImage() bool {
	for _, f := range o.Formats {
		if sink.NeedsImage(f) {
			return true
		}
	}
	return false
}
