// Package config holds the validated, immutable heatmap configuration.
//
// A [Config] is built once with [New] and a list of options. Every value is
// checked before New returns, so code holding a Config never needs to
// revalidate it:
//
//	cfg, err := config.New(
//	    config.WithGridSize(512),
//	    config.WithAlpha(128),
//	    config.WithFalloff(1.4),
//	)
//	if errors.IsConfigError(err) {
//	    // reject before any grid is allocated
//	}
//
// Fields are unexported; getters return copies of slices, so a Config can be
// shared freely between goroutines.
//
// Settings can also come from a TOML file ([LoadFile]); [File.Options]
// converts the keys present in the file into options.
package config

import (
	"image"
	"runtime"

	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/core/gradient"
	"github.com/matzehuels/heatmap/pkg/core/ramp"
	"github.com/matzehuels/heatmap/pkg/errors"
)

// Defaults for a bare [New] call.
const (
	DefaultGridSize = 128
	DefaultAlpha    = 0
	DefaultFalloff  = 0.0
	DefaultWidth    = 800
	DefaultHeight   = 800
)

// Ward map preset values, applied by the CLI when nothing else sets them.
const (
	WardGridSize = 512
	WardAlpha    = 128
	WardFalloff  = 1.4
)

// Config is an immutable heatmap configuration.
type Config struct {
	gridSize       int
	ramp           ramp.Ramp
	alpha          uint8
	falloff        float64
	background     image.Image
	backgroundPath string
	width          int
	height         int
	resample       gradient.Resample
	workers        int
}

// settings is the mutable staging area options write into.
type settings struct {
	gridSize       int
	ramp           ramp.Ramp
	alpha          int
	falloff        float64
	background     image.Image
	backgroundPath string
	width          int
	height         int
	resample       string
	workers        int
}

// Option sets one configuration value.
type Option func(*settings)

func WithGridSize(n int) Option             { return func(s *settings) { s.gridSize = n } }
func WithRamp(r ramp.Ramp) Option           { return func(s *settings) { s.ramp = r.Clone() } }
func WithAlpha(a int) Option                { return func(s *settings) { s.alpha = a } }
func WithFalloff(f float64) Option          { return func(s *settings) { s.falloff = f } }
func WithBackground(img image.Image) Option { return func(s *settings) { s.background = img } }
func WithBackgroundPath(p string) Option    { return func(s *settings) { s.backgroundPath = p } }
func WithDimensions(w, h int) Option        { return func(s *settings) { s.width, s.height = w, h } }
func WithResample(r string) Option          { return func(s *settings) { s.resample = r } }

// WithWorkers sets the worker count for building and rendering. Zero means
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option { return func(s *settings) { s.workers = n } }

// WithWardPreset applies the ward map values: a 512 grid, alpha 128 and
// falloff 1.4. Later options still override it.
func WithWardPreset() Option {
	return func(s *settings) {
		s.gridSize = WardGridSize
		s.alpha = WardAlpha
		s.falloff = WardFalloff
	}
}

// New validates the options and returns the configuration.
// All failures are configuration errors (see errors.IsConfigError).
func New(opts ...Option) (Config, error) {
	s := settings{
		gridSize: DefaultGridSize,
		ramp:     ramp.Default(),
		alpha:    DefaultAlpha,
		falloff:  DefaultFalloff,
		width:    DefaultWidth,
		height:   DefaultHeight,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if err := errors.ValidateGridSize(s.gridSize); err != nil {
		return Config{}, err
	}
	if err := s.ramp.Validate(); err != nil {
		return Config{}, err
	}
	if err := errors.ValidateAlpha(s.alpha); err != nil {
		return Config{}, err
	}
	if err := errors.ValidateFalloff(s.falloff); err != nil {
		return Config{}, err
	}
	if err := errors.ValidateDimensions(s.width, s.height); err != nil {
		return Config{}, err
	}
	resample, err := gradient.ParseResample(s.resample)
	if err != nil {
		return Config{}, err
	}
	if s.workers < 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "workers must be non-negative, got %d", s.workers)
	}
	if s.workers == 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}

	return Config{
		gridSize:       s.gridSize,
		ramp:           s.ramp,
		alpha:          uint8(s.alpha),
		falloff:        s.falloff,
		background:     s.background,
		backgroundPath: s.backgroundPath,
		width:          s.width,
		height:         s.height,
		resample:       resample,
		workers:        s.workers,
	}, nil
}

// Default returns the configuration produced by New with no options.
func Default() Config {
	cfg, _ := New()
	return cfg
}

func (c Config) GridSize() int               { return c.gridSize }
func (c Config) Ramp() ramp.Ramp             { return c.ramp.Clone() }
func (c Config) Alpha() uint8                { return c.alpha }
func (c Config) Falloff() float64            { return c.falloff }
func (c Config) Background() image.Image     { return c.background }
func (c Config) BackgroundPath() string      { return c.backgroundPath }
func (c Config) Width() int                  { return c.width }
func (c Config) Height() int                 { return c.height }
func (c Config) Resample() gradient.Resample { return c.resample }
func (c Config) Workers() int                { return c.workers }

// Radius returns the kernel radius implied by the grid size and falloff.
func (c Config) Radius() float64 {
	return density.Radius(c.gridSize, c.falloff)
}
