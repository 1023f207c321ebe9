package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heatmap/pkg/cache"
	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/observability"
	"github.com/matzehuels/heatmap/pkg/sink"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger, so one Runner
// can serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the DefaultKeyer and a nil logger the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: cache.Instrument(c), Keyer: keyer, Logger: logger}
}

// Execute runs the build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, points []density.Point, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{Artifacts: make(map[string][]byte)}

	if w := loadBackground(&opts); w != nil {
		r.Logger.Warn(w.Message, "code", w.Code)
		result.Warnings = append(result.Warnings, *w)
	}

	// Stage 1: Build
	buildStart := time.Now()
	g, gridHit, err := r.BuildGridWithCacheInfo(ctx, points, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Grid = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Points = len(points)
	result.Stats.Skipped = g.Skipped()
	result.Stats.Radius = opts.cfg.Radius()
	result.Stats.MaxScore = g.MaxScore()
	result.CacheInfo.GridHit = gridHit

	if gridData, err := sink.MarshalGrid(g); err == nil {
		result.GridHash = cache.Hash(gridData)
	}

	if g.Empty() {
		r.Logger.Debug("empty density", "points", len(points), "grid_size", g.Size())
	}
	if g.Skipped() > 0 {
		r.Logger.Warn("skipped non-finite points", "count", g.Skipped())
	}
	r.Logger.Info("built density grid",
		"points", len(points),
		"cells", g.Size()*g.Size(),
		"radius", result.Stats.Radius,
		"cached", gridHit,
		"duration", result.Stats.BuildTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildGridWithCacheInfo builds the density grid with caching and reports
// whether it came from the cache.
func (r *Runner) BuildGridWithCacheInfo(ctx context.Context, points []density.Point, opts Options) (*density.Grid, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.GridKey(HashPoints(points), opts.GridKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := sink.UnmarshalGrid(data); err == nil {
				return g, true, nil
			}
		} else if err != nil {
			r.Logger.Debug("cache read failed", "key", cacheKey, "err", err)
		}
	}

	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, len(points), opts.GridSize)
	g, err := Build(points, opts)
	observability.Pipeline().OnBuildComplete(ctx, opts.GridSize, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := sink.MarshalGrid(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLGrid); err != nil {
			r.Logger.Debug("cache write failed", "key", cacheKey, "err", err)
		}
	}
	return g, false, nil
}

// BuildGrid is a convenience wrapper that discards the cache hit info.
func (r *Runner) BuildGrid(ctx context.Context, points []density.Point, opts Options) (*density.Grid, error) {
	g, _, err := r.BuildGridWithCacheInfo(ctx, points, opts)
	return g, err
}

// RenderWithCacheInfo encodes every requested format with caching and
// reports whether all artifacts came from the cache. Runs with a degraded
// or unkeyed background are neither read from nor written to the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *density.Grid, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if w := loadBackground(&opts); w != nil {
		r.Logger.Warn(w.Message, "code", w.Code)
	}

	gridData, err := sink.MarshalGrid(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize grid for cache key: %w", err)
	}
	gridHash := cache.Hash(gridData)
	cacheable := !opts.degraded && (opts.BackgroundImage == nil || opts.backgroundKey != "")

	if cacheable && !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(gridHash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := Render(ctx, g, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		for format, data := range rendered {
			key := r.Keyer.ArtifactKey(gridHash, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
				r.Logger.Debug("cache write failed", "key", key, "err", err)
			}
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *density.Grid, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil || opts.Logger == discard {
		opts.Logger = r.Logger
	}
}
