// Package pkg provides the libraries behind the heatmap tool.
//
// # Overview
//
// Heatmap turns a set of 2D sample points (ward placements, click positions,
// any events in a unit square) into a density image. The pkg directory is
// organized as:
//
//  1. [core] - Domain logic: density grid, color ramp, gradient renderer
//  2. [config] - Validated, immutable settings and the TOML config file
//  3. [source] - Point readers (CSV, JSON, SQLite) and record filters
//  4. [sink] - Artifact encoders (PNG, TIFF, BMP, grid JSON, chart)
//  5. [pipeline] - Orchestration (build → render → encode) with caching
//  6. [cache] - File, Redis and null cache backends
//
// # Architecture
//
// The data flow through heatmap:
//
//	points file / HTTP request
//	         ↓
//	    [source] (read, filter, dedup)
//	         ↓
//	    [core/density] (accumulate kernel, normalize to [0,1])
//	         ↓
//	    [core/gradient] (ramp colors, alpha blend over background)
//	         ↓
//	    [sink] (png, tiff, bmp, json, chart)
//
// # Quick Start
//
//	records, _ := source.Load(ctx, "wards.csv", source.Options{Dedup: true})
//	g, _ := density.Build(source.Points(records), 512, 1.4)
//	img, _ := gradient.Render(g, ramp.Default(), 800, 800, 128, nil)
//	data, _ := sink.EncodePNG(img)
//
// Or through the pipeline, which adds caching and observability hooks:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, _ := runner.Execute(ctx, source.Points(records), pipeline.Options{
//	    GridSize: 512,
//	    Alpha:    128,
//	    Falloff:  1.4,
//	})
//
// # Supporting Packages
//
// [errors] - Structured error codes. Configuration errors are raised before
// any grid is allocated; a missing background is a warning, not an error.
//
// [observability] - Hooks for build/render timing, cache hits and HTTP
// requests. No-ops unless a caller registers an implementation.
//
// [buildinfo] - Version information set at build time.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/core
// [core/density]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/core/density
// [core/gradient]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/core/gradient
// [config]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/config
// [source]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/source
// [sink]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/heatmap/pkg/buildinfo
package pkg
