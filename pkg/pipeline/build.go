package pipeline

import (
	"encoding/binary"
	"math"

	"github.com/matzehuels/heatmap/pkg/cache"
	"github.com/matzehuels/heatmap/pkg/core/density"
)

// Build accumulates points into a normalized grid using the validated options.
func Build(points []density.Point, opts Options) (*density.Grid, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	opts.Logger.Debug("accumulating points",
		"points", len(points),
		"grid_size", opts.cfg.GridSize(),
		"radius", opts.cfg.Radius(),
		"workers", opts.cfg.Workers())
	return density.Build(points, opts.cfg.GridSize(), opts.cfg.Falloff(), density.WithWorkers(opts.cfg.Workers()))
}

// HashPoints returns a content hash of the point coordinates in order.
func HashPoints(points []density.Point) string {
	buf := make([]byte, 0, len(points)*16)
	for _, p := range points {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.X))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.Y))
	}
	return cache.Hash(buf)
}
