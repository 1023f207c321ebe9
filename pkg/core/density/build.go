package density

import (
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/heatmap/pkg/errors"
)

// minPointsPerWorker keeps small inputs on a single partial grid.
const minPointsPerWorker = 256

// BuildOption configures [Build].
type BuildOption func(*buildOptions)

type buildOptions struct {
	workers int
}

// WithWorkers sets the number of accumulation workers. Values below 1 mean
// one worker. The default is runtime.GOMAXPROCS(0).
func WithWorkers(n int) BuildOption {
	return func(o *buildOptions) { o.workers = n }
}

// Radius returns the kernel radius for a grid dimension and falloff multiplier.
func Radius(gridSize int, falloff float64) float64 {
	return falloff * math.Floor(math.Sqrt(float64(gridSize)))
}

// Build accumulates points into a gridSize × gridSize grid and normalizes it.
// It fails with INVALID_GRID_SIZE or INVALID_FALLOFF before allocating.
func Build(points []Point, gridSize int, falloff float64, opts ...BuildOption) (*Grid, error) {
	if err := errors.ValidateGridSize(gridSize); err != nil {
		return nil, err
	}
	if err := errors.ValidateFalloff(falloff); err != nil {
		return nil, err
	}

	o := buildOptions{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}

	workers := min(o.workers, len(points)/minPointsPerWorker)
	if workers < 1 {
		workers = 1
	}

	r := Radius(gridSize, falloff)
	n := len(points)
	chunk := (n + workers - 1) / workers
	partials := make([][]float64, workers)
	skipped := make([]int, workers)

	var wg sync.WaitGroup
	for w := range workers {
		lo := min(w*chunk, n)
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			cells := make([]float64, gridSize*gridSize)
			for _, p := range points[lo:hi] {
				if !accumulate(cells, gridSize, r, p) {
					skipped[w]++
				}
			}
			partials[w] = cells
		}()
	}
	wg.Wait()

	cells := partials[0]
	for _, p := range partials[1:] {
		floats.Add(cells, p)
	}

	g := &Grid{size: gridSize, cells: cells, maxScore: floats.Max(cells)}
	for _, s := range skipped {
		g.skipped += s
	}
	normalize(g)
	return g, nil
}

// accumulate adds one point's kernel to cells. Ring k rescans the whole
// square of half-width k around the base cell, so a cell at Chebyshev
// distance c receives R - d once for every ring from c to ceil(R)-1. It
// returns false if the point was skipped.
func accumulate(cells []float64, n int, r float64, p Point) bool {
	if !finite(p.X) || !finite(p.Y) {
		return false
	}
	bx, by := cellIndex(p.X, n), cellIndex(p.Y, n)

	rings := int(math.Ceil(r))
	for k := 0; k < rings; k++ {
		x0, x1 := max(bx-k, 0), min(bx+k, n-1)
		y0, y1 := max(by-k, 0), min(by+k, n-1)
		for y := y0; y <= y1; y++ {
			row := cells[y*n : (y+1)*n]
			dy := float64(y - by)
			for x := x0; x <= x1; x++ {
				if d := math.Hypot(float64(x-bx), dy); d <= r {
					row[x] += r - d
				}
			}
		}
	}
	return true
}

// cellIndex maps a unit coordinate to a cell index clamped to [0, n-1].
func cellIndex(v float64, n int) int {
	c := math.Floor(v * float64(n))
	if c < 0 {
		return 0
	}
	if c > float64(n-1) {
		return n - 1
	}
	return int(c)
}

func normalize(g *Grid) {
	if g.maxScore <= 0 {
		for i := range g.cells {
			g.cells[i] = 0
		}
		return
	}
	for i, v := range g.cells {
		g.cells[i] = math.Max(0, v) / g.maxScore
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
