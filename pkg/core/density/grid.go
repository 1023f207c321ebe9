package density

import (
	"math"

	"github.com/matzehuels/heatmap/pkg/errors"
)

// Point is a sample position in the unit square. X grows to the right and Y
// grows downwards, matching image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Grid is a normalized Size × Size density field stored row-major.
// A Grid is read-only once returned by [Build] or [FromCells].
type Grid struct {
	size     int
	cells    []float64
	maxScore float64
	skipped  int
}

// FromCells reassembles a grid from normalized row-major cells, typically
// decoded from a cache entry or an API payload. Every value must lie in [0,1].
// skipped restores the count reported by [Grid.Skipped].
func FromCells(size int, maxScore float64, skipped int, cells []float64) (*Grid, error) {
	if err := errors.ValidateGridSize(size); err != nil {
		return nil, err
	}
	if len(cells) != size*size {
		return nil, errors.New(errors.ErrCodeInvalidInput, "grid of size %d needs %d cells, got %d", size, size*size, len(cells))
	}
	if skipped < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "negative skipped count: %d", skipped)
	}
	for i, v := range cells {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "cell %d out of range [0,1]: %v", i, v)
		}
	}
	return &Grid{size: size, cells: append([]float64(nil), cells...), maxScore: maxScore, skipped: skipped}, nil
}

// Size returns the grid dimension.
func (g *Grid) Size() int { return g.size }

// MaxScore returns the raw maximum score observed before normalization.
func (g *Grid) MaxScore() float64 { return g.maxScore }

// Skipped returns how many input points were ignored for non-finite coordinates.
func (g *Grid) Skipped() int { return g.skipped }

// Empty reports whether no cell carries any density.
func (g *Grid) Empty() bool { return g.maxScore <= 0 }

// At returns the normalized density of cell (x, y). Coordinates outside the
// grid read as 0.
func (g *Grid) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= g.size || y >= g.size {
		return 0
	}
	return g.cells[y*g.size+x]
}

// Row returns a copy of row y.
func (g *Grid) Row(y int) []float64 {
	if y < 0 || y >= g.size {
		return nil
	}
	return append([]float64(nil), g.cells[y*g.size:(y+1)*g.size]...)
}

// Values returns a copy of all cells in row-major order.
func (g *Grid) Values() []float64 {
	return append([]float64(nil), g.cells...)
}

// Rows returns a copy of the grid as a slice of rows.
func (g *Grid) Rows() [][]float64 {
	rows := make([][]float64, g.size)
	for y := range rows {
		rows[y] = g.Row(y)
	}
	return rows
}
