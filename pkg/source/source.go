// Package source reads sample points from files and databases.
//
// # Overview
//
// A source yields [Record] values: a position in the unit square plus an
// optional entity ID and kind. Records are turned into density points with
// [Points] after optional filtering ([FilterKinds]), deduplication ([Dedup])
// and orientation fixes ([FlipY]).
//
// # Formats
//
// [Load] picks a reader from the file extension:
//
//   - .csv: [ReadCSV], columns x,y[,id[,kind]]
//   - .json: [ReadJSON], an array of records or {"points": [...]}
//   - .db, .sqlite, .sqlite3: [ReadSQLite], rows from a SQL query
//
// JSON records may carry world positions (cell_x, cell_y, cell_bits,
// origin_x, origin_y) instead of unit coordinates; they are converted with
// [WorldToUnit].
//
// # Deduplication
//
// Event streams often report the same entity many times. [Dedup] keeps the
// first record for every non-empty ID, so each entity contributes once to the
// density kernel.
package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/errors"
)

// Record is one sample read from a source.
type Record struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	ID   string  `json:"id,omitempty"`
	Kind string  `json:"kind,omitempty"`
}

// Options controls [Load].
type Options struct {
	// Query overrides the SQLite query. Defaults to DefaultQuery.
	Query string
	// Kinds keeps only records with one of these kinds. Empty keeps all.
	Kinds []string
	// Dedup drops repeated IDs.
	Dedup bool
	// FlipY mirrors records vertically (y -> 1-y).
	FlipY bool
}

// Load reads records from path, choosing the reader by file extension, then
// applies the filters in opts in order: kinds, dedup, flip.
func Load(ctx context.Context, path string, opts Options) ([]Record, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "points file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "stat %s", path)
	}

	var (
		records []Record
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		records, err = readFile(path, ReadCSV)
	case ".json":
		records, err = readFile(path, ReadJSON)
	case ".db", ".sqlite", ".sqlite3":
		records, err = ReadSQLite(ctx, path, opts.Query)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported points file %q (want .csv, .json, .db, .sqlite)", filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}

	return Apply(records, opts), nil
}

// Apply runs the record filters selected in opts.
func Apply(records []Record, opts Options) []Record {
	if len(opts.Kinds) > 0 {
		records = FilterKinds(records, opts.Kinds...)
	}
	if opts.Dedup {
		records = Dedup(records)
	}
	if opts.FlipY {
		records = FlipY(records)
	}
	return records
}

// Points converts records to density points.
func Points(records []Record) []density.Point {
	points := make([]density.Point, len(records))
	for i, r := range records {
		points[i] = density.Point{X: r.X, Y: r.Y}
	}
	return points
}

// FromPoints wraps bare points as records without IDs.
func FromPoints(points []density.Point) []Record {
	records := make([]Record, len(points))
	for i, p := range points {
		records[i] = Record{X: p.X, Y: p.Y}
	}
	return records
}

// Dedup keeps the first record for every non-empty ID. Records without an
// ID are always kept. Order is preserved.
func Dedup(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.ID != "" {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}

// FilterKinds keeps records whose Kind is one of kinds.
func FilterKinds(records []Record, kinds ...string) []Record {
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if want[r.Kind] {
			out = append(out, r)
		}
	}
	return out
}

// FlipY returns a copy of records with y mirrored to 1-y.
func FlipY(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Y = 1 - r.Y
		out[i] = r
	}
	return out
}

// World map constants. The playable area spans worldSize units centered on
// the origin; origin offsets are stored in 1/128 units.
const (
	worldSize   = 16384
	originScale = 128
)

// WorldToUnit converts a cell-based world coordinate to the unit interval.
// cellBits is the log2 cell width; origin is the offset within the cell.
func WorldToUnit(cell, cellBits int, origin float64) float64 {
	cellWidth := 1 << cellBits
	return (float64(cell*cellWidth) - worldSize + origin/originScale + worldSize/2) / worldSize
}

func readFile(path string, read func(io.Reader) ([]Record, error)) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return read(f)
}
