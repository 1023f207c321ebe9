// Package cache stores pipeline intermediates and artifacts by content key.
//
// Three backends implement [Cache]:
//
//   - [NullCache] never stores anything; used with --no-cache.
//   - [FileCache] keeps JSON entries under a directory, by default the user
//     cache dir (see [DefaultDir]).
//   - [RedisCache] shares entries between server replicas.
//
// Keys come from a [Keyer]. The [DefaultKeyer] hashes the point set together
// with the options that affect the result, so two runs over the same points
// with the same settings share a grid entry and then an artifact entry per
// format. [ScopedKeyer] prefixes every key for namespacing.
//
// Wrap a backend with [Instrument] to report hits, misses and writes to the
// observability cache hooks.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the data stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs for cached entries.
const (
	TTLGrid     = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypeGrid     = "grid"
	KeyTypeArtifact = "artifact"
)

// DefaultDir returns the directory used by the CLI file cache.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "heatmap"), nil
}

// Keyer produces cache keys for pipeline stages.
type Keyer interface {
	// GridKey identifies a density grid built from a point set.
	GridKey(pointsHash string, opts GridKeyOpts) string

	// ArtifactKey identifies one encoded artifact rendered from a grid.
	ArtifactKey(gridHash string, opts ArtifactKeyOpts) string
}

// GridKeyOpts holds the options that change a density grid.
type GridKeyOpts struct {
	GridSize int     `json:"grid_size"`
	Falloff  float64 `json:"falloff"`
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string   `json:"format"`
	Ramp       []string `json:"ramp"`
	Alpha      int      `json:"alpha"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Resample   string   `json:"resample"`
	Background string   `json:"background,omitempty"`
	Title      string   `json:"title,omitempty"`
}

// DefaultKeyer hashes key parts with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GridKey returns "grid:<sha256>".
func (DefaultKeyer) GridKey(pointsHash string, opts GridKeyOpts) string {
	return hashKey(KeyTypeGrid, pointsHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(gridHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, gridHash, opts)
}

var _ Keyer = DefaultKeyer{}
