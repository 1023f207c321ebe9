package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/heatmap/pkg/core/ramp"
	"github.com/matzehuels/heatmap/pkg/errors"
)

// File mirrors the TOML configuration file. Pointer fields distinguish
// "absent" from zero values.
type File struct {
	GridSize   *int     `toml:"grid_size"`
	Ramp       []string `toml:"ramp"`
	Alpha      *int     `toml:"alpha"`
	Falloff    *float64 `toml:"falloff"`
	Background string   `toml:"background"`
	Width      *int     `toml:"width"`
	Height     *int     `toml:"height"`
	Resample   string   `toml:"resample"`
	Workers    *int     `toml:"workers"`

	// Cache settings are read by the CLI, not by New.
	Cache CacheFile `toml:"cache"`

	// dir is the directory of the loaded file, used to resolve Background.
	dir string
}

// CacheFile holds the [cache] table.
type CacheFile struct {
	Disabled bool   `toml:"disabled"`
	Redis    string `toml:"redis"`
	Dir      string `toml:"dir"`
}

// LoadFile reads a TOML configuration file. Unknown keys are rejected so
// typos do not silently fall back to defaults.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	f, err := ParseFile(string(data))
	if err != nil {
		return nil, err
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// ParseFile decodes TOML configuration text.
func ParseFile(data string) (*File, error) {
	var f File
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return &f, nil
}

// Options converts the keys present in the file into options. The ramp is
// parsed here so a bad color surfaces as INVALID_RAMP.
func (f *File) Options() ([]Option, error) {
	var opts []Option
	if f.GridSize != nil {
		opts = append(opts, WithGridSize(*f.GridSize))
	}
	if len(f.Ramp) > 0 {
		r, err := ramp.Parse(f.Ramp)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithRamp(r))
	}
	if f.Alpha != nil {
		opts = append(opts, WithAlpha(*f.Alpha))
	}
	if f.Falloff != nil {
		opts = append(opts, WithFalloff(*f.Falloff))
	}
	if f.Background != "" {
		opts = append(opts, WithBackgroundPath(f.BackgroundPath()))
	}
	if f.Width != nil || f.Height != nil {
		w, h := DefaultWidth, DefaultHeight
		if f.Width != nil {
			w = *f.Width
		}
		if f.Height != nil {
			h = *f.Height
		}
		opts = append(opts, WithDimensions(w, h))
	}
	if f.Resample != "" {
		opts = append(opts, WithResample(f.Resample))
	}
	if f.Workers != nil {
		opts = append(opts, WithWorkers(*f.Workers))
	}
	return opts, nil
}

// BackgroundPath returns Background resolved against the file's directory.
func (f *File) BackgroundPath() string {
	if f.Background == "" || filepath.IsAbs(f.Background) || f.dir == "" {
		return f.Background
	}
	return filepath.Join(f.dir, f.Background)
}

// SetsPreset reports whether the file sets any of the values the ward
// preset would otherwise provide.
func (f *File) SetsPreset() bool {
	return f.GridSize != nil || f.Alpha != nil || f.Falloff != nil
}
