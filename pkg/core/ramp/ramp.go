// Package ramp maps normalized densities onto an ordered list of colors.
//
// A [Ramp] holds at least two color stops spread evenly over [0,1]. [Ramp.At]
// picks the two stops surrounding a density and blends them linearly in RGB:
//
//	r := ramp.Default()          // black, blue, green, yellow, red
//	c := r.At(0.5)               // pure green
//	c = r.At(0.125)              // halfway between black and blue
//
// Ramps can be written as hex codes or color names and parsed with [Parse],
// or picked by name from [Presets].
package ramp

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/heatmap/pkg/errors"
)

// Ramp is an ordered list of color stops. Stop alpha is ignored; the
// renderer applies its own fixed alpha.
type Ramp []color.NRGBA

var named = map[string]color.NRGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 255, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"orange":  {255, 165, 0, 255},
	"gray":    {128, 128, 128, 255},
}

// Presets are the ramps selectable by name.
var Presets = map[string][]string{
	"classic":   {"black", "blue", "green", "yellow", "red"},
	"grayscale": {"black", "white"},
	"thermal":   {"black", "red", "yellow", "white"},
}

// DefaultPreset names the ramp returned by [Default].
const DefaultPreset = "classic"

// Default returns the five-stop black, blue, green, yellow, red ramp.
func Default() Ramp {
	r, _ := Preset(DefaultPreset)
	return r
}

// Preset returns a named preset ramp.
func Preset(name string) (Ramp, error) {
	specs, ok := Presets[strings.ToLower(name)]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidRamp, "unknown ramp preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return Parse(specs)
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse builds a ramp from color names or hex codes (#rrggbb or #rgb).
// A single entry naming a preset expands to that preset.
func Parse(specs []string) (Ramp, error) {
	if len(specs) == 1 {
		if p, ok := Presets[strings.ToLower(strings.TrimSpace(specs[0]))]; ok {
			specs = p
		}
	}

	r := make(Ramp, 0, len(specs))
	for _, s := range specs {
		c, err := parseColor(s)
		if err != nil {
			return nil, err
		}
		r = append(r, c)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func parseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidRamp, err, "invalid color %q", strings.TrimPrefix(s, "#"))
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Validate reports an INVALID_RAMP error if the ramp has fewer than two stops.
func (r Ramp) Validate() error {
	if len(r) < 2 {
		return errors.New(errors.ErrCodeInvalidRamp, "color ramp needs at least 2 colors, got %d", len(r))
	}
	return nil
}

// Clone returns an independent copy of the ramp.
func (r Ramp) Clone() Ramp {
	return append(Ramp(nil), r...)
}

// Hex returns the stops as #rrggbb strings.
func (r Ramp) Hex() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return out
}

// At returns the interpolated color for density d. Values outside [0,1] are
// clamped. The returned color is opaque. At panics if the ramp has fewer than
// two stops; call [Ramp.Validate] first.
func (r Ramp) At(d float64) color.NRGBA {
	if math.IsNaN(d) || d < 0 {
		d = 0
	} else if d > 1 {
		d = 1
	}

	last := len(r) - 2
	scaled := d * float64(len(r)-1)
	idx := int(math.Floor(scaled))
	if idx > last {
		idx = last
	}
	t := scaled - float64(idx)
	if t > 1 {
		t = 1
	}

	from, to := r[idx], r[idx+1]
	return color.NRGBA{
		R: lerp(from.R, to.R, t),
		G: lerp(from.G, to.G, t),
		B: lerp(from.B, to.B, t),
		A: 255,
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a)*(1-t) + float64(b)*t))
}
