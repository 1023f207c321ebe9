package ramp

import (
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/heatmap/pkg/errors"
)

func TestDefault(t *testing.T) {
	want := Ramp{
		{0, 0, 0, 255},
		{0, 0, 255, 255},
		{0, 255, 0, 255},
		{255, 255, 0, 255},
		{255, 0, 0, 255},
	}
	if diff := cmp.Diff(want, Default()); diff != "" {
		t.Errorf("Default() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    Ramp
		wantErr bool
	}{
		{
			name:  "names",
			specs: []string{"black", "White"},
			want:  Ramp{{0, 0, 0, 255}, {255, 255, 255, 255}},
		},
		{
			name:  "hex",
			specs: []string{"#ff8000", "00ff00"},
			want:  Ramp{{255, 128, 0, 255}, {0, 255, 0, 255}},
		},
		{
			name:  "short hex",
			specs: []string{"#f00", "#fff"},
			want:  Ramp{{255, 0, 0, 255}, {255, 255, 255, 255}},
		},
		{
			name:  "preset",
			specs: []string{"grayscale"},
			want:  Ramp{{0, 0, 0, 255}, {255, 255, 255, 255}},
		},
		{name: "single color", specs: []string{"red"}, wantErr: true},
		{name: "empty", specs: nil, wantErr: true},
		{name: "bad hex", specs: []string{"#zzzzzz", "red"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.specs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidRamp) {
					t.Errorf("Parse() error code = %s, want INVALID_RAMP", errors.GetCode(err))
				}
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPreset(t *testing.T) {
	for _, name := range PresetNames() {
		r, err := Preset(name)
		if err != nil {
			t.Errorf("Preset(%q) error: %v", name, err)
			continue
		}
		if err := r.Validate(); err != nil {
			t.Errorf("Preset(%q) invalid: %v", name, err)
		}
	}
	if _, err := Preset("rainbow"); !errors.Is(err, errors.ErrCodeInvalidRamp) {
		t.Errorf("Preset(rainbow) error = %v", err)
	}
}

func TestAt_Endpoints(t *testing.T) {
	ramps := []Ramp{Default(), {{10, 20, 30, 255}, {200, 100, 50, 255}}}
	for _, r := range ramps {
		if got := r.At(0); got != r[0] {
			t.Errorf("At(0) = %v, want %v", got, r[0])
		}
		if got := r.At(1); got != r[len(r)-1] {
			t.Errorf("At(1) = %v, want %v", got, r[len(r)-1])
		}
	}
}

func TestAt_Interpolation(t *testing.T) {
	gray := Ramp{{0, 0, 0, 255}, {255, 255, 255, 255}}
	def := Default()

	tests := []struct {
		name string
		r    Ramp
		d    float64
		want color.NRGBA
	}{
		{"mid gray", gray, 0.5, color.NRGBA{128, 128, 128, 255}},
		{"quarter gray", gray, 0.25, color.NRGBA{64, 64, 64, 255}},
		{"stop exact", def, 0.5, color.NRGBA{0, 255, 0, 255}},
		{"between black and blue", def, 0.125, color.NRGBA{0, 0, 128, 255}},
		{"between yellow and red", def, 0.875, color.NRGBA{255, 128, 0, 255}},
		{"below range", def, -1, def[0]},
		{"above range", def, 3, def[4]},
		{"nan", def, math.NaN(), def[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.At(tt.d); got != tt.want {
				t.Errorf("At(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestHex(t *testing.T) {
	got := Ramp{{255, 0, 16, 255}, {0, 0, 0, 255}}.Hex()
	want := []string{"#ff0010", "#000000"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Hex() mismatch (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	r := Default()
	c := r.Clone()
	c[0] = color.NRGBA{1, 2, 3, 255}
	if r[0] == c[0] {
		t.Error("Clone() shares backing array")
	}
}
