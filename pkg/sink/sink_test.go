package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/core/ramp"
	"github.com/matzehuels/heatmap/pkg/errors"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := range 3 {
		for x := range 4 {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 80), B: 10, A: 255})
		}
	}
	return img
}

func testGrid(t *testing.T) *density.Grid {
	t.Helper()
	g, err := density.Build([]density.Point{{X: 0.5, Y: 0.5}, {X: 0.1, Y: 0.9}}, 8, 1.5)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return g
}

func TestValidateFormat(t *testing.T) {
	for _, f := range Formats {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) error: %v", f, err)
		}
	}
	if err := ValidateFormat("gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(gif) error = %v, want INVALID_FORMAT", err)
	}
	if err := ValidateFormats([]string{"png", "svg"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormats() error = %v, want INVALID_FORMAT", err)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		FormatPNG:   "image/png",
		FormatTIFF:  "image/tiff",
		FormatJSON:  "application/json",
		FormatChart: "image/png",
		"unknown":   "application/octet-stream",
	}
	for format, want := range tests {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestRasterEncoders(t *testing.T) {
	src := testImage()
	tests := []struct {
		name   string
		encode func(image.Image) ([]byte, error)
		decode func([]byte) (image.Image, error)
	}{
		{"png", EncodePNG, func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) }},
		{"tiff", EncodeTIFF, func(b []byte) (image.Image, error) { return tiff.Decode(bytes.NewReader(b)) }},
		{"bmp", EncodeBMP, func(b []byte) (image.Image, error) { return bmp.Decode(bytes.NewReader(b)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.encode(src)
			if err != nil {
				t.Fatalf("encode error: %v", err)
			}
			got, err := tt.decode(data)
			if err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if got.Bounds() != src.Bounds() {
				t.Fatalf("bounds = %v, want %v", got.Bounds(), src.Bounds())
			}
			for y := range 3 {
				for x := range 4 {
					want := color.RGBAModel.Convert(src.At(x, y))
					if c := color.RGBAModel.Convert(got.At(x, y)); c != want {
						t.Errorf("pixel (%d,%d) = %v, want %v", x, y, c, want)
					}
				}
			}
		})
	}
}

func TestMarshalGrid(t *testing.T) {
	g, err := density.FromCells(2, 3, 0, []float64{0, 0.5, 1, 0.25})
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalGrid(g)
	if err != nil {
		t.Fatalf("MarshalGrid() error: %v", err)
	}
	want := `{"size":2,"max_score":3,"cells":[[0,0.5],[1,0.25]]}`
	if got := strings.TrimSpace(string(data)); got != want {
		t.Errorf("MarshalGrid() = %s, want %s", got, want)
	}

	back, err := UnmarshalGrid(data)
	if err != nil {
		t.Fatalf("UnmarshalGrid() error: %v", err)
	}
	if diff := cmp.Diff(g.Values(), back.Values()); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
	if back.MaxScore() != 3 {
		t.Errorf("MaxScore() = %v, want 3", back.MaxScore())
	}
}

func TestMarshalGrid_Skipped(t *testing.T) {
	g, err := density.Build([]density.Point{{X: 0.5, Y: 0.5}, {X: math.NaN(), Y: 0.5}}, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalGrid(g)
	if err != nil {
		t.Fatalf("MarshalGrid() error: %v", err)
	}
	if !strings.Contains(string(data), `"skipped":1`) {
		t.Errorf("MarshalGrid() = %s, want skipped count", data)
	}
	back, err := UnmarshalGrid(data)
	if err != nil {
		t.Fatalf("UnmarshalGrid() error: %v", err)
	}
	if back.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", back.Skipped())
	}
}

func TestUnmarshalGrid_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{`},
		{"row count", `{"size":2,"cells":[[0,0]]}`},
		{"ragged", `{"size":2,"cells":[[0,0],[0]]}`},
		{"out of range", `{"size":1,"cells":[[1.5]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalGrid([]byte(tt.input)); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("UnmarshalGrid() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestRenderChart(t *testing.T) {
	data, err := RenderChart(testGrid(t), ramp.Default(), ChartOptions{Title: "wards", Width: 200, Height: 200})
	if err != nil {
		t.Fatalf("RenderChart() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("chart is not a png: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Errorf("chart has empty bounds %v", img.Bounds())
	}

	if _, err := RenderChart(testGrid(t), ramp.Ramp{}, ChartOptions{}); !errors.Is(err, errors.ErrCodeInvalidRamp) {
		t.Errorf("RenderChart(empty ramp) error = %v, want INVALID_RAMP", err)
	}
}

func TestRampPalette(t *testing.T) {
	r := ramp.Default()
	p := rampPalette(r)
	if len(p.Colors()) != paletteSize {
		t.Fatalf("palette has %d colors, want %d", len(p.Colors()), paletteSize)
	}
	if p[0] != r.At(0) || p[paletteSize-1] != r.At(1) {
		t.Errorf("palette ends = %v, %v, want %v, %v", p[0], p[paletteSize-1], r.At(0), r.At(1))
	}
}

func TestEncode(t *testing.T) {
	g := testGrid(t)
	img := testImage()
	for _, f := range Formats {
		t.Run(f, func(t *testing.T) {
			data, err := Encode(f, img, g, ramp.Default())
			if err != nil {
				t.Fatalf("Encode(%s) error: %v", f, err)
			}
			if len(data) == 0 {
				t.Errorf("Encode(%s) returned no data", f)
			}
		})
	}

	if _, err := Encode(FormatPNG, nil, g, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Encode(png, nil image) error = %v, want INVALID_INPUT", err)
	}
	if _, err := Encode(FormatJSON, img, nil, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Encode(json, nil grid) error = %v, want INVALID_INPUT", err)
	}
	if _, err := Encode("svg", img, g, nil); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Encode(svg) error = %v, want INVALID_FORMAT", err)
	}
}
