package gradient

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/core/ramp"
	"github.com/matzehuels/heatmap/pkg/errors"
)

var grayRamp = ramp.Ramp{{0, 0, 0, 255}, {255, 255, 255, 255}}

func uniformGrid(t *testing.T, size int, v float64) *density.Grid {
	t.Helper()
	cells := make([]float64, size*size)
	for i := range cells {
		cells[i] = v
	}
	g, err := density.FromCells(size, 1, 0, cells)
	if err != nil {
		t.Fatalf("FromCells() error: %v", err)
	}
	return g
}

func TestSpan_PartitionsAxis(t *testing.T) {
	tests := []struct {
		cells, length int
	}{
		{4, 4},
		{4, 800},
		{128, 800},
		{512, 800},
		{7, 100},
		{10, 3},
		{1, 1},
	}

	for _, tt := range tests {
		covered := make([]int, tt.length)
		next := 0
		for c := range tt.cells {
			lo, hi := Span(c, tt.cells, tt.length)
			if lo != next {
				t.Fatalf("cells=%d length=%d: cell %d starts at %d, want %d", tt.cells, tt.length, c, lo, next)
			}
			if hi < lo {
				t.Fatalf("cells=%d length=%d: cell %d has negative span", tt.cells, tt.length, c)
			}
			for x := lo; x < hi; x++ {
				covered[x]++
			}
			next = hi
		}
		if next != tt.length {
			t.Errorf("cells=%d length=%d: spans end at %d", tt.cells, tt.length, next)
		}
		for x, n := range covered {
			if n != 1 {
				t.Fatalf("cells=%d length=%d: pixel %d covered %d times", tt.cells, tt.length, x, n)
			}
		}
	}
}

func TestRender_MidGray(t *testing.T) {
	img, err := Render(uniformGrid(t, 4, 0.5), grayRamp, 4, 4, 255, nil)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := color.RGBA{128, 128, 128, 255}
	for y := range 4 {
		for x := range 4 {
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRender_TransparentWithoutBackground(t *testing.T) {
	g, err := density.Build(nil, 8, 1)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	img, err := Render(g, ramp.Default(), 10, 6, 0, nil)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	for i, b := range img.Pix {
		if b != 0 {
			t.Fatalf("Pix[%d] = %d, want fully transparent canvas", i, b)
		}
	}
}

func TestRender_ScalesBackground(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(bg.Pix); i += 4 {
		bg.Pix[i], bg.Pix[i+3] = 200, 255
	}

	for _, rs := range []Resample{ResampleNearest, ResampleBilinear, ResampleCatmullRom} {
		img, err := Render(uniformGrid(t, 2, 0), grayRamp, 8, 8, 0, bg, WithResample(rs))
		if err != nil {
			t.Fatalf("Render(%s) error: %v", rs, err)
		}
		got := img.RGBAAt(5, 3)
		if absDiff(got.R, 200) > 1 || got.G > 1 || got.B > 1 || absDiff(got.A, 255) > 1 {
			t.Errorf("%s: pixel = %v, want scaled background", rs, got)
		}
	}
}

func TestRender_OverBlending(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 1, 1))
	bg.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	img, err := Render(uniformGrid(t, 1, 0), grayRamp, 2, 2, 128, bg)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	got := img.RGBAAt(0, 0)
	if got.A != 255 {
		t.Errorf("alpha = %d, want 255 over an opaque background", got.A)
	}
	if got.R < 126 || got.R > 129 || got.R != got.G || got.G != got.B {
		t.Errorf("pixel = %v, want ~50%% black over white", got)
	}
}

func TestRender_ParallelMatchesSequential(t *testing.T) {
	points := []density.Point{{X: 0.1, Y: 0.2}, {X: 0.5, Y: 0.5}, {X: 0.52, Y: 0.48}, {X: 0.9, Y: 0.7}}
	g, err := density.Build(points, 32, 1.5)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	seq, err := Render(g, ramp.Default(), 97, 61, 180, nil, WithWorkers(1))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	par, err := Render(g, ramp.Default(), 97, 61, 180, nil, WithWorkers(8))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.Equal(seq.Pix, par.Pix) {
		t.Error("parallel render differs from sequential render")
	}
}

func TestRender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Render(uniformGrid(t, 4, 0.5), grayRamp, 8, 8, 255, nil, WithContext(ctx))
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}

	img, err := Render(uniformGrid(t, 4, 0.5), grayRamp, 8, 8, 255, nil, WithContext(context.Background()))
	if err != nil || img == nil {
		t.Errorf("Render() with live context = %v, %v", img, err)
	}
}

func TestRender_Errors(t *testing.T) {
	g := uniformGrid(t, 2, 0.5)
	tests := []struct {
		name string
		run  func() error
		code errors.Code
	}{
		{"nil grid", func() error { _, err := Render(nil, grayRamp, 4, 4, 255, nil); return err }, errors.ErrCodeInvalidInput},
		{"short ramp", func() error { _, err := Render(g, grayRamp[:1], 4, 4, 255, nil); return err }, errors.ErrCodeInvalidRamp},
		{"zero width", func() error { _, err := Render(g, grayRamp, 0, 4, 255, nil); return err }, errors.ErrCodeInvalidDimensions},
		{"negative height", func() error { _, err := Render(g, grayRamp, 4, -1, 255, nil); return err }, errors.ErrCodeInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParseResample(t *testing.T) {
	tests := []struct {
		in      string
		want    Resample
		wantErr bool
	}{
		{"", ResampleBilinear, false},
		{"nearest", ResampleNearest, false},
		{"CatmullRom", ResampleCatmullRom, false},
		{"lanczos", "", true},
	}
	for _, tt := range tests {
		got, err := ParseResample(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseResample(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseResample(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadBackground(t *testing.T) {
	dir := t.TempDir()

	t.Run("png", func(t *testing.T) {
		path := filepath.Join(dir, "map.png")
		var buf bytes.Buffer
		if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 5))); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
		img, err := LoadBackground(path)
		if err != nil {
			t.Fatalf("LoadBackground() error: %v", err)
		}
		if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 5 {
			t.Errorf("bounds = %v, want 3x5", img.Bounds())
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadBackground(filepath.Join(dir, "nope.jpg"))
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("error = %v, want FILE_NOT_FOUND", err)
		}
	})

	t.Run("corrupt", func(t *testing.T) {
		path := filepath.Join(dir, "bad.png")
		if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadBackground(path)
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
