package sink

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/core/ramp"
	"github.com/matzehuels/heatmap/pkg/errors"
)

// paletteSize is the number of ramp samples handed to the plot palette.
const paletteSize = 256

// ChartOptions configures [RenderChart].
type ChartOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

// DefaultChartSize is used when ChartOptions leaves Width or Height zero.
const DefaultChartSize = 6 * vg.Inch

// RenderChart draws the grid as a heat map with unit-square axes and returns
// PNG bytes. The y axis points down, matching the raster output.
func RenderChart(g *density.Grid, r ramp.Ramp, opts ChartOptions) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if opts.Width == 0 {
		opts.Width = DefaultChartSize
	}
	if opts.Height == 0 {
		opts.Height = DefaultChartSize
	}
	if opts.Title == "" {
		opts.Title = fmt.Sprintf("Density (%d×%d, max score %.3g)", g.Size(), g.Size(), g.MaxScore())
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	hm := plotter.NewHeatMap(gridXYZ{g}, rampPalette(r))
	p.Add(hm)

	wt, err := p.WriterTo(opts.Width, opts.Height, "png")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "chart writer")
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render chart")
	}
	return buf.Bytes(), nil
}

// gridXYZ adapts a density grid to plotter.GridXYZ with cell centers in the
// unit square.
type gridXYZ struct {
	g *density.Grid
}

func (x gridXYZ) Dims() (c, r int)   { return x.g.Size(), x.g.Size() }
func (x gridXYZ) Z(c, r int) float64 { return x.g.At(c, r) }
func (x gridXYZ) X(c int) float64    { return (float64(c) + 0.5) / float64(x.g.Size()) }
func (x gridXYZ) Y(r int) float64    { return (float64(r) + 0.5) / float64(x.g.Size()) }
func (x gridXYZ) Min() float64       { return 0 }
func (x gridXYZ) Max() float64       { return 1 }

// colorPalette satisfies palette.Palette.
type colorPalette []color.Color

func (p colorPalette) Colors() []color.Color { return p }

func rampPalette(r ramp.Ramp) colorPalette {
	p := make(colorPalette, paletteSize)
	for i := range p {
		p[i] = r.At(float64(i) / (paletteSize - 1))
	}
	return p
}
