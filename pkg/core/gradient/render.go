package gradient

import (
	"context"
	"image"
	"runtime"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/core/ramp"
	"github.com/matzehuels/heatmap/pkg/errors"
)

// Resample names a background scaling algorithm.
type Resample string

const (
	ResampleNearest    Resample = "nearest"
	ResampleBilinear   Resample = "bilinear"
	ResampleCatmullRom Resample = "catmullrom"
)

// DefaultResample is used when no resampler is configured.
const DefaultResample = ResampleBilinear

// ParseResample validates a resampler name. The empty string selects
// [DefaultResample].
func ParseResample(s string) (Resample, error) {
	switch r := Resample(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return DefaultResample, nil
	case ResampleNearest, ResampleBilinear, ResampleCatmullRom:
		return r, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidResample, "unknown resampler %q (nearest, bilinear, catmullrom)", s)
	}
}

func (r Resample) scaler() xdraw.Scaler {
	switch r {
	case ResampleNearest:
		return xdraw.NearestNeighbor
	case ResampleCatmullRom:
		return xdraw.CatmullRom
	default:
		return xdraw.BiLinear
	}
}

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	ctx      context.Context
	resample Resample
	workers  int
}

// WithResample sets the background scaler.
func WithResample(r Resample) Option { return func(o *renderer) { o.resample = r } }

// WithContext stops drawing rows once ctx is done.
func WithContext(ctx context.Context) Option { return func(o *renderer) { o.ctx = ctx } }

// WithWorkers sets how many cell rows are drawn concurrently.
func WithWorkers(n int) Option { return func(o *renderer) { o.workers = n } }

// Span returns the half-open pixel range [lo, hi) covered by cell c when
// cells cells tile an axis of length pixels.
func Span(c, cells, length int) (lo, hi int) {
	return c * length / cells, (c + 1) * length / cells
}

// Render draws grid onto a width × height canvas. Each cell is colored with
// r.At(density) at the given alpha and composited over the canvas. A nil
// background leaves the canvas transparent.
func Render(grid *density.Grid, r ramp.Ramp, width, height int, alpha uint8, background image.Image, opts ...Option) (*image.RGBA, error) {
	if grid == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "density grid is required")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}

	o := renderer{ctx: context.Background(), resample: DefaultResample, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	if background != nil {
		o.resample.scaler().Scale(canvas, canvas.Bounds(), background, background.Bounds(), xdraw.Src, nil)
	}
	if alpha == 0 {
		return canvas, nil
	}

	n := grid.Size()
	eg, ctx := errgroup.WithContext(o.ctx)
	eg.SetLimit(max(o.workers, 1))
	for cy := range n {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			drawRow(canvas, grid, r, alpha, cy)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return canvas, nil
}

func drawRow(canvas *image.RGBA, grid *density.Grid, r ramp.Ramp, alpha uint8, cy int) {
	n := grid.Size()
	b := canvas.Bounds()
	y0, y1 := Span(cy, n, b.Dy())
	if y0 == y1 {
		return
	}
	src := &image.Uniform{}
	for cx := range n {
		x0, x1 := Span(cx, n, b.Dx())
		if x0 == x1 {
			continue
		}
		c := r.At(grid.At(cx, cy))
		c.A = alpha
		src.C = c
		xdraw.Draw(canvas, image.Rect(x0, y0, x1, y1), src, image.Point{}, xdraw.Over)
	}
}
