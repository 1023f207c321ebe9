// Package sink encodes heatmap results into artifacts.
//
// Raster output ([EncodePNG], [EncodeTIFF], [EncodeBMP]) writes the rendered
// canvas. [MarshalGrid] writes the normalized density grid as JSON so it can
// be cached, inspected or rendered again later. [RenderChart] draws the grid
// as a gonum/plot heat map with axes and a title.
//
// [Encode] dispatches on a format name:
//
//	data, err := sink.Encode(sink.FormatPNG, img, grid, r)
package sink

import (
	"bytes"
	"image"
	"image/png"
	"slices"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/core/ramp"
	"github.com/matzehuels/heatmap/pkg/errors"
)

// Format constants for output artifacts.
const (
	FormatPNG   = "png"
	FormatTIFF  = "tiff"
	FormatBMP   = "bmp"
	FormatJSON  = "json"
	FormatChart = "chart"
)

// Formats lists every supported format in display order.
var Formats = []string{FormatPNG, FormatTIFF, FormatBMP, FormatJSON, FormatChart}

var contentTypes = map[string]string{
	FormatPNG:   "image/png",
	FormatTIFF:  "image/tiff",
	FormatBMP:   "image/bmp",
	FormatJSON:  "application/json",
	FormatChart: "image/png",
}

var extensions = map[string]string{
	FormatPNG:   ".png",
	FormatTIFF:  ".tiff",
	FormatBMP:   ".bmp",
	FormatJSON:  ".json",
	FormatChart: ".chart.png",
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Extension returns the file extension, including the dot, for a format.
func Extension(format string) string {
	return extensions[format]
}

// NeedsImage reports whether a format encodes the rendered canvas.
func NeedsImage(format string) bool {
	return format == FormatPNG || format == FormatTIFF || format == FormatBMP
}

// Encode produces one artifact. Raster formats need img; json and chart need
// grid; chart also uses r for its palette.
func Encode(format string, img image.Image, grid *density.Grid, r ramp.Ramp) ([]byte, error) {
	if NeedsImage(format) && img == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "format %s needs a rendered image", format)
	}
	if !NeedsImage(format) && grid == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "format %s needs a density grid", format)
	}

	switch format {
	case FormatPNG:
		return EncodePNG(img)
	case FormatTIFF:
		return EncodeTIFF(img)
	case FormatBMP:
		return EncodeBMP(img)
	case FormatJSON:
		return MarshalGrid(grid)
	case FormatChart:
		return RenderChart(grid, r, ChartOptions{})
	default:
		return nil, ValidateFormat(format)
	}
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// EncodeTIFF encodes img as deflate-compressed TIFF.
func EncodeTIFF(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode tiff")
	}
	return buf.Bytes(), nil
}

// EncodeBMP encodes img as BMP.
func EncodeBMP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode bmp")
	}
	return buf.Bytes(), nil
}
