// Package gradient rasterizes a density grid into an RGBA image.
//
// # Overview
//
// [Render] walks every cell of a [density.Grid], looks up its color on a
// [ramp.Ramp], and composites that color with a fixed alpha over the
// matching pixel rectangle of the canvas using Porter-Duff "over".
//
// # Tiling
//
// Cell c of a grid with n cells along an axis of length L covers pixels
//
//	[c*L/n, (c+1)*L/n)
//
// using integer division ([Span]). Adjacent cells share an edge, so the
// rectangles of one row partition the canvas width exactly even when L is
// not a multiple of n. When L < n some cells cover no pixels.
//
// # Background
//
// An optional background image is scaled to the canvas size before any cell
// is drawn ([WithResample] picks the scaler). Without a background the
// canvas starts fully transparent. [LoadBackground] decodes PNG, JPEG, GIF,
// BMP, TIFF and WebP files.
//
// # Parallelism
//
// Rows of cells are drawn concurrently ([WithWorkers]). Each row writes a
// disjoint horizontal band of the canvas and the grid is only read.
package gradient
