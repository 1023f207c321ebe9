// Package density accumulates sample points into a normalized density grid.
//
// # Overview
//
// A [Grid] is a square gridSize × gridSize field of scores. Each input
// [Point] lives in the unit square and lands in exactly one base cell. Its
// influence spreads to nearby cells through a linear falloff kernel: a cell
// at Euclidean distance d from the base cell receives R - d on every ring
// scan that reaches it, where R is the kernel radius returned by [Radius].
// Cells at distance R or more receive nothing.
//
// After every point has been accumulated the grid is normalized so the
// hottest cell is exactly 1.0 and every other cell lies in [0,1]. A grid with
// no positive score (no points, or a zero radius) normalizes to all zeros.
//
// # Kernel Radius
//
// The radius scales with the square root of the grid dimension:
//
//	R = falloff * floor(sqrt(gridSize))
//
// A falloff of 0 collapses the kernel, so nothing is accumulated and the grid
// stays empty. The ward map preset uses 1.4 on a 512 grid, giving R = 30.8.
//
// # Ring Scan
//
// Rings are scanned for every integer k < R. Ring k covers the whole square
// of half-width k around the base cell, clamped to the grid, so the inner
// cells are scanned again by each larger ring. A cell at Chebyshev distance c
// therefore accumulates (R - d) · (ceil(R) - c). For gridSize 4 and falloff 1
// (R = 2) the base cell scores 4, its edge neighbours 1 and its diagonal
// neighbours 2 - √2. Points outside the unit square are clamped to the border
// cells.
// Points with NaN or infinite coordinates are skipped and counted in
// [Grid.Skipped].
//
// # Parallelism
//
// [Build] splits large point sets across workers ([WithWorkers]). Each worker
// accumulates into a private partial grid; partials are summed element-wise
// once all workers finish. No grid is ever written by two goroutines.
//
//	g, err := density.Build(points, 512, 1.4, density.WithWorkers(8))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(g.At(256, 256))
package density
