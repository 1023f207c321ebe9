package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxGridSize bounds the grid dimension so a single request cannot allocate
// an unbounded number of cells.
const MaxGridSize = 8192

// MaxDimension bounds the output canvas width and height.
const MaxDimension = 16384

// ValidateGridSize checks that the grid dimension is positive and bounded.
func ValidateGridSize(size int) error {
	if size <= 0 {
		return New(ErrCodeInvalidGridSize, "grid size must be positive, got %d", size)
	}
	if size > MaxGridSize {
		return New(ErrCodeInvalidGridSize, "grid size too large (max %d), got %d", MaxGridSize, size)
	}
	return nil
}

// ValidateAlpha checks that alpha fits in a byte.
func ValidateAlpha(alpha int) error {
	if alpha < 0 || alpha > 255 {
		return New(ErrCodeInvalidAlpha, "alpha must be in [0,255], got %d", alpha)
	}
	return nil
}

// ValidateFalloff checks that the falloff multiplier is a finite, non-negative number.
func ValidateFalloff(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return New(ErrCodeInvalidFalloff, "falloff multiplier must be finite, got %v", f)
	}
	if f < 0 {
		return New(ErrCodeInvalidFalloff, "falloff multiplier must be non-negative, got %v", f)
	}
	return nil
}

// ValidateDimensions checks the output canvas size.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidDimensions, "image dimensions must be positive, got %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidDimensions, "image dimensions too large (max %d), got %dx%d", MaxDimension, width, height)
	}
	return nil
}

// ValidatePath validates a relative file path supplied by a remote caller.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
