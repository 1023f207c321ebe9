package sink

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/errors"
)

// gridJSON is the serialized form of a normalized grid. Cells are stored as
// rows so the file reads like the image.
type gridJSON struct {
	Size     int         `json:"size"`
	MaxScore float64     `json:"max_score"`
	Skipped  int         `json:"skipped,omitempty"`
	Cells    [][]float64 `json:"cells"`
}

// MarshalGrid encodes a grid as JSON:
//
//	{"size": 4, "max_score": 4, "skipped": 1, "cells": [[0, 0, 0, 0], ...]}
//
// skipped is omitted when no points were skipped.
func MarshalGrid(g *density.Grid) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGrid(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGrid writes the JSON encoding of g to w.
func WriteGrid(w io.Writer, g *density.Grid) error {
	out := gridJSON{Size: g.Size(), MaxScore: g.MaxScore(), Skipped: g.Skipped(), Cells: g.Rows()}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode grid")
	}
	return nil
}

// UnmarshalGrid decodes a grid written by [MarshalGrid].
func UnmarshalGrid(data []byte) (*density.Grid, error) {
	return ReadGrid(bytes.NewReader(data))
}

// ReadGrid decodes a grid written by [WriteGrid].
func ReadGrid(r io.Reader) (*density.Grid, error) {
	var in gridJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode grid")
	}
	if len(in.Cells) != in.Size {
		return nil, errors.New(errors.ErrCodeInvalidInput, "grid of size %d has %d rows", in.Size, len(in.Cells))
	}
	cells := make([]float64, 0, in.Size*in.Size)
	for y, row := range in.Cells {
		if len(row) != in.Size {
			return nil, errors.New(errors.ErrCodeInvalidInput, "row %d has %d cells, want %d", y, len(row), in.Size)
		}
		cells = append(cells, row...)
	}
	return density.FromCells(in.Size, in.MaxScore, in.Skipped, cells)
}
