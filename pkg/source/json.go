package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/heatmap/pkg/errors"
)

// jsonRecord accepts unit coordinates or a world position, and string or
// numeric IDs.
type jsonRecord struct {
	X    *float64        `json:"x"`
	Y    *float64        `json:"y"`
	ID   json.RawMessage `json:"id"`
	Kind string          `json:"kind"`

	CellX    *int    `json:"cell_x"`
	CellY    *int    `json:"cell_y"`
	CellBits int     `json:"cell_bits"`
	OriginX  float64 `json:"origin_x"`
	OriginY  float64 `json:"origin_y"`
}

type jsonEnvelope struct {
	Points []jsonRecord `json:"points"`
}

// ReadJSON reads an array of records, or an object with a "points" array.
//
//	[{"x": 0.25, "y": 0.5, "id": "ward-1", "kind": "observer"}]
//	{"points": [{"cell_x": 70, "cell_y": 62, "cell_bits": 7, "origin_x": 512, "origin_y": 0}]}
//
// World positions are converted with [WorldToUnit] and flipped so y grows
// downwards.
func ReadJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPoints, err, "read json")
	}

	var raw []jsonRecord
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env jsonEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPoints, err, "decode json")
		}
		raw = env.Points
	} else if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPoints, err, "decode json")
	}

	records := make([]Record, 0, len(raw))
	for i, jr := range raw {
		rec, err := jr.record()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPoints, err, "point %d", i)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (jr jsonRecord) record() (Record, error) {
	rec := Record{Kind: jr.Kind}
	switch {
	case jr.X != nil && jr.Y != nil:
		rec.X, rec.Y = *jr.X, *jr.Y
	case jr.CellX != nil && jr.CellY != nil:
		rec.X = WorldToUnit(*jr.CellX, jr.CellBits, jr.OriginX)
		rec.Y = 1 - WorldToUnit(*jr.CellY, jr.CellBits, jr.OriginY)
	default:
		return Record{}, fmt.Errorf("missing x/y or cell_x/cell_y")
	}

	if len(jr.ID) > 0 && string(jr.ID) != "null" {
		var s string
		if err := json.Unmarshal(jr.ID, &s); err == nil {
			rec.ID = s
		} else {
			rec.ID = string(jr.ID)
		}
	}
	return rec, nil
}
