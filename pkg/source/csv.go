package source

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/heatmap/pkg/errors"
)

// ReadCSV reads records with columns x,y[,id[,kind]]. Lines starting with #
// are comments. A first row whose x and y are not numbers is taken as a
// header and skipped.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records []Record
	for row := 0; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPoints, err, "read csv")
		}
		if len(fields) < 2 {
			line, _ := cr.FieldPos(0)
			return nil, errors.New(errors.ErrCodeInvalidPoints, "line %d: want at least 2 columns, got %d", line, len(fields))
		}

		x, errX := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if errX != nil || errY != nil {
			if row == 0 {
				continue
			}
			line, _ := cr.FieldPos(0)
			return nil, errors.New(errors.ErrCodeInvalidPoints, "line %d: invalid coordinates %q, %q", line, fields[0], fields[1])
		}

		rec := Record{X: x, Y: y}
		if len(fields) > 2 {
			rec.ID = strings.TrimSpace(fields[2])
		}
		if len(fields) > 3 {
			rec.Kind = strings.TrimSpace(fields[3])
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteCSV writes records in the format read by [ReadCSV], with a header.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y", "id", "kind"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatFloat(r.X, 'g', -1, 64),
			strconv.FormatFloat(r.Y, 'g', -1, 64),
			r.ID,
			r.Kind,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
