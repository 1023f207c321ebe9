package source

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/heatmap/pkg/errors"
)

// DefaultQuery selects points from a table named points.
const DefaultQuery = "SELECT x, y, id FROM points"

// ReadSQLite runs query against the database at path. The first two result
// columns are x and y; an optional third is the ID and an optional fourth the
// kind. NULL IDs and kinds read as empty strings.
func ReadSQLite(ctx context.Context, path, query string) ([]Record, error) {
	if query == "" {
		query = DefaultQuery
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPoints, err, "query %s", path)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPoints, err, "columns")
	}
	if len(cols) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidPoints, "query must return at least x and y, got %d columns", len(cols))
	}

	var records []Record
	for rows.Next() {
		var (
			rec      Record
			id, kind sql.NullString
			extra    = make([]any, max(len(cols)-4, 0))
		)
		dest := []any{&rec.X, &rec.Y}
		if len(cols) > 2 {
			dest = append(dest, &id)
		}
		if len(cols) > 3 {
			dest = append(dest, &kind)
		}
		for i := range extra {
			dest = append(dest, &extra[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPoints, err, "scan row %d", len(records))
		}
		rec.ID, rec.Kind = id.String, kind.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPoints, err, "read rows")
	}
	return records, nil
}
