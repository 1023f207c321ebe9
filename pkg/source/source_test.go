package source

import (
	"bytes"
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/errors"
)

func TestReadCSV(t *testing.T) {
	input := `# wards from match 42
x,y,id,kind
0.25,0.5,w1,observer
0.75, 0.125 ,w2,sentry
0.5,0.5
`
	got, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}
	want := []Record{
		{X: 0.25, Y: 0.5, ID: "w1", Kind: "observer"},
		{X: 0.75, Y: 0.125, ID: "w2", Kind: "sentry"},
		{X: 0.5, Y: 0.5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadCSV() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"single column", "0.5\n"},
		{"bad number after header", "x,y\n0.1,0.2\nfoo,0.3\n"},
		{"bad number in data", "0.1,0.2\n0.3,bar\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeInvalidPoints) {
				t.Errorf("ReadCSV() error = %v, want INVALID_POINTS", err)
			}
		})
	}
}

func TestWriteCSV_ReadBack(t *testing.T) {
	records := []Record{{X: 0.1, Y: 0.9, ID: "a", Kind: "observer"}, {X: 1e-7, Y: 0.5}}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Record
	}{
		{
			name:  "array",
			input: `[{"x":0.1,"y":0.2,"id":"a"},{"x":0.3,"y":0.4,"id":7,"kind":"sentry"}]`,
			want:  []Record{{X: 0.1, Y: 0.2, ID: "a"}, {X: 0.3, Y: 0.4, ID: "7", Kind: "sentry"}},
		},
		{
			name:  "envelope",
			input: ` {"points":[{"x":0.5,"y":0.5,"id":null}]}`,
			want:  []Record{{X: 0.5, Y: 0.5}},
		},
		{
			name:  "world position",
			input: `[{"cell_x":128,"cell_y":160,"cell_bits":7,"origin_x":0,"origin_y":0}]`,
			want:  []Record{{X: 0.5, Y: 0.25}},
		},
		{
			name:  "empty",
			input: `[]`,
			want:  []Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadJSON(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadJSON() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ReadJSON() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadJSON_Errors(t *testing.T) {
	for _, input := range []string{`{`, `[{"id":"x"}]`, `"points"`} {
		if _, err := ReadJSON(strings.NewReader(input)); !errors.Is(err, errors.ErrCodeInvalidPoints) {
			t.Errorf("ReadJSON(%q) error = %v, want INVALID_POINTS", input, err)
		}
	}
}

func TestWorldToUnit(t *testing.T) {
	tests := []struct {
		cell, bits int
		origin     float64
		want       float64
	}{
		{128, 7, 0, 0.5},
		{192, 7, 0, 1.0},
		{64, 7, 0, 0},
		{128, 7, 128 * 4096, 0.75},
	}
	for _, tt := range tests {
		if got := WorldToUnit(tt.cell, tt.bits, tt.origin); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WorldToUnit(%d, %d, %v) = %v, want %v", tt.cell, tt.bits, tt.origin, got, tt.want)
		}
	}
}

func TestDedup(t *testing.T) {
	in := []Record{
		{X: 0.1, Y: 0.1, ID: "a"},
		{X: 0.2, Y: 0.2, ID: "b"},
		{X: 0.9, Y: 0.9, ID: "a"},
		{X: 0.3, Y: 0.3},
		{X: 0.3, Y: 0.3},
		{X: 0.8, Y: 0.8, ID: "b"},
	}
	want := []Record{
		{X: 0.1, Y: 0.1, ID: "a"},
		{X: 0.2, Y: 0.2, ID: "b"},
		{X: 0.3, Y: 0.3},
		{X: 0.3, Y: 0.3},
	}
	if diff := cmp.Diff(want, Dedup(in)); diff != "" {
		t.Errorf("Dedup() mismatch (-want +got):\n%s", diff)
	}
}

func TestApply(t *testing.T) {
	in := []Record{
		{X: 0.1, Y: 0.25, ID: "a", Kind: "observer"},
		{X: 0.2, Y: 0.5, ID: "b", Kind: "courier"},
		{X: 0.3, Y: 0.75, ID: "a", Kind: "observer"},
	}
	got := Apply(in, Options{Kinds: []string{"observer", "sentry"}, Dedup: true, FlipY: true})
	want := []Record{{X: 0.1, Y: 0.75, ID: "a", Kind: "observer"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
	if in[0].Y != 0.25 {
		t.Error("Apply() mutated its input")
	}
}

func TestPoints(t *testing.T) {
	got := Points([]Record{{X: 0.1, Y: 0.2, ID: "x"}})
	want := []density.Point{{X: 0.1, Y: 0.2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Points() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Record{{X: 0.1, Y: 0.2}}, FromPoints(got)); diff != "" {
		t.Errorf("FromPoints() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	csvPath := filepath.Join(dir, "wards.csv")
	if err := os.WriteFile(csvPath, []byte("0.5,0.5,w1\n0.5,0.5,w1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(ctx, csvPath, Options{Dedup: true})
	if err != nil {
		t.Fatalf("Load(csv) error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Load(csv) returned %d records, want 1", len(got))
	}

	jsonPath := filepath.Join(dir, "wards.JSON")
	if err := os.WriteFile(jsonPath, []byte(`[{"x":0.1,"y":0.2}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := Load(ctx, jsonPath, Options{}); err != nil || len(got) != 1 {
		t.Errorf("Load(json) = %v, %v", got, err)
	}

	if _, err := Load(ctx, filepath.Join(dir, "missing.csv"), Options{}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}

	txtPath := filepath.Join(dir, "wards.txt")
	if err := os.WriteFile(txtPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(ctx, txtPath, Options{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Load(txt) error = %v, want UNSUPPORTED", err)
	}
}

func TestReadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	stmts := []string{
		`CREATE TABLE points (x REAL, y REAL, id INTEGER, kind TEXT)`,
		`INSERT INTO points VALUES (0.25, 0.5, 1, 'observer')`,
		`INSERT INTO points VALUES (0.75, 0.5, NULL, 'sentry')`,
		`INSERT INTO points VALUES (0.5, 0.5, 3, NULL)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	db.Close()

	ctx := context.Background()
	got, err := ReadSQLite(ctx, path, "")
	if err != nil {
		t.Fatalf("ReadSQLite() error: %v", err)
	}
	want := []Record{
		{X: 0.25, Y: 0.5, ID: "1"},
		{X: 0.75, Y: 0.5},
		{X: 0.5, Y: 0.5, ID: "3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadSQLite() mismatch (-want +got):\n%s", diff)
	}

	got, err = ReadSQLite(ctx, path, "SELECT x, y, id, kind FROM points WHERE kind = 'observer'")
	if err != nil {
		t.Fatalf("ReadSQLite(kind) error: %v", err)
	}
	if diff := cmp.Diff([]Record{{X: 0.25, Y: 0.5, ID: "1", Kind: "observer"}}, got); diff != "" {
		t.Errorf("ReadSQLite(kind) mismatch (-want +got):\n%s", diff)
	}

	got, err = Load(ctx, path, Options{Query: "SELECT x, y FROM points"})
	if err != nil || len(got) != 3 {
		t.Errorf("Load(sqlite) = %v, %v", got, err)
	}

	if _, err := ReadSQLite(ctx, path, "SELECT x FROM points"); !errors.Is(err, errors.ErrCodeInvalidPoints) {
		t.Errorf("single column error = %v, want INVALID_POINTS", err)
	}
	if _, err := ReadSQLite(ctx, path, "SELECT * FROM nope"); !errors.Is(err, errors.ErrCodeInvalidPoints) {
		t.Errorf("missing table error = %v, want INVALID_POINTS", err)
	}
}
