package drawing

import (
	"errors"
	"path/filepath"
	"testing"

	"platescan/internal/hole"
)

func TestTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plate.holes.json")

	orig := &Table{
		Version: 1,
		Source:  "exchanger_E-101.dxf",
		Units:   "mm",
		Holes: []hole.Record{
			{ID: "R1C1", X: 10, Y: 20, Radius: 9.5},
			{ID: "R1C2", X: 35, Y: 20, Radius: 9.5},
			{ID: "R2C1", X: 10, Y: 45, Radius: 9.5},
		},
	}
	if err := orig.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Holes) != 3 {
		t.Fatalf("loaded %d holes, want 3", len(loaded.Holes))
	}
	if loaded.Holes[1] != orig.Holes[1] {
		t.Fatalf("hole mismatch: %+v != %+v", loaded.Holes[1], orig.Holes[1])
	}
	if loaded.Source != orig.Source || loaded.Units != orig.Units {
		t.Fatalf("metadata mismatch: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		holes   []hole.Record
		wantErr error
	}{
		{"empty table", nil, ErrNoHoles},
		{"missing id", []hole.Record{{ID: "A"}, {X: 1}}, ErrMissingID},
		{"duplicate id", []hole.Record{{ID: "A"}, {ID: "B"}, {ID: "A"}}, hole.ErrDuplicateID},
		{"valid", []hole.Record{{ID: "A"}, {ID: "B"}}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := &Table{Version: 1, Holes: tc.holes}
			err := table.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
