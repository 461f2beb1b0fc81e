// Package drawing loads hole tables exported from tube-sheet drawings.
//
// The CAD side owns DXF parsing; what reaches this application is the
// exporter's finished hole table: an ordered list of (id, x, y, radius)
// records serialized as JSON. This package validates the table's invariants
// (IDs present and unique) and hands the records on unchanged.
package drawing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"platescan/internal/hole"
)

var (
	// ErrNoHoles is returned for a table with an empty hole list.
	ErrNoHoles = errors.New("hole table contains no holes")
	// ErrMissingID is returned when a record has an empty ID.
	ErrMissingID = errors.New("hole record missing id")
)

// Table is the on-disk hole table produced by the drawing exporter.
type Table struct {
	Version int           `json:"version"`
	Source  string        `json:"source,omitempty"` // originating drawing file
	Units   string        `json:"units,omitempty"`  // e.g. "mm"
	Holes   []hole.Record `json:"holes"`
}

// Load reads and validates a hole table file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hole table: %w", err)
	}

	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse hole table %s: %w", path, err)
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("hole table %s: %w", path, err)
	}
	return &table, nil
}

// Validate checks the exporter's delivery invariants: at least one hole,
// every record carries an ID, and IDs are unique within the table.
// Failures report the offending row.
func (t *Table) Validate() error {
	if len(t.Holes) == 0 {
		return ErrNoHoles
	}

	seen := make(map[string]int, len(t.Holes))
	for i, rec := range t.Holes {
		if rec.ID == "" {
			return fmt.Errorf("row %d: %w", i, ErrMissingID)
		}
		if first, dup := seen[rec.ID]; dup {
			return fmt.Errorf("row %d: %w: %q (first seen at row %d)", i, hole.ErrDuplicateID, rec.ID, first)
		}
		seen[rec.ID] = i
	}
	return nil
}

// Save writes the table to disk. Used by the synthetic-plate tooling and
// round-trip tests; production tables come from the exporter.
func (t *Table) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
