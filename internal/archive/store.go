// Package archive persists inspection history: detection passes, every
// applied status-change event, and defect annotations with their snapshot
// images. Storage is a single SQLite database next to the project file.
package archive

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"platescan/internal/hole"
)

const schema = `
CREATE TABLE IF NOT EXISTS passes (
	pass_id     TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	driver      TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT
);

CREATE TABLE IF NOT EXISTS status_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	pass_id    TEXT NOT NULL,
	hole_id    TEXT NOT NULL,
	old_status TEXT NOT NULL,
	new_status TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY (pass_id) REFERENCES passes(pass_id)
);

CREATE INDEX IF NOT EXISTS idx_events_hole ON status_events(hole_id);
CREATE INDEX IF NOT EXISTS idx_events_pass ON status_events(pass_id);

CREATE TABLE IF NOT EXISTS annotations (
	annotation_id TEXT PRIMARY KEY,
	pass_id       TEXT,
	hole_id       TEXT NOT NULL,
	note          TEXT,
	snapshot_path TEXT,
	created_at    TEXT NOT NULL
);
`

// Store manages the inspection archive database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive database and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("archive pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("archive pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("archive migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginPass records the start of a detection pass and returns its ID.
func (s *Store) BeginPass(source, driver string) (string, error) {
	passID := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO passes (pass_id, source, driver, started_at) VALUES (?, ?, ?, ?)`,
		passID, source, driver, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("begin pass: %w", err)
	}
	return passID, nil
}

// FinishPass stamps the pass with its finish time.
func (s *Store) FinishPass(passID string) error {
	res, err := s.db.Exec(
		`UPDATE passes SET finished_at = ? WHERE pass_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), passID,
	)
	if err != nil {
		return fmt.Errorf("finish pass: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("finish pass: unknown pass %q", passID)
	}
	return err
}

// AppendEvent journals one applied status change.
func (s *Store) AppendEvent(passID, holeID string, oldStatus, newStatus hole.Status, seq uint64) error {
	_, err := s.db.Exec(
		`INSERT INTO status_events (pass_id, hole_id, old_status, new_status, seq, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		passID, holeID, oldStatus.String(), newStatus.String(), int64(seq),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Event is one journaled status change.
type Event struct {
	PassID    string
	HoleID    string
	OldStatus hole.Status
	NewStatus hole.Status
	Seq       uint64
	CreatedAt time.Time
}

// EventsForHole returns the journaled history of one hole, oldest first.
func (s *Store) EventsForHole(holeID string) ([]Event, error) {
	rows, err := s.db.Query(
		`SELECT pass_id, hole_id, old_status, new_status, seq, created_at
		 FROM status_events WHERE hole_id = ? ORDER BY id`,
		holeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var oldName, newName, created string
		var seq int64
		if err := rows.Scan(&ev.PassID, &ev.HoleID, &oldName, &newName, &seq, &created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if ev.OldStatus, err = hole.ParseStatus(oldName); err != nil {
			return nil, fmt.Errorf("event for %s: %w", ev.HoleID, err)
		}
		if ev.NewStatus, err = hole.ParseStatus(newName); err != nil {
			return nil, fmt.Errorf("event for %s: %w", ev.HoleID, err)
		}
		ev.Seq = uint64(seq)
		ev.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// PassSummary aggregates the journaled outcome of one pass.
type PassSummary struct {
	PassID     string
	Events     int
	Qualified  int
	Defective  int
	StartedAt  time.Time
	FinishedAt time.Time
	Finished   bool
}

// Summarize returns event counts for a pass.
func (s *Store) Summarize(passID string) (PassSummary, error) {
	sum := PassSummary{PassID: passID}

	var started string
	var finished sql.NullString
	err := s.db.QueryRow(
		`SELECT started_at, finished_at FROM passes WHERE pass_id = ?`, passID,
	).Scan(&started, &finished)
	if err != nil {
		return sum, fmt.Errorf("summarize pass: %w", err)
	}
	sum.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		sum.Finished = true
		sum.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}

	rows, err := s.db.Query(
		`SELECT new_status, COUNT(*) FROM status_events WHERE pass_id = ? GROUP BY new_status`, passID,
	)
	if err != nil {
		return sum, fmt.Errorf("summarize events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return sum, fmt.Errorf("scan summary: %w", err)
		}
		sum.Events += count
		switch name {
		case hole.StatusQualified.String():
			sum.Qualified = count
		case hole.StatusDefective.String():
			sum.Defective = count
		}
	}
	return sum, rows.Err()
}

// Annotation is a defect note attached to a hole, optionally with a saved
// snapshot image.
type Annotation struct {
	ID           string
	PassID       string
	HoleID       string
	Note         string
	SnapshotPath string
	CreatedAt    time.Time
}

// SaveAnnotation stores a defect annotation and returns its generated ID.
func (s *Store) SaveAnnotation(a Annotation) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO annotations (annotation_id, pass_id, hole_id, note, snapshot_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.PassID, a.HoleID, a.Note, a.SnapshotPath,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("save annotation: %w", err)
	}
	return a.ID, nil
}

// AnnotationsForHole returns all annotations recorded for one hole.
func (s *Store) AnnotationsForHole(holeID string) ([]Annotation, error) {
	rows, err := s.db.Query(
		`SELECT annotation_id, COALESCE(pass_id, ''), hole_id, COALESCE(note, ''),
		        COALESCE(snapshot_path, ''), created_at
		 FROM annotations WHERE hole_id = ? ORDER BY created_at`,
		holeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var out []Annotation
	for rows.Next() {
		var a Annotation
		var created string
		if err := rows.Scan(&a.ID, &a.PassID, &a.HoleID, &a.Note, &a.SnapshotPath, &created); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, a)
	}
	return out, rows.Err()
}
