package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"platescan/internal/archive"
	"platescan/internal/detect"
	"platescan/internal/drawing"
	"platescan/internal/hole"
	"platescan/internal/sector"
)

func cornerTable() *drawing.Table {
	return &drawing.Table{
		Version: 1,
		Source:  "corner.dxf",
		Holes: []hole.Record{
			{ID: "A", X: 1, Y: 1, Radius: 1},
			{ID: "B", X: -1, Y: 1, Radius: 1},
			{ID: "C", X: -1, Y: -1, Radius: 1},
			{ID: "D", X: 1, Y: -1, Radius: 1},
		},
	}
}

func loadedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	if err := s.LoadTable("corner", cornerTable()); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	return s
}

func TestLoadPartitionsCornersAcrossSectors(t *testing.T) {
	s := loadedSession(t)

	if c := s.Centroid(); c.X != 0 || c.Y != 0 {
		t.Fatalf("centroid = %v, want origin", c)
	}

	wantSector := map[string]sector.Sector{
		"A": sector.Sector1,
		"B": sector.Sector2,
		"C": sector.Sector3,
		"D": sector.Sector4,
	}
	for id, want := range wantSector {
		got, err := s.Index().SectorOf(id)
		if err != nil {
			t.Fatalf("SectorOf(%s): %v", id, err)
		}
		if got != want {
			t.Errorf("hole %s in %v, want %v", id, got, want)
		}
	}

	for _, sec := range sector.All() {
		agg, err := s.Aggregate(sec)
		if err != nil {
			t.Fatalf("Aggregate(%v): %v", sec, err)
		}
		if agg.TotalHoles != 1 || agg.CompletedHoles != 0 {
			t.Errorf("%v after load: %+v", sec, agg)
		}
	}
}

func TestApplyUpdatesOnlyOwningSector(t *testing.T) {
	s := loadedSession(t)

	var changes []StatusChange
	s.On(EventStatusChanged, func(data interface{}) {
		changes = append(changes, data.(StatusChange))
	})

	if err := s.Apply(detect.StatusEvent{HoleID: "A", NewStatus: hole.StatusQualified, Seq: 1}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	agg, _ := s.Aggregate(sector.Sector1)
	if agg.CompletedHoles != 1 || agg.QualifiedHoles != 1 {
		t.Fatalf("sector1: %+v", agg)
	}
	if agg.CompletionRate() != 1.0 || agg.QualificationRate() != 1.0 {
		t.Fatalf("rates: %f/%f", agg.CompletionRate(), agg.QualificationRate())
	}
	for _, sec := range []sector.Sector{sector.Sector2, sector.Sector3, sector.Sector4} {
		agg, _ := s.Aggregate(sec)
		if agg.CompletedHoles != 0 {
			t.Errorf("%v touched: %+v", sec, agg)
		}
	}

	if len(changes) != 1 || changes[0].HoleID != "A" || changes[0].Sector != sector.Sector1 {
		t.Fatalf("changes = %+v", changes)
	}
	if changes[0].OldStatus != hole.StatusPending || changes[0].NewStatus != hole.StatusQualified {
		t.Fatalf("change payload: %+v", changes[0])
	}

	// Manual correction: completed count stays, kind flips.
	if err := s.Apply(detect.StatusEvent{HoleID: "A", NewStatus: hole.StatusDefective, Seq: 2}); err != nil {
		t.Fatalf("Apply correction: %v", err)
	}
	agg, _ = s.Aggregate(sector.Sector1)
	if agg.CompletedHoles != 1 || agg.QualifiedHoles != 0 || agg.DefectiveHoles != 1 {
		t.Fatalf("sector1 after correction: %+v", agg)
	}
}

func TestApplyRecoverableFailures(t *testing.T) {
	s := loadedSession(t)

	if err := s.Apply(detect.StatusEvent{HoleID: "nope", NewStatus: hole.StatusQualified, Seq: 1}); !errors.Is(err, hole.ErrNotFound) {
		t.Fatalf("unknown hole: %v", err)
	}

	if err := s.Apply(detect.StatusEvent{HoleID: "A", NewStatus: hole.StatusQualified, Seq: 5}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	err := s.Apply(detect.StatusEvent{HoleID: "A", NewStatus: hole.StatusPending, Seq: 5})
	if !errors.Is(err, sector.ErrStaleEvent) {
		t.Fatalf("stale: %v", err)
	}

	// Stale event left both registry and tracker untouched.
	h, _ := s.Hole("A")
	if h.Status != hole.StatusQualified {
		t.Fatalf("stale event flipped registry status to %v", h.Status)
	}
	agg, _ := s.Aggregate(sector.Sector1)
	if agg.QualifiedHoles != 1 {
		t.Fatalf("stale event moved counters: %+v", agg)
	}
}

// TestApplyRejectsInvalidStatusBeforeMutation guards against a half-applied
// event: if the tracker retired A's qualified contribution before the bad
// status was caught, the follow-up correction would retire it again and
// push the completed count negative.
func TestApplyRejectsInvalidStatusBeforeMutation(t *testing.T) {
	s := loadedSession(t)

	if err := s.Apply(detect.StatusEvent{HoleID: "A", NewStatus: hole.StatusQualified, Seq: 1}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	err := s.Apply(detect.StatusEvent{HoleID: "A", NewStatus: hole.Status(99), Seq: 2})
	if !errors.Is(err, hole.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	h, _ := s.Hole("A")
	if h.Status != hole.StatusQualified {
		t.Fatalf("rejected event flipped registry status to %v", h.Status)
	}
	agg, _ := s.Aggregate(sector.Sector1)
	if agg.CompletedHoles != 1 || agg.QualifiedHoles != 1 {
		t.Fatalf("rejected event moved counters: %+v", agg)
	}

	// The correction after the rejection lands on balanced counters.
	if err := s.Apply(detect.StatusEvent{HoleID: "A", NewStatus: hole.StatusDefective, Seq: 2}); err != nil {
		t.Fatalf("Apply correction: %v", err)
	}
	agg, _ = s.Aggregate(sector.Sector1)
	if agg.CompletedHoles != 1 || agg.QualifiedHoles != 0 || agg.DefectiveHoles != 1 {
		t.Fatalf("counters unbalanced after correction: %+v", agg)
	}
}

func TestFocusSwitchingAndViews(t *testing.T) {
	s := loadedSession(t)

	if s.Focus() != sector.Sector1 {
		t.Fatalf("default focus = %v", s.Focus())
	}

	focusEvents := 0
	s.On(EventFocusChanged, func(interface{}) { focusEvents++ })

	if err := s.SwitchFocus(sector.Sector2); err != nil {
		t.Fatalf("SwitchFocus: %v", err)
	}
	if got := s.FocusedHoles(); len(got) != 1 || got[0] != "B" {
		t.Fatalf("FocusedHoles = %v, want [B]", got)
	}
	if all := s.AllHoleIDs(); len(all) != 4 {
		t.Fatalf("AllHoleIDs = %v, want 4 ids", all)
	}
	if focusEvents != 1 {
		t.Fatalf("focus events = %d", focusEvents)
	}

	if err := s.SwitchFocus(sector.Sector(9)); !errors.Is(err, sector.ErrUnknownSector) {
		t.Fatalf("invalid focus: %v", err)
	}
}

func TestLoadFailureLeavesOldPlate(t *testing.T) {
	s := loadedSession(t)

	bad := &drawing.Table{Version: 1, Holes: []hole.Record{{ID: "X"}, {ID: "X"}}}
	if err := s.LoadTable("bad", bad); !errors.Is(err, hole.ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}

	if s.Source() != "corner" {
		t.Fatalf("source = %q after failed load", s.Source())
	}
	if len(s.AllHoleIDs()) != 4 {
		t.Fatal("failed load disturbed dataset")
	}

	empty := &drawing.Table{Version: 1}
	if err := s.LoadTable("empty", empty); !errors.Is(err, drawing.ErrNoHoles) {
		t.Fatalf("expected ErrNoHoles, got %v", err)
	}
}

func TestRunPassWithArchive(t *testing.T) {
	s := loadedSession(t)

	store, err := archive.Open(filepath.Join(t.TempDir(), "inspection.db"))
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	defer store.Close()
	s.AttachArchive(store)

	started, finished := 0, 0
	s.On(EventPassStarted, func(interface{}) { started++ })
	s.On(EventPassFinished, func(interface{}) { finished++ })

	drv := detect.NewSimDriver(detect.SimParams{
		Interval:    time.Millisecond,
		QualifyProb: 1.0,
		Seed:        7,
	})
	if err := s.RunPass(context.Background(), drv); err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if started != 1 || finished != 1 {
		t.Fatalf("pass events: started=%d finished=%d", started, finished)
	}

	totalCompleted := 0
	for _, sec := range sector.All() {
		agg, _ := s.Aggregate(sec)
		if agg.CompletedHoles != agg.TotalHoles {
			t.Errorf("%v incomplete after pass: %+v", sec, agg)
		}
		totalCompleted += agg.CompletedHoles
		if sector.ColorFor(agg) != sector.TierGreen {
			t.Errorf("%v not green after full pass", sec)
		}
	}
	if totalCompleted != 4 {
		t.Fatalf("completed %d holes, want 4", totalCompleted)
	}

	// Every hole's journaled history ends qualified.
	for _, id := range s.AllHoleIDs() {
		history, err := store.EventsForHole(id)
		if err != nil {
			t.Fatalf("EventsForHole(%s): %v", id, err)
		}
		if len(history) == 0 {
			t.Fatalf("hole %s has no journaled events", id)
		}
		last := history[len(history)-1]
		if last.NewStatus != hole.StatusQualified {
			t.Fatalf("hole %s final journal entry: %v", id, last.NewStatus)
		}
	}
}

func TestRunPassRequiresDatasetAndExclusivity(t *testing.T) {
	s := NewSession()
	drv := detect.NewSimDriver(detect.DefaultSimParams())
	if err := s.RunPass(context.Background(), drv); !errors.Is(err, ErrNoDataset) {
		t.Fatalf("expected ErrNoDataset, got %v", err)
	}
}

func TestAnnotateMarksDefectiveAndStoresNote(t *testing.T) {
	s := loadedSession(t)
	store, err := archive.Open(filepath.Join(t.TempDir(), "inspection.db"))
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	defer store.Close()
	s.AttachArchive(store)

	if err := s.Annotate("D", "chipped rim", "", 1); err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	h, _ := s.Hole("D")
	if h.Status != hole.StatusDefective {
		t.Fatalf("annotated hole status = %v", h.Status)
	}
	anns, err := store.AnnotationsForHole("D")
	if err != nil || len(anns) != 1 || anns[0].Note != "chipped rim" {
		t.Fatalf("annotations = %+v, err %v", anns, err)
	}
}
