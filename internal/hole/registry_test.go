package hole

import (
	"errors"
	"testing"
)

func testRecords() []Record {
	return []Record{
		{ID: "A", X: 1, Y: 1, Radius: 2.5},
		{ID: "B", X: -1, Y: 1, Radius: 2.5},
		{ID: "C", X: -1, Y: -1, Radius: 2.5},
		{ID: "D", X: 1, Y: -1, Radius: 2.5},
	}
}

func TestRegistryLoadAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Load(testRecords()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if r.Len() != 4 {
		t.Fatalf("Len = %d, want 4", r.Len())
	}

	h, err := r.Get("B")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if h.Center.X != -1 || h.Center.Y != 1 || h.Radius != 2.5 {
		t.Fatalf("unexpected hole: %+v", h)
	}
	if h.Status != StatusPending {
		t.Fatalf("fresh hole status = %v, want pending", h.Status)
	}

	if _, err := r.Get("Z"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistryLoadRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Load(testRecords()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	dup := append(testRecords(), Record{ID: "B", X: 9, Y: 9})
	err := r.Load(dup)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	// The failed load must leave the previous dataset fully intact.
	if r.Len() != 4 {
		t.Fatalf("failed load disturbed registry: Len = %d", r.Len())
	}
	h, err := r.Get("B")
	if err != nil || h.Center.X != -1 {
		t.Fatalf("failed load disturbed hole B: %+v, %v", h, err)
	}
}

func TestRegistrySetStatusReturnsPrevious(t *testing.T) {
	r := NewRegistry()
	if err := r.Load(testRecords()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	prev, err := r.SetStatus("A", StatusProcessing)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if prev != StatusPending {
		t.Fatalf("prev = %v, want pending", prev)
	}

	prev, err = r.SetStatus("A", StatusQualified)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if prev != StatusProcessing {
		t.Fatalf("prev = %v, want processing", prev)
	}

	if _, err := r.SetStatus("Z", StatusQualified); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.SetStatus("A", Status(99)); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestRegistryLoadReplacesDataset(t *testing.T) {
	r := NewRegistry()
	if err := r.Load(testRecords()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := r.SetStatus("A", StatusDefective); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	if err := r.Load([]Record{{ID: "X", X: 0, Y: 0, Radius: 1}}); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if r.Len() != 1 {
		t.Fatalf("Len after reload = %d, want 1", r.Len())
	}
	if _, err := r.Get("A"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old dataset still visible after reload: %v", err)
	}
}

func TestRegistryOrderAndSnapshots(t *testing.T) {
	r := NewRegistry()
	if err := r.Load(testRecords()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"A", "B", "C", "D"}
	ids := r.IDs()
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("IDs = %v, want %v", ids, want)
		}
	}

	if _, err := r.SetStatus("C", StatusBlind); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	snap := r.Snapshot()
	if snap[2].ID != "C" || snap[2].Status != StatusBlind {
		t.Fatalf("snapshot[2] = %+v, want C/blind", snap[2])
	}

	// Mutating the snapshot must not touch the registry.
	snap[0].Status = StatusDefective
	h, _ := r.Get("A")
	if h.Status != StatusPending {
		t.Fatalf("snapshot mutation leaked into registry: %v", h.Status)
	}
}

func TestStatusCompletedAndParse(t *testing.T) {
	completed := map[Status]bool{
		StatusPending:    false,
		StatusProcessing: false,
		StatusQualified:  true,
		StatusDefective:  true,
		StatusBlind:      true,
		StatusTieRod:     true,
	}
	for s, want := range completed {
		if s.Completed() != want {
			t.Errorf("%v.Completed() = %v, want %v", s, s.Completed(), want)
		}
		parsed, err := ParseStatus(s.String())
		if err != nil || parsed != s {
			t.Errorf("ParseStatus(%q) = %v, %v", s.String(), parsed, err)
		}
	}

	if _, err := ParseStatus("bogus"); err == nil {
		t.Fatal("ParseStatus accepted unknown name")
	}
}
