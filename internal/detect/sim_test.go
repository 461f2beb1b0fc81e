package detect

import (
	"context"
	"testing"
	"time"

	"platescan/internal/hole"
)

func simHoles() []hole.Hole {
	return []hole.Hole{
		{ID: "A", Status: hole.StatusPending},
		{ID: "B", Status: hole.StatusPending},
		{ID: "T1", Status: hole.StatusTieRod},
		{ID: "C", Status: hole.StatusPending},
	}
}

func runSim(t *testing.T, params SimParams) []StatusEvent {
	t.Helper()
	drv := NewSimDriver(params)

	events := make(chan StatusEvent, 64)
	done := make(chan error, 1)
	go func() {
		defer close(events)
		done <- drv.Run(context.Background(), simHoles(), events)
	}()

	var out []StatusEvent
	for ev := range events {
		out = append(out, ev)
	}
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out
}

func TestSimDriverResolvesEveryHole(t *testing.T) {
	events := runSim(t, SimParams{Interval: time.Millisecond, QualifyProb: 1.0, Seed: 1})

	// Three pending holes get processing+verdict, the tie-rod gets one event.
	if len(events) != 7 {
		t.Fatalf("got %d events, want 7", len(events))
	}

	final := make(map[string]hole.Status)
	for _, ev := range events {
		final[ev.HoleID] = ev.NewStatus
	}
	for _, id := range []string{"A", "B", "C"} {
		if final[id] != hole.StatusQualified {
			t.Errorf("hole %s final status = %v, want qualified", id, final[id])
		}
	}
	if final["T1"] != hole.StatusTieRod {
		t.Errorf("tie-rod hole re-resolved to %v", final["T1"])
	}
}

func TestSimDriverAllDefectiveAtZeroProb(t *testing.T) {
	events := runSim(t, SimParams{Interval: time.Millisecond, QualifyProb: 0, Seed: 1})

	for _, ev := range events {
		if ev.NewStatus == hole.StatusQualified {
			t.Fatalf("hole %s qualified with QualifyProb=0", ev.HoleID)
		}
	}
}

func TestSimDriverSequenceIsMonotonicPerHole(t *testing.T) {
	events := runSim(t, SimParams{Interval: time.Millisecond, QualifyProb: 0.5, Seed: 3})

	last := make(map[string]uint64)
	for _, ev := range events {
		if ev.Seq <= last[ev.HoleID] {
			t.Fatalf("hole %s: seq %d not above %d", ev.HoleID, ev.Seq, last[ev.HoleID])
		}
		last[ev.HoleID] = ev.Seq
	}
}

func TestSimDriverHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	drv := NewSimDriver(SimParams{Interval: time.Millisecond})
	events := make(chan StatusEvent, 1)
	if err := drv.Run(ctx, simHoles(), events); err != context.Canceled {
		t.Fatalf("Run after cancel = %v, want context.Canceled", err)
	}
}

func TestSimDriverCancellationOnFixedHole(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// Unbuffered channel with no reader: the first emit blocks until the
	// cancel fires, and it blocks on a tie-rod hole.
	holes := []hole.Hole{{ID: "T1", Status: hole.StatusTieRod}}
	drv := NewSimDriver(SimParams{Interval: time.Millisecond})
	events := make(chan StatusEvent)

	done := make(chan error, 1)
	go func() { done <- drv.Run(ctx, holes, events) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("driver did not stop after cancel on a fixed-status hole")
	}
}
