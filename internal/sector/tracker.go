package sector

import (
	"errors"
	"fmt"
	"sync"

	"platescan/internal/hole"
)

// ErrStaleEvent is returned by RecordStatusChangeSeq when an event arrives
// with a sequence number at or below the last one applied for that hole.
// Callers log and drop stale events; they are not fatal.
var ErrStaleEvent = errors.New("stale status event")

// Aggregate is the running tally for one sector. TotalHoles is fixed at
// load time; the remaining counters move with each status-change event.
type Aggregate struct {
	Sector         Sector `json:"sector"`
	TotalHoles     int    `json:"total_holes"`
	CompletedHoles int    `json:"completed_holes"`
	QualifiedHoles int    `json:"qualified_holes"`
	DefectiveHoles int    `json:"defective_holes"`
}

// CompletionRate returns completed/total, or 0 for an empty sector.
func (a Aggregate) CompletionRate() float64 {
	if a.TotalHoles == 0 {
		return 0
	}
	return float64(a.CompletedHoles) / float64(a.TotalHoles)
}

// QualificationRate returns qualified/completed, or 0 when nothing has
// completed yet.
func (a Aggregate) QualificationRate() float64 {
	if a.CompletedHoles == 0 {
		return 0
	}
	return float64(a.QualifiedHoles) / float64(a.CompletedHoles)
}

// OtherCompleted returns the count of completed holes that carry no
// pass/fail verdict (blind and tie-rod holes).
func (a Aggregate) OtherCompleted() int {
	return a.CompletedHoles - a.QualifiedHoles - a.DefectiveHoles
}

// Tracker maintains one aggregate per sector and updates exactly one of
// them per status-change event. Each update is a pure delta computed from
// the (old, new) status pair, which keeps every event O(1) no matter how
// many holes the plate has.
//
// Events for the same hole must arrive in order: the delta depends on the
// immediately prior status. RecordStatusChangeSeq additionally enforces
// this with a per-hole monotonic sequence number for event sources that
// cannot guarantee ordering themselves.
type Tracker struct {
	mu         sync.RWMutex
	index      *AssignmentIndex
	aggregates [SectorCount]Aggregate
	lastSeq    map[string]uint64
}

// NewTracker creates a tracker initialized from the given assignment index.
// Per-sector totals come straight from the index's precomputed lists; the
// holes are not iterated again.
func NewTracker(index *AssignmentIndex) *Tracker {
	t := &Tracker{
		index:   index,
		lastSeq: make(map[string]uint64),
	}
	for _, s := range All() {
		t.aggregates[s] = Aggregate{
			Sector:     s,
			TotalHoles: index.Count(s),
		}
	}
	return t
}

// RecordStatusChange applies the delta for one hole's transition from
// oldStatus to newStatus to that hole's sector aggregate.
//
// All 36 status pairs are legal: forward progress, direct pending-to-result
// jumps from batch detection, reverts back to pending, and manual
// corrections between completed kinds (an inspector re-marking a qualified
// hole as defective) all reduce to the same retire-then-apply delta.
func (t *Tracker) RecordStatusChange(holeID string, oldStatus, newStatus hole.Status) error {
	if err := checkStatuses(oldStatus, newStatus); err != nil {
		return err
	}
	s, err := t.index.SectorOf(holeID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.apply(s, oldStatus, newStatus)
	return nil
}

// RecordStatusChangeSeq is the ordering-safe variant of RecordStatusChange
// for event sources with racing workers. seq must increase per hole; an
// event at or below the hole's last applied sequence is rejected with
// ErrStaleEvent and leaves the aggregates untouched.
func (t *Tracker) RecordStatusChangeSeq(holeID string, oldStatus, newStatus hole.Status, seq uint64) error {
	if err := checkStatuses(oldStatus, newStatus); err != nil {
		return err
	}
	s, err := t.index.SectorOf(holeID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if last, ok := t.lastSeq[holeID]; ok && seq <= last {
		return fmt.Errorf("%w: hole %q seq %d <= %d", ErrStaleEvent, holeID, seq, last)
	}
	t.lastSeq[holeID] = seq
	t.apply(s, oldStatus, newStatus)
	return nil
}

// checkStatuses rejects out-of-enum statuses before any counter moves.
// Applying half a delta would leave the tallies unbalanced for good.
func checkStatuses(oldStatus, newStatus hole.Status) error {
	if !oldStatus.Valid() {
		return fmt.Errorf("%w: old status %d", hole.ErrInvalidStatus, int(oldStatus))
	}
	if !newStatus.Valid() {
		return fmt.Errorf("%w: new status %d", hole.ErrInvalidStatus, int(newStatus))
	}
	return nil
}

// apply retires the old status from the aggregate and applies the new one.
// Caller holds t.mu.
func (t *Tracker) apply(s Sector, oldStatus, newStatus hole.Status) {
	agg := &t.aggregates[s]

	if oldStatus.Completed() {
		agg.CompletedHoles--
		switch oldStatus {
		case hole.StatusQualified:
			agg.QualifiedHoles--
		case hole.StatusDefective:
			agg.DefectiveHoles--
		}
	}
	if newStatus.Completed() {
		agg.CompletedHoles++
		switch newStatus {
		case hole.StatusQualified:
			agg.QualifiedHoles++
		case hole.StatusDefective:
			agg.DefectiveHoles++
		}
	}
}

// Aggregate returns a snapshot of one sector's tally.
func (t *Tracker) Aggregate(s Sector) (Aggregate, error) {
	if !s.Valid() {
		return Aggregate{}, fmt.Errorf("%w: %d", ErrUnknownSector, int(s))
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.aggregates[s], nil
}

// Aggregates returns snapshots of all four sector tallies in order.
func (t *Tracker) Aggregates() [SectorCount]Aggregate {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.aggregates
}
