// Package app provides the inspection session: the single owner of all
// mutable engine state and the serialization point for status-change
// events.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"platescan/internal/archive"
	"platescan/internal/detect"
	"platescan/internal/drawing"
	"platescan/internal/hole"
	"platescan/internal/sector"
	"platescan/pkg/geometry"
)

// EventType identifies session events the UI can listen for.
type EventType int

const (
	// EventPlateLoaded fires after a hole table replaces the dataset.
	EventPlateLoaded EventType = iota
	// EventStatusChanged fires after each applied status-change event.
	EventStatusChanged
	// EventFocusChanged fires when the focused sector switches.
	EventFocusChanged
	// EventPassStarted fires when a detection pass begins.
	EventPassStarted
	// EventPassFinished fires when a detection pass ends.
	EventPassFinished
)

// EventListener is called when a session event occurs.
type EventListener func(data interface{})

// ErrNoDataset is returned for operations that need a loaded plate.
var ErrNoDataset = errors.New("no dataset loaded")

// ErrPassActive is returned when a pass is started while one is running.
var ErrPassActive = errors.New("detection pass already running")

// StatusChange is the payload of EventStatusChanged.
type StatusChange struct {
	HoleID    string
	OldStatus hole.Status
	NewStatus hole.Status
	Sector    sector.Sector
}

// Session owns the engine state for one loaded plate: the hole registry,
// the sector assignment index, the progress tracker, and the view
// coordinator. All status-change events funnel through Apply, which
// serializes them; the UI only ever reads snapshots.
//
// A Session must not be shared between two open plates. Opening another
// plate means loading a new table into the same session (full replacement)
// or creating a second session.
type Session struct {
	mu sync.RWMutex

	source   string // hole table path or synthetic source name
	registry *hole.Registry
	centroid geometry.Point2D
	index    *sector.AssignmentIndex
	tracker  *sector.Tracker
	view     *sector.ViewCoordinator

	store      *archive.Store // nil when no archive is attached
	passID     string
	passActive bool

	listenerMu sync.RWMutex
	listeners  map[EventType][]EventListener
}

// NewSession creates a session with no dataset loaded.
func NewSession() *Session {
	return &Session{
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.listenerMu.RLock()
	listeners := s.listeners[event]
	s.listenerMu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// AttachArchive sets the archive store that journals passes and events.
func (s *Session) AttachArchive(store *archive.Store) {
	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
}

// LoadTable replaces the whole dataset with the given hole table. The new
// engine state is built off to the side and only swapped in when every
// stage has succeeded, so a failed load leaves the previous plate intact.
// In-flight events for the old plate must be drained or discarded by the
// caller before reloading.
func (s *Session) LoadTable(source string, table *drawing.Table) error {
	if err := table.Validate(); err != nil {
		return err
	}

	registry := hole.NewRegistry()
	if err := registry.Load(table.Holes); err != nil {
		return err
	}

	centroid, err := sector.ComputeCentroid(registry.Centers())
	if err != nil {
		return err
	}

	index := sector.BuildIndex(registry.Snapshot(), centroid)
	tracker := sector.NewTracker(index)
	view := sector.NewViewCoordinator(index)

	s.mu.Lock()
	s.source = source
	s.registry = registry
	s.centroid = centroid
	s.index = index
	s.tracker = tracker
	s.view = view
	s.passID = ""
	s.passActive = false
	s.mu.Unlock()

	log.Printf("Loaded plate %s: %d holes, centroid (%.2f, %.2f)",
		source, registry.Len(), centroid.X, centroid.Y)
	s.Emit(EventPlateLoaded, source)
	return nil
}

// LoadTableFile loads a hole table from disk.
func (s *Session) LoadTableFile(path string) error {
	table, err := drawing.Load(path)
	if err != nil {
		return err
	}
	return s.LoadTable(path, table)
}

// Loaded returns true once a plate has been loaded.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry != nil
}

// Source returns the origin of the loaded hole table.
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Apply applies one status-change event to the engine: the registry status
// flips, the owning sector's aggregate moves by the transition delta, and
// the event is journaled if an archive is attached.
//
// A stale event (sequence at or below the hole's last applied one), an
// unknown hole ID, or an out-of-enum status is recoverable: the engine
// state is untouched and the caller may log and drop the event.
func (s *Session) Apply(ev detect.StatusEvent) error {
	if !ev.NewStatus.Valid() {
		return fmt.Errorf("%w: %d", hole.ErrInvalidStatus, int(ev.NewStatus))
	}

	s.mu.Lock()

	if s.registry == nil {
		s.mu.Unlock()
		return ErrNoDataset
	}

	current, err := s.registry.Get(ev.HoleID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if err := s.tracker.RecordStatusChangeSeq(ev.HoleID, current.Status, ev.NewStatus, ev.Seq); err != nil {
		s.mu.Unlock()
		return err
	}
	if _, err := s.registry.SetStatus(ev.HoleID, ev.NewStatus); err != nil {
		s.mu.Unlock()
		return err
	}

	if s.store != nil && s.passID != "" {
		if err := s.store.AppendEvent(s.passID, ev.HoleID, current.Status, ev.NewStatus, ev.Seq); err != nil {
			log.Printf("Archive append failed for %s: %v", ev.HoleID, err)
		}
	}

	sec, _ := s.index.SectorOf(ev.HoleID)
	s.mu.Unlock()

	// Listeners run outside the state lock and take their own snapshots.
	s.Emit(EventStatusChanged, StatusChange{
		HoleID:    ev.HoleID,
		OldStatus: current.Status,
		NewStatus: ev.NewStatus,
		Sector:    sec,
	})
	return nil
}

// RunPass executes one detection pass with the given driver, draining its
// events into Apply. Recoverable per-event failures (stale or unknown
// events) are logged and skipped; the pass itself keeps running.
func (s *Session) RunPass(ctx context.Context, driver detect.Driver) error {
	s.mu.Lock()
	if s.registry == nil {
		s.mu.Unlock()
		return ErrNoDataset
	}
	if s.passActive {
		s.mu.Unlock()
		return ErrPassActive
	}
	s.passActive = true
	holes := s.registry.Snapshot()
	store := s.store
	source := s.source
	s.mu.Unlock()

	var passID string
	if store != nil {
		var err error
		passID, err = store.BeginPass(source, driver.Name())
		if err != nil {
			s.setPassDone()
			return err
		}
	}
	s.mu.Lock()
	s.passID = passID
	s.mu.Unlock()

	s.Emit(EventPassStarted, driver.Name())
	log.Printf("Detection pass started: driver=%s holes=%d", driver.Name(), len(holes))

	events := make(chan detect.StatusEvent, 256)
	runErr := make(chan error, 1)
	go func() {
		defer close(events)
		runErr <- driver.Run(ctx, holes, events)
	}()

	applied, skipped := 0, 0
	for ev := range events {
		if err := s.Apply(ev); err != nil {
			if errors.Is(err, sector.ErrStaleEvent) || errors.Is(err, hole.ErrNotFound) || errors.Is(err, hole.ErrInvalidStatus) {
				skipped++
				log.Printf("Skipping event for %s: %v", ev.HoleID, err)
				continue
			}
			// Drain the channel so the driver goroutine can exit.
			for range events {
			}
			<-runErr
			s.finishPass(store, passID)
			return err
		}
		applied++
	}

	err := <-runErr
	s.finishPass(store, passID)
	log.Printf("Detection pass finished: applied=%d skipped=%d err=%v", applied, skipped, err)
	s.Emit(EventPassFinished, driver.Name())
	return err
}

func (s *Session) finishPass(store *archive.Store, passID string) {
	if store != nil && passID != "" {
		if err := store.FinishPass(passID); err != nil {
			log.Printf("Archive finish failed: %v", err)
		}
	}
	s.setPassDone()
}

func (s *Session) setPassDone() {
	s.mu.Lock()
	s.passActive = false
	s.passID = ""
	s.mu.Unlock()
}

// PassActive reports whether a detection pass is currently running.
func (s *Session) PassActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passActive
}

// Annotate records a manual defect annotation for a hole, marking the hole
// defective if it is not already. seq must come from the caller's event
// sequence (manual corrections share the same ordering domain as driver
// events).
func (s *Session) Annotate(holeID, note, snapshotPath string, seq uint64) error {
	s.mu.RLock()
	store := s.store
	passID := s.passID
	s.mu.RUnlock()

	if err := s.Apply(detect.StatusEvent{HoleID: holeID, NewStatus: hole.StatusDefective, Seq: seq}); err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	_, err := store.SaveAnnotation(archive.Annotation{
		PassID:       passID,
		HoleID:       holeID,
		Note:         note,
		SnapshotPath: snapshotPath,
	})
	if err != nil {
		return fmt.Errorf("annotate %s: %w", holeID, err)
	}
	return nil
}

// Holes returns a snapshot of all holes in dataset order.
func (s *Session) Holes() []hole.Hole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registry == nil {
		return nil
	}
	return s.registry.Snapshot()
}

// Hole returns a snapshot of one hole.
func (s *Session) Hole(id string) (hole.Hole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registry == nil {
		return hole.Hole{}, ErrNoDataset
	}
	return s.registry.Get(id)
}

// Centroid returns the dataset centroid.
func (s *Session) Centroid() geometry.Point2D {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.centroid
}

// Index returns the sector assignment index for the loaded plate.
func (s *Session) Index() *sector.AssignmentIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Aggregate returns the progress snapshot for one sector.
func (s *Session) Aggregate(sec sector.Sector) (sector.Aggregate, error) {
	s.mu.RLock()
	tracker := s.tracker
	s.mu.RUnlock()
	if tracker == nil {
		return sector.Aggregate{}, ErrNoDataset
	}
	return tracker.Aggregate(sec)
}

// Aggregates returns progress snapshots for all four sectors.
func (s *Session) Aggregates() [sector.SectorCount]sector.Aggregate {
	s.mu.RLock()
	tracker := s.tracker
	s.mu.RUnlock()
	if tracker == nil {
		return [sector.SectorCount]sector.Aggregate{}
	}
	return tracker.Aggregates()
}

// Focus returns the currently focused sector.
func (s *Session) Focus() sector.Sector {
	s.mu.RLock()
	view := s.view
	s.mu.RUnlock()
	if view == nil {
		return sector.Sector1
	}
	return view.Focus()
}

// SwitchFocus changes the focused sector and notifies listeners.
func (s *Session) SwitchFocus(sec sector.Sector) error {
	s.mu.RLock()
	view := s.view
	s.mu.RUnlock()
	if view == nil {
		return ErrNoDataset
	}
	if err := view.SwitchFocus(sec); err != nil {
		return err
	}
	s.Emit(EventFocusChanged, sec)
	return nil
}

// FocusedHoles returns the hole IDs of the focused sector, for the detail
// view.
func (s *Session) FocusedHoles() []string {
	s.mu.RLock()
	view := s.view
	s.mu.RUnlock()
	if view == nil {
		return nil
	}
	return view.FocusedHoles()
}

// AllHoleIDs returns every hole ID in dataset order, for the panorama.
func (s *Session) AllHoleIDs() []string {
	s.mu.RLock()
	view := s.view
	s.mu.RUnlock()
	if view == nil {
		return nil
	}
	return view.AllHoles()
}
