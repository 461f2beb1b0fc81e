package hole

import (
	"errors"
	"fmt"
	"sync"

	"platescan/pkg/geometry"
)

var (
	// ErrDuplicateID is returned by Load when two records share an ID.
	ErrDuplicateID = errors.New("duplicate hole id")
	// ErrNotFound is returned for lookups of unknown hole IDs.
	ErrNotFound = errors.New("hole not found")
	// ErrInvalidStatus is returned by SetStatus for an undefined status value.
	ErrInvalidStatus = errors.New("invalid status")
)

// Registry owns the hole set for the currently loaded plate. The hole set is
// immutable after Load; status is the only field that changes afterwards.
// All other components hold hole IDs and read-only copies, never the holes
// themselves.
type Registry struct {
	mu    sync.RWMutex
	holes map[string]*Hole
	order []string // dataset order from the drawing exporter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{holes: make(map[string]*Hole)}
}

// Load replaces all registry state with the given hole records. Every hole
// starts as pending. The records are validated into a scratch map first so
// a failed load leaves the previous dataset untouched.
func (r *Registry) Load(records []Record) error {
	holes := make(map[string]*Hole, len(records))
	order := make([]string, 0, len(records))
	for i, rec := range records {
		if _, exists := holes[rec.ID]; exists {
			return fmt.Errorf("record %d: %w: %q", i, ErrDuplicateID, rec.ID)
		}
		holes[rec.ID] = &Hole{
			ID:     rec.ID,
			Center: geometry.Point2D{X: rec.X, Y: rec.Y},
			Radius: rec.Radius,
			Status: StatusPending,
		}
		order = append(order, rec.ID)
	}

	r.mu.Lock()
	r.holes = holes
	r.order = order
	r.mu.Unlock()
	return nil
}

// Get returns a copy of the hole record for the given ID.
func (r *Registry) Get(id string) (Hole, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.holes[id]
	if !ok {
		return Hole{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return *h, nil
}

// SetStatus updates the status of one hole and returns the status it had
// before the update. Callers use the previous status to compute aggregate
// deltas.
func (r *Registry) SetStatus(id string, status Status) (Status, error) {
	if !status.Valid() {
		return StatusPending, fmt.Errorf("%w: %d", ErrInvalidStatus, int(status))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.holes[id]
	if !ok {
		return StatusPending, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	prev := h.Status
	h.Status = status
	return prev, nil
}

// Len returns the number of holes in the registry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// IDs returns all hole IDs in dataset order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Centers returns all hole centers in dataset order.
func (r *Registry) Centers() []geometry.Point2D {
	r.mu.RLock()
	defer r.mu.RUnlock()

	centers := make([]geometry.Point2D, 0, len(r.order))
	for _, id := range r.order {
		centers = append(centers, r.holes[id].Center)
	}
	return centers
}

// Snapshot returns copies of all holes in dataset order. The rendering layer
// consumes snapshots so it never observes a half-applied update.
func (r *Registry) Snapshot() []Hole {
	r.mu.RLock()
	defer r.mu.RUnlock()

	holes := make([]Hole, 0, len(r.order))
	for _, id := range r.order {
		holes = append(holes, *r.holes[id])
	}
	return holes
}
