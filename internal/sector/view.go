package sector

import (
	"fmt"
	"sync"
)

// ViewCoordinator tracks which sector is currently focused in the detail
// view and hands the rendering layer the two hole lists it needs: the full
// dataset for the panorama and the focused sector's holes for the detail
// view. It owns no hole data of its own.
type ViewCoordinator struct {
	mu    sync.RWMutex
	index *AssignmentIndex
	focus Sector
}

// NewViewCoordinator creates a coordinator over the given index with the
// focus reset to Sector1.
func NewViewCoordinator(index *AssignmentIndex) *ViewCoordinator {
	return &ViewCoordinator{index: index, focus: Sector1}
}

// Focus returns the currently focused sector.
func (v *ViewCoordinator) Focus() Sector {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.focus
}

// SwitchFocus changes the focused sector. This is the only mutating call
// the rendering layer may make into the engine.
func (v *ViewCoordinator) SwitchFocus(s Sector) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSector, int(s))
	}

	v.mu.Lock()
	v.focus = s
	v.mu.Unlock()
	return nil
}

// Reset restores the default focus (Sector1). Called on dataset load.
func (v *ViewCoordinator) Reset() {
	v.mu.Lock()
	v.focus = Sector1
	v.mu.Unlock()
}

// FocusedHoles returns the hole IDs of the focused sector in dataset order,
// for the detail view.
func (v *ViewCoordinator) FocusedHoles() []string {
	v.mu.RLock()
	focus := v.focus
	v.mu.RUnlock()

	ids, _ := v.index.Holes(focus) // focus is always valid
	return ids
}

// AllHoles returns every hole ID in dataset order. The panorama always
// shows the full plate no matter which sector is focused.
func (v *ViewCoordinator) AllHoles() []string {
	return v.index.AllHoles()
}
