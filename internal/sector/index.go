package sector

import (
	"fmt"

	"platescan/internal/hole"
	"platescan/pkg/geometry"
)

// AssignmentIndex is the precomputed hole-to-sector mapping for one loaded
// plate. It is built once per dataset load by classifying every hole against
// the centroid and is never mutated afterwards: hole coordinates do not
// change within a session, so a hole never moves sectors.
type AssignmentIndex struct {
	centroid geometry.Point2D
	bySector [SectorCount][]string // hole IDs per sector, dataset order
	byID     map[string]Sector
	allIDs   []string // dataset order, for the panorama view
}

// BuildIndex classifies every hole once and records both the forward
// (hole -> sector) and reverse (sector -> ordered hole list) mappings.
func BuildIndex(holes []hole.Hole, centroid geometry.Point2D) *AssignmentIndex {
	idx := &AssignmentIndex{
		centroid: centroid,
		byID:     make(map[string]Sector, len(holes)),
		allIDs:   make([]string, 0, len(holes)),
	}
	for _, h := range holes {
		s := Classify(centroid, h.Center)
		idx.byID[h.ID] = s
		idx.bySector[s] = append(idx.bySector[s], h.ID)
		idx.allIDs = append(idx.allIDs, h.ID)
	}
	return idx
}

// Centroid returns the centroid the index was built around.
func (idx *AssignmentIndex) Centroid() geometry.Point2D {
	return idx.centroid
}

// SectorOf returns the sector the given hole was assigned to.
func (idx *AssignmentIndex) SectorOf(holeID string) (Sector, error) {
	s, ok := idx.byID[holeID]
	if !ok {
		return Sector1, fmt.Errorf("%w: %q", hole.ErrNotFound, holeID)
	}
	return s, nil
}

// Holes returns the hole IDs assigned to the given sector in dataset order.
// The returned slice is shared; callers must not modify it.
func (idx *AssignmentIndex) Holes(s Sector) ([]string, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSector, int(s))
	}
	return idx.bySector[s], nil
}

// AllHoles returns every hole ID in dataset order, regardless of sector.
func (idx *AssignmentIndex) AllHoles() []string {
	return idx.allIDs
}

// Count returns the number of holes assigned to the given sector.
func (idx *AssignmentIndex) Count(s Sector) int {
	if !s.Valid() {
		return 0
	}
	return len(idx.bySector[s])
}

// Len returns the total number of indexed holes.
func (idx *AssignmentIndex) Len() int {
	return len(idx.allIDs)
}
