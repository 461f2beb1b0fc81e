// Package sector implements the sector partition and progress engine: it
// splits the hole set into four angular sectors around the dataset centroid
// and maintains live per-sector progress aggregates as detection results
// stream in.
package sector

import "errors"

// Sector identifies one of the four fixed angular sectors of the plate.
//
// Sector identity is purely a partition label. The numbering follows the
// sign of the hole's offset from the centroid (see Classify) and is
// counter-clockwise in drawing coordinates; which sector appears top-right
// on screen is a rendering concern and must not leak in here.
type Sector int

const (
	// Sector1 holds holes with dx >= 0, dy >= 0 relative to the centroid.
	Sector1 Sector = iota
	// Sector2 holds holes with dx < 0, dy >= 0.
	Sector2
	// Sector3 holds holes with dx < 0, dy < 0.
	Sector3
	// Sector4 holds holes with dx >= 0, dy < 0.
	Sector4
)

// SectorCount is the fixed number of sectors.
const SectorCount = 4

// ErrUnknownSector is returned when a value outside the four defined
// sectors reaches the engine. It indicates a programming error, not a data
// condition.
var ErrUnknownSector = errors.New("unknown sector")

// All returns the four sectors in order.
func All() [SectorCount]Sector {
	return [SectorCount]Sector{Sector1, Sector2, Sector3, Sector4}
}

// Valid returns true if s is one of the four defined sectors.
func (s Sector) Valid() bool {
	return s >= Sector1 && s <= Sector4
}

func (s Sector) String() string {
	switch s {
	case Sector1:
		return "sector-1"
	case Sector2:
		return "sector-2"
	case Sector3:
		return "sector-3"
	case Sector4:
		return "sector-4"
	default:
		return "sector-?"
	}
}
