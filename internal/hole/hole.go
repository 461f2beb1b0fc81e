// Package hole provides the hole data model and the in-memory registry that
// owns all hole state for the currently loaded plate.
package hole

import (
	"fmt"

	"platescan/pkg/geometry"
)

// Status is the detection status of a single hole.
type Status int

const (
	// StatusPending indicates the hole has not been inspected yet.
	StatusPending Status = iota
	// StatusProcessing indicates detection is currently running on the hole.
	StatusProcessing
	// StatusQualified indicates the hole passed inspection.
	StatusQualified
	// StatusDefective indicates the hole failed inspection.
	StatusDefective
	// StatusBlind marks a blind hole. Counted as completed but excluded
	// from pass/fail accounting.
	StatusBlind
	// StatusTieRod marks a tie-rod position. Counted as completed but
	// excluded from pass/fail accounting.
	StatusTieRod
)

var statusNames = map[Status]string{
	StatusPending:    "pending",
	StatusProcessing: "processing",
	StatusQualified:  "qualified",
	StatusDefective:  "defective",
	StatusBlind:      "blind",
	StatusTieRod:     "tie_rod",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid returns true if s is one of the six defined statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Completed returns true if the hole has finished inspection. Blind and
// tie-rod holes are completed even though they carry no pass/fail verdict.
func (s Status) Completed() bool {
	switch s {
	case StatusQualified, StatusDefective, StatusBlind, StatusTieRod:
		return true
	}
	return false
}

// ParseStatus converts a stored status name back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return StatusPending, fmt.Errorf("unknown status %q", name)
}

// Record is one row of the hole table delivered by the drawing exporter.
type Record struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Hole represents one drilled position on the inspected plate.
type Hole struct {
	ID     string           `json:"id"`
	Center geometry.Point2D `json:"center"` // Center in drawing units
	Radius float64          `json:"radius"` // Radius in drawing units (informational)
	Status Status           `json:"status"`
}

// Circle returns the hole outline as a geometric circle, for hit testing.
func (h Hole) Circle() geometry.Circle {
	return geometry.Circle{Center: h.Center, Radius: h.Radius}
}
