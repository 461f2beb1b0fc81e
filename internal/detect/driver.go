// Package detect provides the detection drivers that produce hole status
// events: a timer-driven simulated driver and a gocv-based vision driver.
// Drivers are pure event producers; they never touch engine state directly,
// and every event they emit carries a per-hole monotonic sequence number so
// the engine can reject late reordered deliveries.
package detect

import (
	"context"
	"time"

	"platescan/internal/hole"
)

// StatusEvent is one detection outcome for one hole.
type StatusEvent struct {
	HoleID    string
	NewStatus hole.Status
	Seq       uint64
	At        time.Time
}

// Driver runs one detection pass over the given holes, emitting events on
// the channel in the order they occur. Run closes nothing; it returns when
// the pass is complete or the context is cancelled. The caller owns the
// channel.
type Driver interface {
	// Name identifies the driver in the archive (e.g. "simulated").
	Name() string

	// Run executes the pass. Holes arrive in dataset order; drivers must
	// process them in that order so same-hole events stay sequenced.
	Run(ctx context.Context, holes []hole.Hole, events chan<- StatusEvent) error
}
