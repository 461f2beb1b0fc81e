package detect

import (
	"context"
	"math/rand"
	"time"

	"platescan/internal/hole"
)

// SimParams configures the simulated detection driver.
type SimParams struct {
	// Interval is the cadence between holes. The real rig needs seconds
	// per hole; simulation defaults to a fast tick.
	Interval time.Duration
	// QualifyProb is the probability a pending hole qualifies.
	QualifyProb float64
	// Seed makes a run reproducible. Zero seeds from the clock.
	Seed int64
}

// DefaultSimParams returns the parameters used by the simulate menu action.
func DefaultSimParams() SimParams {
	return SimParams{
		Interval:    20 * time.Millisecond,
		QualifyProb: 0.95,
	}
}

// SimDriver fakes a detection pass on a timer: each tick it marks the next
// hole processing, then resolves it to qualified or defective. Holes that
// are already blind or tie-rod positions keep their domain status and are
// reported as completed without a verdict.
type SimDriver struct {
	params SimParams
	seq    uint64
}

// NewSimDriver creates a simulated driver.
func NewSimDriver(params SimParams) *SimDriver {
	if params.Interval <= 0 {
		params.Interval = DefaultSimParams().Interval
	}
	return &SimDriver{params: params}
}

// Name implements Driver.
func (d *SimDriver) Name() string { return "simulated" }

// Run implements Driver.
func (d *SimDriver) Run(ctx context.Context, holes []hole.Hole, events chan<- StatusEvent) error {
	seed := d.params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ticker := time.NewTicker(d.params.Interval)
	defer ticker.Stop()

	for _, h := range holes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		// Fixed domain variants never re-resolve.
		if h.Status == hole.StatusBlind || h.Status == hole.StatusTieRod {
			if err := d.emit(ctx, events, h.ID, h.Status); err != nil {
				return err
			}
			continue
		}

		if err := d.emit(ctx, events, h.ID, hole.StatusProcessing); err != nil {
			return err
		}

		verdict := hole.StatusDefective
		if rng.Float64() < d.params.QualifyProb {
			verdict = hole.StatusQualified
		}
		if err := d.emit(ctx, events, h.ID, verdict); err != nil {
			return err
		}
	}
	return nil
}

func (d *SimDriver) emit(ctx context.Context, events chan<- StatusEvent, holeID string, status hole.Status) error {
	d.seq++
	select {
	case <-ctx.Done():
		return ctx.Err()
	case events <- StatusEvent{HoleID: holeID, NewStatus: status, Seq: d.seq, At: time.Now()}:
		return nil
	}
}
