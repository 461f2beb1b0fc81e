package sector

// ColorTier is the display tier for a sector's progress. The actual RGB
// values live in the rendering layer; the engine only decides the tier.
type ColorTier int

const (
	TierGreen ColorTier = iota
	TierYellow
	TierOrange
	TierRed
)

func (c ColorTier) String() string {
	switch c {
	case TierGreen:
		return "green"
	case TierYellow:
		return "yellow"
	case TierOrange:
		return "orange"
	case TierRed:
		return "red"
	default:
		return "unknown"
	}
}

// Completion-rate cut points. Boundary values land on the higher tier.
const (
	tierGreenMin  = 0.90
	tierYellowMin = 0.60
	tierOrangeMin = 0.30
)

// ColorFor maps a sector aggregate's completion rate to its display tier.
// An empty sector has completion rate 0 and maps to red.
func ColorFor(a Aggregate) ColorTier {
	rate := a.CompletionRate()
	switch {
	case rate >= tierGreenMin:
		return TierGreen
	case rate >= tierYellowMin:
		return TierYellow
	case rate >= tierOrangeMin:
		return TierOrange
	default:
		return TierRed
	}
}
