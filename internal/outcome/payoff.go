package outcome

// Payoff parameterizes the dollar attribution of a position's result.
// Percentages are fractions of the entry price; Notional is the dollar
// size of the full three-share position the schedule assumes.
//
// With the default 9/13/23/38 schedule on $300, the reachable dollar
// outcomes are -27, +13, +36, +49 and +74: each profit target banks a
// third of the notional at its distance, a stop before any target loses
// the stop distance on the whole notional, a stop after PT1 exits the
// rest at breakeven, and a stop after PT2 exits the last third at the
// PT1 level.
type Payoff struct {
	Notional float64
	StopPct  float64
	PT1Pct   float64
	PT2Pct   float64
	PT3Pct   float64
}

// DefaultPayoff returns the 9/13/23/38 schedule on a $300 position.
func DefaultPayoff() Payoff {
	return Payoff{
		Notional: 300,
		StopPct:  0.09,
		PT1Pct:   0.13,
		PT2Pct:   0.23,
		PT3Pct:   0.38,
	}
}

// dollars computes the attributed dollar outcome for an episode from
// which levels were reached. stopped reports whether the episode ended
// on a stop-loss fill.
func (p Payoff) dollars(pt1, pt2, pt3, stopped bool) float64 {
	if !pt1 {
		if stopped {
			return -p.Notional * p.StopPct
		}
		return 0
	}
	third := p.Notional / 3
	v := third * p.PT1Pct
	if pt2 {
		v += third * p.PT2Pct
	}
	if pt3 {
		v += third * p.PT3Pct
	}
	// After PT2 the stop sits at the PT1 level, so the last third still
	// banks the PT1 distance. A stop after PT1 alone exits at entry.
	if stopped && pt2 && !pt3 {
		v += third * p.PT1Pct
	}
	return v
}
