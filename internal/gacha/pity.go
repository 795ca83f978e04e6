package gacha

const floorEpsilon = 1e-9

// PityPolicy is the soft pity: once a user misses top rarity more than
// Threshold times in a row, every further miss moves Step points of weight
// from a lower tier (low, then mid, then high) to that user's top weight.
// A lower tier is only drained when it stays strictly above Floor after the
// step, so a tier never ends at or below Floor.
type PityPolicy struct {
	Threshold int
	Step      float64
	Floor     float64
}

// DefaultPity is the reference policy: escalate after 50 misses by 2 points,
// keeping every lower tier above 1%.
var DefaultPity = PityPolicy{Threshold: 50, Step: 2, Floor: 1}

// drainOrder is the order lower tiers give up weight.
var drainOrder = [...]Tier{Low, Mid, High}

// roll picks the tier of one draw from the user's top weight and the shared
// lower-tier weights.
func (p PityPolicy) roll(rng RandomSource, state *PullerState, w Weights) Tier {
	entries := []Weighted[Tier]{
		{Value: Top, Weight: state.TopChance},
		{Value: High, Weight: w[High]},
		{Value: Mid, Weight: w[Mid]},
		{Value: Low, Weight: w[Low]},
	}
	t, ok := WeightedChoice(rng, entries)
	if !ok {
		return Low
	}
	return t
}

// apply commits the pity transition for a draw of tier t.
// Caller holds b.mu.
func (p PityPolicy) apply(t Tier, state *PullerState, b *Banner) {
	if t == Top {
		state.MissStreak = 0
		state.TopChance = b.base[Top]
		// shared: restores the lower tiers for every user of this banner
		b.resetWeights()
		return
	}

	state.MissStreak++
	if state.MissStreak <= p.Threshold {
		return
	}
	state.TopChance += p.Step
	for _, lower := range drainOrder {
		if b.weights[lower]-p.Step > p.Floor+floorEpsilon {
			b.weights[lower] -= p.Step
			return
		}
	}
	// no tier can absorb the step; only top grows this round
}
