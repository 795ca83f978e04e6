package gacha

// PullerState is one user's pity progress, carried across draw calls.
// The caller owns it; the engine only reads and mutates the fields.
type PullerState struct {
	TopChance  float64 `json:"top_chance"`  // current top weight, percentage points
	MissStreak int     `json:"miss_streak"` // draws since the last top rarity
}

// NewPullerState returns a fresh state at the banner's base top weight.
func NewPullerState(b *Banner) PullerState {
	return PullerState{TopChance: b.BaseWeights()[Top]}
}
