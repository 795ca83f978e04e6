package gacha

import "fmt"

// Tier is one of the four rarity levels. Top is the rarest.
type Tier int

const (
	Top Tier = iota
	High
	Mid
	Low

	TierCount = 4
)

// Tiers lists every tier from rarest to most common.
var Tiers = [TierCount]Tier{Top, High, Mid, Low}

var tierRarity = [TierCount]int{6, 5, 4, 3}

var tierNames = [TierCount]string{"top", "high", "mid", "low"}

// Rarity returns the star value of the tier (6 for Top down to 3 for Low).
func (t Tier) Rarity() int { return tierRarity[t] }

func (t Tier) String() string {
	if t < 0 || int(t) >= TierCount {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool { return t >= 0 && int(t) < TierCount }

// TierFromRarity maps a star value back to its tier.
func TierFromRarity(r int) (Tier, bool) {
	for _, t := range Tiers {
		if t.Rarity() == r {
			return t, true
		}
	}
	return 0, false
}
