package gacha

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidBanner = errors.New("invalid banner config")

// Config is the banner description the selector reads: pools per tier, the
// current rate-up lists and the rate-up share of every tier.
type Config struct {
	Name string

	// Pools holds the base items of every tier. Duplicates add weight.
	Pools [TierCount][]string

	// RateUp holds the boosted items of Top, High and Mid. Low has none.
	RateUp [TierCount][]string

	// Guaranteed is the first limited top item of the banner (0 or 1 entries).
	Guaranteed []string

	// AlertGuaranteed are limited top items registered after the first one.
	// Each is injected into the base top pool with alertCopies extra copies.
	AlertGuaranteed []string

	// Shares is the probability, per tier, that a draw of that tier yields
	// the rate-up representative rather than a base pool item.
	Shares [TierCount]float64
}

// tierView is the per-tier record the selector works from.
type tierView struct {
	pool   []string
	share  float64
	rateUp []string
}

func (c *Config) view(t Tier) tierView {
	return tierView{pool: c.Pools[t], share: c.Shares[t], rateUp: c.RateUp[t]}
}

// Clone returns a deep copy so callers can mutate it freely.
func (c Config) Clone() Config {
	out := c
	for _, t := range Tiers {
		out.Pools[t] = cloneStrings(c.Pools[t])
		out.RateUp[t] = cloneStrings(c.RateUp[t])
	}
	out.Guaranteed = cloneStrings(c.Guaranteed)
	out.AlertGuaranteed = cloneStrings(c.AlertGuaranteed)
	return out
}

// Validate checks the invariants the selector relies on.
func (c Config) Validate() error {
	var errs []string

	for _, t := range Tiers {
		if err := validateProb(c.Shares[t]); err != nil {
			errs = append(errs, fmt.Sprintf("%s share must be in [0,1]", t))
		}
		if !c.servable(t) {
			errs = append(errs, fmt.Sprintf("%s tier has nothing to draw", t))
		}
	}
	if len(c.RateUp[Low]) > 0 {
		errs = append(errs, "low tier has no rate-up list")
	}
	if len(c.Guaranteed) > 1 {
		errs = append(errs, "at most one guaranteed top item")
	}
	if c.Shares[Top] >= 1 && len(c.RateUp[Top]) == 0 {
		errs = append(errs, "top share of 1 requires a non-empty top rate-up list")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidBanner, strings.Join(errs, "; "))
	}
	return nil
}

// servable reports whether Select can return an item for t. The rate-up
// representative weighs floor(n*p/(1-p)), which is 0 over an empty base
// pool, so rate-up alone only serves a tier with a share of 1.
func (c Config) servable(t Tier) bool {
	saturated := c.Shares[t] >= 1 && len(c.RateUp[t]) > 0
	switch t {
	case Top:
		return saturated || len(c.Pools[t]) > 0 || len(c.AlertGuaranteed) > 0
	case High, Mid:
		return saturated || len(c.Pools[t]) > 0
	default:
		return len(c.Pools[t]) > 0
	}
}

func cloneStrings(xs []string) []string {
	if xs == nil {
		return nil
	}
	return append([]string(nil), xs...)
}
