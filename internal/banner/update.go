package banner

import (
	"slices"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

// Announcement is a structured banner-update notice.
type Announcement struct {
	Title         string          `json:"title"`
	SixStarItems  []AnnouncedItem `json:"sixStarItems"`
	FiveStarItems []AnnouncedItem `json:"fiveStarItems"`
	FourStarItems []AnnouncedItem `json:"fourStarItems"`
}

// AnnouncedItem is one featured item of an announcement. Chance is the
// rate-up share of its tier, in [0,1].
type AnnouncedItem struct {
	Name      string  `json:"name"`
	IsLimited bool    `json:"isLimited"`
	Chance    float64 `json:"chance"`
}

// Apply rewrites cfg for the announced banner and reports whether anything
// changed. An announcement with the current title is a no-op.
//
// Leaving a non-permanent banner whose top share is below 1 moves its rate-up
// items into the base pools, so past featured items stay obtainable. Limited
// items are never merged. Rate-up lists are then rebuilt: the first limited
// top item becomes Guaranteed, later ones AlertGuaranteed, the rest RateUp.
func Apply(cfg *gacha.Config, ann Announcement, permanent string) bool {
	if ann.Title == "" || ann.Title == cfg.Name {
		return false
	}

	if cfg.Name != permanent && cfg.Shares[gacha.Top] < 1 {
		for _, t := range []gacha.Tier{gacha.Top, gacha.High, gacha.Mid} {
			cfg.Pools[t] = mergeUnique(cfg.Pools[t], cfg.RateUp[t])
		}
	}
	for _, t := range gacha.Tiers {
		cfg.RateUp[t] = nil
	}
	cfg.Guaranteed = nil
	cfg.AlertGuaranteed = nil
	cfg.Name = ann.Title

	for _, it := range ann.SixStarItems {
		if it.IsLimited {
			if len(cfg.Guaranteed) > 0 {
				cfg.AlertGuaranteed = append(cfg.AlertGuaranteed, it.Name)
				continue
			}
			cfg.Guaranteed = append(cfg.Guaranteed, it.Name)
		} else {
			cfg.RateUp[gacha.Top] = append(cfg.RateUp[gacha.Top], it.Name)
		}
		cfg.Shares[gacha.Top] = it.Chance
	}
	for _, it := range ann.FiveStarItems {
		cfg.RateUp[gacha.High] = append(cfg.RateUp[gacha.High], it.Name)
		cfg.Shares[gacha.High] = it.Chance
	}
	for _, it := range ann.FourStarItems {
		cfg.RateUp[gacha.Mid] = append(cfg.RateUp[gacha.Mid], it.Name)
		cfg.Shares[gacha.Mid] = it.Chance
	}
	return true
}

// mergeUnique appends the items of add missing from pool; existing
// duplicates in pool are kept.
func mergeUnique(pool, add []string) []string {
	for _, it := range add {
		if !slices.Contains(pool, it) {
			pool = append(pool, it)
		}
	}
	return pool
}
