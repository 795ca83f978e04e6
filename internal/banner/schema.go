package banner

import "github.com/xtding233/gacha-sim/internal/gacha"

// Document is the persisted banner; mirrors the on-disk schema.
type Document struct {
	Name      string    `json:"name" yaml:"name"`
	Operators Operators `json:"operators" yaml:"operators"`

	TopRarityChance  float64 `json:"topRarityChance" yaml:"topRarityChance"`
	HighRarityChance float64 `json:"highRarityChance" yaml:"highRarityChance"`
	MidRarityChance  float64 `json:"midRarityChance" yaml:"midRarityChance"`
	LowRarityChance  float64 `json:"lowRarityChance" yaml:"lowRarityChance"`

	UpTopList    []string `json:"upTopList" yaml:"upTopList"`
	UpHighList   []string `json:"upHighList" yaml:"upHighList"`
	UpMidList    []string `json:"upMidList" yaml:"upMidList"`
	UpLimit      []string `json:"upLimit" yaml:"upLimit"`
	UpAlertLimit []string `json:"upAlertLimit" yaml:"upAlertLimit"`
}

// Operators are the base pools keyed by tier name.
type Operators struct {
	Top  []string `json:"top" yaml:"top"`
	High []string `json:"high" yaml:"high"`
	Mid  []string `json:"mid" yaml:"mid"`
	Low  []string `json:"low" yaml:"low"`
}

// Config converts the document into the engine's banner config.
func (d Document) Config() gacha.Config {
	cfg := gacha.Config{
		Name:            d.Name,
		Guaranteed:      d.UpLimit,
		AlertGuaranteed: d.UpAlertLimit,
	}
	cfg.Pools[gacha.Top] = d.Operators.Top
	cfg.Pools[gacha.High] = d.Operators.High
	cfg.Pools[gacha.Mid] = d.Operators.Mid
	cfg.Pools[gacha.Low] = d.Operators.Low

	cfg.RateUp[gacha.Top] = d.UpTopList
	cfg.RateUp[gacha.High] = d.UpHighList
	cfg.RateUp[gacha.Mid] = d.UpMidList

	cfg.Shares = [gacha.TierCount]float64{
		d.TopRarityChance, d.HighRarityChance, d.MidRarityChance, d.LowRarityChance,
	}
	return cfg.Clone()
}

// FromConfig converts a banner config back into its persisted form.
// Lists are never nil so they encode as [] rather than null.
func FromConfig(cfg gacha.Config) Document {
	return Document{
		Name: cfg.Name,
		Operators: Operators{
			Top:  nonNil(cfg.Pools[gacha.Top]),
			High: nonNil(cfg.Pools[gacha.High]),
			Mid:  nonNil(cfg.Pools[gacha.Mid]),
			Low:  nonNil(cfg.Pools[gacha.Low]),
		},
		TopRarityChance:  cfg.Shares[gacha.Top],
		HighRarityChance: cfg.Shares[gacha.High],
		MidRarityChance:  cfg.Shares[gacha.Mid],
		LowRarityChance:  cfg.Shares[gacha.Low],
		UpTopList:        nonNil(cfg.RateUp[gacha.Top]),
		UpHighList:       nonNil(cfg.RateUp[gacha.High]),
		UpMidList:        nonNil(cfg.RateUp[gacha.Mid]),
		UpLimit:          nonNil(cfg.Guaranteed),
		UpAlertLimit:     nonNil(cfg.AlertGuaranteed),
	}
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return append([]string(nil), xs...)
}
