package gacha

import (
	"errors"
	"math"
)

var ErrEmptyPool = errors.New("no selectable item in pool")

// alertCopies is the extra weight of every AlertGuaranteed item in the top pool.
const alertCopies = 5

// Result is one drawn item.
type Result struct {
	Item   string `json:"item"`
	Rarity int    `json:"rarity"`
}

// Tier returns the tier the result was drawn at.
func (r Result) Tier() Tier {
	t, _ := TierFromRarity(r.Rarity)
	return t
}

// Selector picks the concrete item once the tier of a draw is fixed.
type Selector struct {
	rng RandomSource
}

// NewSelector creates a selector. A nil rng falls back to DefaultRNG.
func NewSelector(rng RandomSource) *Selector {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Selector{rng: rng}
}

// Select draws one item of tier t from cfg.
//
// Rate-up is a weighted choice: one representative is picked uniformly from
// the rate-up list and weighted floor(n*p/(1-p)) against the n base entries,
// so a draw of the tier yields it with probability close to p = cfg.Shares[t].
// At Top the guaranteed item joins the representative candidates and every
// alert item adds alertCopies entries to n. A representative whose weight
// floors to 0 is reachable only through its own base pool entries.
func (s *Selector) Select(t Tier, cfg *Config) (Result, error) {
	if !t.Valid() {
		return Result{}, ErrEmptyPool
	}
	v := cfg.view(t)

	var (
		item string
		ok   bool
	)
	switch t {
	case Top:
		if v.share >= 1 {
			item, ok = pickUniform(s.rng, v.rateUp)
			break
		}
		entries, n := baseEntries(v.pool, len(cfg.AlertGuaranteed))
		for _, a := range cfg.AlertGuaranteed {
			entries = append(entries, Weighted[string]{Value: a, Weight: alertCopies})
			n += alertCopies
		}
		candidates := make([]string, 0, len(v.rateUp)+len(cfg.Guaranteed))
		candidates = append(candidates, v.rateUp...)
		candidates = append(candidates, cfg.Guaranteed...)
		if rep, found := pickUniform(s.rng, candidates); found {
			entries = append(entries, Weighted[string]{Value: rep, Weight: repWeight(n, v.share)})
		}
		item, ok = WeightedChoice(s.rng, entries)

	case High, Mid:
		if len(v.rateUp) == 0 {
			item, ok = pickUniform(s.rng, v.pool)
			break
		}
		if v.share >= 1 {
			item, ok = pickUniform(s.rng, v.rateUp)
			break
		}
		entries, n := baseEntries(v.pool, 1)
		rep, _ := pickUniform(s.rng, v.rateUp)
		entries = append(entries, Weighted[string]{Value: rep, Weight: repWeight(n, v.share)})
		item, ok = WeightedChoice(s.rng, entries)

	default:
		item, ok = pickUniform(s.rng, v.pool)
	}

	if !ok {
		return Result{}, ErrEmptyPool
	}
	return Result{Item: item, Rarity: t.Rarity()}, nil
}

func baseEntries(pool []string, extra int) ([]Weighted[string], int) {
	entries := make([]Weighted[string], 0, len(pool)+extra+1)
	for _, it := range pool {
		entries = append(entries, Weighted[string]{Value: it, Weight: 1})
	}
	return entries, len(pool)
}

// repWeight converts a target share p of the rate-up representative into an
// integer weight against n uniform base entries.
func repWeight(n int, p float64) float64 {
	if p <= 0 || n <= 0 {
		return 0
	}
	return math.Floor(float64(n) * p / (1 - p))
}
