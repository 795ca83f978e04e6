package gacha

import (
	"errors"
	"math"
	"slices"
	"sort"
)

// TrialGoal selects what the simulation measures per trial.
type TrialGoal string

const (
	// Draws until the first top-rarity result.
	GoalFirstTop TrialGoal = "first_top"
	// Draws until the first top-rarity rate-up, guaranteed or alert item.
	GoalFirstRateUp TrialGoal = "first_rate_up"
	// Given a fixed budget, count top-rarity results.
	GoalFixedBudget TrialGoal = "fixed_budget"
)

var ErrUnknownGoal = errors.New("unknown simulation goal")

const defaultMaxDraws = 10_000

// SimParams describes the mechanics for one simulation run. Every trial starts
// a fresh user on a private copy of the banner.
type SimParams struct {
	Banner Config
	Base   Weights
	Pity   PityPolicy

	// Budget is the number of draws per trial for GoalFixedBudget.
	Budget int
	// MaxDraws caps open-ended trials; <=0 means 10000.
	MaxDraws int
}

// Stats summarizes simulation results.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	// mean
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)
	stddev := math.Sqrt(variance)

	// percentiles
	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 {
			return float64(cp[0])
		}
		if p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  stddev,
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// simulateOne returns the metric of one trial.
func simulateOne(p SimParams, goal TrialGoal, engine *Engine) (int, error) {
	banner := NewBanner(p.Banner, p.Base)
	state := NewPullerState(banner)
	maxDraws := p.MaxDraws
	if maxDraws <= 0 {
		maxDraws = defaultMaxDraws
	}

	switch goal {
	case GoalFirstTop, GoalFirstRateUp:
		for draws := 1; draws <= maxDraws; draws++ {
			batches, err := engine.Draw(&state, banner, 1)
			if err != nil {
				return 0, err
			}
			r := batches[0][0]
			if r.Rarity != Top.Rarity() {
				continue
			}
			if goal == GoalFirstTop || isTopRateUp(r.Item, &p.Banner) {
				return draws, nil
			}
		}
		return maxDraws, nil

	case GoalFixedBudget:
		if p.Budget <= 0 {
			return 0, nil
		}
		batches, err := engine.Draw(&state, banner, p.Budget)
		if err != nil {
			return 0, err
		}
		count := 0
		for _, r := range Flatten(batches) {
			if r.Rarity == Top.Rarity() {
				count++
			}
		}
		return count, nil
	}

	return 0, ErrUnknownGoal
}

func isTopRateUp(item string, cfg *Config) bool {
	return slices.Contains(cfg.RateUp[Top], item) ||
		slices.Contains(cfg.Guaranteed, item) ||
		slices.Contains(cfg.AlertGuaranteed, item)
}

// RunMonteCarlo repeats trials and returns summary stats.
// goal determines what metric is recorded per trial.
func RunMonteCarlo(p SimParams, goal TrialGoal, trials int, rng RandomSource) (Stats, error) {
	switch goal {
	case GoalFirstTop, GoalFirstRateUp, GoalFixedBudget:
	default:
		return Stats{}, ErrUnknownGoal
	}
	if trials <= 0 {
		return Stats{}, nil
	}
	if err := p.Banner.Validate(); err != nil {
		return Stats{}, err
	}
	if p.Base == (Weights{}) {
		p.Base = DefaultWeights
	}
	if p.Pity == (PityPolicy{}) {
		p.Pity = DefaultPity
	}
	engine := NewEngine(rng, WithPity(p.Pity))

	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		v, err := simulateOne(p, goal, engine)
		if err != nil {
			return Stats{}, err
		}
		samples[i] = v
	}
	return calcStats(samples), nil
}
