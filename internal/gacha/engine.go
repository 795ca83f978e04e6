package gacha

import (
	"errors"
	"fmt"
)

// BatchSize is the number of results per presented batch (one ten-pull).
const BatchSize = 10

var ErrInvalidDrawCount = errors.New("draw count must be >= 1")

// Engine runs draw sequences: tier selection with soft pity, then item
// selection. It keeps no per-user state of its own.
type Engine struct {
	rng      RandomSource
	pity     PityPolicy
	selector *Selector
}

// Option configures an Engine.
type Option func(*Engine)

// WithPity overrides the soft pity policy.
func WithPity(p PityPolicy) Option {
	return func(e *Engine) { e.pity = p }
}

// NewEngine creates an engine. A nil rng falls back to DefaultRNG.
func NewEngine(rng RandomSource, opts ...Option) *Engine {
	if rng == nil {
		rng = DefaultRNG()
	}
	e := &Engine{rng: rng, pity: DefaultPity}
	for _, opt := range opts {
		opt(e)
	}
	e.selector = NewSelector(rng)
	return e
}

// Pity returns the engine's soft pity policy.
func (e *Engine) Pity() PityPolicy { return e.pity }

// Draw performs count sequential draws for one user against the shared banner
// and returns them in batches of BatchSize, in draw order.
//
// The banner is locked for the whole sequence. A top-rarity result resets the
// banner's shared lower-tier weights for all users, not only for state.
// An invalid count is rejected before anything is mutated. If any draw fails,
// state and the shared weights are rolled back to where the sequence began
// and no results are returned.
func (e *Engine) Draw(state *PullerState, b *Banner, count int) ([][]Result, error) {
	if count < 1 {
		return nil, ErrInvalidDrawCount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	startState, startWeights := *state, b.weights
	results := make([]Result, 0, count)
	for i := 0; i < count; i++ {
		r, err := e.drawOne(state, b)
		if err != nil {
			*state, b.weights = startState, startWeights
			return nil, fmt.Errorf("draw %d of %d: %w", i+1, count, err)
		}
		results = append(results, r)
	}
	return Batches(results), nil
}

// drawOne picks the tier and the item before committing the pity transition,
// so a failed selection leaves state and banner untouched.
func (e *Engine) drawOne(state *PullerState, b *Banner) (Result, error) {
	t := e.pity.roll(e.rng, state, b.weights)
	res, err := e.selector.Select(t, &b.cfg)
	if err != nil {
		return Result{}, err
	}
	e.pity.apply(t, state, b)
	return res, nil
}

// Batches groups results into slices of BatchSize; the last may be shorter.
func Batches(results []Result) [][]Result {
	if len(results) == 0 {
		return nil
	}
	out := make([][]Result, 0, (len(results)+BatchSize-1)/BatchSize)
	for start := 0; start < len(results); start += BatchSize {
		end := min(start+BatchSize, len(results))
		out = append(out, results[start:end:end])
	}
	return out
}

// Flatten undoes Batches.
func Flatten(batches [][]Result) []Result {
	var out []Result
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}
