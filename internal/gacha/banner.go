package gacha

import "sync"

// Weights are the tier weights of a draw in percentage points, indexed by Tier.
// They need not sum to 100.
type Weights [TierCount]float64

// DefaultWeights is the reference tier split: 2% top, 8% high, 50% mid, 40% low.
var DefaultWeights = Weights{2, 8, 50, 40}

// Banner is the process-wide, shared banner. It owns the Config and the
// decayed high/mid/low weights that every user's draws read.
//
// The weights are shared across users: soft pity drains them as any user's
// miss streak grows, and a top-rarity hit by ANY user restores them to base for
// everyone. All access goes through mu; the engine holds it for a whole draw
// sequence so at most one sequence is in flight per banner.
type Banner struct {
	mu      sync.Mutex
	cfg     Config
	base    Weights
	weights Weights
}

// NewBanner creates a banner from cfg with the given base weights.
func NewBanner(cfg Config, base Weights) *Banner {
	return &Banner{cfg: cfg.Clone(), base: base, weights: base}
}

// Snapshot returns a copy of the current config.
func (b *Banner) Snapshot() Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg.Clone()
}

// Name returns the current banner name.
func (b *Banner) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg.Name
}

// Weights returns the current shared tier weights. Weights[Top] is the base
// value; each user carries its own top weight in PullerState.
func (b *Banner) Weights() Weights {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.weights
}

// BaseWeights returns the weights the banner resets to.
func (b *Banner) BaseWeights() Weights {
	return b.base
}

// Update applies fn to a copy of the config and swaps it in when fn and
// validation succeed. Pity state and shared weights are untouched.
func (b *Banner) Update(fn func(*Config) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.cfg.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	b.cfg = next
	return nil
}

// Reload replaces the config wholesale, e.g. after the file changed on disk.
func (b *Banner) Reload(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	b.cfg = cfg.Clone()
	b.mu.Unlock()
	return nil
}

// resetWeights restores the shared high/mid/low weights. Caller holds mu.
func (b *Banner) resetWeights() {
	b.weights = b.base
}
