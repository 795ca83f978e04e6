package gacha

// Weighted pairs a value with a non-normalised selection weight.
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// WeightedChoice picks one value with probability weight/sum(weights).
// Entries with a non-positive weight are never returned. ok is false when no
// entry carries positive weight.
func WeightedChoice[T any](rng RandomSource, entries []Weighted[T]) (v T, ok bool) {
	if rng == nil {
		rng = DefaultRNG()
	}
	var total float64
	last := -1
	for i, e := range entries {
		if validateWeight(e.Weight) {
			total += e.Weight
			last = i
		}
	}
	if last < 0 {
		return v, false
	}

	r := rng.Float64() * total
	for _, e := range entries {
		if !validateWeight(e.Weight) {
			continue
		}
		r -= e.Weight
		if r < 0 {
			return e.Value, true
		}
	}
	// float rounding: land on the last positive entry
	return entries[last].Value, true
}

// pickUniform returns a uniformly chosen element of xs.
func pickUniform[T any](rng RandomSource, xs []T) (v T, ok bool) {
	if len(xs) == 0 {
		return v, false
	}
	return xs[intN(rng, len(xs))], true
}
