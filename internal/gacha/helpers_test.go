package gacha

// fixedRNG always returns the same value; 0.999999 lands on the last
// positive entry of any weighted choice.
type fixedRNG float64

func (f fixedRNG) Float64() float64 { return float64(f) }

// seqRNG replays values in order, then repeats the last one.
type seqRNG struct {
	vals []float64
	i    int
}

func (s *seqRNG) Float64() float64 {
	v := s.vals[min(s.i, len(s.vals)-1)]
	s.i++
	return v
}

func testConfig() Config {
	return Config{
		Name: "Test Banner",
		Pools: [TierCount][]string{
			{"Exusiai", "Siege", "Ifrit"},
			{"Texas", "Lappland"},
			{"Gravel", "Myrtle"},
			{"Fang", "Kroos"},
		},
		RateUp: [TierCount][]string{
			{"Ch'en"},
			{"Specter"},
		},
		Shares: [TierCount]float64{0.5, 0.5, 0.2, 0},
	}
}
