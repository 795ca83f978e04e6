package gacha

import "testing"

func TestPitySoftEscalationEndToEnd(t *testing.T) {
	banner := NewBanner(testConfig(), Weights{2, 8, 50, 40})
	state := PullerState{TopChance: 2, MissStreak: 0}
	engine := NewEngine(fixedRNG(0.999999)) // always low

	if _, err := engine.Draw(&state, banner, 50); err != nil {
		t.Fatal(err)
	}
	if state.TopChance != 2 || state.MissStreak != 50 {
		t.Fatalf("no escalation expected before streak exceeds 50; got %+v", state)
	}
	if w := banner.Weights(); w != (Weights{2, 8, 50, 40}) {
		t.Fatalf("weights changed early: %v", w)
	}

	if _, err := engine.Draw(&state, banner, 1); err != nil {
		t.Fatal(err)
	}
	if state.TopChance != 4 {
		t.Fatalf("top chance should grow by 2 points; got %v", state.TopChance)
	}
	if state.MissStreak != 51 {
		t.Fatalf("miss streak = %d, want 51", state.MissStreak)
	}
	if w := banner.Weights(); w != (Weights{2, 8, 50, 38}) {
		t.Fatalf("only low should drop by 2; got %v", w)
	}
}

func TestPityTopResetsStateAndSharedWeights(t *testing.T) {
	banner := NewBanner(testConfig(), DefaultWeights)
	banner.weights = Weights{2, 6, 20, 1}

	alice := PullerState{TopChance: 30, MissStreak: 70}
	bob := PullerState{TopChance: 12, MissStreak: 55}

	DefaultPity.apply(Top, &alice, banner)

	if alice.MissStreak != 0 || alice.TopChance != 2 {
		t.Fatalf("alice not reset: %+v", alice)
	}
	if w := banner.Weights(); w != DefaultWeights {
		t.Fatalf("shared weights not reset: %v", w)
	}
	// bob's own progress is untouched, but bob now draws against base weights
	if bob.MissStreak != 55 || bob.TopChance != 12 {
		t.Fatalf("bob changed: %+v", bob)
	}
}

func TestPityDrainOrderAndFloor(t *testing.T) {
	cases := []struct {
		name    string
		weights Weights
		want    Weights
	}{
		{"low first", Weights{2, 8, 50, 40}, Weights{2, 8, 50, 38}},
		{"low stays above floor", Weights{2, 8, 50, 4}, Weights{2, 8, 50, 2}},
		{"low would land on floor", Weights{2, 8, 50, 3}, Weights{2, 8, 48, 3}},
		{"configured odd weights", Weights{2, 8, 50, 41}, Weights{2, 8, 50, 39}},
		{"mid when low at floor", Weights{2, 8, 50, 2}, Weights{2, 8, 48, 2}},
		{"high last", Weights{2, 8, 2, 2}, Weights{2, 6, 2, 2}},
		{"nothing can absorb", Weights{2, 2, 2, 2}, Weights{2, 2, 2, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			banner := NewBanner(testConfig(), DefaultWeights)
			banner.weights = tc.weights
			state := PullerState{TopChance: 10, MissStreak: 50}

			DefaultPity.apply(Low, &state, banner)

			if banner.weights != tc.want {
				t.Fatalf("weights = %v, want %v", banner.weights, tc.want)
			}
			if state.TopChance != 12 {
				t.Fatalf("top chance must grow even when nothing drains; got %v", state.TopChance)
			}
			for _, tier := range []Tier{High, Mid, Low} {
				if banner.weights[tier] <= DefaultPity.Floor {
					t.Fatalf("%s below floor: %v", tier, banner.weights[tier])
				}
			}
		})
	}
}

func TestPityMissStreakZeroAfterTop(t *testing.T) {
	banner := NewBanner(testConfig(), DefaultWeights)
	engine := NewEngine(NewSeededRNG(3))
	state := NewPullerState(banner)

	for i := 0; i < 2000; i++ {
		batches, err := engine.Draw(&state, banner, 1)
		if err != nil {
			t.Fatal(err)
		}
		if batches[0][0].Rarity == Top.Rarity() {
			if state.MissStreak != 0 || state.TopChance != 2 {
				t.Fatalf("draw %d: state not reset after top: %+v", i, state)
			}
		} else if state.MissStreak == 0 {
			t.Fatalf("draw %d: miss streak not incremented", i)
		}
	}
}

func TestPityCustomPolicy(t *testing.T) {
	banner := NewBanner(testConfig(), DefaultWeights)
	engine := NewEngine(fixedRNG(0.999999), WithPity(PityPolicy{Threshold: 5, Step: 1, Floor: 1}))
	state := NewPullerState(banner)

	if _, err := engine.Draw(&state, banner, 8); err != nil {
		t.Fatal(err)
	}
	if state.TopChance != 5 {
		t.Fatalf("three escalations of 1 point expected; got %v", state.TopChance)
	}
	if w := banner.Weights(); w[Low] != 37 {
		t.Fatalf("low = %v, want 37", w[Low])
	}
}

func TestPityOddLowWeightStopsAboveFloor(t *testing.T) {
	base := Weights{2, 8, 49, 41}
	banner := NewBanner(testConfig(), base)
	state := PullerState{TopChance: 2, MissStreak: 50}

	// 19 escalations take low from 41 to 3; the next one would land on the
	// floor, so mid gives up the step instead
	for i := 0; i < 20; i++ {
		DefaultPity.apply(Low, &state, banner)
	}
	if w := banner.Weights(); w != (Weights{2, 8, 47, 3}) {
		t.Fatalf("weights = %v", w)
	}
	if state.TopChance != 42 {
		t.Fatalf("top chance = %v", state.TopChance)
	}
}
