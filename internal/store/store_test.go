package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "gacha.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadStateUnknownUser(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.LoadState(context.Background(), "nobody")
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestSaveDrawRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	results := []gacha.Result{{Item: "Fang", Rarity: 3}, {Item: "Exusiai", Rarity: 6}}
	if err := s.SaveDraw(ctx, "doctor", "Standard Headhunting", gacha.PullerState{TopChance: 6, MissStreak: 52}, results); err != nil {
		t.Fatal(err)
	}
	// upsert
	if err := s.SaveDraw(ctx, "doctor", "Standard Headhunting", gacha.PullerState{TopChance: 2, MissStreak: 0}, nil); err != nil {
		t.Fatal(err)
	}

	state, ok, err := s.LoadState(ctx, "doctor")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if state.TopChance != 2 || state.MissStreak != 0 {
		t.Fatalf("state = %+v", state)
	}

	hist, err := s.History(ctx, "doctor", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 {
		t.Fatalf("history len = %d", len(hist))
	}
	if hist[0].Item != "Exusiai" || hist[1].Item != "Fang" {
		t.Fatalf("history order = %+v", hist)
	}
	if _, err := uuid.Parse(hist[0].ID); err != nil {
		t.Fatalf("id %q is not a uuid", hist[0].ID)
	}
}

func TestHistoryIsPerUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_ = s.SaveDraw(ctx, "a", "b", gacha.PullerState{TopChance: 2}, []gacha.Result{{Item: "Kroos", Rarity: 3}})

	hist, err := s.History(ctx, "other", 0)
	if err != nil || len(hist) != 0 {
		t.Fatalf("hist=%v err=%v", hist, err)
	}
}
