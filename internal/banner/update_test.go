package banner

import (
	"reflect"
	"slices"
	"testing"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

const permanent = "Standard Headhunting"

func limitedAnnouncement() Announcement {
	return Announcement{
		Title: "Spring Festival",
		SixStarItems: []AnnouncedItem{
			{Name: "Nian", IsLimited: true, Chance: 0.7},
			{Name: "Dusk", IsLimited: true, Chance: 0.9},
			{Name: "W", Chance: 0.7},
		},
		FiveStarItems: []AnnouncedItem{{Name: "Ayerscarpe", Chance: 0.5}},
		FourStarItems: []AnnouncedItem{{Name: "Conviction", Chance: 0.2}},
	}
}

func TestApplySameTitleIsNoop(t *testing.T) {
	cfg, _ := Default()
	before := cfg.Clone()
	if Apply(&cfg, Announcement{Title: cfg.Name}, permanent) {
		t.Fatalf("same title must not change")
	}
	if !reflect.DeepEqual(cfg, before) {
		t.Fatalf("config mutated")
	}
}

func TestApplyFromPermanentDoesNotMerge(t *testing.T) {
	cfg, _ := Default()
	topPool := slices.Clone(cfg.Pools[gacha.Top])

	if !Apply(&cfg, limitedAnnouncement(), permanent) {
		t.Fatalf("expected change")
	}
	if cfg.Name != "Spring Festival" {
		t.Fatalf("name = %q", cfg.Name)
	}
	if !slices.Equal(cfg.Pools[gacha.Top], topPool) {
		t.Fatalf("leaving the permanent banner must not merge rate-ups")
	}
	if !slices.Equal(cfg.Guaranteed, []string{"Nian"}) {
		t.Fatalf("guaranteed = %v", cfg.Guaranteed)
	}
	if !slices.Equal(cfg.AlertGuaranteed, []string{"Dusk"}) {
		t.Fatalf("alert = %v", cfg.AlertGuaranteed)
	}
	if !slices.Equal(cfg.RateUp[gacha.Top], []string{"W"}) {
		t.Fatalf("top rate-up = %v", cfg.RateUp[gacha.Top])
	}
	// alert items do not overwrite the share
	if cfg.Shares[gacha.Top] != 0.7 {
		t.Fatalf("top share = %v", cfg.Shares[gacha.Top])
	}
	if cfg.Shares[gacha.High] != 0.5 || cfg.Shares[gacha.Mid] != 0.2 {
		t.Fatalf("shares = %v", cfg.Shares)
	}
	if !slices.Equal(cfg.RateUp[gacha.Mid], []string{"Conviction"}) {
		t.Fatalf("mid rate-up = %v", cfg.RateUp[gacha.Mid])
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestApplyLeavingEventMergesRateUps(t *testing.T) {
	cfg, _ := Default()
	Apply(&cfg, limitedAnnouncement(), permanent)

	next := Announcement{
		Title:         "Darknights Memoir",
		SixStarItems:  []AnnouncedItem{{Name: "Surtr", Chance: 0.5}},
		FiveStarItems: []AnnouncedItem{{Name: "Sideroca", Chance: 0.5}},
	}
	Apply(&cfg, next, permanent)

	if !slices.Contains(cfg.Pools[gacha.Top], "W") {
		t.Fatalf("W should join the permanent top pool")
	}
	if slices.Contains(cfg.Pools[gacha.Top], "Nian") || slices.Contains(cfg.Pools[gacha.Top], "Dusk") {
		t.Fatalf("limited items must not be merged")
	}
	if !slices.Contains(cfg.Pools[gacha.High], "Ayerscarpe") || !slices.Contains(cfg.Pools[gacha.Mid], "Conviction") {
		t.Fatalf("high/mid rate-ups not merged")
	}
	if len(cfg.Guaranteed) != 0 || len(cfg.AlertGuaranteed) != 0 || len(cfg.RateUp[gacha.Mid]) != 0 {
		t.Fatalf("lists not cleared: %+v", cfg)
	}
}

func TestApplySaturatedEventSkipsMerge(t *testing.T) {
	cfg, _ := Default()
	Apply(&cfg, Announcement{
		Title:        "Kernel Locus",
		SixStarItems: []AnnouncedItem{{Name: "Texas the Omertosa", Chance: 1}},
	}, permanent)
	Apply(&cfg, Announcement{Title: permanent}, permanent)

	if slices.Contains(cfg.Pools[gacha.Top], "Texas the Omertosa") {
		t.Fatalf("saturated banner items must not be merged")
	}
}

func TestMergeUniqueKeepsDuplicates(t *testing.T) {
	got := mergeUnique([]string{"a", "a", "b"}, []string{"b", "c"})
	if !slices.Equal(got, []string{"a", "a", "b", "c"}) {
		t.Fatalf("got %v", got)
	}
}
