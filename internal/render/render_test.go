package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

func sampleBatches(n int) [][]gacha.Result {
	results := make([]gacha.Result, n)
	for i := range results {
		results[i] = gacha.Result{Item: "Exusiai", Rarity: 3 + i%4}
	}
	return gacha.Batches(results)
}

func TestRenderPNG(t *testing.T) {
	for _, relief := range []bool{false, true} {
		in := Input{
			Banner:  "Standard Headhunting",
			State:   gacha.PullerState{TopChance: 4, MissStreak: 51},
			Batches: sampleBatches(25),
			Count:   25,
			Relief:  relief,
		}
		b, err := NewPNGRenderer().Render(in)
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(bytes.NewReader(b))
		if err != nil {
			t.Fatalf("not a png: %v", err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != width {
			t.Fatalf("width = %d", bounds.Dx())
		}
		if want := tile*(3+1) + 130; bounds.Dy() != want {
			t.Fatalf("height = %d, want %d", bounds.Dy(), want)
		}
	}
}

func TestRenderTileColour(t *testing.T) {
	in := Input{Batches: [][]gacha.Result{{{Item: "Ch'en", Rarity: 6}}}, Count: 1}
	b, err := NewPNGRenderer().Render(in)
	if err != nil {
		t.Fatal(err)
	}
	img, _ := png.Decode(bytes.NewReader(b))
	// top-left corner of the first tile is outside the text
	r, g, bl, _ := img.At(tile*3+1, tile*3+3).RGBA()
	if r>>8 != 0xff || g>>8 != 0x7f || bl>>8 != 0x27 {
		t.Fatalf("tile colour = %x %x %x", r>>8, g>>8, bl>>8)
	}
}

func TestFitTrimsLongNames(t *testing.T) {
	r := NewPNGRenderer()
	got := r.fit("Texas the Omertosa", cellWidth-4)
	if r.measure(got) > cellWidth-4 || got == "" {
		t.Fatalf("fit = %q", got)
	}
	if r.fit("W", cellWidth-4) != "W" {
		t.Fatalf("short names must be kept")
	}
}
