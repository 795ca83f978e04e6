// Package render draws draw results into a PNG summary.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

// Input is everything one summary image shows.
type Input struct {
	Banner  string
	State   gacha.PullerState
	Batches [][]gacha.Result
	Count   int
	Relief  bool
}

// Renderer turns draw results into image bytes.
type Renderer interface {
	Render(in Input) ([]byte, error)
}

const (
	tile      = 20
	width     = 720
	cellWidth = tile * 3
	baseGray  = 0x40
)

var (
	background = color.RGBA{baseGray, baseGray, baseGray, 0xff}
	textColor  = color.RGBA{0xd3, 0xd3, 0xd3, 0xff}

	rarityColor = map[int]color.RGBA{
		6: {0xff, 0x7f, 0x27, 0xff},
		5: {0xff, 0xc9, 0x0e, 0xff},
		4: {0x93, 0x19, 0x93, 0xff},
		3: {0x09, 0xb3, 0xf7, 0xff},
	}
)

// PNGRenderer renders with the built-in 7x13 bitmap face.
type PNGRenderer struct {
	face font.Face
}

func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{face: basicfont.Face7x13}
}

// Render lays out one row per batch of ten, with a header naming the banner
// and a footer with the user's pity progress.
func (r *PNGRenderer) Render(in Input) ([]byte, error) {
	rows := len(in.Batches)
	height := tile*(rows+1) + 130
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	r.text(img, tile, tile+13, "The Doctor carefully unzips the bag...", textColor)
	pool := fmt.Sprintf("Banner: %s", in.Banner)
	r.text(img, width-tile-r.measure(pool), tile+13, pool, textColor)

	if in.Relief {
		drawRelief(img, rows)
	}

	for i, batch := range in.Batches {
		y := tile * (i + 3)
		if in.Relief {
			shadow := color.RGBA{baseGray / 2, baseGray / 2, baseGray / 2, 0xff}
			fill(img, image.Rect(tile*3, y+4, tile*3+cellWidth*len(batch)-2, y+tile+3), shadow)
		}
		x := tile * 3
		for _, res := range batch {
			c, ok := rarityColor[res.Rarity]
			if !ok {
				c = rarityColor[3]
			}
			fill(img, image.Rect(x, y+2, x+cellWidth-2, y+tile), c)

			name := r.fit(res.Item, cellWidth-4)
			dx := (cellWidth - r.measure(name)) / 2
			r.text(img, x+dx, y+15, name, color.White)
			x += cellWidth
		}
	}

	footer := fmt.Sprintf("%d draws without a 6-star", in.State.MissStreak)
	r.text(img, tile, height-3*tile+10, footer, textColor)
	chance := fmt.Sprintf("Current 6-star chance: %g%%", in.State.TopChance)
	r.text(img, tile, height-2*tile+10, chance, textColor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *PNGRenderer) text(dst draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func (r *PNGRenderer) measure(s string) int {
	return font.MeasureString(r.face, s).Ceil()
}

// fit trims s so it renders within px pixels.
func (r *PNGRenderer) fit(s string, px int) string {
	runes := []rune(s)
	for len(runes) > 0 && r.measure(string(runes)) > px {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

func fill(dst draw.Image, rect image.Rectangle, c color.Color) {
	draw.Draw(dst, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawRelief frames the result area with graded borders.
func drawRelief(img *image.RGBA, rows int) {
	xi, yi := 2*tile, 2*tile+4
	xj, yj := width-2*tile, tile*(rows+4)
	for i := 3; i > 0; i-- {
		d := (baseGray / 5) / 4
		g := uint8(baseGray*4/5 + i*d)
		c := color.RGBA{g, g, g, 0xff}
		fill(img, image.Rect(xi-i, yi-i, xi+i, yj+i), c)
		fill(img, image.Rect(xj-i, yi-i, xj+i, yj+i), c)
	}
	for i := 4; i > 0; i-- {
		top := uint8((baseGray / 4) * i)
		fill(img, image.Rect(xi-i, yi-i, xj+i, yi+i), color.RGBA{top, top, top, 0xff})
		bottom := uint8(0xff - i*((0xff-baseGray)/4))
		fill(img, image.Rect(xi-i, yj-i, xj+i, yj+i), color.RGBA{bottom, bottom, bottom, 0xff})
	}
}
