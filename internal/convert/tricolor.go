// Package convert reduces captured month pages to the black, white and red
// palette of tri-colour e-paper panels.
package convert

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// Ink colours of a tri-colour panel.
var (
	White = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Black = color.NRGBA{A: 0xff}
	Red   = color.NRGBA{R: 0xff, A: 0xff}
)

// Palette indexes match the ink constants.
var Palette = color.Palette{White, Black, Red}

type ink uint8

const (
	inkWhite ink = iota
	inkBlack
	inkRed
)

// TriColor maps every pixel of img to white, black or red.
//
// Luma is 0.299R + 0.587G + 0.114B and redness is R - max(G, B):
//
//   - alpha < 128 is white
//   - luma < 64 is black
//   - R > 128 with redness > 32 is red
//   - everything else is white
func TriColor(img image.Image) *image.Paletted {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(b)
		draw.Draw(nrgba, b, img, b.Min, draw.Src)
	}

	out := image.NewPaletted(b, Palette)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := (y - b.Min.Y) * nrgba.Stride
		for x := b.Min.X; x < b.Max.X; x++ {
			i := row + (x-b.Min.X)*4
			c := color.NRGBA{R: nrgba.Pix[i], G: nrgba.Pix[i+1], B: nrgba.Pix[i+2], A: nrgba.Pix[i+3]}
			out.SetColorIndex(x, y, uint8(classify(c)))
		}
	}
	return out
}

// TriColorPNG decodes a PNG, reduces it with TriColor and re-encodes it.
func TriColorPNG(src []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, TriColor(img)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func classify(c color.NRGBA) ink {
	if c.A < 128 {
		return inkWhite
	}
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	luma := 0.299*r + 0.587*g + 0.114*b

	maxGB := g
	if b > maxGB {
		maxGB = b
	}

	if luma < 64 {
		return inkBlack
	}
	if r > 128 && r-maxGB > 32 {
		return inkRed
	}
	return inkWhite
}
