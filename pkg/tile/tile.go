// Package tile converts a decoded image into Mega Drive 8×8 4bpp tiles
// (spec.md §1's "bitmap-to-tile reordering" external collaborator).
//
// PNG decoding itself is delegated to the standard image/png decoder,
// exactly the "external image library" role spec.md assigns it; this
// package's own job starts once an image.Image exists: quantize its
// colors down to a 16-entry Mega Drive CRAM-style palette with
// golang.org/x/image/draw, then slice the result into row-major 8×8
// tiles packed two pixels per byte.
package tile

import (
	"image"
	"image/color"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/zurustar/echotools/pkg/echoerr"
)

// Size is the edge length of one Mega Drive tile in pixels.
const Size = 8

// PaletteSize is the number of CRAM entries a single palette holds.
const PaletteSize = 16

// Tile is one 8×8 4bpp tile: 32 bytes, two pixels packed per byte,
// high nibble first, row-major.
type Tile [32]byte

// Decode reads a PNG (or any image format with a registered decoder)
// from r and returns the decoded image.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, echoerr.New(echoerr.MalformedInput, "decoding image: %v", err)
	}
	return img, nil
}

// Quantize reduces img to a PaletteSize-entry palette using
// golang.org/x/image/draw's ordered-dither-free nearest-color drawer,
// and returns the resulting paletted image. If img already carries a
// palette of PaletteSize colors or fewer, it is converted as-is.
func Quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	pal := buildPalette(img)

	dst := image.NewPaletted(b, pal)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// buildPalette extracts up to PaletteSize distinct colors from img in
// first-seen order, matching the Mega Drive convention of a fixed
// palette assigned by encounter order rather than frequency.
func buildPalette(img image.Image) color.Palette {
	if p, ok := img.(*image.Paletted); ok && len(p.Palette) <= PaletteSize {
		return p.Palette
	}

	b := img.Bounds()
	seen := map[color.RGBA]bool{}
	pal := color.Palette{}
	for y := b.Min.Y; y < b.Max.Y && len(pal) < PaletteSize; y++ {
		for x := b.Min.X; x < b.Max.X && len(pal) < PaletteSize; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			c := color.RGBA{R: byte(r >> 8), G: byte(g >> 8), B: byte(bl >> 8), A: byte(a >> 8)}
			if !seen[c] {
				seen[c] = true
				pal = append(pal, c)
			}
		}
	}
	for len(pal) < PaletteSize {
		pal = append(pal, color.RGBA{})
	}
	return pal
}

// Slice cuts a PaletteSize-or-fewer-color image into row-major 8×8
// tiles, packing each pixel's palette index into a nibble (high
// nibble first within each byte). The image's width and height must
// both be multiples of Size.
func Slice(img *image.Paletted) ([]Tile, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w%Size != 0 || h%Size != 0 {
		return nil, echoerr.New(echoerr.RangeViolation, "image dimensions %dx%d are not multiples of %d", w, h, Size)
	}

	cols, rows := w/Size, h/Size
	tiles := make([]Tile, 0, cols*rows)
	for ty := 0; ty < rows; ty++ {
		for tx := 0; tx < cols; tx++ {
			var t Tile
			for py := 0; py < Size; py++ {
				for px := 0; px < Size; px += 2 {
					hi := pixelIndex(img, b, tx*Size+px, ty*Size+py)
					lo := pixelIndex(img, b, tx*Size+px+1, ty*Size+py)
					t[py*4+px/2] = byte(hi<<4) | byte(lo&0x0F)
				}
			}
			tiles = append(tiles, t)
		}
	}
	return tiles, nil
}

func pixelIndex(img *image.Paletted, b image.Rectangle, x, y int) int {
	return int(img.ColorIndexAt(b.Min.X+x, b.Min.Y+y))
}
