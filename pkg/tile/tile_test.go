package tile

import (
	"image"
	"image/color"
	"testing"
)

func TestSliceSingleTile(t *testing.T) {
	pal := color.Palette{
		color.RGBA{0, 0, 0, 255},
		color.RGBA{255, 0, 0, 255},
	}
	img := image.NewPaletted(image.Rect(0, 0, 8, 8), pal)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if (x+y)%2 == 0 {
				img.SetColorIndex(x, y, 1)
			}
		}
	}

	tiles, err := Slice(img)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if len(tiles) != 1 {
		t.Fatalf("expected 1 tile, got %d", len(tiles))
	}

	got := tiles[0][0]
	want := byte(1<<4) | byte(0)
	if got != want {
		t.Fatalf("tile byte 0 = %#02x, want %#02x", got, want)
	}
}

func TestSliceRejectsNonMultipleDimensions(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 10, 8), color.Palette{color.RGBA{}})
	if _, err := Slice(img); err == nil {
		t.Fatal("expected error for non-multiple-of-8 width")
	}
}

func TestQuantizeCapsAtPaletteSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{byte(x * 10), byte(y * 10), 0, 255})
		}
	}
	q := Quantize(img)
	if len(q.Palette) > PaletteSize {
		t.Fatalf("palette has %d entries, want <= %d", len(q.Palette), PaletteSize)
	}
}
