// Package uftc implements the UFTC tile-dictionary codec (spec.md
// §4.5): 8x8, 4bpp Mega Drive tiles are split into four 4x4 quadrants
// and deduplicated against a shared dictionary.
package uftc

import (
	"github.com/zurustar/echotools/pkg/blob"
	"github.com/zurustar/echotools/pkg/echoerr"
)

const (
	TileSize         = 32 // bytes per 8x8, 4bpp tile
	quadrantSize     = 8  // bytes per 4x4 quadrant
	quadrantsPerTile = 4
)

// Tile is one raw 32-byte, 4bpp, 8x8 Mega Drive tile.
type Tile [TileSize]byte

type quadrant [quadrantSize]byte

// split divides a tile into its four quadrants in top-left, top-right,
// bottom-left, bottom-right order. Each tile row is 4 bytes (8 pixels
// at 4bpp); a quadrant row is the left or right half of that.
func split(t Tile) [4]quadrant {
	var q [4]quadrant
	for row := 0; row < 8; row++ {
		rowBytes := t[row*4 : row*4+4]
		half := row / 4 * 2 // 0 for rows 0..3, 2 for rows 4..7
		localRow := row % 4
		copy(q[half][localRow*2:localRow*2+2], rowBytes[0:2])
		copy(q[half+1][localRow*2:localRow*2+2], rowBytes[2:4])
	}
	return q
}

func join(q [4]quadrant) Tile {
	var t Tile
	for row := 0; row < 8; row++ {
		half := row / 4 * 2
		localRow := row % 4
		copy(t[row*4:row*4+2], q[half][localRow*2:localRow*2+2])
		copy(t[row*4+2:row*4+4], q[half+1][localRow*2:localRow*2+2])
	}
	return t
}

// Encode builds the UFTC stream for tiles: a u16 word-count header, the
// deduplicated quadrant dictionary, then four u16 dictionary offsets
// (in words) per tile.
func Encode(tiles []Tile) []byte {
	dict := make([]quadrant, 0, len(tiles)*quadrantsPerTile)
	index := map[quadrant]int{}

	offsets := make([][4]uint16, len(tiles))
	for i, t := range tiles {
		for qi, q := range split(t) {
			entry, ok := index[q]
			if !ok {
				entry = len(dict)
				dict = append(dict, q)
				index[q] = entry
			}
			offsets[i][qi] = uint16(entry * 4) // offset in words
		}
	}

	w := blob.NewWriter()
	w.BE16(uint16(len(dict) * 4))
	for _, q := range dict {
		w.Raw(q[:])
	}
	for _, off := range offsets {
		for _, o := range off {
			w.BE16(o)
		}
	}
	return w.Bytes()
}

// EncodeLegacy produces the UFTC15 stream, byte-identical to Encode for
// the same input: the legacy format differs only in its loader, not
// its on-disk layout.
func EncodeLegacy(tiles []Tile) []byte {
	return Encode(tiles)
}

// Decode reverses Encode, reconstructing tileCount tiles.
func Decode(data []byte, tileCount int) ([]Tile, error) {
	r := blob.NewReader(data)
	dictWords, err := r.BE16()
	if err != nil {
		return nil, echoerr.At(echoerr.MalformedInput, 0, "UFTC dictionary size header truncated")
	}
	if int(dictWords)%4 != 0 {
		return nil, echoerr.At(echoerr.MalformedInput, 2, "UFTC dictionary word count %d is not quadrant-aligned", dictWords)
	}
	dictBytes, err := r.Take(int(dictWords) * 2)
	if err != nil {
		return nil, echoerr.At(echoerr.MalformedInput, 2, "UFTC dictionary body truncated: want %d bytes", int(dictWords)*2)
	}
	numQuadrants := len(dictBytes) / quadrantSize
	dict := make([]quadrant, numQuadrants)
	for i := range dict {
		copy(dict[i][:], dictBytes[i*quadrantSize:(i+1)*quadrantSize])
	}

	tiles := make([]Tile, tileCount)
	for i := 0; i < tileCount; i++ {
		var q [4]quadrant
		for qi := 0; qi < 4; qi++ {
			off, err := r.BE16()
			if err != nil {
				return nil, echoerr.At(echoerr.MalformedInput, r.Pos(), "UFTC tile %d offset %d truncated", i, qi)
			}
			entry := int(off) / 4
			if entry < 0 || entry >= numQuadrants {
				return nil, echoerr.At(echoerr.MalformedInput, r.Pos(), "UFTC tile %d offset %d out of range (dictionary has %d quadrants)", i, qi, numQuadrants)
			}
			q[qi] = dict[entry]
		}
		tiles[i] = join(q)
	}
	return tiles, nil
}

// DecodeLegacy reverses EncodeLegacy; an alias, since UFTC15's layout
// matches the modern format.
func DecodeLegacy(data []byte, tileCount int) ([]Tile, error) {
	return Decode(data, tileCount)
}
