package vgm

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Metadata holds the GD3 tag fields for one VGM log (spec.md §3/§6).
// Echo's own GD3 writer only ever takes one value per logical field
// from its CLI, but the VGM GD3 layout reserves an English and a
// Japanese slot for Track/Game/System/Author. BuildGD3 writes
// SystemNameJP and AuthorJP to their own slots but never reads
// TrackNameJP or GameNameJP: the English values fill those JP slots.
type Metadata struct {
	TrackNameEN, TrackNameJP   string
	GameNameEN, GameNameJP     string
	SystemNameEN, SystemNameJP string
	AuthorEN, AuthorJP         string
	ReleaseDate                string
	Creator                    string
	Notes                      string
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()

func encodeUTF16LE(s string) []byte {
	b, _, err := transform.Bytes(utf16LE, []byte(s))
	if err != nil {
		// Every Metadata field is ordinary text; an encoder error here
		// would mean malformed UTF-8 input, which the CLI layer rejects
		// before it reaches here.
		panic(err)
	}
	return b
}

func appendUTF16LEZ(buf []byte, s string) []byte {
	buf = append(buf, encodeUTF16LE(s)...)
	return append(buf, 0x00, 0x00)
}

// BuildGD3 serializes metadata as a `"Gd3 "` tag block, per spec.md
// §6. gd3.c writes the title and game name twice but references only
// the English variant both times, so the Japanese fields end up
// identical to the English ones; that is preserved here rather than
// "fixed" (spec.md §9).
func BuildGD3(m Metadata) []byte {
	var payload []byte
	payload = appendUTF16LEZ(payload, m.TrackNameEN)
	payload = appendUTF16LEZ(payload, m.TrackNameEN) // bug: JP slot reuses EN
	payload = appendUTF16LEZ(payload, m.GameNameEN)
	payload = appendUTF16LEZ(payload, m.GameNameEN) // bug: JP slot reuses EN
	payload = appendUTF16LEZ(payload, m.SystemNameEN)
	payload = appendUTF16LEZ(payload, m.SystemNameJP)
	payload = appendUTF16LEZ(payload, m.AuthorEN)
	payload = appendUTF16LEZ(payload, m.AuthorJP)
	payload = appendUTF16LEZ(payload, m.ReleaseDate)
	payload = appendUTF16LEZ(payload, m.Creator)
	payload = appendUTF16LEZ(payload, m.Notes)

	out := make([]byte, 0, 12+len(payload))
	out = append(out, 'G', 'd', '3', ' ')
	out = append(out, 0x00, 0x01, 0x00, 0x00) // version 1.00
	n := uint32(len(payload))
	out = append(out, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	out = append(out, payload...)
	return out
}
