// Package midi parses Standard MIDI Files (types 0 and 1) into the
// shared event.List model (spec.md §4.1).
//
// Grounded on the teacher's pkg/vm/audio/midi.go, which read MIDI-like
// chunked binary data for meltysynth playback; here the chunk framing
// and variable-length-quantity decoding is rebuilt against pkg/blob
// instead, and driven all the way through to Echo's event model rather
// than stopping at synthesizer playback.
package midi

import "github.com/zurustar/echotools/pkg/echoerr"

// Header is the decoded MThd chunk.
type Header struct {
	Format   int
	Tracks   int
	Division int

	// SMPTE is true when Division encodes a SMPTE frame rate rather
	// than ticks-per-beat.
	SMPTE         bool
	FrameRateX100 int // 2400, 2500, 2997, or 3000
	TicksPerFrame int

	TicksPerBeat int // valid only when !SMPTE
}

// ReadSMF parses the chunk framing of an SMF: an MThd header chunk
// followed by one MTrk chunk per track. Unknown chunk tags are
// skipped. Returns the header and the raw payload of every MTrk chunk,
// in file order.
func ReadSMF(data []byte) (Header, [][]byte, error) {
	var hdr Header
	pos := 0

	tag, size, payload, next, err := readChunk(data, pos)
	if err != nil {
		return hdr, nil, err
	}
	if tag != "MThd" || size != 6 {
		return hdr, nil, echoerr.At(echoerr.MalformedInput, pos, "first chunk must be MThd of size 6, got %q size %d", tag, size)
	}
	pos = next

	format := int(payload[0])<<8 | int(payload[1])
	tracks := int(payload[2])<<8 | int(payload[3])
	division := int(payload[4])<<8 | int(payload[5])

	if format > 2 {
		return hdr, nil, echoerr.At(echoerr.MalformedInput, 8, "unsupported MIDI format %d", format)
	}
	if format == 2 {
		return hdr, nil, echoerr.New(echoerr.Unsupported, "MIDI format 2 is not supported")
	}
	if format == 0 && tracks != 1 {
		return hdr, nil, echoerr.At(echoerr.MalformedInput, 8, "format 0 requires exactly 1 track, got %d", tracks)
	}

	hdr.Format = format
	hdr.Tracks = tracks
	hdr.Division = division
	if division&0x8000 != 0 {
		hdr.SMPTE = true
		rate := int(int8(division >> 8))
		switch -rate {
		case 24:
			hdr.FrameRateX100 = 2400
		case 25:
			hdr.FrameRateX100 = 2500
		case 29:
			hdr.FrameRateX100 = 2997
		case 30:
			hdr.FrameRateX100 = 3000
		default:
			return hdr, nil, echoerr.At(echoerr.MalformedInput, 12, "invalid SMPTE frame rate %d", -rate)
		}
		hdr.TicksPerFrame = division & 0xFF
	} else {
		hdr.TicksPerBeat = division
	}

	var trackPayloads [][]byte
	for pos < len(data) {
		tag, _, payload, next, err := readChunk(data, pos)
		if err != nil {
			return hdr, nil, err
		}
		if tag == "MTrk" {
			trackPayloads = append(trackPayloads, payload)
		}
		pos = next
	}
	return hdr, trackPayloads, nil
}

func readChunk(data []byte, pos int) (tag string, size int, payload []byte, next int, err error) {
	if pos+8 > len(data) {
		return "", 0, nil, 0, echoerr.At(echoerr.MalformedInput, pos, "truncated chunk header")
	}
	tag = string(data[pos : pos+4])
	size = int(data[pos+4])<<24 | int(data[pos+5])<<16 | int(data[pos+6])<<8 | int(data[pos+7])
	start := pos + 8
	if start+size > len(data) {
		return "", 0, nil, 0, echoerr.At(echoerr.MalformedInput, pos, "chunk %q size %d exceeds remaining input", tag, size)
	}
	return tag, size, data[start : start+size], start + size, nil
}
