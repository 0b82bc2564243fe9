// Package slz implements the SLZ LZ77-family codec (spec.md §4.4):
// size-prefixed groups of 8 tokens, each either a literal byte or a
// 2-byte back-reference.
package slz

import "github.com/zurustar/echotools/pkg/echoerr"

// Width selects the size header's byte width.
type Width int

const (
	SLZ16 Width = 2 // u16 big-endian size header, input < 64 KiB
	SLZ24 Width = 3 // u24 big-endian size header, input < 16 MiB
)

const (
	minMatch       = 3
	maxMatch       = 18
	windowSize     = 4098
	tokensPerGroup = 8
)

// Compress produces the SLZ byte stream for data, per the greedy
// longest-match policy of §4.4. Deterministic: a pure function of data.
func Compress(data []byte, width Width) []byte {
	out := make([]byte, 0, len(data)/2+int(width)+1)
	out = appendSize(out, len(data), width)

	var controlByte byte
	var bitPos uint
	var pending []byte
	flushGroup := func() {
		if bitPos == 0 {
			return
		}
		out = append(out, controlByte)
		out = append(out, pending...)
		controlByte = 0
		bitPos = 0
		pending = pending[:0]
	}
	emitToken := func(isBackref bool, tokenBytes ...byte) {
		if isBackref {
			controlByte |= 1 << (7 - bitPos)
		}
		pending = append(pending, tokenBytes...)
		bitPos++
		if bitPos == tokensPerGroup {
			flushGroup()
		}
	}

	i := 0
	for i < len(data) {
		if i == 0 {
			emitToken(false, data[0])
			i++
			continue
		}
		matchLen, matchDist := findMatch(data, i)
		if matchLen >= minMatch {
			field := uint16(matchDist-3)<<4 | uint16(matchLen-3)
			emitToken(true, byte(field>>8), byte(field))
			i += matchLen
			continue
		}
		emitToken(false, data[i])
		i++
	}
	flushGroup()
	return out
}

// findMatch searches the prior windowSize bytes of data (ending just
// before pos) for the longest match starting at pos, returning its
// length (0 if none meets minMatch) and distance.
func findMatch(data []byte, pos int) (length, distance int) {
	start := pos - windowSize
	if start < 0 {
		start = 0
	}
	maxLen := len(data) - pos
	if maxLen > maxMatch {
		maxLen = maxMatch
	}
	if maxLen < minMatch {
		return 0, 0
	}

	bestLen := 0
	bestDist := 0
	// Only candidates at least minMatch bytes back are encodable: the
	// wire format's distance field is biased by 3, so distance 1..2
	// can never be represented. Grounded on the reference compressor's
	// search floor (slz/tool/compress.c: `for (curr_dist = max_dist;
	// curr_dist >= 3; curr_dist--)`).
	for cand := start; cand <= pos-minMatch; cand++ {
		l := 0
		for l < maxLen && data[cand+l] == data[pos+l] {
			l++
		}
		if l > bestLen {
			bestLen = l
			bestDist = pos - cand
		}
	}
	if bestLen < minMatch {
		return 0, 0
	}
	return bestLen, bestDist
}

func appendSize(out []byte, size int, width Width) []byte {
	switch width {
	case SLZ16:
		return append(out, byte(size>>8), byte(size))
	default:
		return append(out, byte(size>>16), byte(size>>8), byte(size))
	}
}

// Decompress reverses Compress, tolerating arbitrary group boundaries
// and stopping exactly at the declared size, per §4.4.
func Decompress(data []byte, width Width) ([]byte, error) {
	if len(data) < int(width) {
		return nil, echoerr.At(echoerr.MalformedInput, 0, "SLZ stream shorter than its size header")
	}
	var declared int
	switch width {
	case SLZ16:
		declared = int(data[0])<<8 | int(data[1])
	default:
		declared = int(data[0])<<16 | int(data[1])<<8 | int(data[2])
	}
	pos := int(width)
	out := make([]byte, 0, declared)

	for len(out) < declared {
		if pos >= len(data) {
			return nil, echoerr.At(echoerr.MalformedInput, pos, "SLZ stream truncated: declared size %d, got %d bytes", declared, len(out))
		}
		control := data[pos]
		pos++

		for bit := 0; bit < tokensPerGroup && len(out) < declared; bit++ {
			isBackref := control&(1<<(7-uint(bit))) != 0
			if !isBackref {
				if pos >= len(data) {
					return nil, echoerr.At(echoerr.MalformedInput, pos, "SLZ literal token truncated")
				}
				out = append(out, data[pos])
				pos++
				continue
			}
			if pos+1 >= len(data) {
				return nil, echoerr.At(echoerr.MalformedInput, pos, "SLZ back-reference token truncated")
			}
			field := uint16(data[pos])<<8 | uint16(data[pos+1])
			pos += 2
			distance := int(field>>4) + 3
			length := int(field&0x0F) + 3

			if distance > len(out) {
				return nil, echoerr.At(echoerr.MalformedInput, pos, "SLZ back-reference distance %d exceeds %d bytes written", distance, len(out))
			}
			start := len(out) - distance
			for k := 0; k < length && len(out) < declared; k++ {
				out = append(out, out[start+k])
			}
		}
	}
	if len(out) != declared {
		return nil, echoerr.At(echoerr.MalformedInput, pos, "SLZ decoded size %d does not match declared size %d", len(out), declared)
	}
	return out, nil
}
