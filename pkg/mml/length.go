package mml

import "github.com/zurustar/echotools/pkg/echoerr"

// wholeNoteTicks is the internal tick count of a whole note, per
// spec.md §4.2.
const wholeNoteTicks = 128

// parseLength reads a length token starting at pos: a power-of-two
// denominator 1..128, an optional dot adding half, and an optional tie
// `^<len>` adding another length. The tied length accepts a bare
// denominator only; a dot after the tie is rejected, a limitation of
// the original parser preserved here (spec.md §9).
func parseLength(s string, pos int) (ticks, next int, err error) {
	ticks, next, err = parseLengthSegment(s, pos, true)
	if err != nil {
		return 0, 0, err
	}
	if next < len(s) && s[next] == '^' {
		tieTicks, tieNext, err := parseLengthSegment(s, next+1, false)
		if err != nil {
			return 0, 0, err
		}
		ticks += tieTicks
		next = tieNext
	}
	return ticks, next, nil
}

// hasLength reports whether a length token starts at pos (a digit).
func hasLength(s string, pos int) bool {
	return pos < len(s) && s[pos] >= '0' && s[pos] <= '9'
}

func parseLengthSegment(s string, pos int, allowDot bool) (ticks, next int, err error) {
	start := pos
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		pos++
	}
	if pos == start {
		return 0, 0, echoerr.New(echoerr.MalformedInput, "expected a length denominator")
	}
	denom := 0
	for _, c := range s[start:pos] {
		denom = denom*10 + int(c-'0')
	}
	if denom < 1 || denom > wholeNoteTicks || wholeNoteTicks%denom != 0 {
		return 0, 0, echoerr.New(echoerr.MalformedInput, "invalid length denominator %d", denom)
	}
	ticks = wholeNoteTicks / denom
	if allowDot && pos < len(s) && s[pos] == '.' {
		ticks += ticks / 2
		pos++
	}
	return ticks, pos, nil
}
