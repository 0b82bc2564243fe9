package mml

import (
	"github.com/zurustar/echotools/pkg/echoerr"
	"github.com/zurustar/echotools/pkg/esf"
	"github.com/zurustar/echotools/pkg/event"
)

// noteSemitones maps the seven natural note letters to their semitone
// offset within an octave.
var noteSemitones = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// registerBases maps a two-letter YM2612 operator-parameter name to its
// base register, per spec.md §4.2's named raw-register form.
var registerBases = map[string]int{
	"DM": 0x30, "TL": 0x40, "KA": 0x50, "DR": 0x60,
	"SR": 0x70, "SL": 0x80, "SE": 0x90,
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func readDigits(s string, pos int) (int, int, bool) {
	start := pos
	for pos < len(s) && isDigit(s[pos]) {
		pos++
	}
	if pos == start {
		return 0, pos, false
	}
	n := 0
	for _, c := range s[start:pos] {
		n = n*10 + int(c-'0')
	}
	return n, pos, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// compileLine applies one channel-command line's body to every
// selected channel.
func (c *compiler) compileLine(channels []event.Channel, body string) error {
	pos := 0
	for pos < len(body) {
		ch0 := body[pos]
		if ch0 == ' ' || ch0 == '\t' {
			pos++
			continue
		}

		var err error
		switch {
		case noteLetter(ch0):
			pos, err = c.compileNote(channels, body, pos)
		case ch0 == 'n':
			pos, err = c.compileDirectNote(channels, body, pos)
		case ch0 == 'r':
			pos, err = c.compileRest(channels, body, pos)
		case ch0 == 's':
			pos, err = c.compileAdvance(channels, body, pos)
		case ch0 == '&':
			pos++
			for _, ch := range channels {
				c.state(ch).nullifyNext = true
			}
		case ch0 == '_':
			pos++
			for _, ch := range channels {
				c.state(ch).slideNext = true
			}
		case ch0 == '>':
			pos++
			for _, ch := range channels {
				st := c.state(ch)
				st.octave = clamp(st.octave+1, 0, 7)
			}
		case ch0 == '<':
			pos++
			for _, ch := range channels {
				st := c.state(ch)
				st.octave = clamp(st.octave-1, 0, 7)
			}
		case ch0 == 'o':
			pos, err = c.compileOctave(channels, body, pos)
		case ch0 == 'K':
			pos, err = c.compileTranspose(channels, body, pos, false)
		case ch0 == 'k':
			pos, err = c.compileTranspose(channels, body, pos, true)
		case ch0 == 'l':
			pos, err = c.compileDefaultLen(channels, body, pos)
		case ch0 == '(':
			pos++
			for _, ch := range channels {
				st := c.state(ch)
				c.ensureInitialized(ch, st)
				st.volume = clamp(st.volume-1, 0, 15)
				c.emitVolume(ch, st)
			}
		case ch0 == ')':
			pos++
			for _, ch := range channels {
				st := c.state(ch)
				c.ensureInitialized(ch, st)
				st.volume = clamp(st.volume+1, 0, 15)
				c.emitVolume(ch, st)
			}
		case ch0 == 'v':
			pos, err = c.compileVolume(channels, body, pos)
		case ch0 == 'p':
			pos, err = c.compilePan(channels, body, pos)
		case ch0 == '@':
			pos, err = c.compileAt(channels, body, pos)
		case ch0 == 'y':
			pos, err = c.compileRegister(channels, body, pos)
		case ch0 == 'L':
			pos++
			for _, ch := range channels {
				st := c.state(ch)
				c.ensureInitialized(ch, st)
				c.out = append(c.out, event.Event{Timestamp: st.timestamp, Channel: ch, Kind: event.KindLoopPoint, Instrument: -1, Volume: -1, Panning: -1})
			}
		case ch0 == 't':
			pos, err = c.compileTempo(channels, body, pos)
		default:
			err = echoerr.New(echoerr.MalformedInput, "unknown command character %q", ch0)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func noteLetter(b byte) bool { return b >= 'a' && b <= 'g' }

func (c *compiler) compileNote(channels []event.Channel, body string, pos int) (int, error) {
	semitone := noteSemitones[body[pos]]
	pos++
	delta := 0
	for pos < len(body) && (body[pos] == '+' || body[pos] == '#' || body[pos] == '-') {
		if body[pos] == '-' {
			delta--
		} else {
			delta++
		}
		pos++
	}
	explicit := hasLength(body, pos)
	var ticks int
	if explicit {
		var err error
		ticks, pos, err = parseLength(body, pos)
		if err != nil {
			return 0, err
		}
	}
	for _, ch := range channels {
		st := c.state(ch)
		c.ensureInitialized(ch, st)
		t := ticks
		if !explicit {
			t = st.defaultLen
		}
		note := st.octave*12 + semitone + delta + st.transpose
		c.emitNote(ch, st, note, t)
	}
	return pos, nil
}

func (c *compiler) compileDirectNote(channels []event.Channel, body string, pos int) (int, error) {
	pos++
	val, next, ok := readDigits(body, pos)
	if !ok {
		return 0, echoerr.New(echoerr.MalformedInput, "expected a note value after 'n'")
	}
	pos = next
	explicit := false
	var ticks int
	if pos < len(body) && body[pos] == ',' {
		var err error
		ticks, pos, err = parseLength(body, pos+1)
		if err != nil {
			return 0, err
		}
		explicit = true
	}
	for _, ch := range channels {
		if err := validateNoteValue(ch, val); err != nil {
			return 0, err
		}
		st := c.state(ch)
		c.ensureInitialized(ch, st)
		t := ticks
		if !explicit {
			t = st.defaultLen
		}
		c.emitNote(ch, st, val, t)
	}
	return pos, nil
}

func validateNoteValue(ch event.Channel, val int) error {
	var max int
	switch {
	case ch.IsFM():
		max = 95
	case ch.IsPSG():
		max = 71
	case ch == event.Noise, ch == event.NoisePSG3:
		max = 7
	default:
		return nil
	}
	if val < 0 || val > max {
		return echoerr.New(echoerr.MalformedInput, "note value %d out of range 0..%d for %s", val, max, ch)
	}
	return nil
}

func (c *compiler) compileRest(channels []event.Channel, body string, pos int) (int, error) {
	pos++
	explicit := hasLength(body, pos)
	var ticks int
	if explicit {
		var err error
		ticks, pos, err = parseLength(body, pos)
		if err != nil {
			return 0, err
		}
	}
	for _, ch := range channels {
		st := c.state(ch)
		c.ensureInitialized(ch, st)
		t := ticks
		if !explicit {
			t = st.defaultLen
		}
		c.out = append(c.out, event.Event{Timestamp: st.timestamp, Channel: ch, Kind: event.KindNoteOff, Instrument: -1, Volume: -1, Panning: -1})
		st.timestamp += int64(t)
	}
	return pos, nil
}

func (c *compiler) compileAdvance(channels []event.Channel, body string, pos int) (int, error) {
	pos++
	explicit := hasLength(body, pos)
	var ticks int
	if explicit {
		var err error
		ticks, pos, err = parseLength(body, pos)
		if err != nil {
			return 0, err
		}
	}
	for _, ch := range channels {
		st := c.state(ch)
		t := ticks
		if !explicit {
			t = st.defaultLen
		}
		st.timestamp += int64(t)
	}
	return pos, nil
}

func (c *compiler) compileOctave(channels []event.Channel, body string, pos int) (int, error) {
	pos++
	n, next, ok := readDigits(body, pos)
	if !ok || n < 0 || n > 7 {
		return 0, echoerr.New(echoerr.MalformedInput, "octave command requires a value 0..7")
	}
	for _, ch := range channels {
		c.state(ch).octave = n
	}
	return next, nil
}

func (c *compiler) compileTranspose(channels []event.Channel, body string, pos int, relative bool) (int, error) {
	pos++
	sign := 1
	if pos < len(body) && (body[pos] == '+' || body[pos] == '-') {
		if body[pos] == '-' {
			sign = -1
		}
		pos++
	} else if relative {
		return 0, echoerr.New(echoerr.MalformedInput, "relative transpose requires a + or - sign")
	}
	n, next, ok := readDigits(body, pos)
	if !ok {
		return 0, echoerr.New(echoerr.MalformedInput, "transpose command requires a numeric value")
	}
	for _, ch := range channels {
		st := c.state(ch)
		if relative {
			st.transpose += sign * n
		} else {
			st.transpose = sign * n
		}
	}
	return next, nil
}

func (c *compiler) compileDefaultLen(channels []event.Channel, body string, pos int) (int, error) {
	ticks, next, err := parseLength(body, pos+1)
	if err != nil {
		return 0, err
	}
	for _, ch := range channels {
		c.state(ch).defaultLen = ticks
	}
	return next, nil
}

func (c *compiler) compileVolume(channels []event.Channel, body string, pos int) (int, error) {
	pos++
	sign := 0
	if pos < len(body) && (body[pos] == '+' || body[pos] == '-') {
		if body[pos] == '-' {
			sign = -1
		} else {
			sign = 1
		}
		pos++
	}
	n, next, ok := readDigits(body, pos)
	if !ok {
		return 0, echoerr.New(echoerr.MalformedInput, "volume command requires a numeric value")
	}
	for _, ch := range channels {
		st := c.state(ch)
		c.ensureInitialized(ch, st)
		v := n
		switch sign {
		case 1:
			v = st.volume + n
		case -1:
			v = st.volume - n
		}
		st.volume = clamp(v, 0, 15)
		c.emitVolume(ch, st)
	}
	return next, nil
}

func (c *compiler) emitVolume(ch event.Channel, st *channelState) {
	c.out = append(c.out, event.Event{Timestamp: st.timestamp, Channel: ch, Kind: event.KindSetVolume, Value: st.volume, Instrument: -1, Volume: -1, Panning: -1})
}

// fmParamPan maps MML's 2-bit pan enum to the YM2612 0xB4 register's
// top bits (bit7 = L, bit6 = R), per the register the opcode table's
// FM-param range targets.
var fmParamPan = [4]byte{0x00, 0x40, 0x80, 0xC0}

func (c *compiler) compilePan(channels []event.Channel, body string, pos int) (int, error) {
	pos++
	n, next, ok := readDigits(body, pos)
	if !ok || n < 0 || n > 3 {
		return 0, echoerr.New(echoerr.MalformedInput, "pan command requires a value 0..3")
	}
	for _, ch := range channels {
		if !ch.IsFM() {
			continue // PSG silently ignores pan, per spec.md §4.2
		}
		st := c.state(ch)
		c.ensureInitialized(ch, st)
		phys := esf.FMChannelByte(ch.FMIndex())
		reg, bank := fmParamRegister(phys)
		c.out = append(c.out, event.Event{Timestamp: st.timestamp, Channel: ch, Kind: event.KindSetRegister, Reg: reg | bank<<8, RegValue: int(fmParamPan[n]), Instrument: -1, Volume: -1, Panning: -1})
	}
	return next, nil
}

func fmParamRegister(phys int) (reg, bank int) {
	bank = 0
	if phys&4 != 0 {
		bank = 1
	}
	return 0xB4 + (phys & 3), bank
}

func (c *compiler) compileAt(channels []event.Channel, body string, pos int) (int, error) {
	pos++
	if pos >= len(body) {
		return 0, echoerr.New(echoerr.MalformedInput, "'@' requires a following instrument/flags/lock form")
	}
	switch body[pos] {
	case '#':
		pos++
		clearFlag := false
		if pos < len(body) && (body[pos] == '+' || body[pos] == '-') {
			clearFlag = body[pos] == '-'
			pos++
		}
		f, next, ok := readDigits(body, pos)
		if !ok {
			return 0, echoerr.New(echoerr.MalformedInput, "'@#' requires a numeric flag mask")
		}
		for _, ch := range channels {
			st := c.state(ch)
			c.out = append(c.out, event.Event{Timestamp: st.timestamp, Channel: ch, Kind: event.KindSetFlags, Value: f, FlagsClear: clearFlag, Instrument: -1, Volume: -1, Panning: -1})
		}
		return next, nil
	case '$':
		pos++
		for _, ch := range channels {
			st := c.state(ch)
			c.out = append(c.out, event.Event{Timestamp: st.timestamp, Channel: ch, Kind: event.KindLock, Instrument: -1, Volume: -1, Panning: -1})
		}
		return pos, nil
	default:
		id, next, ok := readDigits(body, pos)
		if !ok {
			return 0, echoerr.New(echoerr.MalformedInput, "'@' requires a numeric instrument id")
		}
		for _, ch := range channels {
			st := c.state(ch)
			st.instrument = id
			c.ensureInitialized(ch, st)
			c.out = append(c.out, event.Event{Timestamp: st.timestamp, Channel: ch, Kind: event.KindSetInstrument, Value: id, Instrument: -1, Volume: -1, Panning: -1})
		}
		return next, nil
	}
}

func matchRegisterName(body string, pos int) (string, bool) {
	if pos+2 > len(body) {
		return "", false
	}
	name := body[pos : pos+2]
	if _, ok := registerBases[name]; ok {
		return name, true
	}
	return "", false
}

func (c *compiler) compileRegister(channels []event.Channel, body string, pos int) (int, error) {
	pos++
	if name, ok := matchRegisterName(body, pos); ok {
		pos += 2
		if pos >= len(body) || !isDigit(body[pos]) {
			return 0, echoerr.New(echoerr.MalformedInput, "named register form requires an operator 0..3")
		}
		op := int(body[pos] - '0')
		pos++
		if op < 0 || op > 3 {
			return 0, echoerr.New(echoerr.MalformedInput, "named register operator %d out of range 0..3", op)
		}
		if pos < len(body) && body[pos] == ',' {
			pos++
		}
		val, next, ok := readDigits(body, pos)
		if !ok {
			return 0, echoerr.New(echoerr.MalformedInput, "named register write requires a value")
		}
		for _, ch := range channels {
			if !ch.IsFM() {
				continue
			}
			st := c.state(ch)
			c.ensureInitialized(ch, st)
			phys := esf.FMChannelByte(ch.FMIndex())
			bank := 0
			if phys&4 != 0 {
				bank = 1
			}
			reg := registerBases[name] + op*4 + (phys & 3)
			c.out = append(c.out, event.Event{Timestamp: st.timestamp, Channel: ch, Kind: event.KindSetRegister, Reg: reg | bank<<8, RegValue: val, Instrument: -1, Volume: -1, Panning: -1})
		}
		return next, nil
	}

	reg, next, ok := readDigits(body, pos)
	if !ok {
		return 0, echoerr.New(echoerr.MalformedInput, "raw register write requires a register number")
	}
	pos = next
	if pos < len(body) && body[pos] == ',' {
		pos++
	}
	val, next, ok := readDigits(body, pos)
	if !ok {
		return 0, echoerr.New(echoerr.MalformedInput, "raw register write requires a value")
	}
	for _, ch := range channels {
		st := c.state(ch)
		c.ensureInitialized(ch, st)
		c.out = append(c.out, event.Event{Timestamp: st.timestamp, Channel: ch, Kind: event.KindSetRegister, Reg: reg, RegValue: val, Instrument: -1, Volume: -1, Panning: -1})
	}
	return next, nil
}

func (c *compiler) compileTempo(channels []event.Channel, body string, pos int) (int, error) {
	n, next, ok := readDigits(body, pos+1)
	if !ok || n < 1 {
		return 0, echoerr.New(echoerr.MalformedInput, "tempo command requires a value >= 1")
	}
	for _, ch := range channels {
		st := c.state(ch)
		c.out = append(c.out, event.Event{Timestamp: st.timestamp, Channel: ch, Kind: event.KindSetTempo, Value: n, Instrument: -1, Volume: -1, Panning: -1})
	}
	return next, nil
}

// emitNote emits the on/off pair for one note (or suppresses it under
// nullify_next, or emits a slide under slide_next), then advances ts.
func (c *compiler) emitNote(ch event.Channel, st *channelState, note int, ticks int) {
	ts := st.timestamp
	switch {
	case st.nullifyNext:
		st.nullifyNext = false
		st.slideNext = false
	case st.slideNext:
		st.slideNext = false
		c.out = append(c.out, event.Event{Timestamp: ts, Channel: ch, Kind: event.KindSlide, Note: note, Note16ths: note * 16, Instrument: -1, Volume: -1, Panning: -1})
	default:
		c.out = append(c.out, event.NewNoteOn(ts, ch, note))
		c.out = append(c.out, event.Event{Timestamp: ts + int64(ticks), Channel: ch, Kind: event.KindNoteOff, Instrument: -1, Volume: -1, Panning: -1})
	}
	st.timestamp += int64(ticks)
}
