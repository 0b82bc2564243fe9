package esf

import (
	"github.com/zurustar/echotools/pkg/blob"
	"github.com/zurustar/echotools/pkg/event"
)

// channelCache holds the last-emitted value of every cacheable field
// for one Echo channel, per §4.1.3. -1 means "nothing emitted yet".
type channelCache struct {
	instrument int
	volume     int
	pan        int
	note16ths  int
}

func newChannelCache() *channelCache {
	return &channelCache{instrument: -1, volume: -1, pan: -1, note16ths: -1}
}

// Emitter turns a sorted event.List into an ESF byte stream.
type Emitter struct {
	w       *blob.Writer
	caches  map[event.Channel]*channelCache
	tick    int64
	looping bool
}

// NewEmitter returns an Emitter ready to consume a sorted event list.
func NewEmitter() *Emitter {
	return &Emitter{w: blob.NewWriter(), caches: map[event.Channel]*channelCache{}}
}

func (e *Emitter) cache(ch event.Channel) *channelCache {
	c, ok := e.caches[ch]
	if !ok {
		c = newChannelCache()
		e.caches[ch] = c
	}
	return c
}

// Emit consumes the (already-sorted) event list and returns the ESF
// byte stream, per §4.1.3.
func (e *Emitter) Emit(events event.List) []byte {
	for i := 0; i < len(events); i++ {
		ev := events[i]
		if ev.Channel == event.ChannelNone || ev.Kind == event.KindNop || ev.Kind == event.KindSetTempo {
			continue
		}

		if ev.Timestamp > e.tick {
			e.emitDelay(ev.Timestamp - e.tick)
			e.tick = ev.Timestamp
		}

		switch ev.Kind {
		case event.KindNoteOff:
			if i+1 < len(events) {
				// Peeks at the immediate next event regardless of its
				// channel, not specifically the next event on this
				// channel. Preserved as-is: an equivalent implementation
				// could narrow this to same-channel lookahead, but doing
				// so is an observable behavior change.
				if events[i+1].Kind == event.KindNoteOn {
					continue
				}
			}
			e.emitNoteOff(ev.Channel)

		case event.KindNoteOn:
			e.emitNoteOn(ev.Channel, ev.Note)

		case event.KindSlide:
			c := e.cache(ev.Channel)
			if c.note16ths == ev.Note16ths {
				continue
			}
			c.note16ths = ev.Note16ths
			e.emitSlide(ev.Channel, ev.Note16ths)

		case event.KindSetRawFreq:
			e.emitRawFreq(ev.Channel, ev.Value)

		case event.KindSetVolume:
			c := e.cache(ev.Channel)
			if c.volume == ev.Value {
				continue
			}
			c.volume = ev.Value
			e.emitVolume(ev.Channel, ev.Value)

		case event.KindSetPan:
			bucket := quantizePan(ev.Value)
			c := e.cache(ev.Channel)
			if c.pan == bucket {
				continue
			}
			c.pan = bucket
			e.emitFMParam(ev.Channel, byte(bucket))

		case event.KindSetInstrument:
			c := e.cache(ev.Channel)
			if c.instrument == ev.Value {
				continue
			}
			c.instrument = ev.Value
			e.emitLoadInstrument(ev.Channel, ev.Value)

		case event.KindSetRegister:
			bank := (ev.Reg >> 8) & 1
			reg := ev.Reg & 0xFF
			op := byte(byteRegWriteBank0)
			if bank == 1 {
				op = byteRegWriteBank1
			}
			e.w.U8(op)
			e.w.U8(byte(reg))
			e.w.U8(byte(ev.RegValue))

		case event.KindSetFlags:
			if ev.FlagsClear {
				e.w.U8(byteFlagClear)
			} else {
				e.w.U8(byteFlagSet)
			}
			e.w.U8(byte(ev.Value))

		case event.KindLock:
			e.w.U8(byte(byteLockLo + lockIndex(ev.Channel)))

		case event.KindLoopPoint:
			e.looping = true
			e.w.U8(byteLoopPoint)
		}
	}

	if e.looping {
		e.w.U8(byteEndA)
	} else {
		e.w.U8(byteEndB)
	}
	return e.w.Bytes()
}

// quantizePan buckets a linear 0..127 pan value into one of three FM
// parameter codes, per §4.1.3.
func quantizePan(v int) int {
	switch {
	case v < 0x20:
		return 0x80
	case v >= 0x60:
		return 0x40
	default:
		return 0xC0
	}
}

func (e *Emitter) emitDelay(n int64) {
	for n > 256 {
		e.w.U8(byteDelayLong)
		e.w.U8(0) // 0 means 256
		n -= 256
	}
	if n >= 1 && n <= 16 {
		e.w.U8(byte(byteDelayShortLo + n - 1))
		return
	}
	e.w.U8(byteDelayLong)
	if n == 256 {
		e.w.U8(0)
	} else {
		e.w.U8(byte(n))
	}
}

func (e *Emitter) emitNoteOn(ch event.Channel, note int) {
	switch {
	case ch.IsFM():
		e.w.U8(byte(byteFMNoteOnLo) + fmNoteOnOffset(ch))
		e.w.U8(byte(note))
	case ch.IsPSG():
		e.w.U8(byte(bytePSGNoteOnLo + ch.PSGIndex()))
		e.w.U8(byte(note))
	case ch == event.Noise:
		e.w.U8(byteNoiseKeyOn)
		e.w.U8(byte(note))
	case ch == event.NoisePSG3:
		e.emitNoisePSG3KeyOn()
	case ch == event.PCM:
		e.w.U8(bytePCMKeyOn)
		e.w.U8(byte(note))
	}
}

// fmNoteOnOffset maps a logical FM channel to its offset within the
// FM note-on opcode range (the physical register-channel byte).
func fmNoteOnOffset(ch event.Channel) byte {
	return byte(FMChannelByte(ch.FMIndex()))
}

func (e *Emitter) emitNoteOff(ch event.Channel) {
	switch {
	case ch.IsFM():
		e.w.U8(byte(byteFMNoteOffLo) + fmNoteOnOffset(ch))
	case ch.IsPSG():
		e.w.U8(byte(bytePSGNoteOffLo + ch.PSGIndex()))
	case ch == event.Noise, ch == event.NoisePSG3:
		e.w.U8(byte(bytePSGNoteOffLo + 3))
	case ch == event.PCM:
		e.w.U8(bytePCMStop)
	}
}

func (e *Emitter) emitSlide(ch event.Channel, note16ths int) {
	switch {
	case ch.IsFM():
		e.w.U8(byte(byteFMPitchLo) + fmNoteOnOffset(ch))
		e.emitRaw11(FMFrequency(note16ths))
	case ch.IsPSG():
		e.w.U8(byte(bytePSGPitchLo + ch.PSGIndex()))
		e.emitRawPSG(PSGFrequency(note16ths))
	case ch == event.NoisePSG3:
		// redirected to PSG3's frequency register, per §4.1.3.
		e.w.U8(byte(bytePSGPitchLo + 2))
		e.emitRawPSG(PSGFrequency(note16ths))
	case ch == event.Noise:
		e.w.U8(byteNoisePitch)
		e.w.U8(byte(NoiseBucket(note16ths / (16 * 12))))
	}
}

func (e *Emitter) emitRawFreq(ch event.Channel, raw int) {
	switch {
	case ch.IsFM():
		e.w.U8(byte(byteFMPitchLo) + fmNoteOnOffset(ch))
		e.emitRaw11(uint16(raw))
	case ch.IsPSG():
		e.w.U8(byte(bytePSGPitchLo + ch.PSGIndex()))
		e.emitRawPSG(uint16(raw))
	}
}

func (e *Emitter) emitRaw11(raw uint16) {
	raw &= 0x7FF
	e.w.U8(byte(raw >> 8))
	e.w.U8(byte(raw))
}

// emitRawPSG writes the raw 10-bit PSG frequency low-nibble-first, a
// PSG chip quirk that is intentional and must be preserved as-is.
func (e *Emitter) emitRawPSG(raw uint16) {
	raw &= 0x3FF
	e.w.U8(byte(raw & 0x0F))
	e.w.U8(byte(raw >> 4))
}

func (e *Emitter) emitVolume(ch event.Channel, linear int) {
	switch {
	case ch.IsFM():
		e.w.U8(byte(byteFMVolumeLo) + fmNoteOnOffset(ch))
		e.w.U8(VolumeFM[clamp127(linear)])
	case ch.IsPSG(), ch == event.Noise, ch == event.NoisePSG3:
		idx := psgVolumeIndex(ch)
		e.w.U8(byte(bytePSGVolumeLo + idx))
		e.w.U8(VolumePSG[clamp127(linear)])
	}
}

func psgVolumeIndex(ch event.Channel) int {
	if ch.IsPSG() {
		return ch.PSGIndex()
	}
	return 3 // Noise / NoisePSG3 share the fourth PSG volume slot
}

func clamp127(v int) int {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}

func (e *Emitter) emitFMParam(ch event.Channel, value byte) {
	if !ch.IsFM() {
		return // pan is silently ignored on non-FM channels, per the MML grammar
	}
	e.w.U8(byte(byteFMParamLo) + fmNoteOnOffset(ch))
	e.w.U8(value)
}

func (e *Emitter) emitLoadInstrument(ch event.Channel, id int) {
	switch {
	case ch.IsFM():
		e.w.U8(byte(byteLoadFMInstrLo) + fmNoteOnOffset(ch))
		e.w.U8(byte(id))
	case ch.IsPSG(), ch == event.Noise, ch == event.NoisePSG3:
		e.w.U8(byte(byteLoadPSGInstrLo + psgVolumeIndex(ch)))
		e.w.U8(byte(id))
	}
}

func (e *Emitter) emitNoisePSG3KeyOn() {
	// Mute PSG3, copy PSG4's (Noise's) instrument onto it, then key on
	// PSG4 with parameter 0x07 telling it to borrow PSG3 as its
	// frequency source, per §4.1.3's extended PSG3+PSG4 mode.
	psg3 := event.Channel(event.PSG3)
	noise := event.Channel(event.Noise)

	e.w.U8(byte(bytePSGVolumeLo + psg3.PSGIndex()))
	e.w.U8(VolumePSG[0])

	noiseCache := e.cache(noise)
	e.w.U8(byte(byteLoadPSGInstrLo + psg3.PSGIndex()))
	e.w.U8(byte(maxInt(noiseCache.instrument, 0)))

	e.w.U8(byteNoiseKeyOn)
	e.w.U8(0x07)
}

func lockIndex(ch event.Channel) int {
	switch {
	case ch.IsFM():
		return FMChannelByte(ch.FMIndex())
	case ch.IsPSG():
		return 8 + ch.PSGIndex()
	case ch == event.Noise, ch == event.NoisePSG3:
		return 11
	case ch == event.PCM:
		return 12
	default:
		return 0
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
