package midi

import "github.com/zurustar/echotools/pkg/event"

// ChannelMap is a total function from MIDI channel 1..16 to a logical
// Echo channel. MIDI channel 10 is fixed to PCM and cannot be
// overridden (spec.md §3).
type ChannelMap [16]event.Channel

// DefaultChannelMap returns every MIDI channel unmapped (NONE), except
// channel 10 which is always PCM.
func DefaultChannelMap() ChannelMap {
	var m ChannelMap
	for i := range m {
		m[i] = event.ChannelNone
	}
	m[9] = event.PCM
	return m
}

// Lookup returns the logical channel for 1-based MIDI channel ch.
func (m ChannelMap) Lookup(ch int) event.Channel {
	if ch == 10 {
		return event.PCM
	}
	if ch < 1 || ch > 16 {
		return event.ChannelNone
	}
	return m[ch-1]
}

// InstrumentKind selects which of the three instrument maps applies.
type InstrumentKind int

const (
	InstrumentFM InstrumentKind = iota
	InstrumentPSG
	InstrumentPCM
)

// InstrumentRecord maps one MIDI program (or, for PCM, one MIDI note)
// onto an Echo instrument id, transpose and gain (spec.md §3).
type InstrumentRecord struct {
	EchoID    int // -1 means "no mapping; drop the note"
	Transpose int // semitones
	Gain      int // percent
}

// InstrumentMap holds the 128-entry table for each instrument kind.
type InstrumentMap struct {
	FM  [128]InstrumentRecord
	PSG [128]InstrumentRecord
	PCM [128]InstrumentRecord
}

// DefaultInstrumentMap returns an identity mapping: program N maps to
// Echo instrument N, no transpose, 100% gain, for every kind.
func DefaultInstrumentMap() InstrumentMap {
	var m InstrumentMap
	for i := 0; i < 128; i++ {
		rec := InstrumentRecord{EchoID: i, Transpose: 0, Gain: 100}
		m.FM[i] = rec
		m.PSG[i] = rec
		m.PCM[i] = rec
	}
	return m
}

func (m InstrumentMap) lookup(kind InstrumentKind, program int) InstrumentRecord {
	if program < 0 || program > 127 {
		return InstrumentRecord{EchoID: -1}
	}
	switch kind {
	case InstrumentFM:
		return m.FM[program]
	case InstrumentPSG:
		return m.PSG[program]
	default:
		return m.PCM[program]
	}
}

// kindForChannel infers which instrument map a logical channel draws
// from.
func kindForChannel(ch event.Channel) InstrumentKind {
	switch {
	case ch.IsPSG(), ch == event.Noise, ch == event.NoisePSG3:
		return InstrumentPSG
	case ch == event.PCM:
		return InstrumentPCM
	default:
		return InstrumentFM
	}
}
