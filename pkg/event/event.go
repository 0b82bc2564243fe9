// Package event defines the shared timestamped event model used by every
// music pipeline in echotools (MIDI→ESF, MML→ESF, ESF→VGM). See spec.md
// §3.
package event

import "sort"

// Channel is the logical channel a music event targets.
type Channel int

const (
	ChannelNone Channel = iota
	FM1
	FM2
	FM3
	FM4
	FM5
	FM6
	PSG1
	PSG2
	PSG3
	Noise
	NoisePSG3 // extended mode: PSG4 borrows PSG3 as its frequency source
	PCM
	Control
)

// IsFM reports whether ch is one of the six FM channels.
func (ch Channel) IsFM() bool { return ch >= FM1 && ch <= FM6 }

// IsPSG reports whether ch is one of the three square-wave PSG channels.
func (ch Channel) IsPSG() bool { return ch >= PSG1 && ch <= PSG3 }

// FMIndex returns 0..5 for an FM channel; panics otherwise (callers must
// check IsFM first).
func (ch Channel) FMIndex() int {
	if !ch.IsFM() {
		panic("event: FMIndex on non-FM channel")
	}
	return int(ch - FM1)
}

// PSGIndex returns 0..2 for a square-wave PSG channel.
func (ch Channel) PSGIndex() int {
	if !ch.IsPSG() {
		panic("event: PSGIndex on non-PSG channel")
	}
	return int(ch - PSG1)
}

func (ch Channel) String() string {
	switch ch {
	case ChannelNone:
		return "NONE"
	case FM1, FM2, FM3, FM4, FM5, FM6:
		return "FM" + string(rune('1'+ch.FMIndex()))
	case PSG1, PSG2, PSG3:
		return "PSG" + string(rune('1'+ch.PSGIndex()))
	case Noise:
		return "NOISE"
	case NoisePSG3:
		return "NOISE_PSG3"
	case PCM:
		return "PCM"
	case Control:
		return "CONTROL"
	default:
		return "UNKNOWN"
	}
}

// Kind is the logical action an Event performs.
type Kind int

const (
	KindNop Kind = iota
	KindNoteOn
	KindNoteOff
	KindSlide
	KindSetVolume
	KindSetPan
	KindSetInstrument
	KindSetRawFreq
	KindSetRegister
	KindSetFlags
	KindLock
	KindLoopPoint
	KindSetTempo
)

// priority orders events that share a (Timestamp, Channel) so control
// kinds are emitted before note kinds, per spec.md §5's ordering guarantee.
func (k Kind) priority() int {
	switch k {
	case KindSetTempo, KindLoopPoint, KindSetInstrument, KindSetVolume, KindSetPan, KindSetFlags, KindLock, KindSetRegister:
		return 0
	case KindSlide, KindSetRawFreq:
		return 1
	case KindNoteOff:
		return 2
	case KindNoteOn:
		return 3
	default:
		return 4
	}
}

// Event is a single logical music action at an absolute tick.
type Event struct {
	Timestamp int64
	Channel   Channel
	Kind      Kind

	// Note is the semitone value for KindNoteOn/KindSlide.
	Note int
	// Note16ths is the 16ths-of-a-semitone value for KindSlide.
	Note16ths int
	// Value carries SetVolume's attenuation, SetPan's 0..127 pan position
	// (bucketed by the ESF emitter), SetFlags'
	// mask, SetTempo's ticks-per-whole, or SetInstrument's id.
	Value int
	// Reg/RegValue carry KindSetRegister's raw chip register write.
	Reg      int
	RegValue int
	// FlagsClear distinguishes SetFlags(set) from SetFlags(clear).
	FlagsClear bool

	// Instrument, Volume, Panning are MIDI-ingestion scratch fields:
	// -1 means "unchanged" (spec.md §3).
	Instrument int
	Volume     int
	Panning    int
}

// NewNoteOn builds a NoteOn event, defaulting the MIDI scratch fields to
// "unchanged".
func NewNoteOn(ts int64, ch Channel, note int) Event {
	return Event{Timestamp: ts, Channel: ch, Kind: KindNoteOn, Note: note, Instrument: -1, Volume: -1, Panning: -1}
}

// List is a total-ordered collection of Events. After Sort, the order is
// (Timestamp ascending, Channel ascending, Kind priority at equal
// timestamp); duplicates are preserved; NONE-channel events are parser
// scaffolding a downstream consumer must skip (spec.md §3).
type List []Event

// Sort orders the list per spec.md §3/§5. Grounded on spec.md §9's
// explicit preference for a vector-plus-sort over the reference's
// doubly-linked ordered-insert list (O(n log n) vs O(n^2) worst case).
// Stable so that duplicate (Timestamp, Channel, Kind) events preserve
// their original relative order, and so a LoopPoint's position among
// same-tick siblings survives the sort (spec.md §8).
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Timestamp != l[j].Timestamp {
			return l[i].Timestamp < l[j].Timestamp
		}
		if l[i].Channel != l[j].Channel {
			return l[i].Channel < l[j].Channel
		}
		return l[i].Kind.priority() < l[j].Kind.priority()
	})
}
