package midi

import (
	"testing"

	"github.com/zurustar/echotools/pkg/echoerr"
	"github.com/zurustar/echotools/pkg/event"
)

func u32be(v int) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func chunk(tag string, payload []byte) []byte {
	out := append([]byte(tag), u32be(len(payload))...)
	return append(out, payload...)
}

func simpleSMF(ticksPerBeat int, trackPayload []byte) []byte {
	hdr := chunk("MThd", append([]byte{0x00, 0x00, 0x00, 0x01}, byte(ticksPerBeat>>8), byte(ticksPerBeat)))
	trk := chunk("MTrk", trackPayload)
	return append(hdr, trk...)
}

func TestReadSMFRejectsFormat2(t *testing.T) {
	data := append(chunk("MThd", []byte{0x00, 0x02, 0x00, 0x01, 0x00, 0x60}), chunk("MTrk", []byte{0x00, 0xFF, 0x2F, 0x00})...)
	_, _, err := ReadSMF(data)
	if !echoerr.Is(err, echoerr.Unsupported) {
		t.Fatalf("format 2: want Unsupported, got %v", err)
	}
}

func TestReadSMFRejectsBadFormat0TrackCount(t *testing.T) {
	data := append(chunk("MThd", []byte{0x00, 0x00, 0x00, 0x02, 0x00, 0x60}), chunk("MTrk", []byte{0x00, 0xFF, 0x2F, 0x00})...)
	_, _, err := ReadSMF(data)
	if !echoerr.Is(err, echoerr.MalformedInput) {
		t.Fatalf("format 0 with 2 tracks: want MalformedInput, got %v", err)
	}
}

func TestParseSimpleNoteOn(t *testing.T) {
	// delta 0, NoteOn ch1 note 60 vel 100; delta 10, NoteOff; end of track.
	track := []byte{
		0x00, 0x90, 60, 100,
		10, 0x80, 60, 0,
		0x00, 0xFF, 0x2F, 0x00,
	}
	data := simpleSMF(96, track)

	chmap := DefaultChannelMap()
	chmap[0] = event.FM1
	events, err := Parse(data, chmap, DefaultInstrumentMap())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sawNoteOn, sawNoteOff bool
	for _, ev := range events {
		if ev.Channel != event.FM1 {
			continue
		}
		if ev.Kind == event.KindNoteOn && ev.Note == 60 {
			sawNoteOn = true
		}
		if ev.Kind == event.KindNoteOff {
			sawNoteOff = true
		}
	}
	if !sawNoteOn || !sawNoteOff {
		t.Fatalf("missing expected note-on/off in %+v", events)
	}
}

func TestTempoDoublingHalvesTimestamps(t *testing.T) {
	track := func(tempoMicros int) []byte {
		return []byte{
			0x00, 0xFF, 0x51, 0x03, byte(tempoMicros >> 16), byte(tempoMicros >> 8), byte(tempoMicros),
			100, 0x90, 60, 100,
			0x00, 0xFF, 0x2F, 0x00,
		}
	}
	chmap := DefaultChannelMap()
	chmap[0] = event.FM1

	base, err := Parse(simpleSMF(96, track(500000)), chmap, DefaultInstrumentMap())
	if err != nil {
		t.Fatalf("Parse base: %v", err)
	}
	doubled, err := Parse(simpleSMF(96, track(250000)), chmap, DefaultInstrumentMap())
	if err != nil {
		t.Fatalf("Parse doubled tempo: %v", err)
	}

	baseTs := findNoteOnTimestamp(t, base)
	doubledTs := findNoteOnTimestamp(t, doubled)

	want := baseTs / 2
	diff := doubledTs - want
	if diff < -1 || diff > 1 {
		t.Errorf("doubling tempo: got %d ticks, want %d ±1 (base was %d)", doubledTs, want, baseTs)
	}
}

func findNoteOnTimestamp(t *testing.T, events event.List) int64 {
	t.Helper()
	for _, ev := range events {
		if ev.Kind == event.KindNoteOn {
			return ev.Timestamp
		}
	}
	t.Fatal("no NoteOn event found")
	return 0
}
