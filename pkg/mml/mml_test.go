package mml

import (
	"testing"

	"github.com/zurustar/echotools/pkg/event"
)

// TestCompileBasicScenario is spec.md §8 scenario S6: source
// "A l4 cdefgab" (the compiler's default length is a whole note, so l4
// is set explicitly) with the default o3 v15 yields
// NoteOn(36,38,40,41,43,45,47) spaced 32 ticks apart on FM1, preceded
// by SetVolume(15), SetInstrument(0) at tick 0.
func TestCompileBasicScenario(t *testing.T) {
	events, err := Compile("A l4 cdefgab\n")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var noteOns []event.Event
	for _, ev := range events {
		if ev.Channel != event.FM1 {
			continue
		}
		if ev.Kind == event.KindNoteOn {
			noteOns = append(noteOns, ev)
		}
	}

	wantNotes := []int{36, 38, 40, 41, 43, 45, 47}
	if len(noteOns) != len(wantNotes) {
		t.Fatalf("got %d NoteOn events, want %d: %+v", len(noteOns), len(wantNotes), noteOns)
	}
	for i, ev := range noteOns {
		if ev.Note != wantNotes[i] {
			t.Errorf("note %d: got %d, want %d", i, ev.Note, wantNotes[i])
		}
		wantTS := int64(i * 32)
		if ev.Timestamp != wantTS {
			t.Errorf("note %d: timestamp %d, want %d", i, ev.Timestamp, wantTS)
		}
	}

	if events[0].Channel != event.FM1 || events[0].Kind != event.KindSetVolume || events[0].Value != 15 || events[0].Timestamp != 0 {
		t.Errorf("first event = %+v, want SetVolume(15) at tick 0", events[0])
	}
	if events[1].Channel != event.FM1 || events[1].Kind != event.KindSetInstrument || events[1].Value != 0 || events[1].Timestamp != 0 {
		t.Errorf("second event = %+v, want SetInstrument(0) at tick 0", events[1])
	}
}

func TestCompileMacroExpansion(t *testing.T) {
	events, err := Compile("!X cde\nA !Xfga\n")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var notes []int
	for _, ev := range events {
		if ev.Kind == event.KindNoteOn {
			notes = append(notes, ev.Note)
		}
	}
	want := []int{36, 38, 40, 41, 43, 45}
	if len(notes) != len(want) {
		t.Fatalf("got %d notes, want %d: %v", len(notes), len(want), notes)
	}
	for i := range want {
		if notes[i] != want[i] {
			t.Errorf("note %d = %d, want %d", i, notes[i], want[i])
		}
	}
}

func TestCompileRestAdvancesWithoutNoteOn(t *testing.T) {
	events, err := Compile("A l4 cr\n")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var kinds []event.Kind
	for _, ev := range events {
		if ev.Channel == event.FM1 {
			kinds = append(kinds, ev.Kind)
		}
	}
	// SetVolume, SetInstrument, NoteOn(c), NoteOff(c's trailing off),
	// NoteOff(rest).
	want := []event.Kind{event.KindSetVolume, event.KindSetInstrument, event.KindNoteOn, event.KindNoteOff, event.KindNoteOff}
	if len(kinds) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(kinds), len(want), kinds)
	}
}

func TestCompileMixedGroupChannelsRejected(t *testing.T) {
	if _, err := Compile("AG c\n"); err == nil {
		t.Error("expected an error mixing FM and PSG channel letters on one line")
	}
}

func TestCompileUndefinedMacroRejected(t *testing.T) {
	if _, err := Compile("A !Zc\n"); err == nil {
		t.Error("expected an error for an undefined macro reference")
	}
}

func TestCompileInvalidLengthRejected(t *testing.T) {
	if _, err := Compile("A l3 c\n"); err == nil {
		t.Error("expected an error for a non-power-of-two length denominator")
	}
}

func TestCompileNullifyNextSuppressesNoteOnAndOff(t *testing.T) {
	events, err := Compile("A l4 &c d\n")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var notes []int
	for _, ev := range events {
		if ev.Kind == event.KindNoteOn {
			notes = append(notes, ev.Note)
		}
	}
	if len(notes) != 1 || notes[0] != 38 {
		t.Errorf("notes = %v, want only d (38); the nullified c must not emit a NoteOn", notes)
	}
}
