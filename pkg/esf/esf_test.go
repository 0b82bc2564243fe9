package esf

import (
	"testing"

	"github.com/zurustar/echotools/pkg/event"
)

func TestVolumeFMTableEndpoints(t *testing.T) {
	head := []byte{0x7F, 0x7B, 0x78, 0x74, 0x71}
	for i, want := range head {
		if VolumeFM[i] != want {
			t.Errorf("VolumeFM[%d] = %#x, want %#x", i, VolumeFM[i], want)
		}
	}
	tail := []byte{0x02, 0x02, 0x02, 0x01, 0x01, 0x00, 0x00}
	for i, want := range tail {
		idx := 128 - len(tail) + i
		if VolumeFM[idx] != want {
			t.Errorf("VolumeFM[%d] = %#x, want %#x", idx, VolumeFM[idx], want)
		}
	}
	if VolumeFM[127] != 0x00 {
		t.Errorf("VolumeFM[127] = %#x, want loudest-is-smallest: 0x00 (maximum MIDI volume -> no attenuation)", VolumeFM[127])
	}
}

func TestDelayEncodingRoundTrip(t *testing.T) {
	for _, n := range []int64{1, 5, 16, 17, 20, 256, 257, 1000} {
		e := NewEmitter()
		e.emitDelay(n)
		e.w.U8(byteEndB)
		data := e.w.Bytes()

		d := NewDecoder(data)
		var total int64
		for {
			instr, err := d.Next()
			if err != nil {
				t.Fatalf("n=%d: decode error: %v", n, err)
			}
			if instr.Op == OpEnd {
				break
			}
			if instr.Op == OpDelay {
				total += int64(instr.Ticks)
			}
		}
		if total != n {
			t.Errorf("delay(%d): decoded total = %d, want %d", n, total, n)
		}
	}
}

func TestDelay20MatchesScenarioForm(t *testing.T) {
	e := NewEmitter()
	e.emitDelay(20)
	got := e.w.Bytes()
	// S2: "DF FE 04" (16+4) or equivalently "FE 14".
	wantA := []byte{0xDF, 0xFE, 0x04}
	wantB := []byte{0xFE, 0x14}
	if !bytesEqual(got, wantA) && !bytesEqual(got, wantB) {
		t.Errorf("emitDelay(20) = % X, want %X or %X", got, wantA, wantB)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEmitElidesNoteOffBeforeNoteOn(t *testing.T) {
	list := event.List{
		{Timestamp: 0, Channel: event.FM1, Kind: event.KindSetInstrument, Value: 0},
		{Timestamp: 0, Channel: event.FM1, Kind: event.KindNoteOn, Note: 36},
		{Timestamp: 10, Channel: event.FM1, Kind: event.KindNoteOff},
		{Timestamp: 10, Channel: event.FM1, Kind: event.KindNoteOn, Note: 40},
	}
	list.Sort()
	data := NewEmitter().Emit(list)

	d := NewDecoder(data)
	var ops []Op
	for {
		instr, err := d.Next()
		if err != nil {
			t.Fatalf("decode error: %v", err)
		}
		ops = append(ops, instr.Op)
		if instr.Op == OpEnd {
			break
		}
	}
	for _, op := range ops {
		if op == OpFMNoteOff {
			t.Errorf("elided note-off was emitted anyway: ops = %v", ops)
		}
	}
}

func TestEmitTerminatesWithLoopFlag(t *testing.T) {
	list := event.List{
		{Timestamp: 0, Channel: event.Control, Kind: event.KindLoopPoint},
	}
	data := NewEmitter().Emit(list)
	if data[len(data)-1] != byteEndA {
		t.Errorf("looping stream did not end with 0xFC: got %#x", data[len(data)-1])
	}
}

func TestEmitNonLoopingTerminatesFF(t *testing.T) {
	data := NewEmitter().Emit(event.List{})
	if len(data) != 1 || data[0] != byteEndB {
		t.Errorf("empty stream = % X, want [FF]", data)
	}
}
