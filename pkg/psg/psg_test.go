package psg

import "testing"

func identityLookup(note16ths int) uint16 { return uint16(note16ths) }

func TestStepSilentWhenNotPlaying(t *testing.T) {
	ch := NewChannel()
	r := ch.Step(identityLookup)
	if !r.Silent {
		t.Error("idle channel should be silent")
	}
}

func TestStepLoopsOnFF(t *testing.T) {
	ch := NewChannel()
	ch.Playing = true
	ch.Vol = 2
	ch.BasePitch = 0
	// FE marks loop start, a data byte (vol=5), FF jumps back to loop.
	ch.Instrument = []byte{0xFE, 0x05, 0xFF}

	r1 := ch.Step(identityLookup)
	if r1.Silent || r1.Vol != 7 {
		t.Fatalf("first step: %+v, want vol=7 (2+5)", r1)
	}
	// pos is now at the FF; next step jumps back to loop (pos=0, the FE)
	// and re-reads the same data byte.
	r2 := ch.Step(identityLookup)
	if r2.Silent || r2.Vol != 7 {
		t.Fatalf("looped step: %+v, want vol=7 again", r2)
	}
}

func TestStepSilentOnDoneMarker(t *testing.T) {
	ch := NewChannel()
	ch.Playing = true
	ch.Instrument = []byte{0xF5}
	r := ch.Step(identityLookup)
	if !r.Silent {
		t.Error("0xF0..0xFD marker should silence the channel")
	}
}

func TestStepUsesRawPitchWhenNotSemitoneMode(t *testing.T) {
	ch := NewChannel()
	ch.Playing = true
	ch.BasePitch = 0xFF
	ch.RawPitch = 321
	ch.Instrument = []byte{0x00}
	r := ch.Step(identityLookup)
	if r.Freq != 321 {
		t.Errorf("Freq = %d, want raw pitch 321", r.Freq)
	}
}
