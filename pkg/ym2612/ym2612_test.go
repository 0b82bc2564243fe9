package ym2612

import "testing"

func TestApplyVolumeAlgorithmRouting(t *testing.T) {
	cases := []struct {
		algo    int
		wantOps int
	}{
		{7, 4},
		{5, 3},
		{6, 3},
		{4, 2},
		{0, 1},
		{3, 1},
	}
	for _, tc := range cases {
		ch := NewChannel()
		ch.Algo = tc.algo
		writes := ch.ApplyVolume(0, 10)
		if len(writes) != tc.wantOps {
			t.Errorf("algo %d: got %d writes, want %d", tc.algo, len(writes), tc.wantOps)
		}
	}
}

func TestSaturateClampsToMax(t *testing.T) {
	if Saturate(200, 127) != 127 {
		t.Errorf("Saturate(200,127) = %d, want 127", Saturate(200, 127))
	}
	if Saturate(-5, 127) != 0 {
		t.Errorf("Saturate(-5,127) = %d, want 0", Saturate(-5, 127))
	}
}

func TestLoadInstrumentUpdatesAlgoAndTL(t *testing.T) {
	eif := make([]byte, 29)
	eif[0] = 0x07 // algo 7
	eif[0x05] = 10
	eif[0x06] = 20
	eif[0x07] = 30
	eif[0x08] = 40

	ch := NewChannel()
	ch.LoadInstrument(eif)
	if ch.Algo != 7 {
		t.Errorf("Algo = %d, want 7", ch.Algo)
	}
	want := [4]int{10, 20, 30, 40}
	if ch.TL != want {
		t.Errorf("TL = %v, want %v", ch.TL, want)
	}
}
