package vgm

import (
	"bytes"
	"testing"
)

func TestAssembleMinimalStreamHeaderScenario(t *testing.T) {
	// A one-tick empty ESF stream: just the non-looping end byte.
	esfData := []byte{0xFF}

	out, err := Assemble(esfData, Instruments{}, Metadata{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if !bytes.Equal(out[0x08:0x0C], []byte{0x60, 0x01, 0x00, 0x00}) {
		t.Errorf("version bytes = % X, want [60 01 00 00]", out[0x08:0x0C])
	}
	if !bytes.Equal(out[0x0C:0x10], []byte{0x79, 0xA6, 0x36, 0x00}) {
		t.Errorf("PSG clock bytes = % X, want [79 A6 36 00]", out[0x0C:0x10])
	}
	if !bytes.Equal(out[0x2C:0x30], []byte{0x76, 0x12, 0x75, 0x00}) {
		t.Errorf("YM clock bytes = % X, want [76 12 75 00]", out[0x2C:0x30])
	}

	wantEOF := uint32(len(out) - 4)
	gotEOF := uint32(out[0x04]) | uint32(out[0x05])<<8 | uint32(out[0x06])<<16 | uint32(out[0x07])<<24
	if gotEOF != wantEOF {
		t.Errorf("EOF offset = %d, want %d", gotEOF, wantEOF)
	}
}

func TestAssembleDelayAdvancesExpectedSamples(t *testing.T) {
	// Delay of 20 ticks (0xFE 0x14) followed by the non-looping end.
	esfData := []byte{0xFE, 0x14, 0xFF}

	out, err := Assemble(esfData, Instruments{}, Metadata{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	total := uint32(out[0x18]) | uint32(out[0x19])<<8 | uint32(out[0x1A])<<16 | uint32(out[0x1B])<<24
	if total != 20*735 {
		t.Errorf("total samples = %d, want %d", total, 20*735)
	}
}

func TestBuildGD3DuplicatesEnglishTrackAndGame(t *testing.T) {
	gd3 := BuildGD3(Metadata{
		TrackNameEN: "Title",
		GameNameEN:  "Game",
	})
	// "Gd3 " + version(4) + length(4) = 12-byte header before the payload.
	payload := gd3[12:]

	field := func(idx int) []byte {
		// Each field is UTF-16LE, NUL-terminated; walk idx fields in.
		pos := 0
		for i := 0; i < idx; i++ {
			for pos+1 < len(payload) && !(payload[pos] == 0 && payload[pos+1] == 0) {
				pos += 2
			}
			pos += 2
		}
		start := pos
		for pos+1 < len(payload) && !(payload[pos] == 0 && payload[pos+1] == 0) {
			pos += 2
		}
		return payload[start:pos]
	}

	if !bytes.Equal(field(0), field(1)) {
		t.Errorf("track EN/JP fields differ: %v vs %v", field(0), field(1))
	}
	if !bytes.Equal(field(2), field(3)) {
		t.Errorf("game EN/JP fields differ: %v vs %v", field(2), field(3))
	}
}
