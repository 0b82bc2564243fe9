package romutil

import "testing"

func TestFillAndChecksum(t *testing.T) {
	rom := make([]byte, HeaderOffset+HeaderSize+0x1000)
	for i := 0x200; i < len(rom); i++ {
		rom[i] = byte(i)
	}

	err := Fill(rom, Header{
		ConsoleName:   "SEGA MEGA DRIVE ",
		Copyright:     "(C)T-00 2026.JUL",
		DomesticTitle: "ECHOTOOLS TEST",
		SerialNumber:  "T-000000",
		Region:        "JUE",
	})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}

	ok, err := VerifyChecksum(rom)
	if err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}
	if !ok {
		t.Fatal("checksum does not verify after Fill")
	}

	rom[0x300] ^= 0xFF
	ok, err = VerifyChecksum(rom)
	if err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}
	if ok {
		t.Fatal("checksum should not verify after corrupting ROM body")
	}
}

func TestFillTooSmall(t *testing.T) {
	rom := make([]byte, 10)
	if err := Fill(rom, Header{}); err == nil {
		t.Fatal("expected error for undersized ROM image")
	}
}

func TestFillDefaultRevision(t *testing.T) {
	rom := make([]byte, HeaderOffset+HeaderSize+0x100)
	if err := Fill(rom, Header{}); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	got := string(rom[HeaderOffset+0x8C : HeaderOffset+0x8E])
	if got != "00" {
		t.Fatalf("default revision = %q, want \"00\"", got)
	}
}

func TestPadToSafeSize(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0x100, 0x200},
		{0x200, 0x200},
		{0x201, 0x280},
		{0x281, 0x300},
		{0x301, 0x400},
		{0x401, 0x500},
	}
	for _, tt := range tests {
		rom := make([]byte, tt.in)
		out := PadToSafeSize(rom)
		if len(out) != tt.want {
			t.Errorf("PadToSafeSize(%d bytes) = %d, want %d", tt.in, len(out), tt.want)
		}
	}
}
