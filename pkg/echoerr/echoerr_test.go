package echoerr

import "testing"

func TestErrorFormatsOffset(t *testing.T) {
	err := At(MalformedInput, 42, "bad chunk tag")
	want := "MalformedInput at offset 42: bad chunk tag"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorFormatsWithoutOffset(t *testing.T) {
	err := New(UserError, "missing input path")
	want := "UserError: missing input path"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsChecksKind(t *testing.T) {
	err := New(FileTooLarge, "too big")
	if !Is(err, FileTooLarge) {
		t.Error("Is(err, FileTooLarge) = false, want true")
	}
	if Is(err, IoRead) {
		t.Error("Is(err, IoRead) = true, want false")
	}
	if Is(nil, IoRead) {
		t.Error("Is(nil, ...) = true, want false")
	}
}

func TestHexContext(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0xFF}
	got := HexContext(data, 1, 2)
	want := "01 02"
	if got != want {
		t.Errorf("HexContext() = %q, want %q", got, want)
	}

	if got := HexContext(data, 10, 4); got != "" {
		t.Errorf("HexContext() out of range = %q, want empty", got)
	}
}

func TestAtWithContextIncludesDump(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	err := AtWithContext(MalformedInput, 0, data, "unknown opcode")
	if err.Context != "DE AD BE EF" {
		t.Errorf("Context = %q, want %q", err.Context, "DE AD BE EF")
	}
}
