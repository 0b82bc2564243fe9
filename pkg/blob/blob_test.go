package blob

import (
	"bytes"
	"testing"

	"github.com/zurustar/echotools/pkg/echoerr"
)

func TestReaderBigAndLittleEndian(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x00, 0x03, 0x04, 0x05, 0x06})
	be16, err := r.BE16()
	if err != nil || be16 != 0x0102 {
		t.Fatalf("BE16() = %#x, %v, want 0x0102, nil", be16, err)
	}
	be24, err := r.BE24()
	if err != nil || be24 != 0x000304 {
		t.Fatalf("BE24() = %#x, %v, want 0x000304, nil", be24, err)
	}
	le16, err := r.LE16()
	if err != nil || le16 != 0x0605 {
		t.Fatalf("LE16() = %#x, %v, want 0x0605, nil", le16, err)
	}
}

func TestReaderUnderrun(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.BE16(); err == nil {
		t.Fatal("BE16() on short buffer: want error, got nil")
	} else if !echoerr.Is(err, echoerr.MalformedInput) {
		t.Errorf("error kind = %v, want MalformedInput", err)
	}
}

func TestVLQRoundTrip(t *testing.T) {
	cases := []uint32{0, 0x40, 0x7F, 0x80, 0x2000, 0x3FFF, 0x200000, 0x0FFFFFFF}
	for _, v := range cases {
		w := NewWriter()
		w.VLQ(v)
		got, err := NewReader(w.Bytes()).VLQ()
		if err != nil {
			t.Fatalf("VLQ(%d): decode error %v", v, err)
		}
		if got != v {
			t.Errorf("VLQ round trip: got %d, want %d (encoded %x)", got, v, w.Bytes())
		}
	}
}

func TestVLQKnownEncoding(t *testing.T) {
	// 0x3FFF canonically encodes as FF 7F (midi VLQ spec example).
	w := NewWriter()
	w.VLQ(0x3FFF)
	want := []byte{0xFF, 0x7F}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("VLQ(0x3FFF) = % X, want % X", w.Bytes(), want)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U8(0xAB)
	w.BE16(0x1234)
	w.LE32(0xDEADBEEF)

	r := NewReader(w.Bytes())
	if b, _ := r.U8(); b != 0xAB {
		t.Errorf("U8() = %#x, want 0xAB", b)
	}
	if v, _ := r.BE16(); v != 0x1234 {
		t.Errorf("BE16() = %#x, want 0x1234", v)
	}
	if v, _ := r.LE32(); v != 0xDEADBEEF {
		t.Errorf("LE32() = %#x, want 0xDEADBEEF", v)
	}
}
