package slz

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zurustar/echotools/pkg/echoerr"
)

func TestCompressDecompressRoundTripScenario(t *testing.T) {
	data := []byte("ABABABABA")
	packed := Compress(data, SLZ16)
	if !bytes.Equal(packed[:2], []byte{0x00, 0x09}) {
		t.Errorf("size header = % X, want [00 09]", packed[:2])
	}

	got, err := Decompress(packed, SLZ16)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip = %q, want %q", got, data)
	}
}

func TestDecompressRejectsOutOfRangeDistance(t *testing.T) {
	// size header declares 5 bytes; control byte 0x80 marks the first
	// token a back-reference with no prior output to reference.
	stream := []byte{0x00, 0x05, 0x80, 0x00, 0x00}
	_, err := Decompress(stream, SLZ16)
	if !echoerr.Is(err, echoerr.MalformedInput) {
		t.Fatalf("want MalformedInput, got %v", err)
	}
}

func TestDecompressStopsAtDeclaredSizeMidGroup(t *testing.T) {
	data := []byte{1, 2, 3}
	packed := Compress(data, SLZ16)
	got, err := Decompress(packed, SLZ16)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("got %v, want %v", got, data)
	}
}

func TestRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("Decompress(Compress(x)) == x", prop.ForAll(
		func(data []byte) bool {
			packed := Compress(data, SLZ16)
			got, err := Decompress(packed, SLZ16)
			return err == nil && bytes.Equal(got, data)
		},
		gen.SliceOf(gen.UInt8Range(0, 255)).Map(func(bs []uint8) []byte {
			out := make([]byte, len(bs))
			for i, b := range bs {
				out[i] = byte(b)
			}
			return out
		}),
	))

	properties.TestingRun(t)
}

func TestCompressIsDeterministic(t *testing.T) {
	data := []byte("the quick brown fox the quick brown fox")
	a := Compress(data, SLZ16)
	b := Compress(data, SLZ16)
	if !bytes.Equal(a, b) {
		t.Errorf("Compress is not deterministic")
	}
}
