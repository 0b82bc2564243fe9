package instrument

import (
	"bytes"
	"testing"

	"github.com/zurustar/echotools/pkg/echoerr"
)

func sampleEIF() EIF {
	var e EIF
	e.Algorithm = 5
	e.Feedback = 3
	for i := range e.Operators {
		e.Operators[i] = Operator{
			Mul: i + 1, Detune: 2, TotalLevel: 40 + i,
			AttackRate: 20, RateScaling: 1, DecayRate: 10,
			SustainRate: 5, ReleaseRate: 7, SustainLevel: 8, SSGEG: 0,
		}
	}
	return e
}

func TestEIFEncodeDecodeRoundTrip(t *testing.T) {
	e := sampleEIF()
	got, err := DecodeEIF(e.Encode())
	if err != nil {
		t.Fatalf("DecodeEIF: %v", err)
	}
	if got != e {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, e)
	}
}

func TestDecodeEIFRejectsWrongSize(t *testing.T) {
	_, err := DecodeEIF(make([]byte, 10))
	if !echoerr.Is(err, echoerr.RangeViolation) {
		t.Fatalf("want RangeViolation, got %v", err)
	}
}

func TestTFIRoundTrip(t *testing.T) {
	e := sampleEIF()
	tfi := e.EncodeTFI()
	if len(tfi) != tfiSize {
		t.Fatalf("EncodeTFI size = %d, want %d", len(tfi), tfiSize)
	}
	got, err := DecodeTFI(tfi)
	if err != nil {
		t.Fatalf("DecodeTFI: %v", err)
	}
	if got != e {
		t.Errorf("TFI round trip mismatch: got %+v, want %+v", got, e)
	}
}

func TestDecodeVGIDropsLFOByte(t *testing.T) {
	e := sampleEIF()
	tfi := e.EncodeTFI()
	vgi := append([]byte{tfi[0], tfi[1], 0xAB}, tfi[2:]...)

	got, err := DecodeVGI(vgi)
	if err != nil {
		t.Fatalf("DecodeVGI: %v", err)
	}
	if got != e {
		t.Errorf("VGI import mismatch: got %+v, want %+v", got, e)
	}
}

func TestEncodeTFIProducesExpectedPrefix(t *testing.T) {
	e := sampleEIF()
	tfi := e.EncodeTFI()
	if !bytes.Equal(tfi[:2], []byte{5, 3}) {
		t.Errorf("TFI header = % X, want [05 03]", tfi[:2])
	}
}
