package instrument

import "github.com/zurustar/echotools/pkg/echoerr"

const (
	tfiSize = 42
	vgiSize = 43
)

// detuneTFIToRaw remaps DefleMask's TFI/VGI detune encoding (0..6,
// centered at 3 = no detune) to the YM2612's raw 3-bit sign+magnitude
// detune field; index 7 is unused in the source format and maps to
// "no detune".
var detuneTFIToRaw = [8]int{7, 6, 5, 0, 1, 2, 3, 0}

// detuneRawToTFI is the inverse of detuneTFIToRaw over TFI values
// 0..6; both raw zero-detune encodings (0 and 4) map to TFI 3.
var detuneRawToTFI = [8]int{3, 4, 5, 6, 3, 2, 1, 0}

// tfiOperatorFields is TFI/VGI's one-byte-per-field operator layout.
func tfiOperatorFields(o Operator) [10]byte {
	return [10]byte{
		byte(o.Mul),
		byte(detuneRawToTFI[o.Detune&0x07]),
		byte(o.TotalLevel),
		byte(o.RateScaling),
		byte(o.AttackRate),
		byte(o.DecayRate),
		byte(o.SustainRate),
		byte(o.ReleaseRate),
		byte(o.SustainLevel),
		byte(o.SSGEG),
	}
}

func operatorFromTFIFields(f [10]byte) Operator {
	return Operator{
		Mul:          int(f[0]),
		Detune:       detuneTFIToRaw[f[1]&0x07],
		TotalLevel:   int(f[2]),
		RateScaling:  int(f[3]),
		AttackRate:   int(f[4]),
		DecayRate:    int(f[5]),
		SustainRate:  int(f[6]),
		ReleaseRate:  int(f[7]),
		SustainLevel: int(f[8]),
		SSGEG:        int(f[9]),
	}
}

// EncodeTFI packs e into DefleMask's 42-byte one-byte-per-field form.
func (e EIF) EncodeTFI() []byte {
	out := make([]byte, 0, tfiSize)
	out = append(out, byte(e.Algorithm), byte(e.Feedback))
	for _, op := range e.Operators {
		fields := tfiOperatorFields(op)
		out = append(out, fields[:]...)
	}
	return out
}

// DecodeTFI unpacks a 42-byte TFI record.
func DecodeTFI(data []byte) (EIF, error) {
	if len(data) != tfiSize {
		return EIF{}, echoerr.New(echoerr.RangeViolation, "TFI record must be %d bytes, got %d", tfiSize, len(data))
	}
	var e EIF
	e.Algorithm = int(data[0])
	e.Feedback = int(data[1])
	pos := 2
	for op := 0; op < 4; op++ {
		var fields [10]byte
		copy(fields[:], data[pos:pos+10])
		e.Operators[op] = operatorFromTFIFields(fields)
		pos += 10
	}
	return e, nil
}

// DecodeVGI unpacks a 43-byte VGI record: TFI's layout with one extra
// LFO byte after the feedback field, which is dropped on import per
// spec.md §4.6.
func DecodeVGI(data []byte) (EIF, error) {
	if len(data) != vgiSize {
		return EIF{}, echoerr.New(echoerr.RangeViolation, "VGI record must be %d bytes, got %d", vgiSize, len(data))
	}
	var e EIF
	e.Algorithm = int(data[0])
	e.Feedback = int(data[1])
	// data[2] is the LFO byte; dropped on import.
	pos := 3
	for op := 0; op < 4; op++ {
		var fields [10]byte
		copy(fields[:], data[pos:pos+10])
		e.Operators[op] = operatorFromTFIFields(fields)
		pos += 10
	}
	return e, nil
}
