// Package instrument converts between the three FM instrument
// formats Echo tooling exchanges: EIF (the packed 29-byte binary
// record Echo itself loads), TFI (DefleMask's 42-byte one-byte-per-
// field form), and VGI (TFI plus LFO fields, spec.md §4.6).
package instrument

import "github.com/zurustar/echotools/pkg/echoerr"

const eifSize = 29

// Operator holds one FM operator's unpacked parameters.
type Operator struct {
	Mul          int
	Detune       int // raw 3-bit YM encoding (0..7)
	TotalLevel   int // 0..127
	AttackRate   int // 0..31
	RateScaling  int // 0..3
	DecayRate    int // 0..31
	SustainRate  int // 0..31
	ReleaseRate  int // 0..15
	SustainLevel int // 0..15
	SSGEG        int // 0..15
}

// EIF is the unpacked form of Echo's 29-byte FM instrument record.
type EIF struct {
	Algorithm int // 0..7
	Feedback  int // 0..7
	Operators [4]Operator
}

// DecodeEIF unpacks a 29-byte EIF record, per the §4.6 bit layout.
func DecodeEIF(data []byte) (EIF, error) {
	if len(data) != eifSize {
		return EIF{}, echoerr.New(echoerr.RangeViolation, "EIF record must be %d bytes, got %d", eifSize, len(data))
	}
	var e EIF
	e.Algorithm = int(data[0]) & 0x07
	e.Feedback = (int(data[0]) >> 3) & 0x07

	for op := 0; op < 4; op++ {
		b := data[0x01+op]
		e.Operators[op].Mul = int(b) & 0x0F
		e.Operators[op].Detune = (int(b) >> 4) & 0x07

		e.Operators[op].TotalLevel = int(data[0x05+op]) & 0x7F

		ar := data[0x09+op]
		e.Operators[op].AttackRate = int(ar) & 0x1F
		e.Operators[op].RateScaling = (int(ar) >> 6) & 0x03

		e.Operators[op].DecayRate = int(data[0x0D+op]) & 0x1F
		e.Operators[op].SustainRate = int(data[0x11+op]) & 0x1F

		rl := data[0x15+op]
		e.Operators[op].ReleaseRate = int(rl) & 0x0F
		e.Operators[op].SustainLevel = (int(rl) >> 4) & 0x0F

		e.Operators[op].SSGEG = int(data[0x19+op]) & 0x0F
	}
	return e, nil
}

// Encode packs e into a 29-byte EIF record.
func (e EIF) Encode() []byte {
	out := make([]byte, eifSize)
	out[0] = byte(e.Algorithm&0x07) | byte(e.Feedback&0x07)<<3

	for op := 0; op < 4; op++ {
		o := e.Operators[op]
		out[0x01+op] = byte(o.Mul&0x0F) | byte(o.Detune&0x07)<<4
		out[0x05+op] = byte(o.TotalLevel & 0x7F)
		out[0x09+op] = byte(o.AttackRate&0x1F) | byte(o.RateScaling&0x03)<<6
		out[0x0D+op] = byte(o.DecayRate & 0x1F)
		out[0x11+op] = byte(o.SustainRate & 0x1F)
		out[0x15+op] = byte(o.ReleaseRate&0x0F) | byte(o.SustainLevel&0x0F)<<4
		out[0x19+op] = byte(o.SSGEG & 0x0F)
	}
	return out
}
