package esf

import (
	"github.com/zurustar/echotools/pkg/blob"
	"github.com/zurustar/echotools/pkg/echoerr"
)

// Instruction is one decoded ESF opcode. Which fields are meaningful
// depends on Op; see the comment on each Op constant's byte range in
// opcode.go for the mapping.
type Instruction struct {
	Op Op

	Channel int // logical index within the op's channel group
	Bank    int // 0 or 1, for FMParam/RegWrite
	Reg     int // register number, for RegWrite
	Value   int // attenuation / instrument id / noise type / flag mask / raw byte

	Semitone bool // pitch ops: true if Value is a direct note index, false if raw
	Raw      int  // pitch ops: the raw chip frequency when !Semitone

	Ticks int  // delay ops: number of 60 Hz ticks to advance
	Loop  bool // end op: true for 0xFC (looping), false for 0xFF
}

// Decoder walks an ESF byte stream, producing one Instruction per call
// to Next. It is a thin, stateless translation layer: semantic
// interpretation (register routing, envelope simulation, tick-to-
// sample conversion) belongs to the consumer (pkg/vgm).
type Decoder struct {
	r *blob.Reader
}

// NewDecoder wraps an ESF byte stream for sequential decoding.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{r: blob.NewReader(data)}
}

// Next decodes and returns the next instruction. io.EOF is never
// returned for a well-formed stream: the stream's own End instruction
// (Op == OpEnd) signals termination. Next must not be called again
// after an OpEnd has been returned.
func (d *Decoder) Next() (Instruction, error) {
	offset := d.r.Pos()
	b, err := d.r.U8()
	if err != nil {
		return Instruction{}, err
	}
	bi := int(b)

	switch {
	case inRange(bi, byteFMNoteOnLo, byteFMNoteOnHi) && bi != 0x03:
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: OpFMNoteOn, Channel: FMLogicalChannel(bi), Value: int(nn)}, nil

	case inRange(bi, bytePSGNoteOnLo, bytePSGNoteOnHi):
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: OpPSGNoteOn, Channel: bi - bytePSGNoteOnLo, Value: int(nn)}, nil

	case bi == byteNoiseKeyOn:
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: OpNoiseKeyOn, Value: int(nn)}, nil

	case bi == bytePCMKeyOn:
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: OpPCMKeyOn, Value: int(nn)}, nil

	case inRange(bi, byteFMNoteOffLo, byteFMNoteOffHi) && (bi&7) != 3 && (bi&7) != 7:
		return Instruction{Op: OpFMNoteOff, Channel: FMLogicalChannel(bi - byteFMNoteOffLo)}, nil

	case inRange(bi, bytePSGNoteOffLo, bytePSGNoteOffHi):
		return Instruction{Op: OpPSGNoteOff, Channel: bi - bytePSGNoteOffLo}, nil

	case bi == bytePCMStop:
		return Instruction{Op: OpPCMStop}, nil

	case inRange(bi, byteFMVolumeLo, byteFMVolumeHi) && (bi&7) != 3 && (bi&7) != 7:
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: OpFMVolume, Channel: FMLogicalChannel(bi - byteFMVolumeLo), Value: int(nn)}, nil

	case inRange(bi, bytePSGVolumeLo, bytePSGVolumeHi):
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: OpPSGVolume, Channel: bi - bytePSGVolumeLo, Value: int(nn)}, nil

	case inRange(bi, byteFMPitchLo, byteFMPitchHi) && (bi&7) != 3 && (bi&7) != 7:
		return d.decodeFMPitch(bi - byteFMPitchLo, offset)

	case inRange(bi, bytePSGPitchLo, bytePSGPitchHi):
		return d.decodePSGPitch(bi-bytePSGPitchLo, offset)

	case bi == byteNoisePitch:
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: OpNoisePitch, Value: int(nn)}, nil

	case inRange(bi, byteFMParamLo, byteFMParamHi):
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		chan3 := bi - byteFMParamLo
		return Instruction{Op: OpFMParam, Channel: chan3 & 3, Bank: (chan3 >> 2) & 1, Value: int(nn)}, nil

	case inRange(bi, byteLoadFMInstrLo, byteLoadFMInstrHi) && (bi&7) != 3 && (bi&7) != 7:
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: OpLoadFMInstrument, Channel: FMLogicalChannel(bi - byteLoadFMInstrLo), Value: int(nn)}, nil

	case inRange(bi, byteLoadPSGInstrLo, byteLoadPSGInstrHi):
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: OpLoadPSGInstrument, Channel: bi - byteLoadPSGInstrLo, Value: int(nn)}, nil

	case bi == byteRegWriteBank0 || bi == byteRegWriteBank1:
		rr, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		vv, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		bank := 0
		if bi == byteRegWriteBank1 {
			bank = 1
		}
		return Instruction{Op: OpRegWrite, Bank: bank, Reg: int(rr), Value: int(vv)}, nil

	case bi == byteFlagSet || bi == byteFlagClear:
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		op := OpFlagSet
		if bi == byteFlagClear {
			op = OpFlagClear
		}
		return Instruction{Op: op, Value: int(nn)}, nil

	case inRange(bi, byteDelayShortLo, byteDelayShortHi):
		return Instruction{Op: OpDelay, Ticks: (bi & 0x0F) + 1}, nil

	case bi == byteDelayLong:
		nn, err := d.r.U8()
		if err != nil {
			return Instruction{}, err
		}
		ticks := int(nn)
		if ticks == 0 {
			ticks = 256
		}
		return Instruction{Op: OpDelay, Ticks: ticks}, nil

	case inRange(bi, byteLockLo, byteLockHi):
		return Instruction{Op: OpLock, Channel: bi - byteLockLo}, nil

	case bi == byteLoopPoint:
		return Instruction{Op: OpLoopPoint}, nil

	case bi == byteEndA || bi == byteEndB:
		return Instruction{Op: OpEnd, Loop: bi == byteEndA}, nil

	default:
		return Instruction{}, echoerr.AtWithContext(echoerr.MalformedInput, offset, d.r.Bytes(),
			"unknown ESF opcode 0x%02X", bi)
	}
}

func (d *Decoder) decodeFMPitch(logicalChan, offset int) (Instruction, error) {
	nn, err := d.r.U8()
	if err != nil {
		return Instruction{}, err
	}
	if nn&0x80 != 0 {
		return Instruction{Op: OpFMPitch, Channel: logicalChan, Semitone: true, Value: int(nn & 0x7F)}, nil
	}
	ll, err := d.r.U8()
	if err != nil {
		return Instruction{}, err
	}
	raw := (int(nn)<<8 | int(ll)) & 0x7FF
	return Instruction{Op: OpFMPitch, Channel: logicalChan, Semitone: false, Raw: raw}, nil
}

func (d *Decoder) decodePSGPitch(logicalChan, offset int) (Instruction, error) {
	nn, err := d.r.U8()
	if err != nil {
		return Instruction{}, err
	}
	if nn&0x80 != 0 {
		return Instruction{Op: OpPSGPitch, Channel: logicalChan, Semitone: true, Value: int(nn & 0x7F)}, nil
	}
	ll, err := d.r.U8()
	if err != nil {
		return Instruction{}, err
	}
	raw := int(nn&0x0F) | (int(ll&0x3F) << 4)
	return Instruction{Op: OpPSGPitch, Channel: logicalChan, Semitone: false, Raw: raw}, nil
}
