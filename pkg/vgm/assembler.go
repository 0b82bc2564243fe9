package vgm

import (
	"github.com/zurustar/echotools/pkg/echoerr"
	"github.com/zurustar/echotools/pkg/esf"
	"github.com/zurustar/echotools/pkg/psg"
	"github.com/zurustar/echotools/pkg/ym2612"
)

// Instruments bundles the instrument payloads an ESF stream can load
// by id: 29-byte EIF records for FM channels, envelope bytecode blobs
// for PSG channels, and raw PCM sample data (with its trailing 0xFF
// terminator still attached, per spec.md §4.3) for PCM key-ons.
type Instruments struct {
	FM  map[int][]byte
	PSG map[int][]byte
	PCM map[int][]byte
}

// pcmStreamID is the single VGM PCM stream Echo's one PCM channel uses.
const pcmStreamID = 0

// fmDefaultBlock is the YM2612 octave ("block") field used for every
// note: ESF pitch values already fold octave into an 11-bit fnum-like
// range (esf.FMFrequency), so a fixed block keeps the two-register
// frequency write well-formed without re-deriving an octave from it.
const fmDefaultBlock = 3

type pcmRegistry struct {
	blob    []byte
	blockOf map[int]int
}

func newPCMRegistry() *pcmRegistry { return &pcmRegistry{blockOf: map[int]int{}} }

func (r *pcmRegistry) register(instrumentID int, sample []byte) int {
	if id, ok := r.blockOf[instrumentID]; ok {
		return id
	}
	payload := sample
	if n := len(payload); n > 0 && payload[n-1] == 0xFF {
		payload = payload[:n-1]
	}
	blockID := len(r.blockOf)
	r.blockOf[instrumentID] = blockID

	size := uint32(len(payload))
	r.blob = append(r.blob, 0x67, 0x66, 0x00, byte(size), byte(size>>8), byte(size>>16), byte(size>>24))
	r.blob = append(r.blob, payload...)
	return blockID
}

// Assemble replays esfData against simulated chip state and returns a
// complete VGM 1.60 file with GD3 metadata (spec.md §4.3).
func Assemble(esfData []byte, instruments Instruments, meta Metadata) ([]byte, error) {
	dec := esf.NewDecoder(esfData)
	stream := NewStream()
	pcm := newPCMRegistry()

	var fmChannels [6]*ym2612.Channel
	for i := range fmChannels {
		fmChannels[i] = ym2612.NewChannel()
	}
	var psgChannels [4]*psg.Channel // 0..2 square, 3 noise
	for i := range psgChannels {
		psgChannels[i] = psg.NewChannel()
	}

loop:
	for {
		instr, err := dec.Next()
		if err != nil {
			return nil, err
		}

		switch instr.Op {
		case esf.OpDelay:
			stepPSGTick(stream, psgChannels)
			stream.Delay(int64(instr.Ticks) * samplesPerTick)

		case esf.OpFMNoteOn:
			phys := esf.FMChannelByte(instr.Channel)
			stream.YmWrite(fmBank(phys), 0x28, 0xF0|(phys&0x07))

		case esf.OpFMNoteOff:
			phys := esf.FMChannelByte(instr.Channel)
			stream.YmWrite(fmBank(phys), 0x28, phys&0x07)

		case esf.OpFMVolume:
			phys := esf.FMChannelByte(instr.Channel)
			for _, w := range fmChannels[instr.Channel].ApplyVolume(phys, instr.Value) {
				stream.YmWrite(w.Bank, w.Reg, w.Value)
			}

		case esf.OpFMPitch:
			phys := esf.FMChannelByte(instr.Channel)
			raw := uint16(instr.Raw)
			if instr.Semitone {
				raw = esf.FMFrequency(instr.Value * 16)
			}
			emitFMFrequency(stream, phys, raw)

		case esf.OpPSGNoteOn:
			psgChannels[instr.Channel].Playing = true
			psgChannels[instr.Channel].Pos = 0

		case esf.OpPSGNoteOff:
			psgChannels[instr.Channel].Playing = false

		case esf.OpNoiseKeyOn:
			psgChannels[3].Playing = true
			psgChannels[3].Pos = 0

		case esf.OpPSGVolume:
			psgChannels[instr.Channel].Vol = instr.Value

		case esf.OpPSGPitch:
			raw := instr.Raw
			base := 0xFF
			if instr.Semitone {
				raw = int(esf.PSGFrequency(instr.Value * 16))
				base = instr.Value * 16
			}
			psgChannels[instr.Channel].BasePitch = base
			psgChannels[instr.Channel].RawPitch = raw

		case esf.OpNoisePitch:
			stream.PsgWrite(0xE0 | (instr.Value & 0x07))

		case esf.OpFMParam:
			bank, reg := instr.Bank, 0xB4+instr.Channel
			stream.YmWrite(bank, reg, instr.Value)

		case esf.OpRegWrite:
			stream.YmWrite(instr.Bank, instr.Reg, instr.Value)

		case esf.OpLoadFMInstrument:
			if data, ok := instruments.FM[instr.Value]; ok {
				fmChannels[instr.Channel].LoadInstrument(data)
			}

		case esf.OpLoadPSGInstrument:
			if data, ok := instruments.PSG[instr.Value]; ok {
				psgChannels[instr.Channel].Instrument = data
				psgChannels[instr.Channel].Pos = 0
			}

		case esf.OpPCMKeyOn:
			sample, ok := instruments.PCM[instr.Value]
			if !ok {
				return nil, echoerr.New(echoerr.MalformedInput, "PCM key-on references unknown instrument %d", instr.Value)
			}
			blockID := pcm.register(instr.Value, sample)
			stream.InitPcm(pcmStreamID, blockID, 0x02)
			stream.StartPcm(pcmStreamID, blockID, 0x00)

		case esf.OpPCMStop:
			stream.StopPcm(pcmStreamID)

		case esf.OpLoopPoint:
			stream.LoopPoint()

		case esf.OpEnd:
			stream.End()
			break loop
		}
	}

	return frame(stream, pcm.blob, meta)
}

// fmBank returns the YM2612 register bank (0 or 1) a physical FM
// channel byte (0,1,2,4,5,6) belongs to.
func fmBank(phys int) int {
	if phys >= 4 {
		return 1
	}
	return 0
}

// emitFMFrequency writes the two-register fnum/block pair for phys,
// per the YM2612's 0xA4/0xA0 (bank-relative) frequency registers.
func emitFMFrequency(stream *Stream, phys int, raw uint16) {
	bank := 0
	ch := phys
	if phys >= 4 {
		bank = 1
		ch = phys - 4
	}
	hi := byte(fmDefaultBlock<<3) | byte((raw>>8)&0x07)
	lo := byte(raw)
	stream.YmWrite(bank, 0xA4+ch, int(hi))
	stream.YmWrite(bank, 0xA0+ch, int(lo))
}

// stepPSGTick advances every PSG channel's envelope bytecode by one
// step and emits the resulting volume/frequency register writes, per
// spec.md §4.3's per-tick PSG envelope program. Echo's own assembler
// evaluates the envelope once per ESF delay event rather than once
// per literal 60 Hz frame within a multi-tick delay; preserved here to
// match the single combined Delay(735*t) the spec's tick-simulation
// rule calls for.
func stepPSGTick(stream *Stream, channels [4]*psg.Channel) {
	for i, ch := range channels {
		res := ch.Step(esf.PSGFrequency)
		if res.Silent {
			stream.PsgWrite(0x90 | (i << 5) | 0x0F)
			continue
		}
		if i == 3 {
			stream.PsgWrite(0xE0 | (res.Freq & 0x07))
		} else {
			stream.PsgWrite(0x80 | (i << 5) | (res.Freq & 0x0F))
			stream.PsgWrite(res.Freq >> 4)
		}
		stream.PsgWrite(0x90 | (i << 5) | res.Vol)
	}
}
