// Package vgm assembles a VGM 1.60 chip-register log from an ESF
// event stream: it replays esf.Instructions against simulated
// YM2612/PSG channel state, builds a PCM data block, and frames the
// result with a VGM header and GD3 metadata (spec.md §4.3).
//
// Grounded on the teacher's pkg/vm/audio/wav.go, which builds a RIFF/
// WAV file by accumulating a header struct and a data buffer then
// writing both with a fixed byte layout; the same header-then-body
// shape applies here, generalized from one fixed WAV header to VGM's
// field table and a variable-length command stream.
package vgm

// samplesPerTick is Echo's 60 Hz tick rate expressed in VGM's 44100 Hz
// sample clock: 44100 / 60.
const samplesPerTick = 735

// command byte-sizes, per spec.md §3's Stream invariant.
const (
	sizeDelay    = 3
	sizeYmWrite  = 3
	sizePsgWrite = 2
	sizeInitPcm  = 10
	sizeStartPcm = 5
	sizeStopPcm  = 2
	sizeSetFreq  = 6
	sizeEnd      = 1
)

// maxWait is the largest sample count a single 0x61 wait command can
// encode; longer delays are split into chained waits.
const maxWait = 0xFFFF

// Stream accumulates VGM commands and tracks the running byte/sample
// totals a correct header needs, per spec.md §3.
type Stream struct {
	buf []byte

	totalSamples int64
	loopSet      bool
	loopByteOff  int
	loopSampleOff int64
}

// NewStream returns an empty command stream.
func NewStream() *Stream { return &Stream{} }

// Bytes returns the serialized command stream so far.
func (s *Stream) Bytes() []byte { return s.buf }

// Samples returns the running total sample count.
func (s *Stream) Samples() int64 { return s.totalSamples }

// Delay emits a wait for n samples, splitting it into chained 0x61
// commands if n exceeds a single command's 16-bit range.
func (s *Stream) Delay(n int64) {
	for n > maxWait {
		s.wait(maxWait)
		n -= maxWait
	}
	if n > 0 {
		s.wait(int(n))
	}
}

func (s *Stream) wait(n int) {
	s.buf = append(s.buf, 0x61, byte(n), byte(n>>8))
	s.totalSamples += int64(n)
}

// YmWrite emits a YM2612 register write on bank 0 (0x52) or bank 1 (0x53).
func (s *Stream) YmWrite(bank, reg, val int) {
	op := byte(0x52)
	if bank == 1 {
		op = 0x53
	}
	s.buf = append(s.buf, op, byte(reg), byte(val))
}

// PsgWrite emits a PSG latch/data byte (0x50).
func (s *Stream) PsgWrite(val int) {
	s.buf = append(s.buf, 0x50, byte(val))
}

// InitPcm emits the 0x90/0x91 stream set-up pair the VGM PCM-streaming
// convention uses to bind a data-block PCM sample to a playback stream.
func (s *Stream) InitPcm(streamID, blockID, chipType int) {
	s.buf = append(s.buf,
		0x90, byte(streamID), byte(chipType), 0x00, 0x2A,
		0x91, byte(streamID), byte(blockID), 0x00, 0x01,
	)
}

// SetPcmFreq emits a 0x92 set-stream-frequency command.
func (s *Stream) SetPcmFreq(streamID int, hz uint32) {
	s.buf = append(s.buf, 0x92, byte(streamID),
		byte(hz), byte(hz>>8), byte(hz>>16), byte(hz>>24))
}

// StartPcm emits a 0x95 start-stream-block command.
func (s *Stream) StartPcm(streamID, blockID int, flags byte) {
	s.buf = append(s.buf, 0x95, byte(streamID),
		byte(blockID), byte(blockID>>8), flags)
}

// StopPcm emits a 0x94 stop-stream command.
func (s *Stream) StopPcm(streamID int) {
	s.buf = append(s.buf, 0x94, byte(streamID))
}

// LoopPoint captures the current byte and sample offsets as the VGM
// loop point. Only the first call has any effect (spec.md §3: "a
// single optional loop point").
func (s *Stream) LoopPoint() {
	if s.loopSet {
		return
	}
	s.loopSet = true
	s.loopByteOff = len(s.buf)
	s.loopSampleOff = s.totalSamples
}

// End emits the 0x66 end-of-stream command.
func (s *Stream) End() {
	s.buf = append(s.buf, 0x66)
}
