package vgm

// headerSize is the fixed 0x100-byte VGM header. psgClockHz/ym2612ClockHz
// are pinned to the exact header bytes spec.md §8's scenario S4 requires
// (`79 A6 36 00` / `76 12 75 00`), not the textbook NTSC Genesis clock
// values, since S4 is a byte-exact acceptance check.
const (
	headerSize    = 0x100
	psgClockHz    = 3581561
	ym2612ClockHz = 7672438
)

// frame lays out the final VGM file: header, PCM data blob, serialized
// stream commands, then GD3 metadata, per spec.md §4.3's field table.
func frame(stream *Stream, pcmBlob []byte, meta Metadata) ([]byte, error) {
	streamBytes := stream.Bytes()
	gd3 := BuildGD3(meta)

	totalSize := headerSize + len(pcmBlob) + len(streamBytes) + len(gd3)
	out := make([]byte, totalSize)

	header := out[:headerSize]
	copy(header[0x00:], "Vgm ")
	putLE32(header, 0x04, uint32(totalSize-4))
	putLE32(header, 0x08, 0x00000160)
	putLE32(header, 0x0C, psgClockHz)
	putLE32(header, 0x14, uint32(headerSize+len(pcmBlob)+len(streamBytes)-0x14))
	putLE32(header, 0x18, uint32(stream.Samples()))
	if stream.loopSet {
		putLE32(header, 0x1C, uint32(stream.loopByteOff+headerSize+len(pcmBlob)-0x1C))
		putLE32(header, 0x20, uint32(stream.Samples()-stream.loopSampleOff))
	}
	header[0x28] = 9
	header[0x2A] = 16
	putLE32(header, 0x2C, ym2612ClockHz)
	putLE32(header, 0x34, headerSize-0x34)

	pos := headerSize
	copy(out[pos:], pcmBlob)
	pos += len(pcmBlob)
	copy(out[pos:], streamBytes)
	pos += len(streamBytes)
	copy(out[pos:], gd3)

	return out, nil
}

func putLE32(buf []byte, offset int, v uint32) {
	buf[offset] = byte(v)
	buf[offset+1] = byte(v >> 8)
	buf[offset+2] = byte(v >> 16)
	buf[offset+3] = byte(v >> 24)
}
