package instrument

// EncodeEWF wraps a raw 8-bit PCM sample blob in Echo's Waveform
// Format: 0xFF marks the end of a waveform to the driver's PCM player,
// so any sample byte that happens to already be 0xFF is folded down to
// 0xFE before the real terminator is appended. Grounded on
// `_examples/original_source/pcm2ewf/tool/ewf.c`'s write_ewf, which
// performs the same filter-then-terminate pass.
func EncodeEWF(pcm []byte) []byte {
	out := make([]byte, len(pcm)+1)
	for i, b := range pcm {
		if b == 0xFF {
			b = 0xFE
		}
		out[i] = b
	}
	out[len(pcm)] = 0xFF
	return out
}

// DecodeEWF strips an EWF blob's trailing 0xFF terminator, returning
// the sample bytes that preceded it. The 0xFE/0xFF folding EncodeEWF
// performs is one-way: a decoded sample that reads 0xFE may have been
// an original 0xFF, matching the real format's own lossy round-trip.
func DecodeEWF(data []byte) []byte {
	for i, b := range data {
		if b == 0xFF {
			return data[:i]
		}
	}
	return data
}
