package midi

import (
	"github.com/zurustar/echotools/pkg/blob"
	"github.com/zurustar/echotools/pkg/event"
)

const pitchFactor = 512 / 2 // default pitch-bend range: 2 semitones

// channelState is the per-MIDI-channel running state of §4.1.1.
type channelState struct {
	program       int
	channelVolume int // 0..127, MIDI default 100
	velocity      int
	pan           int
	lastNote16ths int
}

func newChannelState() *channelState {
	return &channelState{channelVolume: 100, velocity: 100, pan: 64}
}

// Parse decodes a full SMF byte blob into a sorted event.List.
func Parse(data []byte, chmap ChannelMap, instmap InstrumentMap) (event.List, error) {
	hdr, tracks, err := ReadSMF(data)
	if err != nil {
		return nil, err
	}
	tempoMap, err := buildTempoMap(tracks)
	if err != nil {
		return nil, err
	}
	conv := newEchoTickConverter(hdr, tempoMap)

	var events event.List
	for _, payload := range tracks {
		trackEvents, err := decodeTrack(payload, conv, chmap, instmap)
		if err != nil {
			return nil, err
		}
		events = append(events, trackEvents...)
	}
	events.Sort()
	return events, nil
}

func decodeTrack(payload []byte, conv *echoTickConverter, chmap ChannelMap, instmap InstrumentMap) (event.List, error) {
	r := blob.NewReader(payload)
	var absTick int64
	var runningStatus byte
	states := make([]*channelState, 16)
	for i := range states {
		states[i] = newChannelState()
	}

	var out event.List
	for r.Len() > 0 {
		delta, err := r.VLQ()
		if err != nil {
			return nil, err
		}
		absTick += int64(delta)
		ts := conv.EchoTick(absTick)

		first, err := r.U8()
		if err != nil {
			return nil, err
		}

		var status byte
		var firstDataByte byte
		haveFirstData := false
		if first < 0x80 {
			status = runningStatus
			firstDataByte = first
			haveFirstData = true
		} else {
			status = first
			if status < 0xF0 {
				runningStatus = status
			}
		}

		switch {
		case status == 0xFF:
			metaType, err := r.U8()
			if err != nil {
				return nil, err
			}
			length, err := r.VLQ()
			if err != nil {
				return nil, err
			}
			mdata, err := r.Take(int(length))
			if err != nil {
				return nil, err
			}
			if metaType == 0x54 {
				// SMPTE offset: informational only; the global
				// tempo/timing model is already fixed from the
				// header, so no further action is needed here.
				_ = mdata
			}

		case status == 0xF0 || status == 0xF7:
			length, err := r.VLQ()
			if err != nil {
				return nil, err
			}
			if err := r.Skip(int(length)); err != nil {
				return nil, err
			}

		default:
			midiChannel := int(status&0x0F) + 1
			kind := status >> 4
			st := states[midiChannel-1]
			logical := chmap.Lookup(midiChannel)

			var b1, b2 byte
			arity := voiceEventArity(kind)
			if haveFirstData {
				b1 = firstDataByte
				if arity > 1 {
					b2, err = r.U8()
					if err != nil {
						return nil, err
					}
				}
			} else {
				if arity >= 1 {
					b1, err = r.U8()
					if err != nil {
						return nil, err
					}
				}
				if arity >= 2 {
					b2, err = r.U8()
					if err != nil {
						return nil, err
					}
				}
			}

			switch kind {
			case 0x9, 0x8: // note on / note off
				note := int(b1)
				velocity := int(b2)
				if logical == event.ChannelNone {
					break
				}
				if kind == 0x8 || velocity == 0 {
					out = append(out, event.Event{Timestamp: ts, Channel: logical, Kind: event.KindNoteOff})
					break
				}
				st.velocity = velocity
				st.lastNote16ths = note * 16
				instKind := kindForChannel(logical)
				rec := instmap.lookup(instKind, st.program)
				if rec.EchoID < 0 {
					break
				}
				vol := composeVolume(st.channelVolume, velocity, rec.Gain)
				out = append(out,
					event.Event{Timestamp: ts, Channel: logical, Kind: event.KindSetInstrument, Value: rec.EchoID},
					event.Event{Timestamp: ts, Channel: logical, Kind: event.KindSetVolume, Value: vol},
					event.Event{Timestamp: ts, Channel: logical, Kind: event.KindNoteOn, Note: note + rec.Transpose},
				)

			case 0xB: // controller
				switch b1 {
				case 0x07:
					st.channelVolume = int(b2)
					if logical != event.ChannelNone {
						rec := instmap.lookup(kindForChannel(logical), st.program)
						vol := composeVolume(st.channelVolume, st.velocity, rec.Gain)
						out = append(out, event.Event{Timestamp: ts, Channel: logical, Kind: event.KindSetVolume, Value: vol})
					}
				case 0x10:
					st.pan = int(b2)
					if logical != event.ChannelNone {
						out = append(out, event.Event{Timestamp: ts, Channel: logical, Kind: event.KindSetPan, Value: st.pan})
					}
				}

			case 0xC: // program change
				st.program = int(b1)

			case 0xE: // pitch wheel
				wheel := int(b1) | int(b2)<<7
				note16ths := st.lastNote16ths + (wheel-0x2000)/pitchFactor
				if logical != event.ChannelNone {
					out = append(out, event.Event{Timestamp: ts, Channel: logical, Kind: event.KindSlide, Note16ths: note16ths})
				}
			}
		}
	}
	return out, nil
}

// composeVolume implements the §4.1.2 formula, clamped to 0..127.
func composeVolume(channelVolume, velocity, gainPercent int) int {
	vol := channelVolume * velocity / 127 * gainPercent / 100
	if vol < 0 {
		return 0
	}
	if vol > 127 {
		return 127
	}
	return vol
}
