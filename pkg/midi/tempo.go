package midi

import (
	"sort"

	"github.com/zurustar/echotools/pkg/blob"
	"github.com/zurustar/echotools/pkg/echoerr"
)

// tempoPoint is a tempo change at an absolute MIDI tick. All tracks in
// an SMF share one tick clock, so AbsTick is comparable across tracks
// without conversion.
type tempoPoint struct {
	AbsTick       int64
	MicrosPerBeat int64
}

const defaultMicrosPerBeat = 500000 // 120 BPM

// buildTempoMap scans every track for FF 51 03 meta events (ignoring
// everything else) and returns the resulting tempo changes in
// ascending tick order, with an implicit default-tempo point at tick 0
// if none is already present there.
func buildTempoMap(tracks [][]byte) ([]tempoPoint, error) {
	var points []tempoPoint
	for _, payload := range tracks {
		r := blob.NewReader(payload)
		var absTick int64
		var runningStatus byte
		for r.Len() > 0 {
			delta, err := r.VLQ()
			if err != nil {
				return nil, err
			}
			absTick += int64(delta)

			status, err := r.U8()
			if err != nil {
				return nil, err
			}
			if status < 0x80 {
				// data byte belonging to running status: skip the rest
				// of the event, counting this byte as its first data
				// byte.
				status = runningStatus
				if err := skipVoiceEventUsingFirstByte(r, status); err != nil {
					return nil, err
				}
				continue
			}
			if status < 0xF0 {
				runningStatus = status
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
				data, err := r.Take(int(length))
				if err != nil {
					return nil, err
				}
				if metaType == 0x51 && len(data) == 3 {
					micros := int64(data[0])<<16 | int64(data[1])<<8 | int64(data[2])
					if micros == 0 {
						return nil, echoerr.At(echoerr.MalformedInput, r.Pos(), "tempo meta event specifies 0 microseconds per beat")
					}
					points = append(points, tempoPoint{AbsTick: absTick, MicrosPerBeat: micros})
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
				if err := skipVoiceEvent(r, status); err != nil {
					return nil, err
				}
			}
		}
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].AbsTick < points[j].AbsTick })
	if len(points) == 0 || points[0].AbsTick != 0 {
		points = append([]tempoPoint{{AbsTick: 0, MicrosPerBeat: defaultMicrosPerBeat}}, points...)
	}
	return points, nil
}

// voiceEventArity gives the number of data bytes following a voice
// status byte's high nibble, per §4.1.1.
func voiceEventArity(statusHighNibble byte) int {
	switch statusHighNibble {
	case 0x8, 0x9, 0xA, 0xB, 0xE:
		return 2
	case 0xC, 0xD:
		return 1
	default:
		return 0
	}
}

func skipVoiceEvent(r *blob.Reader, status byte) error {
	arity := voiceEventArity(status >> 4)
	return r.Skip(arity)
}

// skipVoiceEventUsingFirstByte handles a running-status voice event
// whose first data byte has already been consumed as if it were the
// status byte; only one further data byte (at most) needs skipping.
func skipVoiceEventUsingFirstByte(r *blob.Reader, status byte) error {
	arity := voiceEventArity(status >> 4)
	if arity > 1 {
		return r.Skip(arity - 1)
	}
	return nil
}

// echoTickConverter maps an absolute MIDI tick to an Echo (60 Hz)
// tick, integrating piecewise over tempo changes. Implemented in
// floating point: the spec's 48.16 fixed-point scale factor cancels
// out algebraically, and the documented correctness bound (§8, MIDI
// tempo property) is ±1 tick.
type echoTickConverter struct {
	ppqn     int
	smpte    bool
	rateX100 int
	tpf      int

	segments []tempoSegment
}

type tempoSegment struct {
	startAbsTick int64
	micros       int64
	cumEcho      float64
}

func newEchoTickConverter(hdr Header, tempoMap []tempoPoint) *echoTickConverter {
	c := &echoTickConverter{ppqn: hdr.TicksPerBeat, smpte: hdr.SMPTE, rateX100: hdr.FrameRateX100, tpf: hdr.TicksPerFrame}
	if c.smpte {
		return c
	}
	cum := 0.0
	for i, p := range tempoMap {
		c.segments = append(c.segments, tempoSegment{startAbsTick: p.AbsTick, micros: p.MicrosPerBeat, cumEcho: cum})
		if i+1 < len(tempoMap) {
			deltaTicks := tempoMap[i+1].AbsTick - p.AbsTick
			cum += echoTicksForDelta(deltaTicks, p.MicrosPerBeat, c.ppqn)
		}
	}
	return c
}

func echoTicksForDelta(deltaTicks int64, micros int64, ppqn int) float64 {
	tempoBPM := 60000000.0 / float64(micros)
	return float64(deltaTicks) * 60.0 * 60.0 / tempoBPM / float64(ppqn)
}

// EchoTick returns the Echo tick (rounded) corresponding to absolute
// MIDI tick absTick.
func (c *echoTickConverter) EchoTick(absTick int64) int64 {
	if c.smpte {
		echo := float64(absTick) * 60.0 * 100.0 / float64(c.rateX100) / float64(c.tpf)
		return int64(echo + 0.5)
	}
	seg := c.segments[0]
	for _, s := range c.segments {
		if s.startAbsTick > absTick {
			break
		}
		seg = s
	}
	echo := seg.cumEcho + echoTicksForDelta(absTick-seg.startAbsTick, seg.micros, c.ppqn)
	return int64(echo + 0.5)
}
