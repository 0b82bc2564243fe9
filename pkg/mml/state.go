package mml

import "github.com/zurustar/echotools/pkg/event"

// channelState tracks one channel's compiler state across the whole
// source, per spec.md §4.2's per-channel state table.
type channelState struct {
	timestamp int64

	octave      int
	transpose   int
	volume      int
	defaultLen  int
	instrument  int
	nullifyNext bool
	slideNext   bool

	initialized bool // has this channel emitted its tick-0 SetVolume/SetInstrument flush yet
}

func newChannelState() *channelState {
	return &channelState{
		octave:     3,
		volume:     15,
		defaultLen: wholeNoteTicks,
	}
}

// compiler holds every channel's state plus the macro table and output
// event list for one source file.
type compiler struct {
	channels map[event.Channel]*channelState
	macros   macroTable
	out      event.List
}

func newCompiler() *compiler {
	return &compiler{
		channels: map[event.Channel]*channelState{},
		macros:   macroTable{},
	}
}

func (c *compiler) state(ch event.Channel) *channelState {
	st, ok := c.channels[ch]
	if !ok {
		st = newChannelState()
		c.channels[ch] = st
	}
	return st
}

// ensureInitialized flushes ch's initial volume/instrument at its
// current timestamp, the first time it is touched, matching scenario
// S6's expected preamble (spec.md §8).
func (c *compiler) ensureInitialized(ch event.Channel, st *channelState) {
	if st.initialized {
		return
	}
	st.initialized = true
	c.out = append(c.out, event.Event{
		Timestamp: st.timestamp, Channel: ch, Kind: event.KindSetVolume,
		Value: st.volume, Instrument: -1, Volume: -1, Panning: -1,
	})
	c.out = append(c.out, event.Event{
		Timestamp: st.timestamp, Channel: ch, Kind: event.KindSetInstrument,
		Value: st.instrument, Instrument: -1, Volume: -1, Panning: -1,
	})
}
