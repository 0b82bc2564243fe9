package mml

import (
	"github.com/zurustar/echotools/pkg/echoerr"
	"github.com/zurustar/echotools/pkg/event"
)

// group identifies which family a channel letter belongs to; all
// letters selected on one line must share a group, per spec.md §4.2.
type group int

const (
	groupFM group = iota
	groupPSG
	groupPCM
	groupControl
)

func letterChannel(letter byte) (event.Channel, group, bool) {
	switch {
	case letter >= 'A' && letter <= 'F':
		return event.FM1 + event.Channel(letter-'A'), groupFM, true
	case letter == 'G':
		return event.PSG1, groupPSG, true
	case letter == 'H':
		return event.PSG2, groupPSG, true
	case letter == 'I':
		return event.PSG3, groupPSG, true
	case letter == 'J':
		return event.Noise, groupPSG, true
	case letter == 'K':
		return event.PCM, groupPCM, true
	case letter == 'Z':
		return event.Control, groupControl, true
	default:
		return event.ChannelNone, 0, false
	}
}

// splitChannelLine splits a channel-command line into its selected
// channels and the remaining command body. The prefix is a run of
// uppercase channel letters (no separating space) immediately followed
// by whitespace and the body.
func splitChannelLine(line string) ([]event.Channel, string, error) {
	i := 0
	var channels []event.Channel
	var lineGroup group
	for i < len(line) {
		c := line[i]
		if c == ' ' || c == '\t' {
			break
		}
		ch, g, ok := letterChannel(c)
		if !ok {
			return nil, "", echoerr.New(echoerr.MalformedInput, "unknown channel letter %q", c)
		}
		if len(channels) == 0 {
			lineGroup = g
		} else if g != lineGroup {
			return nil, "", echoerr.New(echoerr.MalformedInput, "channel selector %q mixes channel groups", line[:i+1])
		}
		channels = append(channels, ch)
		i++
	}
	if len(channels) == 0 {
		return nil, "", echoerr.New(echoerr.MalformedInput, "line has no channel selector")
	}
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return channels, line[i:], nil
}
