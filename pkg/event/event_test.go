package event

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSortOrdersByTimestampThenChannel(t *testing.T) {
	l := List{
		{Timestamp: 10, Channel: FM2, Kind: KindNoteOn},
		{Timestamp: 5, Channel: FM1, Kind: KindNoteOn},
		{Timestamp: 5, Channel: FM1, Kind: KindSetVolume},
	}
	l.Sort()

	if l[0].Kind != KindSetVolume || l[0].Timestamp != 5 {
		t.Errorf("l[0] = %+v, want the tick-5 SetVolume (control kinds precede note kinds)", l[0])
	}
	if l[1].Kind != KindNoteOn || l[1].Timestamp != 5 {
		t.Errorf("l[1] = %+v, want the tick-5 NoteOn", l[1])
	}
	if l[2].Timestamp != 10 {
		t.Errorf("l[2] = %+v, want the tick-10 event last", l[2])
	}
}

func TestSortPreservesLoopPointAmongEqualTicks(t *testing.T) {
	l := List{
		{Timestamp: 0, Channel: Control, Kind: KindLoopPoint},
		{Timestamp: 0, Channel: Control, Kind: KindSetTempo},
	}
	l.Sort()
	if l[0].Kind != KindLoopPoint {
		t.Errorf("stable sort reordered equal (timestamp, channel, priority) events: got %+v first", l[0])
	}
}

// TestEventOrderingProperty is the gopter-driven universal property from
// spec.md §8: after Sort, (Timestamp, Channel) is non-decreasing for any
// input list.
func TestEventOrderingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	eventGen := gen.Struct(nil, map[string]gopter.Gen{
		"Timestamp": gen.Int64Range(0, 1000),
		"Channel":   gen.IntRange(int(ChannelNone), int(Control)).Map(func(v int) Channel { return Channel(v) }),
		"Kind":      gen.IntRange(int(KindNop), int(KindSetTempo)).Map(func(v int) Kind { return Kind(v) }),
	})

	properties.Property("sorted event lists are non-decreasing in (timestamp, channel)", prop.ForAll(
		func(events []Event) bool {
			l := List(events)
			l.Sort()
			for i := 1; i < len(l); i++ {
				if l[i-1].Timestamp > l[i].Timestamp {
					return false
				}
				if l[i-1].Timestamp == l[i].Timestamp && l[i-1].Channel > l[i].Channel {
					return false
				}
			}
			return true
		},
		gen.SliceOf(eventGen),
	))

	properties.TestingRun(t)
}
