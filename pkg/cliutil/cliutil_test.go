package cliutil

import "testing"

func TestReorderArgsInterleavesFlagsAndPositionals(t *testing.T) {
	fs, _ := NewFlagSet("test")
	got := ReorderArgs(fs, []string{"in.mid", "-l", "debug", "out.esf", "-v"})

	want := []string{"-l", "debug", "-v", "in.mid", "out.esf"}
	if len(got) != len(want) {
		t.Fatalf("ReorderArgs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReorderArgs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParsePopulatesCommonFlags(t *testing.T) {
	fs, c := NewFlagSet("test")
	if err := Parse(fs, []string{"a.mid", "--log-level", "debug", "b.esf"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", c.LogLevel)
	}
	if got := fs.Args(); len(got) != 2 || got[0] != "a.mid" || got[1] != "b.esf" {
		t.Errorf("positional args = %v, want [a.mid b.esf]", got)
	}
}

func TestParseHelpFlag(t *testing.T) {
	fs, c := NewFlagSet("test")
	if err := Parse(fs, []string{"-h"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !c.Help {
		t.Error("Help = false, want true")
	}
}
