// Command midi2esf transcodes a Standard MIDI File into an Echo ESF
// event stream (spec.md §4.1).
package main

import (
	"fmt"
	"os"

	"github.com/zurustar/echotools/pkg/cliutil"
	"github.com/zurustar/echotools/pkg/esf"
	"github.com/zurustar/echotools/pkg/fileutil"
	"github.com/zurustar/echotools/pkg/logger"
	"github.com/zurustar/echotools/pkg/midi"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs, common := cliutil.NewFlagSet("midi2esf")
	if err := cliutil.Parse(fs, args); err != nil {
		return cliutil.Fail("midi2esf: %v", err)
	}
	if common.Help {
		printUsage()
		return cliutil.ExitOK
	}
	if common.Version {
		cliutil.PrintVersion("midi2esf", version)
		return cliutil.ExitOK
	}
	if err := logger.InitLogger(common.LogLevel); err != nil {
		return cliutil.Fail("midi2esf: %v", err)
	}

	positional := fs.Args()
	if len(positional) != 2 {
		printUsage()
		return cliutil.ExitError
	}
	inPath, outPath := positional[0], positional[1]

	data, err := fileutil.ReadBlob(inPath)
	if err != nil {
		return cliutil.Fail("midi2esf: %v", err)
	}

	chmap := midi.DefaultChannelMap()
	instmap := midi.DefaultInstrumentMap()

	events, err := midi.Parse(data, chmap, instmap)
	if err != nil {
		return cliutil.Fail("midi2esf: %v", err)
	}
	events.Sort()

	out := esf.NewEmitter().Emit(events)
	if err := fileutil.WriteBlob(outPath, out); err != nil {
		return cliutil.Fail("midi2esf: %v", err)
	}
	return cliutil.ExitOK
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: midi2esf [-l level] <input.mid> <output.esf>")
}
