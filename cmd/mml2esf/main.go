// Command mml2esf compiles a tracker-style MML source file into an
// Echo ESF event stream (spec.md §4.2).
package main

import (
	"fmt"
	"os"

	"github.com/zurustar/echotools/pkg/cliutil"
	"github.com/zurustar/echotools/pkg/esf"
	"github.com/zurustar/echotools/pkg/fileutil"
	"github.com/zurustar/echotools/pkg/logger"
	"github.com/zurustar/echotools/pkg/mml"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs, common := cliutil.NewFlagSet("mml2esf")
	if err := cliutil.Parse(fs, args); err != nil {
		return cliutil.Fail("mml2esf: %v", err)
	}
	if common.Help {
		printUsage()
		return cliutil.ExitOK
	}
	if common.Version {
		cliutil.PrintVersion("mml2esf", version)
		return cliutil.ExitOK
	}
	if err := logger.InitLogger(common.LogLevel); err != nil {
		return cliutil.Fail("mml2esf: %v", err)
	}

	positional := fs.Args()
	if len(positional) != 2 {
		printUsage()
		return cliutil.ExitError
	}
	inPath, outPath := positional[0], positional[1]

	data, err := fileutil.ReadBlob(inPath)
	if err != nil {
		return cliutil.Fail("mml2esf: %v", err)
	}

	events, err := mml.Compile(string(data))
	if err != nil {
		return cliutil.Fail("mml2esf: %v", err)
	}

	out := esf.NewEmitter().Emit(events)
	if err := fileutil.WriteBlob(outPath, out); err != nil {
		return cliutil.Fail("mml2esf: %v", err)
	}
	return cliutil.ExitOK
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: mml2esf [-l level] <input.mml> <output.esf>")
}
