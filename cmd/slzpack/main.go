// Command slzpack compresses or decompresses the SLZ LZ77-family
// codec's byte stream (spec.md §4.4).
package main

import (
	"fmt"
	"os"

	"github.com/zurustar/echotools/pkg/cliutil"
	"github.com/zurustar/echotools/pkg/fileutil"
	"github.com/zurustar/echotools/pkg/logger"
	"github.com/zurustar/echotools/pkg/slz"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs, common := cliutil.NewFlagSet("slzpack")
	decompress := fs.Bool("d", false, "decompress instead of compress")
	width24 := fs.Bool("24", false, "use the 24-bit (SLZ24) size header instead of 16-bit")
	if err := cliutil.Parse(fs, args); err != nil {
		return cliutil.Fail("slzpack: %v", err)
	}
	if common.Help {
		printUsage()
		return cliutil.ExitOK
	}
	if common.Version {
		cliutil.PrintVersion("slzpack", version)
		return cliutil.ExitOK
	}
	if err := logger.InitLogger(common.LogLevel); err != nil {
		return cliutil.Fail("slzpack: %v", err)
	}

	positional := fs.Args()
	if len(positional) != 2 {
		printUsage()
		return cliutil.ExitError
	}
	inPath, outPath := positional[0], positional[1]

	width := slz.SLZ16
	if *width24 {
		width = slz.SLZ24
	}

	data, err := fileutil.ReadBlob(inPath)
	if err != nil {
		return cliutil.Fail("slzpack: %v", err)
	}

	var out []byte
	if *decompress {
		out, err = slz.Decompress(data, width)
		if err != nil {
			return cliutil.Fail("slzpack: %v", err)
		}
	} else {
		out = slz.Compress(data, width)
	}

	if err := fileutil.WriteBlob(outPath, out); err != nil {
		return cliutil.Fail("slzpack: %v", err)
	}
	return cliutil.ExitOK
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: slzpack [-d] [-24] [-l level] <input> <output>")
}
