// Command romheader generates or fixes up a Mega Drive ROM image's
// 256-byte header and cartridge checksum (spec.md §1).
package main

import (
	"fmt"
	"os"

	"github.com/zurustar/echotools/pkg/cliutil"
	"github.com/zurustar/echotools/pkg/fileutil"
	"github.com/zurustar/echotools/pkg/logger"
	"github.com/zurustar/echotools/pkg/romutil"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs, common := cliutil.NewFlagSet("romheader")
	fixupOnly := fs.Bool("fixup-only", false, "only recompute the checksum; leave header fields untouched")
	domestic := fs.String("title-domestic", "", "domestic (Japanese market) title, up to 48 chars")
	overseas := fs.String("title-overseas", "", "overseas title, up to 48 chars")
	serial := fs.String("serial", "", "serial number, up to 10 chars")
	region := fs.String("region", "JUE", "region code, up to 3 chars (e.g. JUE, U, E, J)")
	copyrightStr := fs.String("copyright", "", "copyright/date line, up to 16 chars")
	revision := fs.String("revision", "", "2-digit revision number, e.g. 00 or 01 (default: 00)")
	pad := fs.Bool("pad", false, "pad the ROM image up to the next safe cartridge size before fixing the header")
	if err := cliutil.Parse(fs, args); err != nil {
		return cliutil.Fail("romheader: %v", err)
	}
	if common.Help {
		printUsage()
		return cliutil.ExitOK
	}
	if common.Version {
		cliutil.PrintVersion("romheader", version)
		return cliutil.ExitOK
	}
	if err := logger.InitLogger(common.LogLevel); err != nil {
		return cliutil.Fail("romheader: %v", err)
	}

	positional := fs.Args()
	if len(positional) < 1 || len(positional) > 2 {
		printUsage()
		return cliutil.ExitError
	}
	inPath := positional[0]
	outPath := inPath
	if len(positional) == 2 {
		outPath = positional[1]
	}

	rom, err := fileutil.ReadBlob(inPath)
	if err != nil {
		return cliutil.Fail("romheader: %v", err)
	}

	if *pad {
		rom = romutil.PadToSafeSize(rom)
	}

	if *fixupOnly {
		romutil.FixChecksum(rom)
	} else {
		hdr := romutil.Header{
			ConsoleName:   "SEGA MEGA DRIVE ",
			Copyright:     *copyrightStr,
			DomesticTitle: *domestic,
			OverseasTitle: *overseas,
			SerialNumber:  *serial,
			Region:        *region,
			Revision:      *revision,
		}
		if err := romutil.Fill(rom, hdr); err != nil {
			return cliutil.Fail("romheader: %v", err)
		}
	}

	if err := fileutil.WriteBlob(outPath, rom); err != nil {
		return cliutil.Fail("romheader: %v", err)
	}
	return cliutil.ExitOK
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: romheader [-fixup-only] [-pad] [-title-domestic t] [-title-overseas t] [-serial s] [-region r] [-revision rr] <rom> [output]")
}
