// Command echoinst converts FM instrument records between Echo's
// native EIF format and the TFI/VGI formats DefleMask-family tools
// produce (spec.md §4.6).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zurustar/echotools/pkg/cliutil"
	"github.com/zurustar/echotools/pkg/echoerr"
	"github.com/zurustar/echotools/pkg/fileutil"
	"github.com/zurustar/echotools/pkg/instrument"
	"github.com/zurustar/echotools/pkg/logger"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs, common := cliutil.NewFlagSet("echoinst")
	from := fs.String("from", "", "input format: eif, tfi, or vgi (default: inferred from input extension)")
	to := fs.String("to", "", "output format: eif or tfi (default: inferred from output extension)")
	if err := cliutil.Parse(fs, args); err != nil {
		return cliutil.Fail("echoinst: %v", err)
	}
	if common.Help {
		printUsage()
		return cliutil.ExitOK
	}
	if common.Version {
		cliutil.PrintVersion("echoinst", version)
		return cliutil.ExitOK
	}
	if err := logger.InitLogger(common.LogLevel); err != nil {
		return cliutil.Fail("echoinst: %v", err)
	}

	positional := fs.Args()
	if len(positional) != 2 {
		printUsage()
		return cliutil.ExitError
	}
	inPath, outPath := positional[0], positional[1]

	fromFmt := *from
	if fromFmt == "" {
		fromFmt = formatFromExt(inPath)
	}
	toFmt := *to
	if toFmt == "" {
		toFmt = formatFromExt(outPath)
	}

	data, err := fileutil.ReadBlob(inPath)
	if err != nil {
		return cliutil.Fail("echoinst: %v", err)
	}

	eif, err := decode(fromFmt, data)
	if err != nil {
		return cliutil.Fail("echoinst: %v", err)
	}

	out, err := encode(toFmt, eif)
	if err != nil {
		return cliutil.Fail("echoinst: %v", err)
	}

	if err := fileutil.WriteBlob(outPath, out); err != nil {
		return cliutil.Fail("echoinst: %v", err)
	}
	return cliutil.ExitOK
}

func formatFromExt(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func decode(format string, data []byte) (instrument.EIF, error) {
	switch format {
	case "eif":
		return instrument.DecodeEIF(data)
	case "tfi":
		return instrument.DecodeTFI(data)
	case "vgi":
		return instrument.DecodeVGI(data)
	default:
		return instrument.EIF{}, echoerr.New(echoerr.UserError, "unknown or unspecified input format %q (expected eif, tfi, or vgi)", format)
	}
}

func encode(format string, eif instrument.EIF) ([]byte, error) {
	switch format {
	case "eif":
		return eif.Encode(), nil
	case "tfi":
		return eif.EncodeTFI(), nil
	default:
		return nil, echoerr.New(echoerr.UserError, "unknown or unspecified output format %q (expected eif or tfi)", format)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: echoinst [-from fmt] [-to fmt] [-l level] <input> <output>")
}
