// Command bmp2tile converts a PNG bitmap into raw Mega Drive 8x8 4bpp
// tile data (spec.md §1's bitmap-to-tile conversion utility; named
// after the historical Echo-toolchain program it replaces, which
// targeted paletted BMP input).
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/zurustar/echotools/pkg/cliutil"
	"github.com/zurustar/echotools/pkg/fileutil"
	"github.com/zurustar/echotools/pkg/logger"
	"github.com/zurustar/echotools/pkg/tile"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs, common := cliutil.NewFlagSet("bmp2tile")
	if err := cliutil.Parse(fs, args); err != nil {
		return cliutil.Fail("bmp2tile: %v", err)
	}
	if common.Help {
		printUsage()
		return cliutil.ExitOK
	}
	if common.Version {
		cliutil.PrintVersion("bmp2tile", version)
		return cliutil.ExitOK
	}
	if err := logger.InitLogger(common.LogLevel); err != nil {
		return cliutil.Fail("bmp2tile: %v", err)
	}

	positional := fs.Args()
	if len(positional) != 2 {
		printUsage()
		return cliutil.ExitError
	}
	inPath, outPath := positional[0], positional[1]

	data, err := fileutil.ReadBlob(inPath)
	if err != nil {
		return cliutil.Fail("bmp2tile: %v", err)
	}

	img, err := tile.Decode(bytes.NewReader(data))
	if err != nil {
		return cliutil.Fail("bmp2tile: %v", err)
	}

	paletted := tile.Quantize(img)
	tiles, err := tile.Slice(paletted)
	if err != nil {
		return cliutil.Fail("bmp2tile: %v", err)
	}

	out := make([]byte, 0, len(tiles)*tile.Size*tile.Size/2)
	for _, t := range tiles {
		out = append(out, t[:]...)
	}

	if err := fileutil.WriteBlob(outPath, out); err != nil {
		return cliutil.Fail("bmp2tile: %v", err)
	}
	return cliutil.ExitOK
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: bmp2tile [-l level] <input.png> <output.bin>")
}
