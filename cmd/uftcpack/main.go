// Command uftcpack encodes a raw tile array into the UFTC 4x4
// dictionary stream, or decodes one back (spec.md §4.5).
package main

import (
	"fmt"
	"os"

	"github.com/zurustar/echotools/pkg/cliutil"
	"github.com/zurustar/echotools/pkg/echoerr"
	"github.com/zurustar/echotools/pkg/fileutil"
	"github.com/zurustar/echotools/pkg/logger"
	"github.com/zurustar/echotools/pkg/uftc"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs, common := cliutil.NewFlagSet("uftcpack")
	decode := fs.Bool("d", false, "decode a UFTC stream back into raw tiles")
	legacy := fs.Bool("legacy", false, "use the UFTC15 legacy loader/variant")
	if err := cliutil.Parse(fs, args); err != nil {
		return cliutil.Fail("uftcpack: %v", err)
	}
	if common.Help {
		printUsage()
		return cliutil.ExitOK
	}
	if common.Version {
		cliutil.PrintVersion("uftcpack", version)
		return cliutil.ExitOK
	}
	if err := logger.InitLogger(common.LogLevel); err != nil {
		return cliutil.Fail("uftcpack: %v", err)
	}

	positional := fs.Args()
	if len(positional) != 2 {
		printUsage()
		return cliutil.ExitError
	}
	inPath, outPath := positional[0], positional[1]

	data, err := fileutil.ReadBlob(inPath)
	if err != nil {
		return cliutil.Fail("uftcpack: %v", err)
	}

	var out []byte
	if *decode {
		out, err = decodeStream(data, *legacy)
	} else {
		out, err = encodeStream(data, *legacy)
	}
	if err != nil {
		return cliutil.Fail("uftcpack: %v", err)
	}

	if err := fileutil.WriteBlob(outPath, out); err != nil {
		return cliutil.Fail("uftcpack: %v", err)
	}
	return cliutil.ExitOK
}

func encodeStream(data []byte, legacy bool) ([]byte, error) {
	if len(data)%uftc.TileSize != 0 {
		return nil, echoerr.New(echoerr.RangeViolation, "input is %d bytes, not a multiple of the %d-byte tile size", len(data), uftc.TileSize)
	}
	tiles := make([]uftc.Tile, len(data)/uftc.TileSize)
	for i := range tiles {
		copy(tiles[i][:], data[i*uftc.TileSize:(i+1)*uftc.TileSize])
	}
	if legacy {
		return uftc.EncodeLegacy(tiles), nil
	}
	return uftc.Encode(tiles), nil
}

// decodeStream derives the tile count from the remaining bytes after
// the dictionary: each tile occupies 8 bytes (four u16 offsets).
func decodeStream(data []byte, legacy bool) ([]byte, error) {
	if len(data) < 2 {
		return nil, echoerr.New(echoerr.MalformedInput, "UFTC stream too short for a dictionary size header")
	}
	dictWords := int(data[0])<<8 | int(data[1])
	dictBytes := dictWords * 2
	if len(data) < 2+dictBytes {
		return nil, echoerr.New(echoerr.MalformedInput, "UFTC dictionary body truncated")
	}
	remaining := len(data) - 2 - dictBytes
	if remaining%8 != 0 {
		return nil, echoerr.New(echoerr.MalformedInput, "UFTC tile offset table is %d bytes, not a multiple of 8", remaining)
	}
	tileCount := remaining / 8

	var tiles []uftc.Tile
	var err error
	if legacy {
		tiles, err = uftc.DecodeLegacy(data, tileCount)
	} else {
		tiles, err = uftc.Decode(data, tileCount)
	}
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(tiles)*uftc.TileSize)
	for _, t := range tiles {
		out = append(out, t[:]...)
	}
	return out, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: uftcpack [-d] [-legacy] [-l level] <input> <output>")
}
