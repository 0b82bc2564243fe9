// Command esf2vgm replays an Echo ESF event stream against simulated
// YM2612/PSG chip state and assembles a byte-exact VGM 1.60 log with
// GD3 metadata (spec.md §4.3).
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zurustar/echotools/pkg/cliutil"
	"github.com/zurustar/echotools/pkg/echoerr"
	"github.com/zurustar/echotools/pkg/fileutil"
	"github.com/zurustar/echotools/pkg/instrument"
	"github.com/zurustar/echotools/pkg/logger"
	"github.com/zurustar/echotools/pkg/vgm"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs, common := cliutil.NewFlagSet("esf2vgm")
	instrList := fs.String("instruments", "", "path to an instrument list file mapping Echo instrument ids to EIF/envelope/PCM blobs")
	track := fs.String("gd3-track", "", "GD3 track name")
	game := fs.String("gd3-game", "", "GD3 game name")
	system := fs.String("gd3-system", "Sega Mega Drive", "GD3 system name")
	author := fs.String("gd3-author", "", "GD3 author/composer")
	date := fs.String("gd3-date", "", "GD3 release date")
	creator := fs.String("gd3-creator", "", "GD3 ripper/creator")
	notes := fs.String("gd3-notes", "", "GD3 notes")
	if err := cliutil.Parse(fs, args); err != nil {
		return cliutil.Fail("esf2vgm: %v", err)
	}
	if common.Help {
		printUsage()
		return cliutil.ExitOK
	}
	if common.Version {
		cliutil.PrintVersion("esf2vgm", version)
		return cliutil.ExitOK
	}
	if err := logger.InitLogger(common.LogLevel); err != nil {
		return cliutil.Fail("esf2vgm: %v", err)
	}

	positional := fs.Args()
	if len(positional) != 2 {
		printUsage()
		return cliutil.ExitError
	}
	inPath, outPath := positional[0], positional[1]

	esfData, err := fileutil.ReadBlob(inPath)
	if err != nil {
		return cliutil.Fail("esf2vgm: %v", err)
	}

	instruments := vgm.Instruments{FM: map[int][]byte{}, PSG: map[int][]byte{}, PCM: map[int][]byte{}}
	if *instrList != "" {
		if err := loadInstrumentList(*instrList, &instruments); err != nil {
			return cliutil.Fail("esf2vgm: %v", err)
		}
	}

	meta := vgm.Metadata{
		TrackNameEN: *track, TrackNameJP: *track,
		GameNameEN: *game, GameNameJP: *game,
		SystemNameEN: *system, SystemNameJP: *system,
		AuthorEN: *author, AuthorJP: *author,
		ReleaseDate: *date,
		Creator:     *creator,
		Notes:       *notes,
	}

	out, err := vgm.Assemble(esfData, instruments, meta)
	if err != nil {
		return cliutil.Fail("esf2vgm: %v", err)
	}
	if err := fileutil.WriteBlob(outPath, out); err != nil {
		return cliutil.Fail("esf2vgm: %v", err)
	}
	return cliutil.ExitOK
}

// loadInstrumentList reads a line-oriented instrument manifest of the
// form "<FM|PSG|PCM> <id> <path>" (blank lines and "#" comments
// skipped), loading each referenced blob into instruments.
func loadInstrumentList(path string, instruments *vgm.Instruments) error {
	f, err := os.Open(path)
	if err != nil {
		return echoerr.New(echoerr.IoOpen, "cannot open instrument list %s: %v", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return echoerr.New(echoerr.UserError, "%s:%d: expected '<FM|PSG|PCM> <id> <path>', got %q", path, lineNo, line)
		}
		kind, idStr, blobPath := strings.ToUpper(fields[0]), fields[1], fields[2]
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return echoerr.New(echoerr.UserError, "%s:%d: invalid instrument id %q", path, lineNo, idStr)
		}
		resolved := blobPath
		if _, statErr := os.Stat(resolved); statErr != nil {
			found, findErr := fileutil.FindFileCaseInsensitive(filepath.Dir(blobPath), filepath.Base(blobPath))
			if findErr != nil {
				return echoerr.New(echoerr.IoOpen, "%s:%d: cannot locate blob %q: %v", path, lineNo, blobPath, statErr)
			}
			resolved = found
		}
		data, err := fileutil.ReadBlob(resolved)
		if err != nil {
			return err
		}
		switch kind {
		case "FM":
			instruments.FM[id] = data
		case "PSG":
			instruments.PSG[id] = data
		case "PCM":
			// Manifest entries reference raw sample blobs, not
			// pre-terminated Echo waveforms; wrap each one in EWF
			// framing before handing it to the VGM assembler, which
			// expects PCM data with its 0xFF terminator attached.
			instruments.PCM[id] = instrument.EncodeEWF(data)
		default:
			return echoerr.New(echoerr.UserError, "%s:%d: unknown instrument kind %q", path, lineNo, kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return echoerr.New(echoerr.IoRead, "reading instrument list %s: %v", path, err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: esf2vgm [-l level] [-instruments list] [-gd3-* ...] <input.esf> <output.vgm>")
}
