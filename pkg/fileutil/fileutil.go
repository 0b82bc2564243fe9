// Package fileutil provides file system utility functions used by the
// echotools command-line converters: case-insensitive path lookup (Echo
// asset trees are DOS/Windows-originated and frequently mix case) and
// size-bounded whole-file reads.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FindFileCaseInsensitive resolves filename against dir's actual entries
// when an exact-case lookup fails. Instrument manifests and asset lists
// shipped with Mega Drive projects are often authored on DOS or early
// Windows tools and reference blobs with whatever case the author's
// filesystem happened to preserve, so a manifest line like "FM 3
// Lead.eif" has to resolve against a directory entry actually named
// "LEAD.EIF" on a case-sensitive host.
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading directory %s: %w", dir, err)
	}

	want := strings.ToLower(filename)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(entry.Name()) == want {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("no case-insensitive match for %q in %s", filename, dir)
}


