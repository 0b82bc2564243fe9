package fileutil

import (
	"io"
	"os"

	"github.com/zurustar/echotools/pkg/echoerr"
)

// MaxBlobSize is the hard ceiling on any single input file this module will
// read into memory (spec.md §5, MAX_BLOBSIZE).
const MaxBlobSize = 4 * 1024 * 1024

// ReadBlob reads path fully into memory, failing with echoerr.FileTooLarge
// if its size exceeds MaxBlobSize rather than silently truncating it.
func ReadBlob(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, echoerr.New(echoerr.IoOpen, "cannot open %s: %v", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, echoerr.New(echoerr.IoOpen, "cannot stat %s: %v", path, err)
	}
	if info.Size() > MaxBlobSize {
		return nil, echoerr.New(echoerr.FileTooLarge, "%s is %d bytes, exceeds the %d byte limit", path, info.Size(), MaxBlobSize)
	}

	buf := make([]byte, info.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, echoerr.New(echoerr.IoRead, "reading %s: %v", path, err)
	}
	return buf, nil
}

// WriteBlob writes data to path, truncating/creating as needed.
func WriteBlob(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return echoerr.New(echoerr.IoWrite, "writing %s: %v", path, err)
	}
	return nil
}
