// Package romutil generates and fixes up the 256-byte Mega Drive ROM
// header (spec.md §1's "Mega Drive header byte layout" external
// collaborator) and recomputes the cartridge checksum the hardware's
// boot ROM validates.
//
// The header layout and checksum algorithm are fixed by the Mega
// Drive's TMSS boot ROM, not by Echo; this package follows the same
// field-by-field encoding/binary idiom pkg/blob uses elsewhere in this
// module rather than a struct-and-binary.Write approach, since most
// header fields are fixed-width ASCII rather than binary integers.
package romutil

import (
	"encoding/binary"

	"github.com/zurustar/echotools/pkg/echoerr"
)

// HeaderSize is the size in bytes of the Mega Drive ROM header block,
// located at offset 0x100 in the cartridge image.
const HeaderSize = 256

// HeaderOffset is the byte offset of the header within the ROM image.
const HeaderOffset = 0x100

// ChecksumOffset is the byte offset of the 16-bit big-endian checksum
// field within the header.
const ChecksumOffset = 0x8E

// Header holds the fields of a Mega Drive ROM header that tooling
// commonly needs to set; fields left as empty strings retain
// whatever default padding Fill applies.
type Header struct {
	ConsoleName    string // offset 0x00, 16 bytes, e.g. "SEGA MEGA DRIVE "
	Copyright      string // offset 0x10, 16 bytes, e.g. "(C)T-00 2024.JUL"
	DomesticTitle  string // offset 0x20, 48 bytes
	OverseasTitle  string // offset 0x50, 48 bytes
	SerialNumber   string // offset 0x80, 14 bytes
	ROMStartAddr   uint32 // offset 0xA0
	ROMEndAddr     uint32 // offset 0xA4
	RAMStartAddr   uint32 // offset 0xA8
	RAMEndAddr     uint32 // offset 0xAC
	Region         string // offset 0xF0, 3 bytes, e.g. "JUE"
	Revision       string // offset 0x8C, 2 digits, e.g. "00"
}

func putField(buf []byte, offset int, width int, s string) {
	b := []byte(s)
	if len(b) > width {
		b = b[:width]
	}
	copy(buf[offset:offset+width], b)
	for i := len(b); i < width; i++ {
		buf[offset+i] = ' '
	}
}

// Fill writes hdr's fields into a HeaderSize-byte block at
// HeaderOffset within rom, overwriting rom in place. rom must be at
// least HeaderOffset+HeaderSize bytes long.
func Fill(rom []byte, hdr Header) error {
	if len(rom) < HeaderOffset+HeaderSize {
		return echoerr.New(echoerr.RangeViolation, "ROM image too small for header: %d bytes, need at least %d", len(rom), HeaderOffset+HeaderSize)
	}

	h := rom[HeaderOffset : HeaderOffset+HeaderSize]
	for i := range h {
		h[i] = ' '
	}

	putField(h, 0x00, 16, hdr.ConsoleName)
	putField(h, 0x10, 16, hdr.Copyright)
	putField(h, 0x20, 48, hdr.DomesticTitle)
	putField(h, 0x50, 48, hdr.OverseasTitle)
	copy(h[0x80:0x80+2], "GM")
	putField(h, 0x82, 10, hdr.SerialNumber)
	revision := hdr.Revision
	if revision == "" {
		revision = "00"
	}
	putField(h, 0x8C, 2, revision)
	binary.BigEndian.PutUint32(h[0xA0:], hdr.ROMStartAddr)
	binary.BigEndian.PutUint32(h[0xA4:], hdr.ROMEndAddr)
	binary.BigEndian.PutUint32(h[0xA8:], hdr.RAMStartAddr)
	binary.BigEndian.PutUint32(h[0xAC:], hdr.RAMEndAddr)
	putField(h, 0xF0, 3, hdr.Region)

	FixChecksum(rom)
	return nil
}

// minSafeROMSize is the smallest size PadToSafeSize will ever round up
// to, matching romfix's MIN_ROM_SIZE floor.
const minSafeROMSize = 0x200

// PadToSafeSize rounds rom up to one of the cartridge sizes Mega Drive
// mappers expect (a power of two, or that power times 1.25 or 1.5),
// appending zero bytes as needed, and returns the padded image. Real
// cartridge ROMs can't be any size a linker happens to produce: the
// memory-mapping hardware on many carts only decodes sizes that fit
// this stepping, so a beta-sized ROM that isn't padded this way may
// not boot on real hardware despite running fine in an emulator.
// Grounded on `_examples/original_source/romfix/main.c`'s pad_rom,
// which performs this same 1x/1.25x/1.5x/2x search starting from
// MIN_ROM_SIZE.
func PadToSafeSize(rom []byte) []byte {
	oldSize := len(rom)
	x := minSafeROMSize
	newSize := x
	for {
		newSize = x
		if oldSize <= newSize {
			break
		}
		newSize = x + x>>2
		if oldSize <= newSize {
			break
		}
		newSize = x + x>>1
		if oldSize <= newSize {
			break
		}
		x <<= 1
	}

	if newSize <= oldSize {
		return rom
	}
	padded := make([]byte, newSize)
	copy(padded, rom)
	return padded
}

// FixChecksum recomputes the ROM checksum: a 16-bit sum of every
// big-endian word from offset 0x200 (just past the header) to the end
// of the image, written back at
// HeaderOffset+ChecksumOffset.
func FixChecksum(rom []byte) uint16 {
	const checksumStart = 0x200
	var sum uint16
	for i := checksumStart; i+1 < len(rom); i += 2 {
		sum += binary.BigEndian.Uint16(rom[i:])
	}
	if len(rom) >= HeaderOffset+ChecksumOffset+2 {
		binary.BigEndian.PutUint16(rom[HeaderOffset+ChecksumOffset:], sum)
	}
	return sum
}

// VerifyChecksum reports whether rom's stored checksum field matches
// its recomputed value.
func VerifyChecksum(rom []byte) (bool, error) {
	if len(rom) < HeaderOffset+ChecksumOffset+2 {
		return false, echoerr.New(echoerr.RangeViolation, "ROM image too small to contain a checksum field")
	}
	stored := binary.BigEndian.Uint16(rom[HeaderOffset+ChecksumOffset:])

	const checksumStart = 0x200
	var sum uint16
	for i := checksumStart; i+1 < len(rom); i += 2 {
		sum += binary.BigEndian.Uint16(rom[i:])
	}
	return sum == stored, nil
}
