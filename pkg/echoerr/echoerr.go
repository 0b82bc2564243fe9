// Package echoerr provides the structured error type shared by every
// echotools codec: a Kind drawn from the spec's error taxonomy, a byte
// offset into the input that was being read, and an optional hex-dump
// context window around that offset.
//
// Grounded on the teacher's pkg/compiler.CompileError, which carries a
// phase/message/line/column/source-context tuple for a text-based
// compiler; here Phase becomes Kind (a fixed enum rather than a free
// string) and the source-line context becomes a hex dump, since every
// format in this module is binary.
package echoerr

import "fmt"

// Kind is the error taxonomy from spec.md §7.
type Kind string

const (
	IoOpen         Kind = "IoOpen"
	IoRead         Kind = "IoRead"
	IoWrite        Kind = "IoWrite"
	FileTooLarge   Kind = "FileTooLarge"
	MalformedInput Kind = "MalformedInput"
	RangeViolation Kind = "RangeViolation"
	Unsupported    Kind = "Unsupported"
	OutOfMemory    Kind = "OutOfMemory"
	UserError      Kind = "UserError"
)

// Error is the structured error type returned by every fallible operation
// in this module.
type Error struct {
	Kind    Kind
	Message string
	// Offset is the byte offset into the input where the error was
	// detected, or -1 when not applicable (e.g. UserError).
	Offset int
	// Context is an optional hex-dump window around Offset.
	Context string
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s at offset %d: %s\n%s", e.Kind, e.Offset, e.Message, e.Context)
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an *Error with no byte offset (e.g. I/O or CLI-usage errors).
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: -1}
}

// At builds an *Error anchored to a byte offset in the input being parsed.
func At(kind Kind, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: offset}
}

// AtWithContext is At, plus a hex-dump window generated from data.
func AtWithContext(kind Kind, offset int, data []byte, format string, args ...any) *Error {
	e := At(kind, offset, format, args...)
	e.Context = HexContext(data, offset, 16)
	return e
}

// Is reports whether err is an *Error of the given Kind, so callers can
// branch on error classification the way spec.md §7's policy requires
// (e.g. treating FileTooLarge specially at the CLI layer).
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// HexContext formats a window of width bytes (or fewer, if data is
// shorter) starting at offset as a space-separated hex dump, used for the
// 16-byte diagnostic spec.md §4.3 requires for unknown ESF opcodes.
func HexContext(data []byte, offset, width int) string {
	if offset < 0 || offset >= len(data) {
		return ""
	}
	end := offset + width
	if end > len(data) {
		end = len(data)
	}
	window := data[offset:end]

	hex := make([]byte, 0, 3*len(window))
	for i, b := range window {
		if i > 0 {
			hex = append(hex, ' ')
		}
		hex = append(hex, fmt.Sprintf("%02X", b)...)
	}
	return string(hex)
}
