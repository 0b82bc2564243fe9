// Package mml compiles tracker-style MML source text into the shared
// event.List model (spec.md §4.2), grounded on the teacher's
// pkg/compiler/lexer and pkg/compiler/preprocessor line-oriented
// scanning style.
package mml

import (
	"strings"

	"github.com/zurustar/echotools/pkg/echoerr"
	"github.com/zurustar/echotools/pkg/event"
)

// Compile parses source and returns its fully-sorted event list, per
// spec.md §4.2. Timestamps on the same channel never decrease within
// the source's processing order, so the final Sort only needs to
// reorder across channels and kinds.
func Compile(source string) (event.List, error) {
	c := newCompiler()
	lines := strings.Split(source, "\n")
	for lineNo, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == ';' || trimmed[0] == '#' {
			continue
		}

		if trimmed[0] == '!' {
			if len(trimmed) < 2 {
				return nil, echoerr.New(echoerr.MalformedInput, "line %d: macro definition missing a name", lineNo+1)
			}
			name := rune(trimmed[1])
			if !isMacroLetter(name) {
				return nil, echoerr.New(echoerr.MalformedInput, "line %d: invalid macro name %q", lineNo+1, name)
			}
			body := strings.TrimSpace(trimmed[2:])
			c.macros.define(name, body)
			continue
		}

		expanded, err := c.macros.expand(trimmed)
		if err != nil {
			return nil, echoerr.New(echoerr.MalformedInput, "line %d: %v", lineNo+1, err)
		}

		channels, body, err := splitChannelLine(expanded)
		if err != nil {
			return nil, echoerr.New(echoerr.MalformedInput, "line %d: %v", lineNo+1, err)
		}
		if err := c.compileLine(channels, body); err != nil {
			return nil, echoerr.New(echoerr.MalformedInput, "line %d: %v", lineNo+1, err)
		}
	}

	c.out.Sort()
	return c.out, nil
}
