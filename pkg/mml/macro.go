package mml

import "github.com/zurustar/echotools/pkg/echoerr"

// maxMacroExpansions bounds recursive !X expansion so a macro that
// references itself (directly or through a cycle) fails as a parse
// error instead of looping forever.
const maxMacroExpansions = 64

// macroTable holds the 52 !A..!Z / !a..!z macro slots. Redefinition
// replaces the stored body, per spec.md §4.2.
type macroTable map[rune]string

func (t macroTable) define(name rune, body string) { t[name] = body }

// expand replaces every !X reference in line with its stored body,
// repeating until no reference remains (a macro body may itself
// reference other macros).
func (t macroTable) expand(line string) (string, error) {
	for pass := 0; pass < maxMacroExpansions; pass++ {
		out, changed, err := t.expandOnce(line)
		if err != nil {
			return "", err
		}
		if !changed {
			return out, nil
		}
		line = out
	}
	return "", echoerr.New(echoerr.MalformedInput, "macro expansion did not terminate (possible cycle)")
}

func (t macroTable) expandOnce(line string) (string, bool, error) {
	var out []byte
	changed := false
	for i := 0; i < len(line); i++ {
		if line[i] != '!' {
			out = append(out, line[i])
			continue
		}
		if i+1 >= len(line) {
			return "", false, echoerr.New(echoerr.MalformedInput, "macro reference at end of line has no name")
		}
		name := rune(line[i+1])
		if !isMacroLetter(name) {
			return "", false, echoerr.New(echoerr.MalformedInput, "invalid macro name %q", name)
		}
		body, ok := t[name]
		if !ok {
			return "", false, echoerr.New(echoerr.MalformedInput, "undefined macro !%c", name)
		}
		out = append(out, body...)
		changed = true
		i++
	}
	return string(out), changed, nil
}

func isMacroLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}
