// Package cliutil provides the flag-parsing scaffold shared by every
// echotools command: universal -h/--help and -v/--version flags, a
// -l/--log-level flag, and positional-argument reordering so flags and
// file paths can be freely interleaved on the command line.
package cliutil

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// Exit codes per spec.md §6: 0 on success, 1 on any error.
const (
	ExitOK    = 0
	ExitError = 1
)

// Common holds the flags every echotools command accepts.
type Common struct {
	Help     bool
	Version  bool
	LogLevel string
}

// NewFlagSet builds a flag.FlagSet for name, registers the Common flags on
// it, and returns both. Callers register their own tool-specific flags on
// the returned FlagSet before calling Parse.
func NewFlagSet(name string) (*flag.FlagSet, *Common) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // callers print their own usage on error

	c := &Common{}
	fs.BoolVar(&c.Help, "help", false, "show this help message")
	fs.BoolVar(&c.Help, "h", false, "show this help message (shorthand)")
	fs.BoolVar(&c.Version, "version", false, "print the version and exit")
	fs.BoolVar(&c.Version, "v", false, "print the version and exit (shorthand)")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&c.LogLevel, "l", "info", "log level (shorthand)")
	return fs, c
}

// Parse reorders args so flags precede positionals, then runs fs.Parse.
func Parse(fs *flag.FlagSet, args []string) error {
	return fs.Parse(ReorderArgs(fs, args))
}

// ReorderArgs moves recognized flags (and their values, for flags that take
// one) to the front of the argument list so positional arguments can be
// interleaved with flags on the command line, the way shells normally allow.
// Grounded on the same reordering idea the teacher's CLI layer used for its
// single entrypoint, generalized to work against any flag.FlagSet.
func ReorderArgs(fs *flag.FlagSet, args []string) []string {
	boolFlags := map[string]bool{}
	fs.VisitAll(func(f *flag.Flag) {
		if bv, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bv.IsBoolFlag() {
			boolFlags["-"+f.Name] = true
			boolFlags["--"+f.Name] = true
		}
	})

	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)
			if !boolFlags[arg] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
			continue
		}
		positional = append(positional, arg)
	}
	return append(flags, positional...)
}

// PrintVersion writes "<name> <version>" to stdout.
func PrintVersion(name, version string) {
	fmt.Fprintf(os.Stdout, "%s %s\n", name, version)
}

// Fail writes msg to stderr and returns ExitError, for use as:
//
//	os.Exit(cliutil.Fail("echo: %v", err))
func Fail(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return ExitError
}
