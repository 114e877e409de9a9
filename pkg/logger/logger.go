// Package logger writes the interpreter's own diagnostics.
package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"mvdan.cc/sh/v3/syntax"
)

type Color func() PrintFunc
type PrintFunc func(io.Writer, string, ...interface{})

func Default() PrintFunc {
	return func(w io.Writer, s string, args ...interface{}) {
		fmt.Fprintf(w, s, args...)
	}
}
func Red() PrintFunc {
	return colored(envColor("TASH_COLOR_RED", color.FgRed))
}
func Cyan() PrintFunc {
	return colored(envColor("TASH_COLOR_CYAN", color.FgCyan))
}

// The decision to color is made by Logger, so the global switch of the
// color package, which looks at stdout, is bypassed.
func colored(attr color.Attribute) PrintFunc {
	c := color.New(attr)
	c.EnableColor()
	return c.FprintfFunc()
}

func envColor(env string, defaultColor color.Attribute) color.Attribute {
	override, err := strconv.Atoi(os.Getenv(env))
	if err == nil {
		return color.Attribute(override)
	}
	return defaultColor
}

// Logger is a wrapper that prints diagnostics to Stderr, with optional
// color. Trace output is only printed when Verbose is set.
type Logger struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool
	Color   bool
}

// New returns a Logger for the given files. Color is used when stderr is a
// terminal and NO_COLOR is not set.
func New(stdout, stderr *os.File, verbose bool) *Logger {
	return &Logger{
		Stdout:  stdout,
		Stderr:  stderr,
		Verbose: verbose,
		Color:   os.Getenv("NO_COLOR") == "" && isatty.IsTerminal(stderr.Fd()),
	}
}

// Outf prints a line to Stdout.
func (l *Logger) Outf(color Color, s string, args ...interface{}) {
	l.FOutf(l.Stdout, color, s+"\n", args...)
}

// FOutf prints to the given writer.
func (l *Logger) FOutf(w io.Writer, color Color, s string, args ...interface{}) {
	if len(args) == 0 {
		s, args = "%s", []interface{}{s}
	}
	if !l.Color {
		color = Default
	}
	print := color()
	print(w, s, args...)
}

// Errf prints a line to Stderr.
func (l *Logger) Errf(color Color, s string, args ...interface{}) {
	l.FOutf(l.Stderr, color, s+"\n", args...)
}

// Tracef prints argv, quoted as shell words and prefixed with "+ ", if
// verbose mode is enabled.
func (l *Logger) Tracef(argv []string) {
	if !l.Verbose {
		return
	}
	words := make([]string, len(argv))
	for i, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			q = strconv.Quote(arg)
		}
		words[i] = q
	}
	l.Errf(Cyan, "+ %s", strings.Join(words, " "))
}
