// Package shell drives the interpreter: it reads lines, parses them and hands
// them to the executor.
package shell

import (
	"errors"
	"io"
	"strings"

	"src.elv.sh/pkg/diag"

	"github.com/elves/tash/pkg/eval"
	"github.com/elves/tash/pkg/logger"
	"github.com/elves/tash/pkg/parse"
)

// ErrFatal is returned by Session when the interpreter must terminate.
var ErrFatal = errors.New("fatal error")

type Options struct {
	// Printed before each line when non-empty.
	Prompt string
	// Errors don't terminate an interactive interpreter.
	Interactive bool
	// Print the tree of each line to stdout before executing it.
	PrintAST bool
}

// Shell reads and executes one line at a time. The lexer and the node arena
// are allocated once and reused for every line.
type Shell struct {
	src   Source
	lx    *parse.Lexer
	arena *parse.Arena
	ev    *eval.Evaler
	log   *logger.Logger
	opts  Options
}

func New(src Source, ev *eval.Evaler, params *parse.Params, pid string, log *logger.Logger, opts Options) *Shell {
	return &Shell{src, parse.NewLexer(src, params, pid), new(parse.Arena), ev, log, opts}
}

// Run executes lines until the input ends or a fatal error occurs, and
// returns the exit status of the interpreter.
func (sh *Shell) Run() int {
	for {
		status, err := sh.Session()
		switch {
		case err == nil:
		case err == io.EOF:
			return 0
		case errors.Is(err, ErrFatal):
			// Leave nothing of the input for whoever reads it next.
			if s, ok := sh.src.(skipper); ok {
				s.Skip()
			}
			return status
		default:
			sh.log.Errf(logger.Red, "%v", err)
			return 1
		}
	}
}

// Session reads, parses and executes one line. It returns io.EOF at the end
// of input and ErrFatal when the interpreter must terminate.
func (sh *Shell) Session() (int, error) {
	if sh.opts.Prompt != "" {
		sh.log.FOutf(sh.log.Stdout, logger.Default, sh.opts.Prompt)
	}
	if err := sh.lx.ReadLine(); err != nil {
		return 0, err
	}
	sh.arena.Reset()
	if msg := sh.lx.Overflow(); msg != "" {
		sh.log.Errf(logger.Red, msg)
		return sh.fail(eval.StatusSyntaxError)
	}

	toks := sh.lx.Tokens()
	var root parse.Ref
	var err error
	if sh.lx.Errors() == 0 {
		root, err = parse.Parse(toks, sh.arena)
		if err == parse.ErrArenaFull {
			// Only this line is lost.
			sh.log.Errf(logger.Red, "Command line overflow")
			return eval.StatusSyntaxError, nil
		}
	}
	if sh.opts.PrintAST {
		sh.printAST(toks, root, err)
	}
	if sh.lx.Errors() > 0 || err != nil {
		sh.log.Errf(logger.Red, "Syntax error")
		return sh.fail(eval.StatusSyntaxError)
	}

	status, ok := sh.ev.Execute(sh.arena, root)
	if !ok {
		return status, ErrFatal
	}
	return status, nil
}

func (sh *Shell) fail(status int) (int, error) {
	if sh.opts.Interactive {
		return status, nil
	}
	return status, ErrFatal
}

func (sh *Shell) printAST(toks []parse.Token, root parse.Ref, err error) {
	sh.log.Outf(logger.Default, "node: %s", parse.PprintAST(sh.arena, root))
	var perr parse.Error
	if !errors.As(err, &perr) {
		return
	}
	text, offsets := lineText(toks)
	for _, entry := range perr.Errors {
		sr := diag.NewContext("line", text, diag.PointRanging(offsets[entry.Position]))
		sh.log.Outf(logger.Default, "  %s", entry.Message)
		sh.log.Outf(logger.Default, "    %s", sr.ShowCompact(""))
	}
}

// lineText renders tokens as one line and returns the byte offset of each
// token in it. offsets has one extra element for the end of the line.
func lineText(toks []parse.Token) (string, []int) {
	var sb strings.Builder
	offsets := make([]int, len(toks)+1)
	for i, t := range toks {
		if i > 0 {
			sb.WriteByte(' ')
		}
		offsets[i] = sb.Len()
		if t.Is('\n') {
			continue
		}
		sb.WriteString(t.Source())
	}
	offsets[len(toks)] = sb.Len()
	return sb.String(), offsets
}
