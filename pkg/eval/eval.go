// Package eval executes parsed command lines.
//
// Every external command and every parenthesized list runs in its own child
// process. The executor itself is strictly sequential: it starts children,
// waits for the foreground ones and reaps everything else as it goes.
package eval

import (
	"os"

	"github.com/elves/tash/pkg/logger"
	"github.com/elves/tash/pkg/parse"
)

type Evaler struct {
	files  []*os.File
	params *parse.Params
	log    *logger.Logger
	opts   Options
}

// Options configures an Evaler.
type Options struct {
	// Interactive makes all errors non-fatal and enables login and newgrp.
	Interactive bool
	// IgnoreInterrupts is set when the interpreter ignores SIGINT and SIGQUIT.
	// Children that are not insulated then get the default disposition back.
	IgnoreInterrupts bool
	// GlobHelper is the argv prefix of the pathname expansion helper.
	GlobHelper []string
	// Self is the executable started to run parenthesized lists.
	Self string
}

var StdFiles = []*os.File{os.Stdin, os.Stdout, os.Stderr}

func NewEvaler(files []*os.File, params *parse.Params, log *logger.Logger, opts Options) *Evaler {
	if len(files) < 3 {
		panic("files must have at least 3 elements")
	}
	if params == nil {
		params = &parse.Params{}
	}
	return &Evaler{files, params, log, opts}
}

// Execute runs the tree rooted at r. The returned bool is false iff there was
// a fatal error, which can only happen when the Evaler is not interactive.
func (ev *Evaler) Execute(a *parse.Arena, r parse.Ref) (int, bool) {
	return ev.frame(a).execute(r, 0, nil, nil)
}

// EnterParen runs the body of the parenthesized list r in the current
// process, as a child interpreter does. The redirections of r have already
// been applied by the parent; flags are the effective flags the parent
// computed for r.
func (ev *Evaler) EnterParen(a *parse.Arena, r parse.Ref, flags parse.Flags) (int, bool) {
	return ev.frame(a).execute(a.Paren(r).Body, flags&parse.FlagInsulate, nil, nil)
}

func (ev *Evaler) frame(a *parse.Arena) *frame {
	return &frame{ev, a, [3]*os.File{ev.files[0], ev.files[1], ev.files[2]}}
}

type frame struct {
	*Evaler
	arena *parse.Arena
	// Standard files for children started from this frame. They differ from
	// the Evaler's when a parenthesized list is run in place.
	files [3]*os.File
}

// Prints a diagnostic message. Diagnostics always go to the interpreter's
// own stderr.
func (fm *frame) diag(format string, args ...interface{}) {
	fm.log.Errf(logger.Red, format, args...)
}

// Returns status along with whether an error with that status lets
// execution continue: only in interactive mode.
func (fm *frame) fail(status int) (int, bool) {
	return status, fm.opts.Interactive
}

// The rest of this file contains the methods that walk the tree. They return
// (int, bool), where the bool is false iff there was a fatal error that
// should abort the evaluation of the line and terminate the interpreter.
//
// Errors are fatal only when not interactive, and only for:
//
//   - Errors of the chdir builtin
//   - Abnormal termination of a child, other than by SIGPIPE
//   - Failure to exec a command run in place
//
// Other errors, like a missing command or a redirection that can't be
// opened, abandon the affected node and execution continues.
//
// Regardless of whether the error is fatal, the site that generates the error
// prints a suitable message.
//
// Flags are passed down by value: the effective flags of a node are its own
// flags combined with those inherited from its parent, and the tree itself is
// never modified.

func (fm *frame) execute(r parse.Ref, inherited parse.Flags, pin, pout *pipe) (int, bool) {
	switch r.Kind() {
	case parse.KindCommand:
		c := fm.arena.Command(r)
		flags := c.Flags | inherited
		if builtin, ok := lookupBuiltin(c.Args()[0]); ok {
			if flags.Has(parse.FlagPipeIn) {
				pin.close()
			}
			return builtin(fm, words(c.Args()[1:]))
		}
		return fm.launch(r, flags, pin, pout)
	case parse.KindParen:
		return fm.launch(r, fm.arena.Paren(r).Flags|inherited, pin, pout)
	case parse.KindFilter:
		return fm.filter(fm.arena.Filter(r), inherited, pin, pout)
	case parse.KindList:
		l := fm.arena.List(r)
		// Only insulation reaches the members of a list.
		flags := (l.Flags | inherited) & parse.FlagInsulate
		status, ok := fm.execute(l.Left, flags, nil, nil)
		if !ok || l.Right.IsNil() {
			return status, ok
		}
		return fm.execute(l.Right, flags, nil, nil)
	}
	return 0, true
}

func (fm *frame) filter(f *parse.Filter, inherited parse.Flags, pin, pout *pipe) (int, bool) {
	flags := f.Flags | inherited
	p, err := newPipe()
	if err != nil {
		if flags.Has(parse.FlagPipeIn) {
			pin.close()
		}
		// Pipe creation failure only abandons this pipeline.
		fm.diag("Cannot create pipe: %v", err)
		return StatusPipeError, true
	}
	leftFlags := parse.FlagPipeOut |
		flags&(parse.FlagPipeIn|parse.FlagInsulate|parse.FlagAnnounce)
	if status, ok := fm.execute(f.Left, leftFlags, pin, p); !ok {
		p.close()
		return status, false
	}
	rightFlags := parse.FlagPipeIn |
		flags&(parse.FlagPipeOut|parse.FlagInsulate|parse.FlagBackground|parse.FlagAnnounce)
	return fm.execute(f.Right, rightFlags, p, pout)
}

func words(toks []parse.Token) []string {
	s := make([]string, len(toks))
	for i, t := range toks {
		s[i] = t.String()
	}
	return s
}

// A pipe connecting two children. The consumer closes both ends once it has
// been launched, whether or not the launch succeeds.
type pipe struct {
	r, w *os.File
}

func newPipe() (*pipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	return &pipe{r, w}, nil
}

func (p *pipe) closeRead() {
	if p != nil && p.r != nil {
		p.r.Close()
		p.r = nil
	}
}

func (p *pipe) closeWrite() {
	if p != nil && p.w != nil {
		p.w.Close()
		p.w = nil
	}
}

func (p *pipe) close() {
	p.closeRead()
	p.closeWrite()
}
