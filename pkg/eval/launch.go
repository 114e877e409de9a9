package eval

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/elves/tash/pkg/launch"
	"github.com/elves/tash/pkg/parse"
)

// launch starts a child for a command or parenthesized list, or runs it in
// place when it is the last node of a parenthesized list.
func (fm *frame) launch(r parse.Ref, flags parse.Flags, pin, pout *pipe) (int, bool) {
	if flags.Has(parse.FlagElide) {
		return fm.inPlace(r, flags, pin, pout)
	}

	in, out := fm.redirTargets(r)
	files, cleanup, ok := fm.childFiles(in, out, flags, pin, pout)
	defer cleanup()
	if !ok {
		if flags.Has(parse.FlagPipeIn) {
			pin.close()
		}
		return StatusRedirectionError, true
	}

	var pid int
	var status int
	d := fm.disposition(flags)
	if r.Kind() == parse.KindParen {
		pid, status = fm.startSubshell(r, flags, files, d)
	} else {
		pid, status = fm.startCommand(fm.arena.Command(r), files, d)
	}
	if flags.Has(parse.FlagPipeIn) {
		pin.close()
	}
	if pid == 0 {
		return status, true
	}

	if flags.Has(parse.FlagAnnounce) {
		fmt.Fprintln(fm.files[1], pid)
	}
	if flags.Has(parse.FlagBackground) || flags.Has(parse.FlagPipeOut) {
		return 0, true
	}
	return fm.waitFor(pid)
}

func (fm *frame) redirTargets(r parse.Ref) (in, out parse.Token) {
	if r.Kind() == parse.KindParen {
		p := fm.arena.Paren(r)
		return p.In, p.Out
	}
	c := fm.arena.Command(r)
	return c.In, c.Out
}

// childFiles works out the standard files of a child. Redirections are
// opened first, then pipe ends take precedence over them. An insulated child
// with no other input reads from the null device.
//
// The returned cleanup closes the files opened here and must always be
// called. On failure a diagnostic has already been printed.
func (fm *frame) childFiles(in, out parse.Token, flags parse.Flags, pin, pout *pipe) ([3]*os.File, func(), bool) {
	files := fm.files
	var opened []*os.File
	cleanup := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	if in != nil {
		f, err := os.Open(in.String())
		if err != nil {
			fm.diag("%s: cannot open", in.String())
			return files, cleanup, false
		}
		opened = append(opened, f)
		files[0] = f
	}
	if out != nil {
		f, err := openOutput(out.String(), flags.Has(parse.FlagAppend))
		if err != nil {
			fm.diag("%s: cannot create", out.String())
			return files, cleanup, false
		}
		opened = append(opened, f)
		files[1] = f
	}
	if flags.Has(parse.FlagPipeIn) {
		files[0] = pin.r
	}
	if flags.Has(parse.FlagPipeOut) {
		files[1] = pout.w
	}
	if flags.Has(parse.FlagInsulate) && in == nil && !flags.Has(parse.FlagPipeIn) {
		if f, err := os.Open(os.DevNull); err == nil {
			opened = append(opened, f)
			files[0] = f
		}
	}
	return files, cleanup, true
}

// openOutput opens an existing file for appending, falling back to creating
// or truncating it.
func openOutput(name string, appendMode bool) (*os.File, error) {
	if appendMode {
		if f, err := os.OpenFile(name, os.O_WRONLY, 0); err == nil {
			f.Seek(0, io.SeekEnd)
			return f, nil
		}
	}
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
}

// startCommand starts an external command and returns its pid, or 0 and a
// status after printing a diagnostic.
func (fm *frame) startCommand(c *parse.Command, files [3]*os.File, d Disposition) (int, int) {
	args := c.Args()
	var pid int
	start := func(path string, argv []string) error {
		proc, err := os.StartProcess(path, argv, &os.ProcAttr{Files: files[:]})
		if err != nil {
			return err
		}
		pid = proc.Pid
		proc.Release()
		return nil
	}

	if hasGlob(args) {
		argv := fm.globArgv(args)
		fm.log.Tracef(argv)
		var err error
		withDisposition(d, func() { err = start(argv[0], argv) })
		if err != nil {
			fm.diag("glob: cannot execute")
			return 0, StatusCommandNotExecutable
		}
		return pid, 0
	}

	argv := words(args)
	fm.log.Tracef(argv)
	var err error
	withDisposition(d, func() { _, err = launch.Run(argv, start) })
	if err != nil {
		return 0, fm.launchError(argv[0], err)
	}
	return pid, 0
}

// Reports a failure of the launch chain and returns the status.
func (fm *frame) launchError(name string, err error) int {
	switch {
	case errors.Is(err, launch.ErrNotFound):
		fm.diag("%s: not found", name)
		return StatusCommandNotFound
	case errors.Is(err, launch.ErrTooLarge):
		fm.diag("%s: too large", name)
		return StatusCommandNotExecutable
	case errors.Is(err, launch.ErrTryAgain):
		fm.diag("try again")
		return StatusForkError
	default:
		fm.diag("%v", err)
		return StatusCommandNotExecutable
	}
}

func hasGlob(args []parse.Token) bool {
	for _, arg := range args {
		if arg.HasGlob() {
			return true
		}
	}
	return false
}

// The helper receives the command and arguments escaped so that only
// unquoted glob characters are special.
func (fm *frame) globArgv(args []parse.Token) []string {
	argv := append([]string(nil), fm.opts.GlobHelper...)
	for _, arg := range args {
		argv = append(argv, arg.Escaped())
	}
	return argv
}

// startSubshell starts a child interpreter for a parenthesized list. The
// positional parameters follow the list's text so that shift works in the
// child.
func (fm *frame) startSubshell(r parse.Ref, flags parse.Flags, files [3]*os.File, d Disposition) (int, int) {
	mode := SubshellMode{
		Flags:            flags,
		Interactive:      fm.opts.Interactive,
		IgnoreInterrupts: fm.opts.IgnoreInterrupts,
		Ignoring:         d == DispositionInherit && interruptsIgnored(),
		Trace:            fm.log.Verbose,
	}
	argv := append([]string{fm.opts.Self, "-c", fm.arena.ParenSource(r), fm.params.Name}, fm.params.Args...)
	env := append(os.Environ(), SubshellEnv+"="+mode.String())
	fm.log.Tracef(argv[1:])

	var proc *os.Process
	var err error
	withDisposition(d, func() {
		proc, err = os.StartProcess(fm.opts.Self, argv, &os.ProcAttr{Env: env, Files: files[:]})
	})
	if err != nil {
		fm.diag("try again")
		return 0, StatusForkError
	}
	pid := proc.Pid
	proc.Release()
	return pid, 0
}

// inPlace runs the last node of a parenthesized list in the current process.
// A command replaces the process; a parenthesized list has its body run with
// the node's files. Errors are fatal because the process exists only to run
// this node.
func (fm *frame) inPlace(r parse.Ref, flags parse.Flags, pin, pout *pipe) (int, bool) {
	in, out := fm.redirTargets(r)
	files, cleanup, ok := fm.childFiles(in, out, flags, pin, pout)
	defer cleanup()
	defer pin.close()
	if !ok {
		return StatusRedirectionError, false
	}
	// Only the ends in use stay open while the node runs.
	if flags.Has(parse.FlagPipeIn) {
		pin.closeWrite()
	}
	if flags.Has(parse.FlagPipeOut) {
		pout.closeRead()
	}
	setDisposition(fm.disposition(flags))

	if r.Kind() == parse.KindParen {
		sub := &frame{fm.Evaler, fm.arena, files}
		return sub.execute(fm.arena.Paren(r).Body, flags&parse.FlagInsulate, nil, nil)
	}

	for i, f := range files {
		if int(f.Fd()) != i {
			if err := unix.Dup2(int(f.Fd()), i); err != nil {
				fm.diag("cannot redirect: %v", err)
				return StatusRedirectionError, false
			}
		}
	}
	args := fm.arena.Command(r).Args()
	exec := func(path string, argv []string) error {
		return syscall.Exec(path, argv, os.Environ())
	}
	if hasGlob(args) {
		argv := fm.globArgv(args)
		fm.log.Tracef(argv)
		exec(argv[0], argv)
		fm.diag("glob: cannot execute")
		return StatusCommandNotExecutable, false
	}
	argv := words(args)
	fm.log.Tracef(argv)
	_, err := launch.Run(argv, exec)
	return fm.launchError(argv[0], err), false
}
