package eval

import (
	"os"
	"syscall"

	"github.com/elves/tash/pkg/parse"
)

// Builtins return (int, bool) like the tree-walking methods; the bool is
// false on a fatal error.
var builtins = map[string]func(*frame, []string) (int, bool){
	":":      colon,
	"cd":     chdir,
	"chdir":  chdir,
	"login":  login,
	"newgrp": newgrp,
	"shift":  shift,
	"wait":   wait,
}

// lookupBuiltin finds the builtin named by name. A name with any quoted
// character never names a builtin.
func lookupBuiltin(name parse.Token) (func(*frame, []string) (int, bool), bool) {
	if name.Quoted() {
		return nil, false
	}
	builtin, ok := builtins[name.String()]
	return builtin, ok
}

func colon(*frame, []string) (int, bool) { return 0, true }

func chdir(fm *frame, args []string) (int, bool) {
	if len(args) != 1 {
		fm.diag("chdir: arg count")
		return fm.fail(StatusBuiltinError)
	}
	if err := os.Chdir(args[0]); err != nil {
		fm.diag("chdir: bad directory")
		return fm.fail(StatusBuiltinError)
	}
	return 0, true
}

func shift(fm *frame, args []string) (int, bool) {
	if !fm.params.Shift() {
		fm.diag("shift: arg count")
		return StatusBuiltinError, true
	}
	return 0, true
}

func login(fm *frame, args []string) (int, bool) {
	return replaceWith(fm, "login", args)
}

func newgrp(fm *frame, args []string) (int, bool) {
	return replaceWith(fm, "newgrp", args)
}

// replaceWith executes the named system program in place of the interpreter.
// Only an interactive interpreter does this; otherwise, or when the program
// can't be executed, a diagnostic is printed and execution continues.
func replaceWith(fm *frame, name string, args []string) (int, bool) {
	if fm.opts.Interactive {
		argv := append([]string{name}, args...)
		for _, dir := range []string{"/bin/", "/usr/bin/"} {
			syscall.Exec(dir+name, argv, os.Environ())
		}
	}
	fm.diag("%s: cannot execute", name)
	return StatusCommandNotExecutable, true
}

func wait(fm *frame, args []string) (int, bool) {
	return fm.waitFor(-1)
}
