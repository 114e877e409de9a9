package eval

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/elves/tash/pkg/parse"
)

// Disposition is the handling of SIGINT and SIGQUIT a child starts with.
type Disposition int

const (
	// The child gets whatever the interpreter has.
	DispositionInherit Disposition = iota
	// The child gets the default handling, so that it can be interrupted
	// from the terminal even though the interpreter ignores interrupts.
	DispositionDefault
)

var interruptSignals = []os.Signal{syscall.SIGINT, syscall.SIGQUIT}

// IgnoreInterrupts makes the process ignore SIGINT and SIGQUIT.
func IgnoreInterrupts() {
	signal.Ignore(interruptSignals...)
}

func interruptsIgnored() bool {
	return signal.Ignored(syscall.SIGINT)
}

func (fm *frame) disposition(flags parse.Flags) Disposition {
	if fm.opts.IgnoreInterrupts && !flags.Has(parse.FlagInsulate) {
		return DispositionDefault
	}
	return DispositionInherit
}

// Receives interrupts while a child is started with the default
// disposition. Ignored signals are inherited across exec; caught ones are
// reset to the default.
var catcher = make(chan os.Signal, 1)

// withDisposition calls start with the process set up so that children
// start with disposition d, then restores the process.
func withDisposition(d Disposition, start func()) {
	if d != DispositionDefault || !interruptsIgnored() {
		start()
		return
	}
	signal.Notify(catcher, interruptSignals...)
	start()
	signal.Ignore(interruptSignals...)
	for {
		select {
		case <-catcher:
		default:
			return
		}
	}
}

// setDisposition switches the process for good, for when the process itself
// becomes the child.
func setDisposition(d Disposition) {
	if d == DispositionDefault && interruptsIgnored() {
		signal.Notify(catcher, interruptSignals...)
	}
}
