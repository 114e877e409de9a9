// Package launch implements the search used to start an external command.
//
// A command name is tried as given, then under each of [SearchDirs]. There is
// no PATH lookup. When the kernel refuses a file because it is not a binary,
// the file is handed to [Shell] instead.
package launch

import (
	"errors"
	"syscall"
)

// Shell runs files that are not valid executables.
const Shell = "/bin/sh"

// SearchDirs are the prefixes tried after the name itself.
var SearchDirs = []string{"/bin/", "/usr/bin/"}

// Errors returned by [Run].
var (
	ErrNotFound = errors.New("not found")
	ErrNoShell  = errors.New("No shell!")
	ErrTooLarge = errors.New("too large")
	ErrTryAgain = errors.New("try again")
)

// Starter starts or executes path with argv. Its error is inspected for the
// errno that caused the failure.
type Starter func(path string, argv []string) error

// Attempts returns the paths tried for name, in order.
func Attempts(name string) []string {
	paths := []string{name}
	for _, dir := range SearchDirs {
		paths = append(paths, dir+name)
	}
	return paths
}

// Run tries each of Attempts(argv[0]) with start until one succeeds, and
// returns the path that was started.
//
// A file rejected with ENOEXEC is run as [Shell] path argv[1:]... and the
// search stops there. ENOMEM and E2BIG stop the search with ErrTooLarge,
// EAGAIN with ErrTryAgain. Any other failure moves on to the next path.
func Run(argv []string, start Starter) (string, error) {
	for _, path := range Attempts(argv[0]) {
		err := start(path, argv)
		switch {
		case err == nil:
			return path, nil
		case errors.Is(err, syscall.ENOEXEC):
			shArgv := append([]string{Shell, path}, argv[1:]...)
			if err := start(Shell, shArgv); err != nil {
				return "", ErrNoShell
			}
			return Shell, nil
		case errors.Is(err, syscall.ENOMEM), errors.Is(err, syscall.E2BIG):
			return "", ErrTooLarge
		case errors.Is(err, syscall.EAGAIN):
			return "", ErrTryAgain
		}
	}
	return "", ErrNotFound
}
