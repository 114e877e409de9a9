// Command tashglob expands pathname patterns for tash and executes the
// resulting command.
package main

import (
	"os"

	"github.com/elves/tash/pkg/glob"
	"github.com/elves/tash/pkg/logger"
)

func main() {
	os.Exit(glob.Main(os.Args, logger.New(os.Stdout, os.Stderr, false)))
}
