package shell

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/anmitsu/go-shlex"
)

// GlobEnv names the environment variable holding the glob helper command.
const GlobEnv = "TASH_GLOB"

const defaultGlobHelper = "tashglob"

// GlobHelper returns the argv prefix of the glob helper. The command line
// comes from spec, or $TASH_GLOB when spec is empty, and is split into words
// with POSIX rules. Without either, the tashglob next to the running
// executable is used, then one found on PATH.
//
// The first word is resolved to a path, since children are started without
// a PATH search.
func GlobHelper(spec string) []string {
	if spec == "" {
		spec = os.Getenv(GlobEnv)
	}
	var argv []string
	if spec != "" {
		if words, err := shlex.Split(spec, true); err == nil && len(words) > 0 {
			argv = words
		}
	}
	if argv == nil {
		argv = []string{defaultGlobHelper}
		if self, err := os.Executable(); err == nil {
			sibling := filepath.Join(filepath.Dir(self), defaultGlobHelper)
			if _, err := os.Stat(sibling); err == nil {
				argv[0] = sibling
			}
		}
	}
	if filepath.Base(argv[0]) == argv[0] {
		if path, err := exec.LookPath(argv[0]); err == nil {
			argv[0] = path
		}
	}
	return argv
}
