package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elves/tash/pkg/parse"
)

// SubshellEnv is the environment variable that marks a process as a child
// interpreter started for a parenthesized list. Its value is a SubshellMode.
const SubshellEnv = "TASH_SUBSHELL"

// SubshellMode is the state a child interpreter takes over from its parent.
type SubshellMode struct {
	// Effective flags of the parenthesized list.
	Flags            parse.Flags
	Interactive      bool
	IgnoreInterrupts bool
	// Whether the child must ignore SIGINT and SIGQUIT itself.
	Ignoring bool
	Trace    bool
}

var subshellModeNames = []string{"interactive", "setintr", "ignoring", "trace"}

func (m *SubshellMode) bools() []*bool {
	return []*bool{&m.Interactive, &m.IgnoreInterrupts, &m.Ignoring, &m.Trace}
}

// String encodes m as a comma-separated list, such as
// "flags=32,setintr,ignoring".
func (m SubshellMode) String() string {
	parts := []string{"flags=" + strconv.Itoa(int(m.Flags))}
	for i, b := range m.bools() {
		if *b {
			parts = append(parts, subshellModeNames[i])
		}
	}
	return strings.Join(parts, ",")
}

// ParseSubshellMode decodes the output of SubshellMode.String.
func ParseSubshellMode(s string) (SubshellMode, error) {
	var m SubshellMode
	bools := make(map[string]*bool)
	for i, b := range m.bools() {
		bools[subshellModeNames[i]] = b
	}
	for _, part := range strings.Split(s, ",") {
		if flags, ok := strings.CutPrefix(part, "flags="); ok {
			n, err := strconv.ParseUint(flags, 10, 16)
			if err != nil {
				return m, fmt.Errorf("bad flags %q: %w", flags, err)
			}
			m.Flags = parse.Flags(n)
		} else if b, ok := bools[part]; ok {
			*b = true
		} else if part != "" {
			return m, fmt.Errorf("unknown subshell mode %q", part)
		}
	}
	return m, nil
}
