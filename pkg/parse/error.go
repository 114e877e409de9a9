package parse

import (
	"fmt"
	"strings"
)

// Error collects all the syntax errors found in one line.
type Error struct {
	Errors []ErrorEntry
}

func (err Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v syntax errors: ", len(err.Errors))
	for i, e := range err.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "token %v: %v", e.Position, e.Message)
	}
	return b.String()
}

// ErrorEntry is one syntax error. Position is a token index.
type ErrorEntry struct {
	Position int
	Message  string
}
