package parse

import (
	"errors"
	"strings"
)

// Flags are the execution attributes of a node. A node's own flags are set by
// the parser; the executor combines them with the flags inherited from the
// enclosing node without modifying the tree.
type Flags uint16

const (
	// Run without waiting for completion.
	FlagBackground Flags = 1 << iota
	// Output redirection appends instead of truncating.
	FlagAppend
	// Standard input comes from the preceding pipe.
	FlagPipeIn
	// Standard output goes to the following pipe.
	FlagPipeOut
	// Last command before a closing parenthesis; runs in the current process.
	FlagElide
	// Keep the inherited interrupt disposition and read stdin from the null
	// device unless redirected.
	FlagInsulate
	// Print the process ID after launch.
	FlagAnnounce
)

var flagNames = []string{
	"background", "append", "pipe-in", "pipe-out", "elide", "insulate", "announce",
}

// Has reports whether all of g are set in f.
func (f Flags) Has(g Flags) bool { return f&g == g }

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// Kind identifies the type of node a Ref points to.
type Kind uint8

const (
	KindNil Kind = iota
	KindCommand
	KindParen
	KindFilter
	KindList
)

// Ref refers to a node in an Arena. The zero Ref is the empty tree.
type Ref struct {
	kind  Kind
	index int32
}

func (r Ref) Kind() Kind  { return r.kind }
func (r Ref) IsNil() bool { return r.kind == KindNil }

// Command is a simple command.
type Command struct {
	// Argv holds the arguments followed by one nil slot.
	Argv    []Token
	In, Out Token
	Flags   Flags
}

// Args returns the arguments without the trailing nil slot.
func (c *Command) Args() []Token { return c.Argv[:len(c.Argv)-1] }

// Paren is a parenthesized command list run in a child process.
type Paren struct {
	Body    Ref
	In, Out Token
	Flags   Flags
}

// Filter is a pipe between two commands.
type Filter struct {
	Left, Right Ref
	Flags       Flags
}

// List is a sequence of commands separated by ;, & or newline.
type List struct {
	Left, Right Ref
	Flags       Flags
}

// Capacities of an Arena.
const (
	NodeCapacity = 1024
	ArgvCapacity = TokenSize + NodeCapacity
)

// ErrArenaFull is returned when a line needs more nodes or argument slots
// than an Arena holds.
var ErrArenaFull = errors.New("Command line overflow")

// Arena holds the nodes of one parsed line. It is reused across lines and
// never grows.
type Arena struct {
	commands [NodeCapacity]Command
	parens   [NodeCapacity]Paren
	filters  [NodeCapacity]Filter
	lists    [NodeCapacity]List
	argv     [ArgvCapacity]Token

	used, ncommand, nparen, nfilter, nlist, nargv int
}

// Reset releases all nodes.
func (a *Arena) Reset() {
	a.used = 0
	a.ncommand, a.nparen, a.nfilter, a.nlist, a.nargv = 0, 0, 0, 0, 0
}

func (a *Arena) Command(r Ref) *Command { return &a.commands[r.index] }
func (a *Arena) Paren(r Ref) *Paren     { return &a.parens[r.index] }
func (a *Arena) Filter(r Ref) *Filter   { return &a.filters[r.index] }
func (a *Arena) List(r Ref) *List       { return &a.lists[r.index] }

// Flags returns the parser-assigned flags of the node r refers to.
func (a *Arena) Flags(r Ref) Flags {
	if p := a.flagsPtr(r); p != nil {
		return *p
	}
	return 0
}

func (a *Arena) addFlags(r Ref, f Flags) {
	if p := a.flagsPtr(r); p != nil {
		*p |= f
	}
}

func (a *Arena) flagsPtr(r Ref) *Flags {
	switch r.kind {
	case KindCommand:
		return &a.Command(r).Flags
	case KindParen:
		return &a.Paren(r).Flags
	case KindFilter:
		return &a.Filter(r).Flags
	case KindList:
		return &a.List(r).Flags
	}
	return nil
}

func (a *Arena) alloc() bool {
	if a.used >= NodeCapacity {
		return false
	}
	a.used++
	return true
}

func (a *Arena) pushArg(t Token) bool {
	if a.nargv >= ArgvCapacity-1 {
		return false
	}
	a.argv[a.nargv] = t
	a.nargv++
	return true
}

func (a *Arena) newCommand(argStart int, in, out Token, flags Flags) (Ref, bool) {
	if !a.alloc() || a.nargv >= ArgvCapacity {
		return Ref{}, false
	}
	a.argv[a.nargv] = nil
	a.nargv++
	r := Ref{KindCommand, int32(a.ncommand)}
	a.ncommand++
	a.commands[r.index] = Command{a.argv[argStart:a.nargv:a.nargv], in, out, flags}
	return r, true
}

func (a *Arena) newParen(body Ref, in, out Token, flags Flags) (Ref, bool) {
	if !a.alloc() {
		return Ref{}, false
	}
	r := Ref{KindParen, int32(a.nparen)}
	a.nparen++
	a.parens[r.index] = Paren{body, in, out, flags}
	return r, true
}

func (a *Arena) newFilter(left, right Ref) (Ref, bool) {
	if !a.alloc() {
		return Ref{}, false
	}
	r := Ref{KindFilter, int32(a.nfilter)}
	a.nfilter++
	a.filters[r.index] = Filter{Left: left, Right: right}
	return r, true
}

func (a *Arena) newList(left, right Ref) (Ref, bool) {
	if !a.alloc() {
		return Ref{}, false
	}
	r := Ref{KindList, int32(a.nlist)}
	a.nlist++
	a.lists[r.index] = List{Left: left, Right: right}
	return r, true
}
