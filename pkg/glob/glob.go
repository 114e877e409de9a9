// Package glob implements the pathname expansion helper.
//
// The interpreter does not expand patterns itself. When an argument contains
// an unquoted *, ? or [, it runs the helper with the command and its
// arguments. Characters that were quoted arrive escaped with a backslash.
// The helper expands each argument after the command, sorts the matches of
// each argument and executes the command.
package glob

import (
	"os"
	"sort"
	"strings"
	"syscall"

	"src.elv.sh/pkg/glob"

	"github.com/elves/tash/pkg/launch"
	"github.com/elves/tash/pkg/logger"
)

// Main runs the helper with the given argv, which includes the name of the
// helper itself. It only returns if the command could not be executed.
func Main(args []string, log *logger.Logger) int {
	if len(args) < 3 {
		log.Errf(logger.Red, "Arg count")
		return 2
	}
	argv, matches := Expand(args[1:])
	if matches == 0 {
		log.Errf(logger.Red, "No match")
		return 1
	}
	_, err := launch.Run(argv, func(path string, argv []string) error {
		return syscall.Exec(path, argv, os.Environ())
	})
	switch err {
	case launch.ErrTooLarge:
		log.Errf(logger.Red, "Arg list too long")
	case launch.ErrNoShell:
		log.Errf(logger.Red, "No shell!")
	default:
		log.Errf(logger.Red, "Command not found")
	}
	return 1
}

// Expand decodes args and expands every argument after the first. An
// argument without glob characters is kept as is; one with them is replaced
// by its sorted matches, or dropped if there are none. It also returns the
// total number of matches.
func Expand(args []string) ([]string, int) {
	if len(args) == 0 {
		return nil, 0
	}
	names := []string{parseWord(args[0]).text()}
	matches := 0
	for _, arg := range args[1:] {
		w := parseWord(arg)
		if !w.hasMeta() {
			names = append(names, w.text())
			continue
		}
		var found []string
		convertGlobWord(w).Glob(func(info glob.PathInfo) bool {
			found = append(found, info.Path)
			return true
		})
		sort.Strings(found)
		matches += len(found)
		names = append(names, found...)
	}
	return names, matches
}

type globWordSegment struct {
	// One of *, ?, [ and ], or 0 for text.
	meta byte
	text string
}

type globWord []globWordSegment

// parseWord splits an escaped argument into text and unescaped glob
// characters. Neighboring text is always merged into one segment.
func parseWord(s string) globWord {
	var w globWord
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			w = append(w, globWordSegment{text: sb.String()})
			sb.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			sb.WriteByte(s[i])
		case strings.IndexByte("*?[]", c) >= 0:
			flush()
			w = append(w, globWordSegment{meta: c})
		default:
			sb.WriteByte(c)
		}
	}
	flush()
	return w
}

func (w globWord) hasMeta() bool {
	for _, seg := range w {
		// A lone ] is not special.
		if seg.meta != 0 && seg.meta != ']' {
			return true
		}
	}
	return false
}

func (w globWord) text() string {
	var sb strings.Builder
	for _, seg := range w {
		if seg.meta != 0 {
			sb.WriteByte(seg.meta)
		} else {
			sb.WriteString(seg.text)
		}
	}
	return sb.String()
}

// pattern accumulates the segments of a glob pattern.
type pattern struct{ segs []glob.Segment }

func (p *pattern) add(seg glob.Segment) { p.segs = append(p.segs, seg) }

// literal adds s, merging it with a preceding literal.
func (p *pattern) literal(s string) {
	if n := len(p.segs); n > 0 {
		if lit, ok := p.segs[n-1].(glob.Literal); ok {
			p.segs[n-1] = glob.Literal{Data: lit.Data + s}
			return
		}
	}
	p.add(glob.Literal{Data: s})
}

// text adds literal text with each / as a path separator.
func (p *pattern) text(s string) {
	for {
		name, rest, found := strings.Cut(s, "/")
		if name != "" {
			p.literal(name)
		}
		if !found {
			return
		}
		p.add(glob.Slash{})
		s = rest
	}
}

func convertGlobWord(word globWord) glob.Pattern {
	var p pattern
	for i := 0; i < len(word); i++ {
		switch seg := word[i]; seg.meta {
		case 0:
			p.text(seg.text)
		case '*':
			p.add(glob.Wild{Type: glob.Star})
		case '?':
			p.add(glob.Wild{Type: glob.Question})
		case '[':
			if j := classEnd(word, i); j > 0 {
				matcher := convertCharClass(word[i+1 : j])
				p.add(glob.Wild{Type: glob.Question, Matchers: []func(rune) bool{matcher}})
				i = j
			} else {
				p.literal("[")
			}
		default:
			p.literal(string(seg.meta))
		}
	}
	return glob.Pattern{Segments: p.segs}
}

// classEnd returns the index of the ] closing the class opened at i, or -1.
// A class does not extend over a slash.
func classEnd(word globWord, i int) int {
	for j := i + 1; j < len(word); j++ {
		if word[j].meta == ']' {
			return j
		}
		if strings.Contains(word[j].text, "/") {
			break
		}
	}
	return -1
}

// convertCharClass builds a matcher for the inside of [...]. A - between two
// characters denotes the inclusive range between them.
func convertCharClass(segs []globWordSegment) func(rune) bool {
	set := []rune(globWord(segs).text())
	return func(r rune) bool {
		for i := 0; i < len(set); i++ {
			if i+2 < len(set) && set[i+1] == '-' {
				if set[i] <= r && r <= set[i+2] {
					return true
				}
				i += 2
				continue
			}
			if set[i] == r {
				return true
			}
		}
		return false
	}
}
