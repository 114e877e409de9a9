// Package parse implements the lexer and parser of tash command lines.
//
// The grammar has three levels:
//
//	list    = filter { (";" | "&" | newline) list }
//	filter  = command { ("|" | "^") filter }
//	command = word... | "(" list ")"    with optional "<" word and ">" / ">>" word
//
// Parsing works on token ranges of one line and allocates nodes from an
// Arena. Errors are collected and parsing continues, so that one line
// reports all its problems at once.
package parse

import "fmt"

// Parse builds the tree of one line of tokens. Leading separators are
// skipped and an empty line yields the zero Ref. Syntax errors are returned
// as an Error; running out of arena space returns ErrArenaFull.
func Parse(toks []Token, a *Arena) (Ref, error) {
	p := &parser{toks: toks, arena: a}
	r := p.parse(0, len(toks))
	if p.full {
		return Ref{}, ErrArenaFull
	}
	if len(p.err.Errors) > 0 {
		return r, p.err
	}
	return r, nil
}

type parser struct {
	toks  []Token
	arena *Arena
	err   Error
	full  bool
}

func (p *parser) errorf(pos int, format string, args ...interface{}) {
	p.err.Errors = append(p.err.Errors, ErrorEntry{pos, fmt.Sprintf(format, args...)})
}

func isSeparator(t Token) bool {
	return t.Is(';') || t.Is('&') || t.Is('\n')
}

// parse skips leading separators before parsing a list.
func (p *parser) parse(b, e int) Ref {
	for b < e && isSeparator(p.toks[b]) {
		b++
	}
	if b == e {
		return Ref{}
	}
	return p.parseList(b, e)
}

// parseList splits at the first separator outside parentheses.
func (p *parser) parseList(b, e int) Ref {
	depth := 0
	for i := b; i < e; i++ {
		t := p.toks[i]
		switch {
		case t.Is('('):
			depth++
		case t.Is(')'):
			depth--
			if depth < 0 {
				p.errorf(i, "unmatched )")
			}
		case depth == 0 && isSeparator(t):
			left := p.parseFilter(b, i)
			if t.Is('&') {
				p.arena.addFlags(left, FlagBackground|FlagAnnounce|FlagInsulate)
			}
			right := p.parse(i+1, e)
			return p.list(left, right)
		}
	}
	if depth > 0 {
		p.errorf(e, "unmatched (")
		return Ref{}
	}
	return p.parseFilter(b, e)
}

// parseFilter splits at the first pipe outside parentheses. Filters nest to
// the right.
func (p *parser) parseFilter(b, e int) Ref {
	depth := 0
	for i := b; i < e; i++ {
		t := p.toks[i]
		switch {
		case t.Is('('):
			depth++
		case t.Is(')'):
			depth--
		case depth == 0 && (t.Is('|') || t.Is('^')):
			left := p.parseCommand(b, i)
			right := p.parseFilter(i+1, e)
			return p.filter(left, right)
		}
	}
	return p.parseCommand(b, e)
}

// parseCommand parses a simple command or a parenthesized list, along with
// its redirections.
func (p *parser) parseCommand(b, e int) Ref {
	var flags Flags
	if e < len(p.toks) && p.toks[e].Is(')') {
		flags |= FlagElide
	}
	var in, out Token
	lp, rp := -1, -1
	depth := 0
	nargs := 0
	argStart := p.arena.nargv
	for i := b; i < e; i++ {
		t := p.toks[i]
		switch {
		case t.Is('('):
			if depth == 0 {
				if lp >= 0 {
					p.errorf(i, "more than one parenthesized list")
				}
				lp = i + 1
			}
			depth++
		case t.Is(')'):
			depth--
			if depth == 0 {
				rp = i
			}
		case depth > 0:
			// Inside parentheses; parsed later.
		case t.Is('<') || t.Is('>'):
			input := t.Is('<')
			if !input && i+1 < e && p.toks[i+1].Is('>') {
				flags |= FlagAppend
				i++
			}
			i++
			if i == e {
				p.errorf(i-1, "missing redirection target")
				continue
			}
			target := p.toks[i]
			if target.Is('<') || target.Is('>') || target.Is('(') {
				p.errorf(i, "bad redirection target")
			}
			if input {
				if in != nil {
					p.errorf(i, "duplicate input redirection")
				}
				in = target
			} else {
				if out != nil {
					p.errorf(i, "duplicate output redirection")
				}
				out = target
			}
		default:
			if !p.arena.pushArg(t) {
				p.full = true
				return Ref{}
			}
			nargs++
		}
	}
	if lp >= 0 {
		if nargs > 0 {
			p.errorf(b, "arguments with parenthesized list")
		}
		if rp < 0 {
			p.errorf(e, "unmatched (")
			return Ref{}
		}
		body := p.parseList(lp, rp)
		return p.paren(body, in, out, flags)
	}
	if nargs == 0 {
		p.errorf(b, "empty command")
	}
	return p.command(argStart, in, out, flags)
}

func (p *parser) command(argStart int, in, out Token, flags Flags) Ref {
	r, ok := p.arena.newCommand(argStart, in, out, flags)
	p.full = p.full || !ok
	return r
}

func (p *parser) paren(body Ref, in, out Token, flags Flags) Ref {
	r, ok := p.arena.newParen(body, in, out, flags)
	p.full = p.full || !ok
	return r
}

func (p *parser) filter(left, right Ref) Ref {
	r, ok := p.arena.newFilter(left, right)
	p.full = p.full || !ok
	return r
}

func (p *parser) list(left, right Ref) Ref {
	r, ok := p.arena.newList(left, right)
	p.full = p.full || !ok
	return r
}
