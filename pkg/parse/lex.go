package parse

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Capacities of the per-line buffers.
const (
	LineSize  = 4096
	TokenSize = 512
	// Slots held back so that a newline token always fits.
	reserve = 2
)

// Source supplies the raw input characters.
type Source interface {
	ReadRune() (r rune, size int, err error)
}

// Lexer splits input into tokens one logical line at a time. Characters are
// stored in a fixed line buffer and tokens are views into it, so nothing
// produced by the lexer outlives the next Reset.
type Lexer struct {
	src    Source
	params *Params
	pid    string

	line [LineSize]rune
	pos  int
	toks [TokenSize]Token
	ntok int

	// Pushback of one processed character.
	peek   rune
	peeked bool
	// Pushback of one raw input character.
	back    rune
	hasBack bool

	subst     string
	fromSubst bool
	// Whether the current physical line has unread content, used to supply
	// a final newline when input ends without one.
	dirty bool

	full     bool
	errors   int
	overflow string
}

// NewLexer returns a Lexer reading from src. Positional parameters are taken
// from params and $$ expands to pid.
func NewLexer(src Source, params *Params, pid string) *Lexer {
	if params == nil {
		params = &Params{}
	}
	return &Lexer{src: src, params: params, pid: pid}
}

// Reset discards the tokens and characters of the previous line.
func (lx *Lexer) Reset() {
	lx.pos = 0
	lx.ntok = 0
	lx.full = false
	lx.errors = 0
	lx.overflow = ""
}

// Tokens returns the tokens read since the last Reset.
func (lx *Lexer) Tokens() []Token { return lx.toks[:lx.ntok] }

// Errors returns the number of lexical errors since the last Reset.
func (lx *Lexer) Errors() int { return lx.errors }

// Overflow returns a diagnostic if the line did not fit in the buffers, or
// "" otherwise.
func (lx *Lexer) Overflow() string { return lx.overflow }

// ReadLine resets the lexer and reads tokens up to and including the next
// newline token.
func (lx *Lexer) ReadLine() error {
	lx.Reset()
	for {
		t, err := lx.Next()
		if err != nil {
			return err
		}
		if t.Is('\n') {
			return nil
		}
	}
}

// Lex reads a single line of text and returns its tokens without the
// terminating newline.
func Lex(text string, params *Params, pid string) (*Lexer, []Token, error) {
	lx := NewLexer(strings.NewReader(text), params, pid)
	if err := lx.ReadLine(); err != nil {
		return lx, nil, err
	}
	toks := lx.Tokens()
	return lx, toks[:len(toks)-1], nil
}

// Next returns the next token. The token ending a line is the newline
// metacharacter. At the end of input Next returns io.EOF.
func (lx *Lexer) Next() (Token, error) {
	if lx.ntok >= TokenSize-reserve {
		return lx.drain("Too many tokens")
	}
	begin := lx.pos
	c, err := lx.firstChar()
	if err != nil {
		return nil, err
	}
	if isMeta(c) {
		lx.store(c)
		if lx.full && c == '\n' {
			// Already at the end of the line; nothing left to drain.
			lx.unget(c)
		}
		return lx.emit(begin)
	}
	for {
		if c == '\'' || c == '"' {
			if !lx.quoted(c) {
				return lx.emit(begin)
			}
		} else {
			lx.store(c)
		}
		c, err = lx.getChar()
		if err != nil {
			return nil, err
		}
		if c == ' ' || c == '\t' || isMeta(c) {
			lx.unget(c)
			return lx.emit(begin)
		}
	}
}

// firstChar skips blanks and a comment at the start of a token.
func (lx *Lexer) firstChar() (rune, error) {
	for {
		c, err := lx.getChar()
		if err != nil {
			return 0, err
		}
		switch {
		case c == ' ' || c == '\t':
			continue
		case c == '#' && !lx.fromSubst:
			for c != '\n' {
				if c, err = lx.readRaw(); err != nil {
					return 0, err
				}
			}
		}
		return c, nil
	}
}

// quoted reads a quoted region up to the closing delim. Characters in it are
// taken raw and tagged. A newline ends the region with an error and is pushed
// back to end the line.
func (lx *Lexer) quoted(delim rune) bool {
	for {
		c, err := lx.readRaw()
		if err != nil || c == '\n' {
			lx.errors++
			lx.unget('\n')
			return false
		}
		if c == delim {
			return true
		}
		lx.store(c | Quote)
	}
}

// getChar returns the next processed character: a pushed back character,
// then pending substitution text, then input with backslash escapes and
// parameter substitution applied.
func (lx *Lexer) getChar() (rune, error) {
	if lx.peeked {
		lx.peeked = false
		lx.fromSubst = false
		return lx.peek, nil
	}
	for {
		if lx.subst != "" {
			r, size := utf8.DecodeRuneInString(lx.subst)
			lx.subst = lx.subst[size:]
			lx.fromSubst = true
			return r, nil
		}
		lx.fromSubst = false
		c, err := lx.readRaw()
		if err != nil {
			return 0, err
		}
		switch c {
		case '\\':
			c, err = lx.readRaw()
			if err != nil {
				return '\\', nil
			}
			if c == '\n' {
				return ' ', nil
			}
			return c | Quote, nil
		case '$':
			c, err = lx.readRaw()
			if err != nil {
				return '$', nil
			}
			switch {
			case '0' <= c && c <= '9':
				if v, ok := lx.params.Lookup(int(c - '0')); ok {
					lx.subst = v
				}
				continue
			case c == '$':
				lx.subst = lx.pid
				continue
			}
			lx.back, lx.hasBack = c, true
			return '$', nil
		}
		return c, nil
	}
}

func (lx *Lexer) unget(c rune) {
	lx.peek, lx.peeked = c, true
}

// readRaw reads one character from the input. When the input ends in the
// middle of a line, a newline is supplied first.
func (lx *Lexer) readRaw() (rune, error) {
	if lx.hasBack {
		lx.hasBack = false
		return lx.back, nil
	}
	r, _, err := lx.src.ReadRune()
	if err != nil {
		if err == io.EOF && lx.dirty {
			lx.dirty = false
			return '\n', nil
		}
		return 0, err
	}
	lx.dirty = r != '\n'
	return r, nil
}

func (lx *Lexer) store(c rune) {
	if lx.pos >= LineSize-reserve {
		lx.full = true
		return
	}
	lx.line[lx.pos] = c
	lx.pos++
}

func (lx *Lexer) emit(begin int) (Token, error) {
	if lx.full {
		return lx.drain("Too many characters")
	}
	t := Token(lx.line[begin:lx.pos:lx.pos])
	lx.toks[lx.ntok] = t
	lx.ntok++
	return t, nil
}

// drain records an overflow, discards the rest of the line and returns the
// newline token.
func (lx *Lexer) drain(msg string) (Token, error) {
	if lx.overflow == "" {
		lx.overflow = msg
	}
	lx.subst = ""
	if lx.peeked && lx.peek == '\n' {
		lx.peeked = false
	} else {
		lx.peeked = false
		for {
			c, err := lx.readRaw()
			if err != nil {
				return nil, err
			}
			if c == '\n' {
				break
			}
		}
	}
	lx.full = false
	begin := lx.pos
	lx.line[lx.pos] = '\n'
	lx.pos++
	t := Token(lx.line[begin:lx.pos:lx.pos])
	lx.toks[lx.ntok] = t
	lx.ntok++
	return t, nil
}
