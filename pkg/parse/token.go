package parse

import "strings"

// Quote tags a character that was quoted or backslash-escaped. It lies above
// the Unicode range, so a tagged character never equals a real rune.
const Quote rune = 1 << 30

// Token is one lexical token: a word or a single metacharacter. It is a view
// into the lexer's line buffer and is only valid until the next Reset.
type Token []rune

// Characters that make up a token on their own.
const metaChars = "&;<>()|^\n"

// Unquoted characters that make a word subject to pathname expansion.
const globChars = "*?["

func isMeta(r rune) bool { return runeIn(r, metaChars) }

// Is reports whether t consists of the single unquoted character r.
func (t Token) Is(r rune) bool {
	return len(t) == 1 && t[0] == r
}

// Quoted reports whether any character of t carries the quote tag.
func (t Token) Quoted() bool {
	for _, r := range t {
		if r&Quote != 0 {
			return true
		}
	}
	return false
}

// HasGlob reports whether t contains an unquoted *, ? or [.
func (t Token) HasGlob() bool {
	for _, r := range t {
		if runeIn(r, globChars) {
			return true
		}
	}
	return false
}

// String returns the text of t with quote tags stripped.
func (t Token) String() string {
	var b strings.Builder
	for _, r := range t {
		b.WriteRune(r &^ Quote)
	}
	return b.String()
}

// Escaped returns the text of t with a backslash before every quoted glob
// character and every backslash. This is the argument encoding understood by
// the glob helper.
func (t Token) Escaped() string {
	var b strings.Builder
	for _, r := range t {
		c := r &^ Quote
		if c == '\\' || (r&Quote != 0 && runeIn(c, globChars+"]")) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Source renders t as input text that lexes back to an identical token.
// Quoted runs are wrapped in single quotes where possible. An unquoted $, #
// or backslash is escaped; a backslash can only be unquoted when it came from
// a substitution, and comes back quoted.
func (t Token) Source() string {
	if len(t) == 0 {
		return "''"
	}
	var b strings.Builder
	for i := 0; i < len(t); {
		j := i
		quoted := t[i]&Quote != 0
		for j < len(t) && (t[j]&Quote != 0) == quoted {
			j++
		}
		if quoted {
			writeQuoted(&b, Token(t[i:j]).String())
		} else {
			for _, r := range t[i:j] {
				if r == '$' || r == '#' || r == '\\' {
					b.WriteByte('\\')
				}
				b.WriteRune(r)
			}
		}
		i = j
	}
	return b.String()
}

func writeQuoted(b *strings.Builder, s string) {
	switch {
	case !strings.ContainsRune(s, '\''):
		b.WriteString("'" + s + "'")
	case !strings.ContainsRune(s, '"'):
		b.WriteString(`"` + s + `"`)
	default:
		for _, r := range s {
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
}
