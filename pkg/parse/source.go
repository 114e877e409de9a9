package parse

import "strings"

// Source renders the tree rooted at r as a single line of input that parses
// back to an equivalent tree.
func (a *Arena) Source(r Ref) string {
	var b strings.Builder
	a.writeSource(&b, r)
	return b.String()
}

// ParenSource renders a parenthesized list without its redirections. This
// is the text handed to a child interpreter, whose redirections have already
// been applied by the parent.
func (a *Arena) ParenSource(r Ref) string {
	var b strings.Builder
	b.WriteString("( ")
	a.writeSource(&b, a.Paren(r).Body)
	b.WriteString(" )")
	return b.String()
}

func (a *Arena) writeSource(b *strings.Builder, r Ref) {
	switch r.Kind() {
	case KindCommand:
		c := a.Command(r)
		b.WriteString(sourceOf(c.Args()))
		writeRedirs(b, c.In, c.Out, c.Flags)
	case KindParen:
		p := a.Paren(r)
		b.WriteString("( ")
		a.writeSource(b, p.Body)
		b.WriteString(" )")
		writeRedirs(b, p.In, p.Out, p.Flags)
	case KindFilter:
		f := a.Filter(r)
		a.writeSource(b, f.Left)
		b.WriteString(" | ")
		a.writeSource(b, f.Right)
	case KindList:
		l := a.List(r)
		a.writeSource(b, l.Left)
		background := a.Flags(l.Left).Has(FlagBackground)
		switch {
		case l.Right.IsNil() && background:
			b.WriteString(" &")
		case l.Right.IsNil():
		case background:
			b.WriteString(" & ")
			a.writeSource(b, l.Right)
		default:
			b.WriteString(" ; ")
			a.writeSource(b, l.Right)
		}
	}
}

func writeRedirs(b *strings.Builder, in, out Token, flags Flags) {
	if in != nil {
		b.WriteString(" < " + in.Source())
	}
	if out != nil {
		if flags.Has(FlagAppend) {
			b.WriteString(" >> ")
		} else {
			b.WriteString(" > ")
		}
		b.WriteString(out.Source())
	}
}
