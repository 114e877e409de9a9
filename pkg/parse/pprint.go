package parse

import (
	"bytes"
	"strings"
)

// PprintAST renders the tree rooted at r, one field per line.
func PprintAST(a *Arena, r Ref) string {
	var b bytes.Buffer
	pprintAST(&b, "", a, r)
	return b.String()
}

func pprintAST(buf *bytes.Buffer, indent string, a *Arena, r Ref) {
	indent1 := indent + "  "
	field := func(name string) {
		buf.WriteString("\n" + indent1 + "." + name + " = ")
	}
	tokenField := func(name string, t Token) {
		field(name)
		if t == nil {
			buf.WriteString("nil")
		} else {
			buf.WriteString(t.Source())
		}
	}

	switch r.Kind() {
	case KindCommand:
		c := a.Command(r)
		buf.WriteString("Command")
		field("Args")
		buf.WriteString(sourceOf(c.Args()))
		tokenField("In", c.In)
		tokenField("Out", c.Out)
		field("Flags")
		buf.WriteString(c.Flags.String())
	case KindParen:
		p := a.Paren(r)
		buf.WriteString("Paren")
		field("Body")
		pprintAST(buf, indent1, a, p.Body)
		tokenField("In", p.In)
		tokenField("Out", p.Out)
		field("Flags")
		buf.WriteString(p.Flags.String())
	case KindFilter, KindList:
		var left, right Ref
		var flags Flags
		if r.Kind() == KindFilter {
			f := a.Filter(r)
			buf.WriteString("Filter")
			left, right, flags = f.Left, f.Right, f.Flags
		} else {
			l := a.List(r)
			buf.WriteString("List")
			left, right, flags = l.Left, l.Right, l.Flags
		}
		field("Left")
		pprintAST(buf, indent1, a, left)
		field("Right")
		pprintAST(buf, indent1, a, right)
		field("Flags")
		buf.WriteString(flags.String())
	default:
		buf.WriteString("nil")
	}
}

func sourceOf(toks []Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Source()
	}
	return strings.Join(parts, " ")
}
