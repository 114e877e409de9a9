package parse

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
)

// A comparable rendering of a node.
type tree struct {
	Kind    string
	Args    string
	In, Out string
	Flags   Flags
	Kids    []tree
}

func toTree(a *Arena, r Ref) tree {
	switch r.Kind() {
	case KindCommand:
		c := a.Command(r)
		return tree{Kind: "cmd", Args: sourceOf(c.Args()), In: tokenText(c.In), Out: tokenText(c.Out), Flags: c.Flags}
	case KindParen:
		p := a.Paren(r)
		return tree{Kind: "paren", In: tokenText(p.In), Out: tokenText(p.Out), Flags: p.Flags,
			Kids: []tree{toTree(a, p.Body)}}
	case KindFilter:
		f := a.Filter(r)
		return tree{Kind: "filter", Flags: f.Flags, Kids: []tree{toTree(a, f.Left), toTree(a, f.Right)}}
	case KindList:
		l := a.List(r)
		return tree{Kind: "list", Flags: l.Flags, Kids: []tree{toTree(a, l.Left), toTree(a, l.Right)}}
	}
	return tree{Kind: "nil"}
}

func tokenText(t Token) string {
	if t == nil {
		return ""
	}
	return t.Source()
}

func cmd(args string, flags Flags) tree { return tree{Kind: "cmd", Args: args, Flags: flags} }

var null = tree{Kind: "nil"}

func list(l, r tree) tree            { return tree{Kind: "list", Kids: []tree{l, r}} }
func filter(f Flags, l, r tree) tree { return tree{Kind: "filter", Flags: f, Kids: []tree{l, r}} }

func parseLine(t *testing.T, text string) (*Arena, Ref, error) {
	t.Helper()
	_, toks, err := Lex(text+"\n", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	// Keep the newline token, as the session does.
	toks = toks[:len(toks)+1]
	a := new(Arena)
	r, err := Parse(toks, a)
	return a, r, err
}

const bg = FlagBackground | FlagAnnounce | FlagInsulate

var parseTests = []struct {
	name string
	text string
	want tree
}{
	{"simple", "echo hi", list(cmd("echo hi", 0), null)},
	{"empty line", "", null},
	{"only separators", " ; ; ", null},
	{"sequence", "a; b", list(cmd("a", 0), list(cmd("b", 0), null))},
	{"background", "a & b", list(cmd("a", bg), list(cmd("b", 0), null))},
	{
		"pipeline nests right",
		"a | b ^ c",
		list(filter(0, cmd("a", 0), filter(0, cmd("b", 0), cmd("c", 0))), null),
	},
	{
		"background pipeline",
		"a | b &",
		list(filter(bg, cmd("a", 0), cmd("b", 0)), null),
	},
	{
		"redirections",
		"cat < in > out",
		list(tree{Kind: "cmd", Args: "cat", In: "in", Out: "out"}, null),
	},
	{
		"append",
		"echo x >> log",
		list(tree{Kind: "cmd", Args: "echo x", Out: "log", Flags: FlagAppend}, null),
	},
	{
		"redirection before args",
		"> out echo x",
		list(tree{Kind: "cmd", Args: "echo x", Out: "out"}, null),
	},
	{
		"paren",
		"(a; b) > f",
		list(tree{Kind: "paren", Out: "f", Kids: []tree{
			list(cmd("a", 0), cmd("b", FlagElide)),
		}}, null),
	},
	{
		"nested paren",
		"((a))",
		list(tree{Kind: "paren", Kids: []tree{
			tree{Kind: "paren", Flags: FlagElide, Kids: []tree{cmd("a", FlagElide)}},
		}}, null),
	},
	{
		"pipe inside paren",
		"(a | b) | c",
		list(filter(0,
			tree{Kind: "paren", Kids: []tree{filter(0, cmd("a", 0), cmd("b", FlagElide))}},
			cmd("c", 0)), null),
	},
	{
		"quoted metachars are words",
		`echo ';' "|" \&`,
		list(cmd("echo ';' '|' '&'", 0), null),
	},
}

func TestParse(t *testing.T) {
	for _, test := range parseTests {
		t.Run(test.name, func(t *testing.T) {
			a, r, err := parseLine(t, test.text)
			if err != nil {
				t.Fatalf("got error %v", err)
			}
			if diff := cmp.Diff(test.want, toTree(a, r)); diff != "" {
				t.Errorf("tree (-want+got):\n%s", diff)
			}
		})
	}
}

var parseErrorTests = []struct {
	text string
	want string
}{
	{"echo >", "missing redirection target"},
	{"echo > > ", "missing redirection target"},
	{"cat < >", "bad redirection target"},
	{"echo > a > b", "duplicate output redirection"},
	{"cat < a < b", "duplicate input redirection"},
	{"(a) b", "arguments with parenthesized list"},
	{"(a) (b)", "more than one parenthesized list"},
	{"(a", "unmatched ("},
	{"a)", "unmatched )"},
	{"| a", "empty command"},
	{"a | ; b", "empty command"},
	{"()", "empty command"},
	{"< f", "empty command"},
}

func TestParse_Errors(t *testing.T) {
	for _, test := range parseErrorTests {
		t.Run(test.text, func(t *testing.T) {
			_, _, err := parseLine(t, test.text)
			var perr Error
			if !errors.As(err, &perr) {
				t.Fatalf("got error %v, want parse.Error", err)
			}
			found := false
			for _, e := range perr.Errors {
				if e.Message == test.want {
					found = true
				}
			}
			if !found {
				t.Errorf("got errors %v, want one with %q", err, test.want)
			}
		})
	}
}

func TestParse_ArenaFull(t *testing.T) {
	// More than a line's worth of tokens; the parser itself has no token limit.
	var toks []Token
	for i := 0; i < NodeCapacity; i++ {
		toks = append(toks, Token("a"), Token(";"))
	}
	toks = append(toks, Token("\n"))
	a := new(Arena)
	if _, err := Parse(toks, a); err != ErrArenaFull {
		t.Errorf("got %v, want ErrArenaFull", err)
	}
	// The arena is usable again after a reset.
	a.Reset()
	toks = []Token{Token("ok"), Token("\n")}
	if _, err := Parse(toks, a); err != nil {
		t.Errorf("after Reset: %v", err)
	}
}

func TestSource_RoundTrip(t *testing.T) {
	for _, text := range []string{
		"echo 'a b' \\$HOME '#x' > out",
		"a | b | c & d ; e",
		"( a ; b & ) >> log",
		"cat < 'in file' | ( sort ; echo done )",
	} {
		a, r, err := parseLine(t, text)
		if err != nil {
			t.Fatalf("%q: %v", text, err)
		}
		src := a.Source(r)
		a2, r2, err := parseLine(t, src)
		if err != nil {
			t.Fatalf("%q rendered as %q: %v", text, src, err)
		}
		if diff := cmp.Diff(toTree(a, r), toTree(a2, r2)); diff != "" {
			t.Errorf("%q rendered as %q (-orig+reparsed):\n%s", text, src, diff)
		}
	}
}

func TestParenSource(t *testing.T) {
	a, r, err := parseLine(t, "(echo $x; cat) > f")
	if err != nil {
		t.Fatal(err)
	}
	paren := a.List(r).Left
	if got, want := a.ParenSource(paren), `( echo \$x ; cat )`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParenSource_SubstitutedBackslash(t *testing.T) {
	params := &Params{Args: []string{`a\b`}}
	_, toks, err := Lex("(echo $1)\n", params, "")
	if err != nil {
		t.Fatal(err)
	}
	toks = toks[:len(toks)+1]
	a := new(Arena)
	r, err := Parse(toks, a)
	if err != nil {
		t.Fatal(err)
	}
	src := a.ParenSource(a.List(r).Left)

	a2, r2, err := parseLine(t, src)
	if err != nil {
		t.Fatalf("%q: %v", src, err)
	}
	body := a2.Paren(a2.List(r2).Left).Body
	if got, want := words(a2.Command(body).Args()), []string{"echo", `a\b`}; !cmp.Equal(got, want) {
		t.Errorf("%q lexed to %q, want %q", src, got, want)
	}
}

func words(toks []Token) []string {
	s := make([]string, len(toks))
	for i, t := range toks {
		s[i] = t.String()
	}
	return s
}

func TestPprintAST(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir(filepath.Join("testdata", "pprint")))
	for name, text := range map[string]string{
		"append":          "echo 'a b' >> log",
		"paren_pipeline":  "(a; b) | c &",
		"redirect_inside": "cat < in | (sort > out)",
	} {
		t.Run(name, func(t *testing.T) {
			a, r, err := parseLine(t, text)
			if err != nil {
				t.Fatal(err)
			}
			g.Assert(t, name, []byte(PprintAST(a, r)))
		})
	}
}
