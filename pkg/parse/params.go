package parse

// Params holds the positional parameters. Name is $0; Args are $1 onwards.
type Params struct {
	Name string
	Args []string
}

// Lookup returns positional parameter n.
func (p *Params) Lookup(n int) (string, bool) {
	switch {
	case n == 0:
		return p.Name, true
	case n > 0 && n <= len(p.Args):
		return p.Args[n-1], true
	}
	return "", false
}

// Shift drops $1 and renumbers the rest. It returns false when there is
// nothing to shift.
func (p *Params) Shift() bool {
	if len(p.Args) == 0 {
		return false
	}
	p.Args = p.Args[1:]
	return true
}
