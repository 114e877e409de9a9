package shell

import (
	"os"

	"github.com/elves/tash/pkg/eval"
	"github.com/elves/tash/pkg/logger"
	"github.com/elves/tash/pkg/parse"
)

// IsSubshell reports whether this process was started to run a
// parenthesized list.
func IsSubshell() bool {
	_, ok := os.LookupEnv(eval.SubshellEnv)
	return ok
}

// Subshell runs a parenthesized list handed over by a parent interpreter as
// "-c text name args..." and returns the exit status. The name and args are
// the parent's positional parameters. The list's redirections have already
// been applied by the parent.
func Subshell(args []string) int {
	modeText := os.Getenv(eval.SubshellEnv)
	os.Unsetenv(eval.SubshellEnv)

	mode, err := eval.ParseSubshellMode(modeText)
	log := logger.New(os.Stdout, os.Stderr, mode.Trace)
	if err != nil {
		log.Errf(logger.Red, "%v", err)
		return eval.StatusSyntaxError
	}
	if len(args) < 4 || args[1] != "-c" {
		log.Errf(logger.Red, "Arg count")
		return eval.StatusSyntaxError
	}
	if mode.Ignoring {
		eval.IgnoreInterrupts()
	}

	params := &parse.Params{Name: args[3], Args: args[4:]}
	_, toks, err := parse.Lex(args[2], params, "")
	if err != nil {
		log.Errf(logger.Red, "%v", err)
		return eval.StatusSyntaxError
	}
	arena := new(parse.Arena)
	root, err := parse.Parse(toks, arena)
	if err != nil || root.Kind() != parse.KindParen {
		log.Errf(logger.Red, "Syntax error")
		return eval.StatusSyntaxError
	}

	self, _ := os.Executable()
	ev := eval.NewEvaler(eval.StdFiles, params, log, eval.Options{
		Interactive:      mode.Interactive,
		IgnoreInterrupts: mode.IgnoreInterrupts,
		GlobHelper:       GlobHelper(""),
		Self:             self,
	})
	status, _ := ev.EnterParen(arena, root, mode.Flags)
	return status
}
