package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"src.elv.sh/pkg/sys"

	"github.com/elves/tash/pkg/eval"
	"github.com/elves/tash/pkg/logger"
	"github.com/elves/tash/pkg/parse"
	"github.com/elves/tash/pkg/shell"
)

var (
	command     = pflag.StringP("command", "c", "", "execute the given line and exit")
	oneLine     = pflag.BoolP("one-line", "t", false, "execute one line from stdin and exit")
	interactive = pflag.BoolP("interactive", "i", false, "run interactively even if stdin is not a terminal")
	trace       = pflag.BoolP("trace", "x", false, "print each command before running it")
	printAST    = pflag.Bool("print-ast", false, "print AST")
	globHelper  = pflag.String("glob-helper", "", "command line of the pathname expansion helper (default $"+shell.GlobEnv+", then tashglob)")
)

func main() {
	if shell.IsSubshell() {
		os.Exit(shell.Subshell(os.Args))
	}

	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()
	args := pflag.Args()
	log := logger.New(os.Stdout, os.Stderr, *trace)

	// A login shell is started with a leading - in argv[0].
	setintr := strings.HasPrefix(os.Args[0], "-")
	params := &parse.Params{Name: os.Args[0]}
	isInteractive := false
	var src shell.Source
	switch {
	case pflag.CommandLine.Changed("command"):
		src = strings.NewReader(*command)
		params.Args = args
		setintr = true
	case *oneLine:
		src = shell.OneLine(shell.NewFileSource(os.Stdin))
		params.Args = args
		setintr = true
	case len(args) > 0:
		f, err := os.Open(args[0])
		if err != nil {
			log.Errf(logger.Red, "%s: cannot open", args[0])
			os.Exit(1)
		}
		src = shell.NewFileSource(f)
		params = &parse.Params{Name: args[0], Args: args[1:]}
	default:
		src = shell.NewFileSource(os.Stdin)
		isInteractive = *interactive || sys.IsATTY(os.Stdin.Fd())
		setintr = setintr || isInteractive
	}
	if setintr {
		eval.IgnoreInterrupts()
	}

	if *globHelper != "" {
		// Child interpreters find the helper the same way.
		os.Setenv(shell.GlobEnv, *globHelper)
	}
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}
	ev := eval.NewEvaler(eval.StdFiles, params, log, eval.Options{
		Interactive:      isInteractive,
		IgnoreInterrupts: setintr,
		GlobHelper:       shell.GlobHelper(*globHelper),
		Self:             self,
	})

	prompt := ""
	if isInteractive {
		prompt = "% "
		if os.Getuid() == 0 {
			prompt = "# "
		}
	}
	sh := shell.New(src, ev, params, strconv.Itoa(os.Getpid()), log, shell.Options{
		Prompt:      prompt,
		Interactive: isInteractive,
		PrintAST:    *printAST,
	})
	os.Exit(sh.Run())
}
