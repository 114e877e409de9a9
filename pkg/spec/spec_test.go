package spec_test

import (
	"embed"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.elv.sh/pkg/must"
	"src.elv.sh/pkg/testutil"

	"github.com/elves/tash/pkg/eval"
	"github.com/elves/tash/pkg/glob"
	"github.com/elves/tash/pkg/logger"
	"github.com/elves/tash/pkg/parse"
	"github.com/elves/tash/pkg/shell"
)

type spec struct {
	suite string
	name  string
	code  string
	argv  []string

	// Acceptable alternatives. A nil stdout or stderr is not checked.
	status []int
	stdout []string
	stderr []string
}

//go:embed testdata/*.test.sh
var specFiles embed.FS

var specs = parseSpecFilesInFS(must.OK1(fs.Sub(specFiles, "testdata")))

const globHelperArg = "--glob-helper"

// The test binary doubles as the child interpreter for parenthesized lists
// and as the glob helper.
func TestMain(m *testing.M) {
	if shell.IsSubshell() {
		os.Exit(shell.Subshell(os.Args))
	}
	if len(os.Args) > 1 && os.Args[1] == globHelperArg {
		os.Exit(glob.Main(os.Args[1:], logger.New(os.Stdout, os.Stderr, false)))
	}
	self := must.OK1(os.Executable())
	os.Setenv(shell.GlobEnv, "'"+self+"' "+globHelperArg)
	os.Exit(m.Run())
}

func TestSpecs(t *testing.T) {
	for _, spec := range specs {
		spec := spec
		t.Run(spec.suite+"/"+spec.name, func(t *testing.T) {
			testutil.InTempDir(t)
			status, stdout, stderr := runSpec(spec, eval.Options{})
			if !contains(spec.status, status) {
				t.Errorf("got status %v, want any of %v", status, spec.status)
			}
			if spec.stdout != nil && !contains(spec.stdout, stdout) {
				t.Errorf("stdout (-want+got):\n%v", cmp.Diff(spec.stdout[0], stdout))
			}
			if spec.stderr != nil && !contains(spec.stderr, stderr) {
				t.Errorf("stderr (-want+got):\n%v", cmp.Diff(spec.stderr[0], stderr))
			}
			if t.Failed() {
				t.Logf("code is:\n%v", spec.code)
			}
		})
	}
}

var interruptSpecs = []struct {
	name   string
	code   string
	stdout string
	stderr string
}{
	{
		"background subshell keeps ignoring",
		"(sh -c 'kill -INT $$; echo inner'; echo survived) > f & wait; cat f",
		`^\d+\ninner\nsurvived\n$`, "",
	},
	{
		"foreground subshell can be interrupted",
		"(sh -c 'kill -INT $$'; echo after); echo next",
		`^next\n$`, "\n",
	},
}

func TestSpecs_IgnoringInterrupts(t *testing.T) {
	eval.IgnoreInterrupts()
	t.Cleanup(func() { signal.Reset(syscall.SIGINT, syscall.SIGQUIT) })
	for _, test := range interruptSpecs {
		t.Run(test.name, func(t *testing.T) {
			testutil.InTempDir(t)
			status, stdout, stderr := runSpec(spec{code: test.code}, eval.Options{IgnoreInterrupts: true})
			if status != 0 {
				t.Errorf("got status %v, want 0", status)
			}
			if !regexp.MustCompile(test.stdout).MatchString(stdout) {
				t.Errorf("got stdout %q, want match for %q", stdout, test.stdout)
			}
			if stderr != test.stderr {
				t.Errorf("got stderr %q, want %q", stderr, test.stderr)
			}
		})
	}
}

// runSpec runs the code of a spec in a fresh interpreter and returns the exit
// status, stdout and stderr.
func runSpec(spec spec, opts eval.Options) (int, string, string) {
	files, read := makeFiles()
	log := &logger.Logger{Stdout: files[1], Stderr: files[2]}
	params := &parse.Params{Name: "tash", Args: spec.argv}
	opts.GlobHelper = shell.GlobHelper("")
	opts.Self = must.OK1(os.Executable())
	ev := eval.NewEvaler(files, params, log, opts)
	sh := shell.New(strings.NewReader(spec.code), ev, params,
		strconv.Itoa(os.Getpid()), log, shell.Options{})
	status := sh.Run()
	stdout, stderr := read()
	return status, stdout, stderr
}

func contains[T comparable](s []T, v T) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

var devNull = must.OK1(os.Open(os.DevNull))

func makeFiles() ([]*os.File, func() (string, string)) {
	file1, read1 := outputPipe()
	file2, read2 := outputPipe()
	return []*os.File{devNull, file1, file2}, func() (string, string) {
		return read1(), read2()
	}
}

func outputPipe() (*os.File, func() string) {
	r, w := must.Pipe()
	ch := make(chan string)
	go func() {
		ch <- string(must.OK1(io.ReadAll(r)))
		r.Close()
	}()
	return w, func() string {
		w.Close()
		return <-ch
	}
}
