package eval

// Status codes returned by the interpreter itself.
//
// The status codes for a command that can't be executed or found and for a
// command killed by a signal follow POSIX. The rest only need to be between
// 1 and 125.
//
// The practice of using 0 for no error is really well known, so we don't define
// a constant for it; code should just use 0.
const (
	// Same as dash and bash.
	StatusSyntaxError = 2

	StatusBuiltinError     = 1
	StatusRedirectionError = 1

	// Not sure what other shells use for the following error conditions.
	StatusPipeError = 100
	StatusForkError = 101
	StatusWaitOther = 102

	// Specified by POSIX.
	StatusCommandNotExecutable = 126
	StatusCommandNotFound      = 127
	StatusSignalBase           = 128
)
