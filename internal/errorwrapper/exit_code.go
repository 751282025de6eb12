package errorwrapper

import "errors"

// ExitCode represents the process exit code an error should map to when it
// reaches the top of main. Values should stay between 0 and 125.
type ExitCode uint8

// Exit codes used by the chromegate binaries.
const (
	ExitSuccess ExitCode = 0
	ExitFailure ExitCode = 1
)

// HasExitCode is a wrapper around an error with an attached exit code.
type HasExitCode interface {
	error
	ExitCode() ExitCode
}

// WithExitCodeIfNone attaches an exit code to the given error unless it
// already carries one. A nil error stays nil.
func WithExitCodeIfNone(err error, exitCode ExitCode) error {
	if err == nil {
		return nil
	}
	var ecerr HasExitCode
	if errors.As(err, &ecerr) {
		return err
	}
	return withExitCode{err, exitCode}
}

type withExitCode struct {
	error
	exitCode ExitCode
}

func (we withExitCode) Unwrap() error {
	return we.error
}

func (we withExitCode) ExitCode() ExitCode {
	return we.exitCode
}

var _ HasExitCode = withExitCode{}
