package rhachis

import (
	"errors"
	"fmt"
)

// InitError is returned when the runtime could not start. Stage names the
// step that failed.
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialization failed during %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// ExitError carries a non-zero exit code requested through GameData.Exit.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ErrNotRunning is returned by Step when the loop is not in the Running state.
var ErrNotRunning = errors.New("frame loop is not running")

// ExitCode maps the result of App.Run to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return 1
}
