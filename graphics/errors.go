package graphics

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSurfaceLost means the surface must be reconfigured before the next acquire.
	ErrSurfaceLost = errors.New("surface lost")
	// ErrTimeout means no surface texture became available in time.
	ErrTimeout = errors.New("surface acquire timed out")
	// ErrDeviceLost is never recoverable.
	ErrDeviceLost  = errors.New("device lost")
	ErrOutOfMemory = errors.New("out of gpu memory")
	// ErrReleased is returned by a GpuContext or pool used after Release.
	ErrReleased = errors.New("resource already released")
)

// DeviceError reports a device or surface operation that failed without
// invalidating the device.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ShaderCompileError carries the compiler output verbatim.
type ShaderCompileError struct {
	Label   string
	Message string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("shader %q failed to compile: %s", e.Label, e.Message)
}

// LayoutMismatchError lists every disagreement between a pipeline's declared
// layout and what its shader consumes.
type LayoutMismatchError struct {
	Label    string
	Problems []string
}

func (e *LayoutMismatchError) Error() string {
	return fmt.Sprintf("pipeline %q layout mismatch: %s", e.Label, strings.Join(e.Problems, "; "))
}

type Severity int

const (
	Recoverable Severity = iota
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "recoverable"
}

// RenderError is what a frame's render step reports to the frame loop.
type RenderError struct {
	Severity Severity
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render (%s): %v", e.Severity, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func NewRecoverable(err error) *RenderError {
	return &RenderError{Severity: Recoverable, Err: err}
}

func NewFatal(err error) *RenderError {
	return &RenderError{Severity: Fatal, Err: err}
}

// Classify wraps err into a RenderError. Errors that already carry a
// severity keep it; device loss and memory exhaustion are fatal; anything
// else is treated as recoverable.
func Classify(err error) *RenderError {
	if err == nil {
		return nil
	}
	var re *RenderError
	if errors.As(err, &re) {
		return re
	}
	if errors.Is(err, ErrDeviceLost) || errors.Is(err, ErrOutOfMemory) || errors.Is(err, ErrReleased) {
		return NewFatal(err)
	}
	return NewRecoverable(err)
}

// IsFatal reports whether err must stop the frame loop.
func IsFatal(err error) bool {
	re := Classify(err)
	return re != nil && re.Severity == Fatal
}
