// Package wmerrors defines the error taxonomy of the window manager
// core (spec §7). Each Code carries a Recoverable classification:
// recoverable conditions are surfaced as state the compositor or
// scheduler reacts to, never as a panic; only programmer misuse
// (InvalidBounds) is meant to reach a caller as a hard failure.
//
// Grounded on dayronmiranda-claude-monitor's pkg/errors: a Code enum
// plus a struct implementing error, constructors, and a classification
// method — adapted from that package's HTTP-status mapping to a
// Recoverable() bool, since nothing here answers an HTTP request.
package wmerrors

import "fmt"

// Code identifies the kind of failure, matching spec.md §7's taxonomy.
type Code string

const (
	// InvalidBounds is raised by Grid.Set/Get when called with explicit
	// coordinates outside the grid. Programmer misuse; not recoverable.
	InvalidBounds Code = "INVALID_BOUNDS"

	// RenderFault is raised when a control panics or returns malformed
	// output during Render. The frame continues with a diagnostic row.
	RenderFault Code = "RENDER_FAULT"

	// CloseVetoed is returned by Window.TryClose when an OnClosing
	// handler declined the close.
	CloseVetoed Code = "CLOSE_VETOED"

	// HungBackgroundTask marks a window whose background task ignored
	// cancellation past its grace period; the window becomes an error
	// boundary instead of being removed.
	HungBackgroundTask Code = "HUNG_BACKGROUND_TASK"

	// DriverIOFault is raised when the console driver's write fails.
	DriverIOFault Code = "DRIVER_IO_FAULT"

	// ModalBlocked means input targeted a window covered by a modal
	// descendant; not an error to the caller, just a redirect+flash.
	ModalBlocked Code = "MODAL_BLOCKED"
)

// Error is the taxonomy's single error type: a Code, a human message,
// and optional structured Details (e.g. the offending coordinates).
type Error struct {
	Code    Code
	Message string
	Details any
}

func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs an Error of the given Code.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails attaches structured context and returns the receiver.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// Recoverable reports whether the compositor/scheduler should treat
// this as ongoing state rather than a fatal condition. Only a grid
// index error from programmer misuse is unrecoverable in the sense
// that the caller asked for something the grid cannot satisfy; the
// caller may still choose to ignore it, but the core never retries it.
func (e *Error) Recoverable() bool {
	return e.Code != InvalidBounds
}

// Predefined, parameterless instances for common cases.
var (
	ErrCloseVetoed = New(CloseVetoed, "OnClosing handler vetoed the close")
	ErrModalBlocked = New(ModalBlocked, "input redirected to modal descendant")
)

// OutOfRange builds an InvalidBounds error carrying the offending
// coordinate and grid dimensions.
func OutOfRange(x, y, w, h int) *Error {
	return New(InvalidBounds, "coordinate outside grid").WithDetails(struct {
		X, Y, W, H int
	}{x, y, w, h})
}
