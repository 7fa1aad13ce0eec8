// Package errors provides structured error reporting for piece lifecycles.
//
// Errors produced by mount, update and teardown actions are always returned
// to callers unchanged. Package piece additionally reports them here,
// wrapped in a PieceError, so an application can observe lifecycle failures
// in one place without changing control flow.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindMount indicates a failing mount action.
	KindMount
	// KindUpdate indicates a failing update action.
	KindUpdate
	// KindTeardown indicates a failing teardown action.
	KindTeardown
	// KindState indicates an operation invoked in the wrong lifecycle state.
	KindState
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindMount:
		return "mount"
	case KindUpdate:
		return "update"
	case KindTeardown:
		return "teardown"
	case KindState:
		return "state"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// PieceError describes a failed lifecycle operation on a mounted piece.
type PieceError struct {
	// Op is the operation that failed (e.g., "piece.Unmount").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// ID is the identifier of the instance involved, if any.
	ID string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *PieceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s [%s] id=%s: %v", e.Op, e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *PieceError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "cmd.render").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by package piece and its tools.
type ErrorHandler interface {
	// HandleError is called when a lifecycle operation fails.
	HandleError(err *PieceError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
