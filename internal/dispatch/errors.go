package dispatch

import "fmt"

// FailureKind classifies apply failures.
type FailureKind string

const (
	// FailureUnsupported means no backend exists for the compositor.
	FailureUnsupported FailureKind = "unsupported"
	// FailureCommand means the backend helper exited non-zero.
	FailureCommand FailureKind = "command-failed"
	// FailureTimeout means the backend helper was killed on deadline.
	FailureTimeout FailureKind = "timeout"
)

// DispatchError wraps a failed wallpaper apply.
type DispatchError struct {
	Kind    FailureKind
	Monitor string
	Err     error
}

func (e *DispatchError) Error() string {
	if e.Monitor != "" {
		return fmt.Sprintf("apply on %s (%s): %v", e.Monitor, e.Kind, e.Err)
	}
	return fmt.Sprintf("apply (%s): %v", e.Kind, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
