package store

import "fmt"

// Reason classifies store failures.
type Reason string

const (
	// ReasonCorrupt marks an unparseable state file. The store treats the
	// file as empty after reporting it once, so resolution can proceed.
	ReasonCorrupt Reason = "corrupt"
	// ReasonLockTimeout marks a writer that could not take the state lock
	// within its deadline.
	ReasonLockTimeout Reason = "lock-timeout"
	// ReasonIO covers everything else the filesystem can do to us.
	ReasonIO Reason = "io"
)

// StoreError wraps a failure touching the on-disk state.
type StoreError struct {
	Reason Reason
	Path   string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("state store (%s) %s: %v", e.Reason, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
