package ingest

import "fmt"

// FailureClass tells the transport which protocol-level response to give:
// malformed input is rejected permanently, storage failures ask the sending
// peer to retry delivery.
type FailureClass string

const (
	// FailureMalformed marks input missing mandatory fields. Never retried.
	FailureMalformed FailureClass = "malformed"

	// FailureStorage marks a storage error during threading or persisting.
	// The transport's redelivery mechanism is the retry path.
	FailureStorage FailureClass = "storage"
)

// Error is an ingestion rejection carrying its failure classification.
type Error struct {
	Class FailureClass
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Class)
	}
	return fmt.Sprintf("%s: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func malformed(format string, args ...any) error {
	return &Error{Class: FailureMalformed, Err: fmt.Errorf(format, args...)}
}

func storageFailure(err error) error {
	return &Error{Class: FailureStorage, Err: err}
}
