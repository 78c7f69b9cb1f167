package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies publish failures so a report can tell an operator
// what to do next, without forcing callers to match concrete error types.
type ErrorKind string

const (
	KindBrowserUnreachable    ErrorKind = "browser_unreachable"
	KindCredentialCorrupt     ErrorKind = "credential_corrupt"
	KindLoginTimeout          ErrorKind = "login_timeout"
	KindElementInteraction    ErrorKind = "element_interaction"
	KindVerificationAmbiguous ErrorKind = "verification_ambiguous"
	KindUnknownPlatform       ErrorKind = "unknown_platform"
	KindTaskPanic             ErrorKind = "task_panic"
)

// TaskError carries the failing lifecycle step together with its kind.
type TaskError struct {
	Kind ErrorKind
	Step string
	Err  error
}

func (e *TaskError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Step, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Step, e.Kind, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// NewTaskError wraps err with a lifecycle step and a report kind.
func NewTaskError(kind ErrorKind, step string, err error) *TaskError {
	return &TaskError{Kind: kind, Step: step, Err: err}
}

// KindOf extracts the report kind from err, defaulting to element
// interaction, which is what an unclassified adapter failure is in practice.
func KindOf(err error) ErrorKind {
	var te *TaskError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindElementInteraction
}

type advisoryError struct{ err error }

func (e *advisoryError) Error() string { return "advisory: " + e.err.Error() }
func (e *advisoryError) Unwrap() error { return e.err }

// Advisory marks an adapter failure as non-fatal: the surrounding step is
// logged and the lifecycle continues. Used for optional metadata fields.
func Advisory(err error) error {
	if err == nil {
		return nil
	}
	return &advisoryError{err: err}
}

// IsAdvisory reports whether err was wrapped by Advisory.
func IsAdvisory(err error) bool {
	var ae *advisoryError
	return errors.As(err, &ae)
}

type retryableError struct{ err error }

func (e *retryableError) Error() string { return "retryable: " + e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks a submit-step failure (typically an anti-automation
// challenge) as worth another bounded attempt.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was wrapped by Retryable.
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
