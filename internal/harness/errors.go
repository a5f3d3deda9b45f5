package harness

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactUnreadable indicates a site artifact is missing, unreadable or not UTF-8
	ErrArtifactUnreadable = errors.New("artifact unreadable")

	// ErrAssertionFailed indicates loaded text does not meet an expectation
	ErrAssertionFailed = errors.New("assertion failed")
)

// SetupError aborts every check of the group that depends on the artifact
type SetupError struct {
	Path   string
	Reason string
	Err    error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot load %s: %s", e.Path, e.Reason)
}

func (e *SetupError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrArtifactUnreadable, e.Err}
	}
	return []error{ErrArtifactUnreadable}
}

// NewSetupError creates a new setup error
func NewSetupError(path, reason string, err error) error {
	return &SetupError{Path: path, Reason: reason, Err: err}
}

// AssertionError reports the expected structure and what was found instead
type AssertionError struct {
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
}

func (e *AssertionError) Unwrap() error {
	return ErrAssertionFailed
}

func fail(expected, actualFormat string, args ...any) error {
	return &AssertionError{
		Expected: expected,
		Actual:   fmt.Sprintf(actualFormat, args...),
	}
}
