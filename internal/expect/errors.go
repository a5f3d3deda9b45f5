package expect

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSuite indicates a suite file could not be decoded or is incomplete
	ErrInvalidSuite = errors.New("invalid suite")

	// ErrNoSuites indicates discovery found no suite files
	ErrNoSuites = errors.New("no suite files found")
)

// SuiteError describes why a suite file was rejected
type SuiteError struct {
	Path   string
	Reason string
}

func (e *SuiteError) Error() string {
	return fmt.Sprintf("invalid suite %s: %s", e.Path, e.Reason)
}

func (e *SuiteError) Unwrap() error {
	return ErrInvalidSuite
}

// NewSuiteError creates a new suite error
func NewSuiteError(path, reason string) error {
	return &SuiteError{Path: path, Reason: reason}
}
