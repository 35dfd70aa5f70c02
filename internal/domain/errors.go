package domain

import (
	"errors"
	"fmt"

	m "github.com/verus-tools/vstrip/internal/model"
)

// StructuralError reports source whose delimiters never balance, so block
// unwrapping cannot find the end of a verus! group.
type StructuralError struct {
	Path m.Path
	Err  error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: malformed source: %v", e.Path, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// ParseError reports source the structural parser could not make sense of.
type ParseError struct {
	Path m.Path
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError reports a failure to deliver stripped output.
type WriteError struct {
	Path m.Path
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: write: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// CheckError reports stripped output that is not plain parseable Rust.
type CheckError struct {
	Path   m.Path
	Detail string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: stripped output failed validation: %s", e.Path, e.Detail)
}

// ConfigError reports an invalid option combination before any file is
// touched.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// IsSourceError reports whether err originates in the input source rather
// than in the environment, so callers can keep going over remaining files.
func IsSourceError(err error) bool {
	var se *StructuralError
	var pe *ParseError

	return errors.As(err, &se) || errors.As(err, &pe)
}
