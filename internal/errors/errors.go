// Package errors provides a lightweight structured error type (BuildError)
// for kind-based classification of content build failures in the CLI.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a build error for reporting and policy decisions.
type Kind string

const (
	// Content parsing errors
	KindMalformedHeader Kind = "malformed_header"

	// Template resolution errors
	KindUnknownLayout    Kind = "unknown_layout"
	KindUnknownInclude   Kind = "unknown_include"
	KindMissingParameter Kind = "missing_parameter"

	// Pipeline and infrastructure errors
	KindRender     Kind = "render"
	KindConfig     Kind = "config"
	KindFileSystem Kind = "filesystem"
	KindInternal   Kind = "internal"
)

// BuildError is a structured error with kind and context fields.
type BuildError struct {
	Kind    Kind          `json:"kind"`
	Message string        `json:"message"`
	Cause   error         `json:"cause,omitempty"`
	Context ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildError
type ContextFields map[string]any

// Error implements the error interface
func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if path, ok := e.Context["path"]; ok {
		msg = fmt.Sprintf("%s: %s: %s", e.Kind, path, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithPath tags the error with the offending document's path.
// The build surfaces the path alongside the kind in every failure report.
func (e *BuildError) WithPath(path string) *BuildError {
	return e.WithContext("path", path)
}

// Path returns the document path the error was tagged with, if any.
func (e *BuildError) Path() string {
	if p, ok := e.Context["path"].(string); ok {
		return p
	}
	return ""
}

// New creates a new BuildError
func New(kind Kind, message string) *BuildError {
	return &BuildError{Kind: kind, Message: message}
}

// Wrap creates a new BuildError that wraps an existing error
func Wrap(err error, kind Kind, message string) *BuildError {
	return &BuildError{Kind: kind, Message: message, Cause: err}
}

// KindOf extracts the Kind from any error in err's chain.
// Errors outside the taxonomy report KindInternal.
func KindOf(err error) Kind {
	var be *BuildError
	if stderrors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// PathOf extracts the tagged document path from any error in err's chain.
func PathOf(err error) string {
	var be *BuildError
	if stderrors.As(err, &be) {
		return be.Path()
	}
	return ""
}

// IsKind reports whether any error in err's chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var be *BuildError
	if stderrors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
