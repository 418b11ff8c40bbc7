package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// Error types for the analysis pipeline
type ErrorType string

const (
	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	// Extraction errors
	ErrorTypeParse    ErrorType = "parse"
	ErrorTypeManifest ErrorType = "manifest"

	// Limits
	ErrorTypeResourceCap ErrorType = "resource_cap"

	// Configuration / input errors
	ErrorTypeConfig ErrorType = "config"
)

// Diagnosable is implemented by every non-fatal error kind so the pipeline
// can record it instead of failing.
type Diagnosable interface {
	error
	Diagnostic(stage string) types.Diagnostic
}

// FileError represents an inaccessible path (permission, not found, broken symlink)
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// isPermissionError checks if the error is a permission error
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// Diagnostic converts the error to a non-fatal diagnostic
func (e *FileError) Diagnostic(stage string) types.Diagnostic {
	return types.Diagnostic{
		Kind:    types.DiagInaccessiblePath,
		Stage:   stage,
		Path:    e.Path,
		Message: e.Error(),
	}
}

// ParseError represents a failure to extract data from a single file
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Language   string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path, language string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Language:   language,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Language != "" {
		return fmt.Sprintf("parse error in %s (%s): %v", e.FilePath, e.Language, e.Underlying)
	}
	return fmt.Sprintf("parse error in %s: %v", e.FilePath, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// Diagnostic converts the error to a non-fatal diagnostic
func (e *ParseError) Diagnostic(stage string) types.Diagnostic {
	return types.Diagnostic{
		Kind:    types.DiagParseFailure,
		Stage:   stage,
		Path:    e.FilePath,
		Message: e.Error(),
	}
}

// ManifestError represents a dependency manifest that could not be read or parsed
type ManifestError struct {
	Type       ErrorType
	Path       string
	Ecosystem  string
	Underlying error
	Timestamp  time.Time
}

// NewManifestError creates a new manifest error
func NewManifestError(path, ecosystem string, err error) *ManifestError {
	return &ManifestError{
		Type:       ErrorTypeManifest,
		Path:       path,
		Ecosystem:  ecosystem,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ManifestError) Error() string {
	return fmt.Sprintf("%s manifest %s unreadable, using marker detection only: %v", e.Ecosystem, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ManifestError) Unwrap() error {
	return e.Underlying
}

// Diagnostic converts the error to a non-fatal diagnostic
func (e *ManifestError) Diagnostic(stage string) types.Diagnostic {
	return types.Diagnostic{
		Kind:    types.DiagManifestFailure,
		Stage:   stage,
		Path:    e.Path,
		Message: e.Error(),
	}
}

// ResourceCapError records a deterministic truncation
type ResourceCapError struct {
	Type      ErrorType
	Resource  string
	Limit     int
	Actual    int
	Timestamp time.Time
}

// NewResourceCapError creates a new resource cap error
func NewResourceCapError(resource string, limit, actual int) *ResourceCapError {
	return &ResourceCapError{
		Type:      ErrorTypeResourceCap,
		Resource:  resource,
		Limit:     limit,
		Actual:    actual,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *ResourceCapError) Error() string {
	return fmt.Sprintf("%s cap of %d exceeded (%d found), analyzed the first %d in path order",
		e.Resource, e.Limit, e.Actual, e.Limit)
}

// Diagnostic converts the error to a non-fatal diagnostic
func (e *ResourceCapError) Diagnostic(stage string) types.Diagnostic {
	return types.Diagnostic{
		Kind:    types.DiagResourceCap,
		Stage:   stage,
		Message: e.Error(),
	}
}

// ConfigError represents invalid input arguments or configuration. It is the
// only error kind that aborts an analysis run.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// IsConfigError reports whether err (or anything it wraps) is a ConfigError
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ToDiagnostic converts any error into a diagnostic. Errors that do not carry
// their own kind are reported as parse failures against path.
func ToDiagnostic(stage, path string, err error) types.Diagnostic {
	var d Diagnosable
	if errors.As(err, &d) {
		return d.Diagnostic(stage)
	}
	return types.Diagnostic{
		Kind:    types.DiagParseFailure,
		Stage:   stage,
		Path:    path,
		Message: err.Error(),
	}
}
