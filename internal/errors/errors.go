package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the msc language service
type ErrorType string

const (
	// Declaration errors are recoverable: the file's contribution is truncated
	ErrorTypeDeclaration ErrorType = "declaration"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeFileRead     ErrorType = "file_read"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Protocol errors (LSP / MCP request decoding)
	ErrorTypeProtocol ErrorType = "protocol"
)

// BlockKind names the declaration block left open.
type BlockKind string

const (
	BlockNamespace BlockKind = "namespace"
	BlockClass     BlockKind = "class"
)

// DeclarationError reports an unterminated namespace or class block.
type DeclarationError struct {
	Type      ErrorType
	FilePath  string
	Line      int
	Block     BlockKind
	Name      string
	Timestamp time.Time
}

// NewDeclarationError creates an unterminated-block error.
func NewDeclarationError(path string, line int, block BlockKind, name string) *DeclarationError {
	return &DeclarationError{
		Type:      ErrorTypeDeclaration,
		FilePath:  path,
		Line:      line,
		Block:     block,
		Name:      name,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *DeclarationError) Error() string {
	where := e.FilePath
	if where == "" {
		where = "<text>"
	}
	return fmt.Sprintf("unterminated %s %q opened at %s:%d", e.Block, e.Name, where, e.Line+1)
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileRead
	switch {
	case errors.Is(err, fs.ErrNotExist):
		errorType = ErrorTypeFileNotFound
	case errors.Is(err, fs.ErrPermission):
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

// NewFileTooLargeError reports a file skipped for exceeding the size limit.
func NewFileTooLargeError(path string, size, limit int64) *FileError {
	return &FileError{
		Type:       ErrorTypeFileTooLarge,
		Path:       path,
		Operation:  "read",
		Underlying: fmt.Errorf("size %d exceeds limit %d", size, limit),
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
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

// ProtocolError wraps a malformed LSP or MCP request.
type ProtocolError struct {
	Type       ErrorType
	Method     string
	Underlying error
	Timestamp  time.Time
}

// NewProtocolError creates a new protocol error
func NewProtocolError(method string, err error) *ProtocolError {
	return &ProtocolError{
		Type:       ErrorTypeProtocol,
		Method:     method,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error in %s: %v", e.Method, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ProtocolError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping nils
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrOrNil returns nil when no errors were collected.
func (e *MultiError) ErrOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
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
