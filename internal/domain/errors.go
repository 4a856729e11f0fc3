// Package domain defines core types, interfaces, and errors for the data-prep platform.
package domain

import "fmt"

// DataUnavailableError indicates both acquisition sources failed.
type DataUnavailableError struct {
	Message string
}

func (e *DataUnavailableError) Error() string { return e.Message }

// SchemaError indicates an expected column is missing or unparseable.
type SchemaError struct {
	Column  string
	Message string
}

func (e *SchemaError) Error() string { return e.Message }

// StorageWriteError indicates the durable sink was unreachable or rejected a write.
type StorageWriteError struct {
	Path string
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storage write %q: %v", e.Path, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// IngestError indicates the feature-store sink failed. It is recovered at the
// publisher boundary and recorded as a flag, never propagated as a run failure.
type IngestError struct {
	Err error
}

func (e *IngestError) Error() string { return fmt.Sprintf("feature store ingest: %v", e.Err) }

func (e *IngestError) Unwrap() error { return e.Err }

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrDataUnavailable creates a DataUnavailableError with a formatted message.
func ErrDataUnavailable(format string, args ...interface{}) *DataUnavailableError {
	return &DataUnavailableError{Message: fmt.Sprintf(format, args...)}
}

// ErrSchema creates a SchemaError naming the offending column.
func ErrSchema(column, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Column: column, Message: fmt.Sprintf(format, args...)}
}

// ErrStorageWrite wraps a storage fault for the given object path.
func ErrStorageWrite(path string, err error) *StorageWriteError {
	return &StorageWriteError{Path: path, Err: err}
}

// ErrIngest wraps a feature-store fault.
func ErrIngest(err error) *IngestError {
	return &IngestError{Err: err}
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
