package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is implemented by errors that map onto an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinels for errors.Is matching.
var (
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage failure")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("already exists")
)

// NotFoundError reports a missing segment, attachment or storage object.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFound(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StorageError wraps a failure of the object storage backend.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error        { return e.Err }
func (e *StorageError) StatusCode() int      { return http.StatusBadGateway }
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// ValidationError reports malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError reports a uniqueness violation, e.g. a slug already in use.
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

func (e *ConflictError) StatusCode() int      { return http.StatusConflict }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
