package course

import (
	"errors"
	"fmt"

	"github.com/pot-code/course-tracker/internal/infrastructure/validate"
)

// ErrCourseNotFound the referenced course does not exist
var ErrCourseNotFound = errors.New("course not found")

var errNoData = &ValidationError{Message: "no data provided"}

// ValidationError malformed or out of range input
type ValidationError struct {
	Message string
	Fields  []*validate.FieldError
}

func (ve *ValidationError) Error() string {
	return ve.Message
}

// NewValidationError builds a ValidationError whose message joins every field reason
func NewValidationError(fields []*validate.FieldError) *ValidationError {
	return &ValidationError{
		Message: validate.Join(fields),
		Fields:  fields,
	}
}

// StorageError a failed call to the storage backend
type StorageError struct {
	Op  string
	Err error
}

func (se *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", se.Op, se.Err)
}

func (se *StorageError) Unwrap() error {
	return se.Err
}

// storageError re-signals err as a StorageError unless it already is one of
// the service level kinds
func storageError(op string, err error) error {
	if err == nil || errors.Is(err, ErrCourseNotFound) {
		return err
	}
	var (
		ve *ValidationError
		se *StorageError
	)
	if errors.As(err, &ve) || errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
