package core

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Kind classifies a domain error so that callers (HTTP layer, CLI, tests)
// can react without matching on error strings.
type Kind string

const (
	KindUnknown                 Kind = ""
	KindInvalidInput            Kind = "invalid_input"
	KindDuplicateIdentifier     Kind = "duplicate_identifier"
	KindBoardNotFound           Kind = "board_not_found"
	KindBoardNotActive          Kind = "board_not_active"
	KindStudentNotFound         Kind = "student_not_found"
	KindStudentNotInBoard       Kind = "student_not_in_board"
	KindPhotoNotFound           Kind = "photo_not_found"
	KindPhotoUploadFailed       Kind = "photo_upload_failed"
	KindAuthenticationFailed    Kind = "authentication_failed"
	KindInsufficientPermissions Kind = "insufficient_permissions"
	KindDataCorruption          Kind = "data_corruption"
	KindNetworkError            Kind = "network_error"
)

// DomainError carries a Kind alongside the underlying error.
type DomainError struct {
	kind Kind
	err  error
}

func NewError(kind Kind, msg string) *DomainError {
	return &DomainError{kind: kind, err: errors.New(msg)}
}

func NewErrorf(kind Kind, format string, args ...interface{}) *DomainError {
	return &DomainError{kind: kind, err: errors.Errorf(format, args...)}
}

// WrapError attaches a Kind to an existing error, keeping its cause chain.
func WrapError(kind Kind, err error, msg string) *DomainError {
	return &DomainError{kind: kind, err: errors.Wrap(err, msg)}
}

func (e *DomainError) Error() string {
	if e.err == nil {
		return string(e.kind)
	}
	return e.err.Error()
}

func (e *DomainError) Kind() Kind    { return e.kind }
func (e *DomainError) Unwrap() error { return e.err }

// KindOf reports the Kind of err, unwrapping as needed. Validation errors
// count as invalid input; anything unclassified maps to KindNetworkError:
// store-specific errors must not leak past the service layer.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var derr *DomainError
	if errors.As(err, &derr) {
		return derr.kind
	}
	switch errors.Cause(err).(type) {
	case *ValidationError, validator.ValidationErrors:
		return KindInvalidInput
	}
	return KindNetworkError
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return fmt.Sprintf("%s: %s", err.Fields[0].Field, err.Fields[0].Error)
		}
		return ""
	}
	return err.Err.Error()
}
