package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var errInvalidCredentials = errors.New("invalid credentials")

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
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return err.Fields[0].Field + ": " + err.Fields[0].Error
	}
	return "validation failed"
}

// AuthError is returned when a login attempt fails.
// The message never tells whether the id or the password was wrong.
type AuthError struct{}

func NewAuthError() error {
	return &AuthError{}
}

func (AuthError) Error() string {
	return errInvalidCredentials.Error()
}

// NotFoundError reports a reference to a nonexistent subject, topic, student or quiz.
type NotFoundError struct {
	Kind string
	Key  string
}

func NewNotFoundError(kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

func (err NotFoundError) Error() string {
	if err.Key == "" {
		return err.Kind + " not found"
	}
	return fmt.Sprintf("%s %q not found", err.Kind, err.Key)
}

func IsAuth(err error) bool {
	_, ok := errors.Cause(err).(*AuthError)
	return ok
}

func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}
