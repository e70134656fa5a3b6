package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidLink        = errors.New("invalid link")
)

// ValidationError carries field-keyed messages. It is returned before any
// write happens.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add appends a message for field and returns the receiver for chaining.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

// OrNil returns nil when no field failed, so callers can `return verr.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// BadRequestError is a client error without a field, rendered as
// {"detail": Detail}.
type BadRequestError struct {
	Detail string
}

func (e *BadRequestError) Error() string {
	return e.Detail
}

func badRequest(detail string) error {
	return &BadRequestError{Detail: detail}
}

func fieldError(field, msg string) error {
	return (&ValidationError{}).Add(field, msg)
}

// merge copies the fields of a *ValidationError into e and reports whether
// err was one. Other errors are left to the caller.
func (e *ValidationError) merge(err error) bool {
	other, ok := AsValidation(err)
	if !ok {
		return false
	}
	for field, msgs := range other.Fields {
		for _, msg := range msgs {
			e.Add(field, msg)
		}
	}
	return true
}

func notFound(msg string) error {
	return errors.Wrap(ErrNotFound, msg)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// AsValidation extracts a *ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// NotFoundMessage returns the human message wrapped around ErrNotFound.
func NotFoundMessage(err error) string {
	msg := err.Error()
	suffix := ": " + ErrNotFound.Error()
	if strings.HasSuffix(msg, suffix) {
		return strings.TrimSuffix(msg, suffix)
	}
	return "Not found."
}
