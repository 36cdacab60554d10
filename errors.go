package fitapp

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrConfiguration marks an invalid timezone or window specification.
	ErrConfiguration = errors.New("configuration error")
	// ErrMalformedTimestamp marks an unparsable session start or record timestamp.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	// ErrValidation marks a document missing fields its declared sport requires.
	ErrValidation = errors.New("validation error")
	// ErrAggregation marks body-metric rows or rolling specs that cannot be aggregated.
	ErrAggregation = errors.New("aggregation error")
)

// FieldError attaches the offending field and value to one of the error kinds.
type FieldError struct {
	Kind  error
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (%q)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fieldError(kind error, field, value string, err error) error {
	return &FieldError{Kind: kind, Field: field, Value: value, Err: err}
}
