package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound: the target id does not resolve through the registry.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: authenticated caller does not own the target provider.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownKind: a provider kind outside the closed enumeration.
	// This is a programming/config defect and must abort the request,
	// never default to one kind.
	ErrUnknownKind = errors.New("unknown provider kind")
)

// FieldError names one violated payload field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every offending field of a payload, not just the
// first. A write that produces one is rolled back completely.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// OrNil returns nil when no field was flagged, so callers can build up an
// error and return it unconditionally.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
