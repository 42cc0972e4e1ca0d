package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotSignedIn is returned when an operation needs a verified session.
	ErrNotSignedIn = errors.New("application: not signed in")
	// ErrNotAllowed is returned when the signed-in role may not perform an operation.
	ErrNotAllowed = errors.New("application: not allowed for this role")
	// ErrNoAlbumOpen is returned by album detail operations before an album is opened.
	ErrNoAlbumOpen = errors.New("application: no album open")
	// ErrNotFound is returned when a referenced album or photo is not loaded.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidEventLink is returned for event links missing a parameter.
	ErrInvalidEventLink = errors.New("application: invalid event link")
	// ErrInvalidLinkType is returned for event links with an unknown type.
	ErrInvalidLinkType = errors.New("application: invalid link type")
)

// ValidationError captures input problems detected before any network call.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface. Field messages are joined in field
// order so the text is stable.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, v.FieldErrors[field])
	}
	return strings.Join(messages, " ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func validationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}
