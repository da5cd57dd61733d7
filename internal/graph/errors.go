package graph

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the core.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindStorage    ErrorKind = "storage"
	KindInput      ErrorKind = "input"
	KindNotFound   ErrorKind = "not_found"
)

// Error is the error type returned by graph, store and engine operations.
// Every kind is recoverable at the operation level.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidation reports a structurally invalid working set, e.g. a link to an
// unknown node.
func NewValidation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewStorage reports a failed load or save in the data store.
func NewStorage(message string, err error) error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// NewInput reports rejected user input. fields maps field name to problem.
func NewInput(message string, fields map[string]string) error {
	return &Error{Kind: KindInput, Message: message, Fields: fields}
}

// NewNotFound reports a lookup of an id outside the working set.
func NewNotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func kindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool { return kindOf(err) == KindValidation }
func IsStorage(err error) bool    { return kindOf(err) == KindStorage }
func IsInput(err error) bool      { return kindOf(err) == KindInput }
func IsNotFound(err error) bool   { return kindOf(err) == KindNotFound }

// FieldErrors returns the per-field problems carried by an input error.
func FieldErrors(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
