// Package errors provides error types and utilities for the job transcoder and its collaborators.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotConnected     = errors.New("not connected")
	ErrJobNotFound      = errors.New("job not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrUnknownConnector = errors.New("unknown connector")
	ErrUnknownLink      = errors.New("unknown link")
	ErrNoQueue          = errors.New("queue name cannot be empty")
)

// ParseError is returned when JSON text cannot be turned into a document
type ParseError struct {
	Err error // underlying decoder error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingFieldError is returned when a required field is absent on restore
type MissingFieldError struct {
	Entity string // "job", "input", "config", "envelope"
	Field  string // wire key
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Entity, e.Field)
}

// FormatError is returned when a value's JSON kind disagrees with what its
// declared type requires
type FormatError struct {
	Field    string // wire key or input name
	Expected string // expected kind or type tag
	Got      string // description of what was found
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("field %s: expected %s, got %s", e.Field, e.Expected, e.Got)
}

// SchemaMismatchError is returned when wire config data disagrees with the
// skeleton it is restored into
type SchemaMismatchError struct {
	Config string // config (or connector) name
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: %s", e.Config, e.Reason)
}

// StoreError represents job store errors
type StoreError struct {
	Op  string // operation being performed
	Key string // store key (if applicable)
	Err error  // underlying error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store %s on %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// BrokerError represents message broker errors
type BrokerError struct {
	Op    string // operation being performed
	Queue string // queue name (if applicable)
	Err   error  // underlying error
}

func (e *BrokerError) Error() string {
	if e.Queue != "" {
		return fmt.Sprintf("broker %s on queue %s: %v", e.Op, e.Queue, e.Err)
	}
	return fmt.Sprintf("broker %s: %v", e.Op, e.Err)
}

func (e *BrokerError) Unwrap() error {
	return e.Err
}

// SerializationError represents serialization/deserialization errors
type SerializationError struct {
	Format string // serialization format
	Err    error  // underlying error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization (%s): %v", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// ConnectionError represents connection-related errors
type ConnectionError struct {
	URI string // connection URI (may be redacted)
	Err error  // underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s: %v", e.URI, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Temporary() bool {
	if t, ok := e.Err.(interface{ Temporary() bool }); ok {
		return t.Temporary()
	}
	return false
}

func (e *ConnectionError) Timeout() bool {
	if t, ok := e.Err.(interface{ Timeout() bool }); ok {
		return t.Timeout()
	}
	return false
}

// Helper functions for creating errors

// NewParseError creates a new parse error
func NewParseError(err error) error {
	return &ParseError{Err: err}
}

// NewMissingFieldError creates a new missing field error
func NewMissingFieldError(entity, field string) error {
	return &MissingFieldError{Entity: entity, Field: field}
}

// NewFormatError creates a new format error
func NewFormatError(field, expected string, got interface{}) error {
	return &FormatError{Field: field, Expected: expected, Got: describe(got)}
}

// NewSchemaMismatchError creates a new schema mismatch error
func NewSchemaMismatchError(config, format string, args ...interface{}) error {
	return &SchemaMismatchError{Config: config, Reason: fmt.Sprintf(format, args...)}
}

// NewStoreError creates a new store error
func NewStoreError(op, key string, err error) error {
	return &StoreError{Op: op, Key: key, Err: err}
}

// NewBrokerError creates a new broker error
func NewBrokerError(op, queue string, err error) error {
	return &BrokerError{Op: op, Queue: queue, Err: err}
}

// NewSerializationError creates a new serialization error
func NewSerializationError(format string, err error) error {
	return &SerializationError{Format: format, Err: err}
}

// NewConnectionError creates a new connection error
func NewConnectionError(uri string, err error) error {
	return &ConnectionError{URI: uri, Err: err}
}

// IsTemporary checks if an error is temporary and retryable
func IsTemporary(err error) bool {
	if t, ok := err.(interface{ Temporary() bool }); ok {
		return t.Temporary()
	}
	return errors.Is(err, ErrNotConnected)
}

// IsNotFound reports whether err means a job does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound)
}

// IsRestoreError reports whether err is one of the errors restore can fail
// with because of the payload itself (as opposed to I/O)
func IsRestoreError(err error) bool {
	var (
		parseErr   *ParseError
		missingErr *MissingFieldError
		formatErr  *FormatError
		schemaErr  *SchemaMismatchError
	)
	return errors.As(err, &parseErr) ||
		errors.As(err, &missingErr) ||
		errors.As(err, &formatErr) ||
		errors.As(err, &schemaErr)
}

// describe renders the JSON kind of a decoded value for error messages
func describe(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case fmt.Stringer:
		return fmt.Sprintf("number %s", t.String())
	case int, int32, int64, float32, float64:
		return fmt.Sprintf("number %v", t)
	default:
		return fmt.Sprintf("%T", v)
	}
}
