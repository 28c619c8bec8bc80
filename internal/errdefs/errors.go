package errdefs

import (
	"errors"
	"fmt"
	"strings"
)

// Validation check identifiers, reported on ValidationError.Check.
const (
	CheckConfigurationSet  = "configuration"
	CheckSSL               = "ssl"
	CheckTokenURL          = "token_url"
	CheckClientCredentials = "client_credentials"
	CheckClientID          = "client_id"
	CheckAuthorizationURL  = "authorization_url"
	CheckTokenRequest      = "token_request"
)

// missingFieldsPhrase is shared by all messages about blank required fields.
const missingFieldsPhrase = "required field is null or empty"

// ValidationError reports the first validation check a configuration failed.
type ValidationError struct {
	// Check identifies the failing rule.
	Check string
	// Message is a human-readable description.
	Message string
	// Fields lists the configuration fields found blank.
	Fields []string
}

// NewValidationError builds a ValidationError for blank required fields.
func NewValidationError(check, message string, fields ...string) *ValidationError {
	return &ValidationError{Check: check, Message: message, Fields: fields}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s {%s}", e.Message, missingFieldsPhrase, strings.Join(e.Fields, ", "))
}

// ConnectionError wraps any failure surfaced by connection setup, the
// factory or a connection operation.
type ConnectionError struct {
	// Op names the operation that failed, e.g. "connect".
	Op string
	// Message is a human-readable description.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// NewConnectionError builds a ConnectionError with an optional cause.
func NewConnectionError(op, message string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// InvalidGrantTypeError is returned when a configuration's grant-type tag is
// not one a connection can be built for.
type InvalidGrantTypeError struct {
	GrantType string
}

// Error implements the error interface.
func (e *InvalidGrantTypeError) Error() string {
	return fmt.Sprintf("invalid grant type %q: allowed grant types {client_credentials, authorization_code} one of which must be provided", e.GrantType)
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConnectionError reports whether err is or wraps a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsInvalidGrantType reports whether err is or wraps an InvalidGrantTypeError.
func IsInvalidGrantType(err error) bool {
	var ge *InvalidGrantTypeError
	return errors.As(err, &ge)
}
