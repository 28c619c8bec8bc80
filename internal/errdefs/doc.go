// Package errdefs defines the error kinds apiconnect surfaces to callers:
// ValidationError for configuration checks, ConnectionError for anything
// that goes wrong while building or using a connection, and
// InvalidGrantTypeError for unsupported grant-type tags. ConnectionError
// preserves its cause, so errors.As reaches the inner error.
package errdefs
