// Package validation holds the rules a configuration must satisfy before a
// connection attempts a token exchange or builds an authorization URL.
//
// Every function returns nil when the configuration may proceed, or an
// *errdefs.ValidationError describing the first failing check. Blank means
// empty or whitespace-only.
package validation
