// Package prompt reads values typed by the user: a pasted redirect URL,
// or a key store password left out of the profile.
package prompt
