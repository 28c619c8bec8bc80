// Package callback receives the authorization-code redirect on a local
// loopback address.
//
// A Server handles exactly one redirect: the first request to its path is
// answered with a small HTML page and its code, state and error parameters
// are delivered to Wait. Later requests are refused. The server shuts
// itself down shortly after the redirect, or when the Start context ends.
//
// When the redirect URL cannot be served locally, ParseRedirect extracts
// the same result from a URL pasted by the user.
package callback
