package callback

import (
	"fmt"
	"net/url"
	"strings"
)

// Result is what the authorization server delivered to the redirect URL.
type Result struct {
	// Code is the one-time authorization code.
	Code string
	// State must equal the state issued with the authorization URL.
	State string

	Error            string
	ErrorDescription string
}

// IsError reports whether the authorization server returned an error.
func (r *Result) IsError() bool {
	return r.Error != ""
}

// Err converts an error result into an error, or returns nil.
func (r *Result) Err() error {
	if !r.IsError() {
		return nil
	}
	if r.ErrorDescription != "" {
		return fmt.Errorf("authorization denied: %s: %s", r.Error, r.ErrorDescription)
	}
	return fmt.Errorf("authorization denied: %s", r.Error)
}

func resultFromQuery(q url.Values) *Result {
	return &Result{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// ParseRedirect extracts the result from a full redirect URL, e.g. one a
// user copied from the browser address bar.
func ParseRedirect(raw string) (*Result, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URL: %w", err)
	}
	r := resultFromQuery(u.Query())
	if r.Code == "" && !r.IsError() {
		return nil, fmt.Errorf("redirect URL carries neither code nor error")
	}
	return r, nil
}
