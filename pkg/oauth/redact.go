package oauth

import (
	"fmt"
	"log/slog"
	"strings"
)

// Redacted replaces token material in printed and logged output.
const Redacted = "[REDACTED]"

func redact(s string) string {
	if s == "" {
		return ""
	}
	return Redacted
}

// LogValue implements slog.LogValuer so that logging a Token never writes
// its credentials.
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("access_token", redact(t.AccessToken)),
		slog.String("token_type", t.TokenType),
		slog.Int64("expires_in", t.ExpiresIn),
		slog.String("scope", t.Scope),
		slog.Bool("refresh_token", t.RefreshToken != ""),
		slog.Bool("id_token", t.IDToken != ""),
	)
}

// String implements fmt.Stringer with credentials redacted.
func (t Token) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{t.TokenType, redact(t.AccessToken)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, fmt.Sprintf("expires_in=%d", t.ExpiresIn), fmt.Sprintf("scope=%q", t.Scope))
	return "{" + strings.Join(parts, " ") + "}"
}

// GoString implements fmt.GoStringer for %#v, also redacted.
func (t Token) GoString() string {
	return fmt.Sprintf("oauth.Token{AccessToken:%q, TokenType:%q, RefreshToken:%q, ExpiresIn:%d, Scope:%q, IDToken:%q}",
		redact(t.AccessToken), t.TokenType, redact(t.RefreshToken), t.ExpiresIn, t.Scope, redact(t.IDToken))
}
