package oauth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// GrantType identifies the OAuth 2.0 flow a configuration is built for.
type GrantType string

const (
	// GrantTypeClientCredentials is the machine-to-machine flow.
	GrantTypeClientCredentials GrantType = "client_credentials"
	// GrantTypeAuthorizationCode is the user-consent redirect flow.
	GrantTypeAuthorizationCode GrantType = "authorization_code"
)

// ParseGrantType returns the grant type for a recognized value and false
// otherwise. Surrounding whitespace is ignored.
func ParseGrantType(s string) (GrantType, bool) {
	switch GrantType(strings.TrimSpace(s)) {
	case GrantTypeClientCredentials:
		return GrantTypeClientCredentials, true
	case GrantTypeAuthorizationCode:
		return GrantTypeAuthorizationCode, true
	default:
		return "", false
	}
}

// String returns the wire value of the grant type.
func (g GrantType) String() string {
	return string(g)
}

// Scope is a scope value understood by the authorization server.
type Scope string

const (
	ScopeOpenID  Scope = "openid"
	ScopeAPI     Scope = "api"
	ScopeProfile Scope = "profile"
)

// DefaultScope is requested when the caller adds nothing else.
const DefaultScope = ScopeOpenID

// ScopeSeparator joins additional scopes onto the default one. The server
// expects the scopes of an authorization request joined with '&'.
const ScopeSeparator = "&"

// ResponseTypeCode is the only response_type an authorization request uses.
const ResponseTypeCode = "code"

// TokenTypeBearer is the token type the server is expected to issue.
const TokenTypeBearer = "Bearer"

// Token is the decoded body of a successful token-endpoint response.
type Token struct {
	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// RefreshToken is carried but never exchanged.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// Scope is the granted scope(s).
	Scope string `json:"scope,omitempty"`

	// IDToken is the OIDC ID token (if available).
	IDToken string `json:"id_token,omitempty"`
}

// IsEmpty reports whether the token carries no access token.
func (t Token) IsEmpty() bool {
	return strings.TrimSpace(t.AccessToken) == ""
}

// Lifetime returns ExpiresIn as a duration.
func (t Token) Lifetime() time.Duration {
	if t.ExpiresIn <= 0 {
		return 0
	}
	return time.Duration(t.ExpiresIn) * time.Second
}

// Scopes returns the scope as a slice of individual scopes. Both space and
// '&' are accepted as separators.
func (t Token) Scopes() []string {
	if t.Scope == "" {
		return nil
	}
	return strings.FieldsFunc(t.Scope, func(r rune) bool {
		return r == ' ' || r == '&'
	})
}

// ToOAuth2Token converts the Token to an oauth2.Token for compatibility with golang.org/x/oauth2.
// The expiry is supplied by the caller because Token itself only carries a
// relative lifetime.
func (t Token) ToOAuth2Token(expiry time.Time) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       expiry,
	}

	if t.IDToken != "" {
		token = token.WithExtra(map[string]interface{}{
			"id_token": t.IDToken,
		})
	}

	return token
}
