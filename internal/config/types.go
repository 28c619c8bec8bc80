package config

import (
	"strings"

	"apiconnect/pkg/oauth"
)

// DefaultTLSVersion is the protocol version pinned when a configuration
// names none.
const DefaultTLSVersion = "TLSv1.2"

// Configuration is the parameter set for one connection. The grant type is
// fixed by the concrete type and cannot be changed after construction.
type Configuration interface {
	GrantType() oauth.GrantType
	Common() *Settings
}

// Settings holds the fields shared by every grant type.
type Settings struct {
	ClientID       string `yaml:"clientId,omitempty"`
	ClientSecret   string `yaml:"clientSecret,omitempty"`
	TokenServerURL string `yaml:"tokenServerUrl,omitempty"`
	APIRequestURL  string `yaml:"apiRequestUrl,omitempty"`

	// SSLCertPath points at the client key store (PKCS#12 or PEM bundle).
	SSLCertPath   string `yaml:"sslCertPath,omitempty"`
	KeyPassword   string `yaml:"keyPassword,omitempty"`
	StorePassword string `yaml:"storePassword,omitempty"`

	// TokenExpiration is a token lifetime hint in seconds, used when the
	// token server omits expires_in.
	TokenExpiration int64 `yaml:"tokenExpiration,omitempty"`

	// TLSVersion pins both the minimum and maximum protocol version.
	TLSVersion string `yaml:"tlsVersion,omitempty"`
	// CACertPath is an optional PEM trust bundle replacing the system roots.
	CACertPath string `yaml:"caCertPath,omitempty"`
}

// PinnedTLSVersion returns TLSVersion or DefaultTLSVersion when unset.
func (s *Settings) PinnedTLSVersion() string {
	if v := strings.TrimSpace(s.TLSVersion); v != "" {
		return v
	}
	return DefaultTLSVersion
}

// ClientCredentials configures the client-credentials grant.
type ClientCredentials struct {
	Settings `yaml:",inline"`
}

// NewClientCredentials returns an empty client-credentials configuration.
func NewClientCredentials() *ClientCredentials {
	return &ClientCredentials{}
}

// GrantType implements Configuration.
func (c *ClientCredentials) GrantType() oauth.GrantType {
	return oauth.GrantTypeClientCredentials
}

// Common implements Configuration.
func (c *ClientCredentials) Common() *Settings {
	if c == nil {
		return nil
	}
	return &c.Settings
}

// AuthorizationCode configures the authorization-code grant.
type AuthorizationCode struct {
	Settings `yaml:",inline"`

	BaseAuthorizationURL string `yaml:"authorizationUrl,omitempty"`
	RedirectURL          string `yaml:"redirectUrl,omitempty"`
	// DisconnectURL is carried for callers; nothing here requests it.
	DisconnectURL string `yaml:"disconnectUrl,omitempty"`
	// AuthorizationCode is the one-time code from the redirect.
	AuthorizationCode string `yaml:"-"`
	// Scope starts as "openid"; AddScope extends it.
	Scope string `yaml:"-"`
	// State is the anti-forgery value of the last authorization URL built.
	State string `yaml:"-"`
}

// NewAuthorizationCode returns an authorization-code configuration with
// the default scope.
func NewAuthorizationCode() *AuthorizationCode {
	return &AuthorizationCode{Scope: string(oauth.DefaultScope)}
}

// GrantType implements Configuration.
func (a *AuthorizationCode) GrantType() oauth.GrantType {
	return oauth.GrantTypeAuthorizationCode
}

// Common implements Configuration.
func (a *AuthorizationCode) Common() *Settings {
	if a == nil {
		return nil
	}
	return &a.Settings
}

// ResponseType is always "code".
func (a *AuthorizationCode) ResponseType() string {
	return oauth.ResponseTypeCode
}

// AddScope appends scope to the requested scopes, joined with '&'.
// Adding a scope that is already present is a no-op.
func (a *AuthorizationCode) AddScope(scope oauth.Scope) {
	s := strings.TrimSpace(string(scope))
	if s == "" {
		return
	}
	if strings.TrimSpace(a.Scope) == "" {
		a.Scope = s
		return
	}
	for _, existing := range strings.Split(a.Scope, oauth.ScopeSeparator) {
		if existing == s {
			return
		}
	}
	a.Scope += oauth.ScopeSeparator + s
}
