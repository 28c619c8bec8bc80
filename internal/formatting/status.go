package formatting

import (
	"strings"
	"time"

	"apiconnect/internal/config"
	"apiconnect/internal/connection"
	pkgstrings "apiconnect/pkg/strings"
)

// Status is the reportable state of one profile's connection.
type Status struct {
	Profile   string     `json:"profile" yaml:"profile"`
	GrantType string     `json:"grantType" yaml:"grantType"`
	State     string     `json:"state" yaml:"state"`
	Alive     bool       `json:"alive" yaml:"alive"`
	TokenType string     `json:"tokenType,omitempty" yaml:"tokenType,omitempty"`
	Token     string     `json:"token,omitempty" yaml:"token,omitempty"`
	Scope     string     `json:"scope,omitempty" yaml:"scope,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	// ErrorResponse is the token server's rejection, if any.
	ErrorResponse string `json:"errorResponse,omitempty" yaml:"errorResponse,omitempty"`
	// Error is the local failure, if any.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewStatus captures conn's state. The access token is masked; err is the
// result of the last Connect, if any.
func NewStatus(profile string, conn connection.Connection, err error) Status {
	s := Status{
		Profile:       profile,
		State:         conn.State().String(),
		Alive:         conn.IsAlive(),
		ErrorResponse: conn.ErrorResponse(),
	}
	if cfg := conn.Configuration(); cfg != nil {
		s.GrantType = cfg.GrantType().String()
	}
	if err != nil {
		s.Error = err.Error()
	}

	tok := conn.Token()
	if tok.IsEmpty() {
		return s
	}
	s.TokenType = tok.TokenType
	s.Token = pkgstrings.MaskSecret(tok.AccessToken)
	s.Scope = tok.Scope
	if exp := conn.Expiry(); !exp.IsZero() {
		exp = exp.UTC()
		s.ExpiresAt = &exp
	}
	if claims, cerr := tok.IDTokenClaims(); cerr == nil && claims != nil {
		s.Subject = claims.Subject
	}
	return s
}

// ExpiresIn renders the time left until expiry relative to now.
func (s Status) ExpiresIn(now time.Time) string {
	if s.ExpiresAt == nil {
		return "-"
	}
	d := s.ExpiresAt.Sub(now)
	if d <= 0 {
		return "expired"
	}
	return d.Truncate(time.Second).String()
}

// Data returns the status as a template data map keyed like its JSON form.
func (s Status) Data() map[string]any {
	data := map[string]any{
		"profile":       s.Profile,
		"grantType":     s.GrantType,
		"state":         s.State,
		"alive":         s.Alive,
		"tokenType":     s.TokenType,
		"token":         s.Token,
		"scope":         s.Scope,
		"subject":       s.Subject,
		"errorResponse": s.ErrorResponse,
		"error":         s.Error,
	}
	if s.ExpiresAt != nil {
		data["expiresAt"] = *s.ExpiresAt
	}
	return data
}

// ProfileRow summarizes one configured profile. Secrets are never included.
type ProfileRow struct {
	Name       string `json:"name" yaml:"name"`
	Default    bool   `json:"default" yaml:"default"`
	GrantType  string `json:"grantType" yaml:"grantType"`
	ClientID   string `json:"clientId" yaml:"clientId"`
	TokenURL   string `json:"tokenServerUrl" yaml:"tokenServerUrl"`
	KeyStore   string `json:"sslCertPath" yaml:"sslCertPath"`
	TLSVersion string `json:"tlsVersion" yaml:"tlsVersion"`
	Valid      bool   `json:"valid" yaml:"valid"`
	Problem    string `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// NewProfileRow summarizes p; problem is its validation error, if any.
func NewProfileRow(name string, p config.Profile, isDefault bool, problem error) ProfileRow {
	row := ProfileRow{
		Name:       name,
		Default:    isDefault,
		GrantType:  strings.TrimSpace(p.GrantType),
		ClientID:   p.ClientID,
		TokenURL:   p.TokenServerURL,
		KeyStore:   p.SSLCertPath,
		TLSVersion: p.PinnedTLSVersion(),
		Valid:      problem == nil,
	}
	if problem != nil {
		row.Problem = problem.Error()
	}
	return row
}
