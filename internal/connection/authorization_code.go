package connection

import (
	"context"
	"net/url"
	"strings"

	"apiconnect/internal/config"
	"apiconnect/internal/errdefs"
	"apiconnect/internal/validation"
	"apiconnect/pkg/oauth"
	pkgstrings "apiconnect/pkg/strings"
)

// ErrStateMismatch is wrapped by CompleteAuthorization when the returned
// state does not match the one issued with the authorization URL.
var ErrStateMismatch = &errdefs.ValidationError{
	Check:   "state",
	Message: "authorization response state does not match the issued state",
}

// AuthorizationCodeConnection drives the redirect flow: it builds the
// authorization URL, accepts the code delivered to the redirect URL and
// exchanges it for a token.
type AuthorizationCodeConnection struct {
	base

	// pendingState is the state issued with the last authorization URL.
	pendingState string
}

// NewAuthorizationCodeConnection creates a connection for cfg. A nil cfg
// yields an unconfigured connection whose operations fail.
func NewAuthorizationCodeConnection(cfg *config.AuthorizationCode, opts ...Option) *AuthorizationCodeConnection {
	var c config.Configuration
	if cfg != nil {
		c = cfg
	}
	return &AuthorizationCodeConnection{base: newBase(oauth.GrantTypeAuthorizationCode, c, opts...)}
}

func (c *AuthorizationCodeConnection) authCode() *config.AuthorizationCode {
	cfg, _ := c.cfg.(*config.AuthorizationCode)
	return cfg
}

// Connect implements Connection. The configuration must carry the code
// returned to the redirect URL.
func (c *AuthorizationCodeConnection) Connect(ctx context.Context) error {
	cfg := c.authCode()
	if cfg == nil {
		return errdefs.NewConnectionError(opConnect, "connection configuration cannot be nil", nil)
	}

	if err := validation.ValidateAuthCodeTokenRequest(cfg); err != nil {
		return errdefs.NewConnectionError(opConnect, "invalid configuration", err)
	}

	form := url.Values{}
	form.Set(paramScope, cfg.Scope)
	form.Set(paramCode, cfg.AuthorizationCode)
	form.Set(paramRedirectURI, cfg.RedirectURL)
	form.Set(paramClientID, cfg.ClientID)
	form.Set(paramClientSecret, cfg.ClientSecret)
	form.Set(paramGrantType, oauth.GrantTypeAuthorizationCode.String())

	return c.exchange(ctx, form)
}

// AuthorizationURL builds the URL the user is sent to for consent. Each
// call issues a fresh state, stored on the connection and the
// configuration. Token and liveness are not touched.
func (c *AuthorizationCodeConnection) AuthorizationURL() (string, error) {
	cfg := c.authCode()
	if cfg == nil {
		return "", errdefs.NewConnectionError(opAuthorizationURL, "connection configuration cannot be nil", nil)
	}

	if err := validation.ValidateAuthCodeAuthorizationURL(cfg); err != nil {
		return "", errdefs.NewConnectionError(opAuthorizationURL, "invalid configuration", err)
	}

	state, err := oauth.GenerateState()
	if err != nil {
		return "", errdefs.NewConnectionError(opAuthorizationURL, "failed to generate state", err)
	}

	authURL, err := BuildAuthorizationURL(cfg.BaseAuthorizationURL, cfg.ClientID, cfg.RedirectURL, cfg.Scope, state)
	if err != nil {
		return "", err
	}

	cfg.State = state
	c.pendingState = state
	c.logger.Debug("built authorization URL", "base", strings.TrimSpace(cfg.BaseAuthorizationURL))
	return authURL, nil
}

// CompleteAuthorization accepts the code and state delivered to the
// redirect URL. The state must equal the one issued by AuthorizationURL;
// on success the code is stored on the configuration, ready for Connect.
func (c *AuthorizationCodeConnection) CompleteAuthorization(code, state string) error {
	cfg := c.authCode()
	if cfg == nil {
		return errdefs.NewConnectionError(opCompleteAuth, "connection configuration cannot be nil", nil)
	}
	if !oauth.StateMatches(c.pendingState, state) {
		return errdefs.NewConnectionError(opCompleteAuth, "state check failed", ErrStateMismatch)
	}
	if pkgstrings.IsBlank(code) {
		return errdefs.NewConnectionError(opCompleteAuth, "authorization response carries no code",
			errdefs.NewValidationError(errdefs.CheckTokenRequest, "invalid authorization response", validation.FieldAuthorizationCodeVal))
	}

	cfg.AuthorizationCode = code
	c.pendingState = ""
	return nil
}

// PendingState returns the state issued with the last authorization URL
// that has not yet been completed.
func (c *AuthorizationCodeConnection) PendingState() string {
	return c.pendingState
}

// SetConfiguration replaces the held configuration, e.g. after Disconnect.
func (c *AuthorizationCodeConnection) SetConfiguration(cfg *config.AuthorizationCode) error {
	c.pendingState = ""
	return c.setConfiguration(cfg)
}

// Disconnect implements Connection.
func (c *AuthorizationCodeConnection) Disconnect() {
	c.pendingState = ""
	c.base.Disconnect()
}

// BuildAuthorizationURL assembles
//
//	{base}?client_id={id}&response_type=code&redirect_uri={redirect}&scope={scope}&state={state}
//
// from trimmed values, in that order and without further encoding.
func BuildAuthorizationURL(baseURL, clientID, redirectURL, scope, state string) (string, error) {
	if pkgstrings.AnyBlank(baseURL, clientID, redirectURL, scope) {
		return "", errdefs.NewConnectionError(opAuthorizationURL,
			"Failed to Build Authorization Url as required field is null or empty", nil)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(baseURL))
	b.WriteString("?client_id=")
	b.WriteString(strings.TrimSpace(clientID))
	b.WriteString("&response_type=")
	b.WriteString(oauth.ResponseTypeCode)
	b.WriteString("&redirect_uri=")
	b.WriteString(strings.TrimSpace(redirectURL))
	b.WriteString("&scope=")
	b.WriteString(strings.TrimSpace(scope))
	b.WriteString("&state=")
	b.WriteString(state)
	return b.String(), nil
}
