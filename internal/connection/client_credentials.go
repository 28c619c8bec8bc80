package connection

import (
	"context"
	"net/url"

	"apiconnect/internal/config"
	"apiconnect/internal/errdefs"
	"apiconnect/internal/validation"
	"apiconnect/pkg/oauth"
)

// ClientCredentialsConnection exchanges a client ID and secret for a token.
type ClientCredentialsConnection struct {
	base
}

// NewClientCredentialsConnection creates a connection for cfg. A nil cfg
// yields an unconfigured connection whose Connect fails.
func NewClientCredentialsConnection(cfg *config.ClientCredentials, opts ...Option) *ClientCredentialsConnection {
	var c config.Configuration
	if cfg != nil {
		c = cfg
	}
	return &ClientCredentialsConnection{base: newBase(oauth.GrantTypeClientCredentials, c, opts...)}
}

// Connect implements Connection.
func (c *ClientCredentialsConnection) Connect(ctx context.Context) error {
	cfg, ok := c.cfg.(*config.ClientCredentials)
	if !ok || cfg == nil {
		return errdefs.NewConnectionError(opConnect, "connection configuration cannot be nil", nil)
	}

	if err := validation.ValidateGeneral(cfg); err != nil {
		return errdefs.NewConnectionError(opConnect, "invalid configuration", err)
	}

	form := url.Values{}
	form.Set(paramClientID, cfg.ClientID)
	form.Set(paramClientSecret, cfg.ClientSecret)
	form.Set(paramGrantType, oauth.GrantTypeClientCredentials.String())

	return c.exchange(ctx, form)
}

// SetConfiguration replaces the held configuration, e.g. after Disconnect.
func (c *ClientCredentialsConnection) SetConfiguration(cfg *config.ClientCredentials) error {
	return c.setConfiguration(cfg)
}
