package connection

import (
	"strings"
	"sync"

	"apiconnect/internal/config"
	"apiconnect/internal/errdefs"
	"apiconnect/pkg/logging"
	"apiconnect/pkg/oauth"
)

const (
	opMakeConfiguration = "make_configuration"
	opMakeConnection    = "make_connection"
)

// Factory creates configurations and connections by grant type. Options
// given to NewFactory are applied to every connection it makes.
type Factory struct {
	opts []Option
}

// NewFactory creates a factory.
func NewFactory(opts ...Option) *Factory {
	return &Factory{opts: opts}
}

var (
	defaultFactory     *Factory
	defaultFactoryOnce sync.Once
)

// DefaultFactory returns the process-wide factory, creating it on first use.
func DefaultFactory() *Factory {
	defaultFactoryOnce.Do(func() {
		defaultFactory = NewFactory()
	})
	return defaultFactory
}

// MakeConfiguration returns an empty configuration for grantType. A blank
// grant type is an error; an unrecognized one yields (nil, nil).
func (f *Factory) MakeConfiguration(grantType string) (config.Configuration, error) {
	if strings.TrimSpace(grantType) == "" {
		return nil, errdefs.NewConnectionError(opMakeConfiguration,
			"authorization grant type is null or empty, valid value must be provided", nil)
	}

	gt, ok := oauth.ParseGrantType(grantType)
	if !ok {
		logging.Debug("ConnectionFactory", "no configuration for grant type %q", grantType)
		return nil, nil
	}

	switch gt {
	case oauth.GrantTypeClientCredentials:
		return config.NewClientCredentials(), nil
	case oauth.GrantTypeAuthorizationCode:
		return config.NewAuthorizationCode(), nil
	}
	return nil, nil
}

// MakeConnection returns a connection matching the configuration's grant
// type. The configuration's tag must agree with its concrete type.
func (f *Factory) MakeConnection(cfg config.Configuration) (Connection, error) {
	if isNilConfiguration(cfg) {
		return nil, errdefs.NewConnectionError(opMakeConnection, "connection configuration cannot be nil", nil)
	}

	switch cfg.GrantType() {
	case oauth.GrantTypeClientCredentials:
		if cc, ok := cfg.(*config.ClientCredentials); ok {
			return NewClientCredentialsConnection(cc, f.opts...), nil
		}
	case oauth.GrantTypeAuthorizationCode:
		if ac, ok := cfg.(*config.AuthorizationCode); ok {
			return NewAuthorizationCodeConnection(ac, f.opts...), nil
		}
	}

	return nil, errdefs.NewConnectionError(opMakeConnection, "unsupported configuration",
		&errdefs.InvalidGrantTypeError{GrantType: cfg.GrantType().String()})
}
