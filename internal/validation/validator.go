package validation

import (
	"apiconnect/internal/config"
	"apiconnect/internal/errdefs"
	"apiconnect/pkg/logging"
	"apiconnect/pkg/strings"
)

// Field names as reported on ValidationError.Fields.
const (
	FieldSSLCertPath          = "ssl_cert_path"
	FieldKeyPassword          = "key_password"
	FieldStorePassword        = "store_password"
	FieldTokenServerURL       = "token_server_url"
	FieldClientID             = "client_id"
	FieldClientSecret         = "client_secret"
	FieldAuthorizationURL     = "authorization_url"
	FieldRedirectURL          = "redirect_url"
	FieldScope                = "scope"
	FieldResponseType         = "response_type"
	FieldAuthorizationCodeVal = "authorization_code"
)

type options struct {
	allowMissingSecret bool
}

// Option adjusts general validation.
type Option func(*options)

// AllowMissingClientSecret accepts a blank client secret as long as the
// client ID is present.
func AllowMissingClientSecret() Option {
	return func(o *options) {
		o.allowMissingSecret = true
	}
}

// ValidateGeneral checks the fields every token exchange needs, in order:
// SSL attributes, token-server URL, client credentials. The first failing
// check is returned.
func ValidateGeneral(cfg config.Configuration, opts ...Option) error {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	s, err := settingsOf(cfg)
	if err != nil {
		return err
	}

	if err := checkSSL(s); err != nil {
		return err
	}
	if strings.IsBlank(s.TokenServerURL) {
		return fail(errdefs.NewValidationError(errdefs.CheckTokenURL, "token URL is null or empty", FieldTokenServerURL))
	}
	if o.allowMissingSecret {
		return checkClientID(s)
	}
	return checkClientCredentials(s)
}

// ValidateAuthCodeAuthorizationURL checks what building an authorization
// URL needs: client ID, base authorization URL, redirect URL and scope.
// The client secret is not required.
func ValidateAuthCodeAuthorizationURL(cfg config.Configuration) error {
	ac, err := authCodeOf(cfg)
	if err != nil {
		return err
	}
	if err := checkClientID(&ac.Settings); err != nil {
		return err
	}

	if missing := blankFields(
		FieldAuthorizationURL, ac.BaseAuthorizationURL,
		FieldRedirectURL, ac.RedirectURL,
		FieldScope, ac.Scope,
		FieldResponseType, ac.ResponseType(),
	); len(missing) > 0 {
		return fail(errdefs.NewValidationError(errdefs.CheckAuthorizationURL, "invalid authorization request", missing...))
	}
	return nil
}

// ValidateAuthCodeTokenRequest checks what exchanging an authorization code
// needs: SSL attributes, client ID, then code, scope, redirect URL and
// token-server URL. The client secret is not required.
func ValidateAuthCodeTokenRequest(cfg config.Configuration) error {
	ac, err := authCodeOf(cfg)
	if err != nil {
		return err
	}
	if err := checkSSL(&ac.Settings); err != nil {
		return err
	}
	if err := checkClientID(&ac.Settings); err != nil {
		return err
	}

	if missing := blankFields(
		FieldAuthorizationCodeVal, ac.AuthorizationCode,
		FieldScope, ac.Scope,
		FieldRedirectURL, ac.RedirectURL,
		FieldTokenServerURL, ac.TokenServerURL,
	); len(missing) > 0 {
		return fail(errdefs.NewValidationError(errdefs.CheckTokenRequest, "invalid token request", missing...))
	}
	return nil
}

// ValidateSSL checks only the key store path and its two passwords.
func ValidateSSL(s *config.Settings) error {
	if s == nil {
		return fail(errdefs.NewValidationError(errdefs.CheckConfigurationSet, "connection configuration is not set"))
	}
	return checkSSL(s)
}

func settingsOf(cfg config.Configuration) (*config.Settings, error) {
	if cfg == nil || cfg.Common() == nil {
		return nil, fail(errdefs.NewValidationError(errdefs.CheckConfigurationSet, "connection configuration is not set"))
	}
	return cfg.Common(), nil
}

func authCodeOf(cfg config.Configuration) (*config.AuthorizationCode, error) {
	if _, err := settingsOf(cfg); err != nil {
		return nil, err
	}
	ac, ok := cfg.(*config.AuthorizationCode)
	if !ok || ac == nil {
		return nil, fail(errdefs.NewValidationError(errdefs.CheckConfigurationSet, "authorization code configuration is not set"))
	}
	return ac, nil
}

func checkSSL(s *config.Settings) error {
	if missing := blankFields(
		FieldSSLCertPath, s.SSLCertPath,
		FieldKeyPassword, s.KeyPassword,
		FieldStorePassword, s.StorePassword,
	); len(missing) > 0 {
		return fail(errdefs.NewValidationError(errdefs.CheckSSL, "one or more key SSL attributes are missing", missing...))
	}
	return nil
}

func checkClientCredentials(s *config.Settings) error {
	if missing := blankFields(
		FieldClientID, s.ClientID,
		FieldClientSecret, s.ClientSecret,
	); len(missing) > 0 {
		return fail(errdefs.NewValidationError(errdefs.CheckClientCredentials, "either both or one of the client credentials is not populated", missing...))
	}
	return nil
}

func checkClientID(s *config.Settings) error {
	if strings.IsBlank(s.ClientID) {
		return fail(errdefs.NewValidationError(errdefs.CheckClientID, "client ID is not populated", FieldClientID))
	}
	return nil
}

// blankFields takes name/value pairs and returns the names whose value is blank.
func blankFields(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.IsBlank(pairs[i+1]) {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}

func fail(err *errdefs.ValidationError) error {
	logging.Debug("Validator", "check %s failed: %s", err.Check, err.Error())
	return err
}
