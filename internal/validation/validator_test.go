package validation

import (
	"errors"
	"testing"

	"apiconnect/internal/config"
	"apiconnect/internal/errdefs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() config.Settings {
	return config.Settings{
		ClientID:       "client",
		ClientSecret:   "secret",
		TokenServerURL: "https://auth.example.com/token",
		SSLCertPath:    "/certs/client.p12",
		KeyPassword:    "kp",
		StorePassword:  "sp",
	}
}

func validAuthCode() *config.AuthorizationCode {
	ac := config.NewAuthorizationCode()
	ac.Settings = validSettings()
	ac.BaseAuthorizationURL = "https://auth.example.com/authorize"
	ac.RedirectURL = "https://app.example.com/callback"
	ac.AuthorizationCode = "code-123"
	return ac
}

func requireValidationError(t *testing.T, err error, check string) *errdefs.ValidationError {
	t.Helper()
	require.Error(t, err)
	var ve *errdefs.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %T", err)
	assert.Equal(t, check, ve.Check)
	return ve
}

func TestValidateGeneral(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*config.Settings)
		opts       []Option
		wantCheck  string
		wantFields []string
	}{
		{name: "valid", mutate: func(*config.Settings) {}},
		{
			name:       "blank key password",
			mutate:     func(s *config.Settings) { s.KeyPassword = "   " },
			wantCheck:  errdefs.CheckSSL,
			wantFields: []string{FieldKeyPassword},
		},
		{
			name:       "all ssl fields blank",
			mutate:     func(s *config.Settings) { s.SSLCertPath, s.KeyPassword, s.StorePassword = "", "", "" },
			wantCheck:  errdefs.CheckSSL,
			wantFields: []string{FieldSSLCertPath, FieldKeyPassword, FieldStorePassword},
		},
		{
			name:       "ssl checked before token url",
			mutate:     func(s *config.Settings) { s.StorePassword, s.TokenServerURL = "", "" },
			wantCheck:  errdefs.CheckSSL,
			wantFields: []string{FieldStorePassword},
		},
		{
			name:       "blank token url",
			mutate:     func(s *config.Settings) { s.TokenServerURL = " " },
			wantCheck:  errdefs.CheckTokenURL,
			wantFields: []string{FieldTokenServerURL},
		},
		{
			name:       "blank secret",
			mutate:     func(s *config.Settings) { s.ClientSecret = "" },
			wantCheck:  errdefs.CheckClientCredentials,
			wantFields: []string{FieldClientSecret},
		},
		{
			name:       "blank id and secret",
			mutate:     func(s *config.Settings) { s.ClientID, s.ClientSecret = "", "" },
			wantCheck:  errdefs.CheckClientCredentials,
			wantFields: []string{FieldClientID, FieldClientSecret},
		},
		{
			name:   "blank secret allowed",
			mutate: func(s *config.Settings) { s.ClientSecret = "" },
			opts:   []Option{AllowMissingClientSecret()},
		},
		{
			name:       "blank id with secret allowed",
			mutate:     func(s *config.Settings) { s.ClientID = "" },
			opts:       []Option{AllowMissingClientSecret()},
			wantCheck:  errdefs.CheckClientID,
			wantFields: []string{FieldClientID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cc := config.NewClientCredentials()
			cc.Settings = validSettings()
			tt.mutate(&cc.Settings)

			err := ValidateGeneral(cc, tt.opts...)
			if tt.wantCheck == "" {
				assert.NoError(t, err)
				return
			}
			ve := requireValidationError(t, err, tt.wantCheck)
			assert.Equal(t, tt.wantFields, ve.Fields)
			assert.Contains(t, ve.Error(), "required field is null or empty")
		})
	}
}

func TestValidateGeneral_SSLMessage(t *testing.T) {
	cc := config.NewClientCredentials()
	cc.Settings = validSettings()
	cc.SSLCertPath = ""

	err := ValidateGeneral(cc)
	assert.Contains(t, err.Error(), "SSL attributes")
}

func TestValidateGeneral_NilConfiguration(t *testing.T) {
	requireValidationError(t, ValidateGeneral(nil), errdefs.CheckConfigurationSet)

	var typedNil *config.ClientCredentials
	requireValidationError(t, ValidateGeneral(typedNil), errdefs.CheckConfigurationSet)
}

func TestValidateAuthCodeAuthorizationURL(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*config.AuthorizationCode)
		wantCheck  string
		wantFields []string
	}{
		{name: "valid", mutate: func(*config.AuthorizationCode) {}},
		{name: "secret not required", mutate: func(ac *config.AuthorizationCode) { ac.ClientSecret = "" }},
		{name: "ssl not required", mutate: func(ac *config.AuthorizationCode) { ac.SSLCertPath = "" }},
		{
			name:       "blank client id",
			mutate:     func(ac *config.AuthorizationCode) { ac.ClientID = "" },
			wantCheck:  errdefs.CheckClientID,
			wantFields: []string{FieldClientID},
		},
		{
			name:       "blank base url",
			mutate:     func(ac *config.AuthorizationCode) { ac.BaseAuthorizationURL = "" },
			wantCheck:  errdefs.CheckAuthorizationURL,
			wantFields: []string{FieldAuthorizationURL},
		},
		{
			name:       "blank redirect and scope",
			mutate:     func(ac *config.AuthorizationCode) { ac.RedirectURL, ac.Scope = "", " " },
			wantCheck:  errdefs.CheckAuthorizationURL,
			wantFields: []string{FieldRedirectURL, FieldScope},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac := validAuthCode()
			tt.mutate(ac)

			err := ValidateAuthCodeAuthorizationURL(ac)
			if tt.wantCheck == "" {
				assert.NoError(t, err)
				return
			}
			ve := requireValidationError(t, err, tt.wantCheck)
			assert.Equal(t, tt.wantFields, ve.Fields)
		})
	}
}

func TestValidateAuthCodeTokenRequest(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*config.AuthorizationCode)
		wantCheck  string
		wantFields []string
	}{
		{name: "valid", mutate: func(*config.AuthorizationCode) {}},
		{name: "secret not required", mutate: func(ac *config.AuthorizationCode) { ac.ClientSecret = "" }},
		{
			name:       "ssl first",
			mutate:     func(ac *config.AuthorizationCode) { ac.StorePassword, ac.ClientID = "", "" },
			wantCheck:  errdefs.CheckSSL,
			wantFields: []string{FieldStorePassword},
		},
		{
			name:       "client id second",
			mutate:     func(ac *config.AuthorizationCode) { ac.ClientID, ac.AuthorizationCode = "", "" },
			wantCheck:  errdefs.CheckClientID,
			wantFields: []string{FieldClientID},
		},
		{
			name:       "blank code",
			mutate:     func(ac *config.AuthorizationCode) { ac.AuthorizationCode = "" },
			wantCheck:  errdefs.CheckTokenRequest,
			wantFields: []string{FieldAuthorizationCodeVal},
		},
		{
			name:       "blank token url",
			mutate:     func(ac *config.AuthorizationCode) { ac.TokenServerURL = "" },
			wantCheck:  errdefs.CheckTokenRequest,
			wantFields: []string{FieldTokenServerURL},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac := validAuthCode()
			tt.mutate(ac)

			err := ValidateAuthCodeTokenRequest(ac)
			if tt.wantCheck == "" {
				assert.NoError(t, err)
				return
			}
			ve := requireValidationError(t, err, tt.wantCheck)
			assert.Equal(t, tt.wantFields, ve.Fields)
		})
	}
}

func TestAuthCodeValidators_RejectClientCredentials(t *testing.T) {
	cc := config.NewClientCredentials()
	cc.Settings = validSettings()

	requireValidationError(t, ValidateAuthCodeAuthorizationURL(cc), errdefs.CheckConfigurationSet)
	requireValidationError(t, ValidateAuthCodeTokenRequest(cc), errdefs.CheckConfigurationSet)
	requireValidationError(t, ValidateAuthCodeTokenRequest(nil), errdefs.CheckConfigurationSet)
}

func TestValidateSSL(t *testing.T) {
	s := validSettings()
	assert.NoError(t, ValidateSSL(&s))

	s.StorePassword = ""
	ve := requireValidationError(t, ValidateSSL(&s), errdefs.CheckSSL)
	assert.Equal(t, []string{FieldStorePassword}, ve.Fields)

	requireValidationError(t, ValidateSSL(nil), errdefs.CheckConfigurationSet)
}
