package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProfiles = `
defaultProfile: prod
profiles:
  prod:
    grantType: client_credentials
    clientId: prod-client
    clientSecret: prod-secret
    tokenServerUrl: https://auth.example.com/oauth/token
    apiRequestUrl: https://api.example.com
    sslCertPath: /etc/apiconnect/client.p12
    keyPassword: kp
    storePassword: sp
    tokenExpiration: 3600
  portal:
    grantType: authorization_code
    clientId: portal-client
    tokenServerUrl: https://auth.example.com/oauth/token
    authorizationUrl: https://auth.example.com/oauth/authorize
    redirectUrl: http://127.0.0.1:8085/callback
    disconnectUrl: https://auth.example.com/logout
    sslCertPath: /etc/apiconnect/client.pem
    keyPassword: kp
    storePassword: sp
    tlsVersion: TLSv1.3
    scopes: [api, profile]
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, sampleProfiles)

	f, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, f.Path)
	assert.Equal(t, []string{"portal", "prod"}, f.Names())

	name, p, err := f.Profile("")
	require.NoError(t, err)
	assert.Equal(t, "prod", name)
	assert.Equal(t, "client_credentials", p.GrantType)
	assert.Equal(t, "prod-client", p.ClientID)
	assert.Equal(t, int64(3600), p.TokenExpiration)

	_, portal, err := f.Profile("portal")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8085/callback", portal.RedirectURL)
	assert.Equal(t, []string{"api", "profile"}, portal.Scopes)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantType string
		contains string
	}{
		{"malformed yaml", "profiles: [", ErrorTypeParse, "malformed YAML"},
		{"missing profiles", "defaultProfile: x\n", ErrorTypeValidation, "profiles"},
		{"unknown key", "profiles:\n  a:\n    grantType: client_credentials\n    clientSecrt: x\n", ErrorTypeValidation, "clientSecrt"},
		{"bad grant type", "profiles:\n  a:\n    grantType: saml\n", ErrorTypeValidation, "grantType"},
		{"bad tls version", "profiles:\n  a:\n    grantType: client_credentials\n    tlsVersion: SSLv3\n", ErrorTypeValidation, "tlsVersion"},
		{"negative expiration", "profiles:\n  a:\n    grantType: client_credentials\n    tokenExpiration: -1\n", ErrorTypeValidation, "tokenExpiration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.content))
			require.Error(t, err)

			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.wantType, ce.ErrorType)
			assert.Contains(t, ce.DetailedError(), tt.contains)
		})
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrorTypeNotFound, ce.ErrorType)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NotEmpty(t, ce.Suggestions)
}

func TestFile_Profile(t *testing.T) {
	single := &File{Profiles: map[string]Profile{"only": {GrantType: "client_credentials"}}}
	name, _, err := single.Profile("")
	require.NoError(t, err)
	assert.Equal(t, "only", name)

	multi := &File{Path: "x.yaml", Profiles: map[string]Profile{"a": {}, "b": {}}}
	_, _, err = multi.Profile("")
	assert.Error(t, err)

	_, _, err = multi.Profile("c")
	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "c", ce.Profile)
	assert.Contains(t, ce.Error(), "profile not found")
}

func TestProfile_ApplyTo(t *testing.T) {
	p := Profile{
		GrantType:            "authorization_code",
		Settings:             Settings{ClientID: "id", TokenServerURL: "https://t"},
		BaseAuthorizationURL: "https://a",
		RedirectURL:          "https://r",
		DisconnectURL:        "https://d",
		Scopes:               []string{"api"},
	}

	ac := NewAuthorizationCode()
	p.ApplyTo(ac)
	assert.Equal(t, "id", ac.ClientID)
	assert.Equal(t, "https://t", ac.TokenServerURL)
	assert.Equal(t, "https://a", ac.BaseAuthorizationURL)
	assert.Equal(t, "https://r", ac.RedirectURL)
	assert.Equal(t, "https://d", ac.DisconnectURL)
	assert.Equal(t, "openid&api", ac.Scope)

	cc := NewClientCredentials()
	p.ApplyTo(cc)
	assert.Equal(t, "id", cc.ClientID)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("apiconnect", "config.yaml"), filepath.Join(filepath.Base(filepath.Dir(DefaultPath())), filepath.Base(DefaultPath())))
}
