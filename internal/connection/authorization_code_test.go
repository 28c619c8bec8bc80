package connection

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"apiconnect/internal/config"
	"apiconnect/internal/errdefs"
	"apiconnect/internal/tlsclient/mocks"
	"apiconnect/pkg/oauth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func authCodeConfig(tokenURL string) *config.AuthorizationCode {
	cfg := config.NewAuthorizationCode()
	cfg.ClientID = "portal"
	cfg.TokenServerURL = tokenURL
	cfg.SSLCertPath = "/certs/client.pem"
	cfg.KeyPassword = "kp"
	cfg.StorePassword = "sp"
	cfg.BaseAuthorizationURL = "https://auth.example.com/authorize"
	cfg.RedirectURL = "https://app.example.com/callback"
	cfg.AddScope(oauth.ScopeAPI)
	return cfg
}

var authURLPattern = regexp.MustCompile(`^https://auth\.example\.com/authorize\?client_id=portal&response_type=code&redirect_uri=https://app\.example\.com/callback&scope=openid&api&state=([0-9a-f-]{36})$`)

func TestAuthorizationURL(t *testing.T) {
	cfg := authCodeConfig("https://auth.example.com/token")
	cfg.BaseAuthorizationURL = "  https://auth.example.com/authorize "
	cfg.ClientID = " portal"
	cfg.RedirectURL = "https://app.example.com/callback\t"
	conn := NewAuthorizationCodeConnection(cfg, WithProvisioner(mocks.NewMockProvisioner(gomock.NewController(t))))

	first, err := conn.AuthorizationURL()
	require.NoError(t, err)
	m := authURLPattern.FindStringSubmatch(first)
	require.NotNil(t, m, first)
	_, err = uuid.Parse(m[1])
	require.NoError(t, err)
	assert.Equal(t, m[1], cfg.State)
	assert.Equal(t, m[1], conn.PendingState())

	second, err := conn.AuthorizationURL()
	require.NoError(t, err)
	m2 := authURLPattern.FindStringSubmatch(second)
	require.NotNil(t, m2)
	assert.NotEqual(t, m[1], m2[1])
	assert.Equal(t, m2[1], cfg.State)

	assert.False(t, conn.IsAlive())
	assert.True(t, conn.Token().IsEmpty())
	assert.Equal(t, StateConfigured, conn.State())
}

func TestAuthorizationURL_ClientSecretNotRequired(t *testing.T) {
	cfg := authCodeConfig("https://auth.example.com/token")
	cfg.ClientSecret = ""
	conn := NewAuthorizationCodeConnection(cfg)

	_, err := conn.AuthorizationURL()
	assert.NoError(t, err)
}

func TestAuthorizationURL_Errors(t *testing.T) {
	t.Run("blank base url", func(t *testing.T) {
		cfg := authCodeConfig("https://auth.example.com/token")
		cfg.BaseAuthorizationURL = "   "
		conn := NewAuthorizationCodeConnection(cfg)

		u, err := conn.AuthorizationURL()
		assert.Empty(t, u)
		require.Error(t, err)
		assert.True(t, errdefs.IsConnectionError(err))
		assert.Contains(t, err.Error(), "required field is null or empty")
		assert.Empty(t, cfg.State)
	})

	t.Run("blank client id", func(t *testing.T) {
		cfg := authCodeConfig("https://auth.example.com/token")
		cfg.ClientID = ""
		_, err := NewAuthorizationCodeConnection(cfg).AuthorizationURL()

		var ve *errdefs.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, errdefs.CheckClientID, ve.Check)
	})

	t.Run("no configuration", func(t *testing.T) {
		conn := NewAuthorizationCodeConnection(authCodeConfig("https://auth.example.com/token"))
		conn.Disconnect()

		_, err := conn.AuthorizationURL()
		assert.True(t, errdefs.IsConnectionError(err))
	})
}

func TestBuildAuthorizationURL(t *testing.T) {
	u, err := BuildAuthorizationURL(" https://a/authorize ", " id ", " https://r/cb ", " openid ", "s-1")
	require.NoError(t, err)
	assert.Equal(t, "https://a/authorize?client_id=id&response_type=code&redirect_uri=https://r/cb&scope=openid&state=s-1", u)

	blanks := [][4]string{
		{"", "id", "r", "s"},
		{"b", " ", "r", "s"},
		{"b", "id", "", "s"},
		{"b", "id", "r", "\t"},
	}
	for _, args := range blanks {
		_, err := BuildAuthorizationURL(args[0], args[1], args[2], args[3], "state")
		require.Error(t, err)
		assert.Equal(t, "authorization_url: Failed to Build Authorization Url as required field is null or empty", err.Error())
	}
}

func TestCompleteAuthorization(t *testing.T) {
	cfg := authCodeConfig("https://auth.example.com/token")
	conn := NewAuthorizationCodeConnection(cfg)

	err := conn.CompleteAuthorization("code-1", "anything")
	assert.True(t, errors.Is(err, ErrStateMismatch), "no pending state")

	_, err = conn.AuthorizationURL()
	require.NoError(t, err)
	state := conn.PendingState()

	err = conn.CompleteAuthorization("code-1", "forged")
	assert.True(t, errors.Is(err, ErrStateMismatch))
	assert.Empty(t, cfg.AuthorizationCode)

	err = conn.CompleteAuthorization(" ", state)
	assert.True(t, errdefs.IsValidationError(err))
	assert.Empty(t, cfg.AuthorizationCode)

	require.NoError(t, conn.CompleteAuthorization("code-1", state))
	assert.Equal(t, "code-1", cfg.AuthorizationCode)
	assert.Empty(t, conn.PendingState())

	err = conn.CompleteAuthorization("code-2", state)
	assert.True(t, errors.Is(err, ErrStateMismatch), "state must not be reusable")
}

func TestAuthorizationCode_Connect(t *testing.T) {
	srv := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Len(t, r.PostForm, 6)
		assert.Equal(t, "openid&api", r.PostForm.Get("scope"))
		assert.Equal(t, "code-1", r.PostForm.Get("code"))
		assert.Equal(t, "https://app.example.com/callback", r.PostForm.Get("redirect_uri"))
		assert.Equal(t, "portal", r.PostForm.Get("client_id"))
		assert.Equal(t, []string{""}, r.PostForm["client_secret"])
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		respond(http.StatusOK, tokenJSON)(w, r)
	})

	cfg := authCodeConfig(srv.URL)
	conn := NewAuthorizationCodeConnection(cfg, WithProvisioner(provisionerFor(t, srv)))

	_, err := conn.AuthorizationURL()
	require.NoError(t, err)
	require.NoError(t, conn.CompleteAuthorization("code-1", conn.PendingState()))

	require.NoError(t, conn.Connect(context.Background()))
	assert.True(t, conn.IsAlive())
	assert.Equal(t, "abc123", conn.Token().AccessToken)
}

func TestAuthorizationCode_ConnectWithoutCode(t *testing.T) {
	conn := NewAuthorizationCodeConnection(authCodeConfig("https://auth.example.com/token"),
		WithProvisioner(mocks.NewMockProvisioner(gomock.NewController(t))))

	err := conn.Connect(context.Background())
	var ve *errdefs.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, errdefs.CheckTokenRequest, ve.Check)
	assert.True(t, errdefs.IsConnectionError(err))
}

func TestAuthorizationCode_Disconnect(t *testing.T) {
	conn := NewAuthorizationCodeConnection(authCodeConfig("https://auth.example.com/token"))
	_, err := conn.AuthorizationURL()
	require.NoError(t, err)

	conn.Disconnect()
	conn.Disconnect()
	assert.Empty(t, conn.PendingState())
	assert.Nil(t, conn.Configuration())
	assert.Equal(t, StateDisconnected, conn.State())

	require.NoError(t, conn.SetConfiguration(authCodeConfig("https://auth.example.com/token")))
	assert.Equal(t, StateConfigured, conn.State())
}
