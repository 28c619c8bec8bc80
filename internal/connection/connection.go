package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"apiconnect/internal/config"
	"apiconnect/internal/errdefs"
	"apiconnect/internal/tlsclient"
	"apiconnect/pkg/logging"
	"apiconnect/pkg/oauth"

	"golang.org/x/oauth2"
)

const (
	opConnect          = "connect"
	opAuthorizationURL = "authorization_url"
	opCompleteAuth     = "complete_authorization"
	opSetConfiguration = "set_configuration"
	opHTTPClient       = "http_client"

	// maxResponseBytes bounds how much of a token response is read.
	maxResponseBytes = 1 << 20
)

// Form field names of a token request.
const (
	paramClientID     = "client_id"
	paramClientSecret = "client_secret"
	paramGrantType    = "grant_type"
	paramScope        = "scope"
	paramCode         = "code"
	paramRedirectURI  = "redirect_uri"
)

// State is the lifecycle position of a connection.
type State int

const (
	// StateUnconfigured means no configuration is held.
	StateUnconfigured State = iota
	// StateConfigured means a configuration is held but no token.
	StateConfigured
	// StateConnected means the last exchange returned a token.
	StateConnected
	// StateDisconnected means Disconnect was called.
	StateDisconnected
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Connection is an authenticated session against one token server.
// A connection is used by a single caller; it is not safe for concurrent use.
type Connection interface {
	// Connect validates the configuration and performs a token exchange.
	// Server rejections (400, 401, 500) are not errors; they are recorded
	// on ErrorResponse.
	Connect(ctx context.Context) error
	// Disconnect drops the token and configuration. It never fails.
	Disconnect()
	// IsAlive reports whether a non-blank, unexpired token is held.
	IsAlive() bool

	Token() oauth.Token
	Expiry() time.Time
	ErrorResponse() string
	Configuration() config.Configuration
	State() State

	// HTTPClient returns a client that sends the held token as a bearer
	// credential over the connection's mutual-TLS transport.
	HTTPClient(ctx context.Context) (*http.Client, error)
}

// Option configures a connection.
type Option func(*base)

// WithProvisioner sets the TLS client provisioner.
func WithProvisioner(p tlsclient.Provisioner) Option {
	return func(b *base) {
		b.provisioner = p
	}
}

// WithClock replaces time.Now, for expiry calculations.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		b.now = now
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// base holds the state shared by both connection variants.
type base struct {
	grantType oauth.GrantType
	cfg       config.Configuration

	token         oauth.Token
	alive         bool
	expiry        time.Time
	errorResponse string
	state         State

	provisioner tlsclient.Provisioner
	now         func() time.Time
	logger      *slog.Logger
}

func newBase(grantType oauth.GrantType, cfg config.Configuration, opts ...Option) base {
	b := base{
		grantType: grantType,
		cfg:       cfg,
		state:     StateUnconfigured,
		now:       time.Now,
		logger:    logging.For("Connection"),
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.provisioner == nil {
		b.provisioner = tlsclient.NewKeyStoreProvisioner()
	}
	if !isNilConfiguration(cfg) {
		b.state = StateConfigured
	}
	return b
}

func isNilConfiguration(cfg config.Configuration) bool {
	return cfg == nil || cfg.Common() == nil
}

// Disconnect implements Connection.
func (b *base) Disconnect() {
	b.alive = false
	b.token = oauth.Token{}
	b.expiry = time.Time{}
	b.errorResponse = ""
	b.cfg = nil
	b.state = StateDisconnected
}

// IsAlive implements Connection. It does not change any state.
func (b *base) IsAlive() bool {
	return b.alive && !b.token.IsEmpty() && b.now().Before(b.expiry)
}

// Token implements Connection.
func (b *base) Token() oauth.Token {
	return b.token
}

// Expiry implements Connection.
func (b *base) Expiry() time.Time {
	return b.expiry
}

// ErrorResponse implements Connection.
func (b *base) ErrorResponse() string {
	return b.errorResponse
}

// Configuration implements Connection.
func (b *base) Configuration() config.Configuration {
	return b.cfg
}

// State implements Connection.
func (b *base) State() State {
	return b.state
}

// setConfiguration re-arms the connection with cfg, which must carry the
// connection's grant type.
func (b *base) setConfiguration(cfg config.Configuration) error {
	if isNilConfiguration(cfg) {
		return errdefs.NewConnectionError(opSetConfiguration, "connection configuration cannot be nil", nil)
	}
	if cfg.GrantType() != b.grantType {
		return errdefs.NewConnectionError(opSetConfiguration, "configuration does not match connection",
			&errdefs.InvalidGrantTypeError{GrantType: cfg.GrantType().String()})
	}
	b.cfg = cfg
	b.alive = false
	b.token = oauth.Token{}
	b.expiry = time.Time{}
	b.errorResponse = ""
	b.state = StateConfigured
	return nil
}

// exchange posts form to the configured token server and records the
// outcome. The response body and the client's idle connections are
// released before it returns.
func (b *base) exchange(ctx context.Context, form url.Values) (err error) {
	settings := b.cfg.Common()

	client, err := b.provisioner.HTTPClient(settings)
	if err != nil {
		return errdefs.NewConnectionError(opConnect, "failed to provision TLS client", err)
	}
	defer client.CloseIdleConnections()

	tokenURL := strings.TrimSpace(settings.TokenServerURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errdefs.NewConnectionError(opConnect, "failed to build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	b.logger.Debug("requesting token", "token_url", tokenURL, "grant_type", b.grantType)

	resp, err := client.Do(req)
	if err != nil {
		return errdefs.NewConnectionError(opConnect, "token request failed", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = errdefs.NewConnectionError(opConnect, "failed to release token response", cerr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errdefs.NewConnectionError(opConnect, "failed to read token response", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return b.acceptToken(body, settings)

	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError:
		b.reject()
		b.errorResponse = statusLine(resp) + " " + string(body)
		b.logger.Warn("token request rejected", "status", resp.StatusCode)
		return nil

	default:
		b.reject()
		b.logger.Warn("unexpected token response status", "status", resp.StatusCode)
		return nil
	}
}

func (b *base) acceptToken(body []byte, settings *config.Settings) error {
	if len(bytes.TrimSpace(body)) == 0 {
		b.reject()
		return errdefs.NewConnectionError(opConnect, "token response body is empty", nil)
	}

	var tok oauth.Token
	if err := json.Unmarshal(body, &tok); err != nil {
		b.reject()
		return errdefs.NewConnectionError(opConnect, "failed to decode token response", err)
	}

	lifetime := tok.Lifetime()
	if lifetime == 0 && settings.TokenExpiration > 0 {
		lifetime = time.Duration(settings.TokenExpiration) * time.Second
	}

	b.token = tok
	b.expiry = b.now().Add(lifetime)
	b.alive = true
	b.errorResponse = ""
	b.state = StateConnected

	b.logger.Info("connected", "grant_type", b.grantType, "token", tok, "expires_at", b.expiry)
	return nil
}

func (b *base) reject() {
	b.alive = false
	b.token = oauth.Token{}
	b.expiry = time.Time{}
	b.errorResponse = ""
	if b.state == StateConnected {
		b.state = StateConfigured
	}
}

// HTTPClient implements Connection.
func (b *base) HTTPClient(ctx context.Context) (*http.Client, error) {
	if !b.IsAlive() {
		return nil, errdefs.NewConnectionError(opHTTPClient, "connection is not alive", nil)
	}

	transport, err := b.provisioner.HTTPClient(b.cfg.Common())
	if err != nil {
		return nil, errdefs.NewConnectionError(opHTTPClient, "failed to provision TLS client", err)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, transport)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(b.token.ToOAuth2Token(b.expiry))), nil
}

// statusLine renders "HTTP/1.1 401 Unauthorized".
func statusLine(resp *http.Response) string {
	proto := resp.Proto
	if proto == "" {
		proto = fmt.Sprintf("HTTP/%d.%d", resp.ProtoMajor, resp.ProtoMinor)
	}
	return proto + " " + resp.Status
}
