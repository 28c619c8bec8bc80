package tlsclient

//go:generate mockgen -source=provisioner.go -destination=mocks/mock_provisioner.go -package=mocks Provisioner

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"apiconnect/internal/config"
	"apiconnect/internal/errdefs"
	"apiconnect/internal/validation"
	"apiconnect/pkg/logging"
)

// Provisioner builds HTTP clients that authenticate with the client
// certificate named by a configuration.
type Provisioner interface {
	HTTPClient(settings *config.Settings) (*http.Client, error)
}

// KeyStoreProvisioner provisions mutual-TLS clients from key store files.
type KeyStoreProvisioner struct {
	timeout time.Duration
	logger  *slog.Logger
}

// ProvisionerOption configures a KeyStoreProvisioner.
type ProvisionerOption func(*KeyStoreProvisioner)

// WithTimeout sets an overall request timeout on provisioned clients.
// Zero, the default, leaves requests bounded only by their context.
func WithTimeout(d time.Duration) ProvisionerOption {
	return func(p *KeyStoreProvisioner) {
		p.timeout = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ProvisionerOption {
	return func(p *KeyStoreProvisioner) {
		p.logger = logger
	}
}

// NewKeyStoreProvisioner creates a provisioner.
func NewKeyStoreProvisioner(opts ...ProvisionerOption) *KeyStoreProvisioner {
	p := &KeyStoreProvisioner{
		logger: logging.For("TLSClient"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseTLSVersion maps "TLSv1.2" and "TLSv1.3" to their crypto/tls constants.
func ParseTLSVersion(v string) (uint16, error) {
	switch strings.TrimSpace(v) {
	case "TLSv1.2":
		return tls.VersionTLS12, nil
	case "TLSv1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q (expected TLSv1.2 or TLSv1.3)", v)
	}
}

// TLSConfig builds the client TLS configuration: the key store identity,
// the optional CA bundle and a single pinned protocol version.
func TLSConfig(settings *config.Settings) (*tls.Config, *KeyMaterial, error) {
	version, err := ParseTLSVersion(settings.PinnedTLSVersion())
	if err != nil {
		return nil, nil, err
	}

	material, err := LoadKeyStore(
		strings.TrimSpace(settings.SSLCertPath),
		strings.TrimSpace(settings.StorePassword),
		strings.TrimSpace(settings.KeyPassword),
	)
	if err != nil {
		return nil, nil, err
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{material.Certificate},
		MinVersion:   version,
		MaxVersion:   version,
	}

	if ca := strings.TrimSpace(settings.CACertPath); ca != "" {
		pool, err := LoadCertPool(ca)
		if err != nil {
			return nil, nil, err
		}
		cfg.RootCAs = pool
	}

	return cfg, material, nil
}

// HTTPClient implements Provisioner. It fails with a ConnectionError, never
// returning a partially configured client.
func (p *KeyStoreProvisioner) HTTPClient(settings *config.Settings) (*http.Client, error) {
	if settings == nil {
		return nil, errdefs.NewConnectionError("provision_client", "connection configuration cannot be nil", nil)
	}

	if err := validation.ValidateSSL(settings); err != nil {
		return nil, errdefs.NewConnectionError("provision_client", "SSL attributes are incomplete", err)
	}

	if warning := CheckKeyStoreFile(settings.SSLCertPath); warning != "" {
		p.logger.Warn(warning)
	}

	tlsConfig, material, err := TLSConfig(settings)
	if err != nil {
		return nil, errdefs.NewConnectionError("provision_client", "failed to build TLS configuration", err)
	}

	p.logger.Debug("provisioned mutual TLS client",
		"subject", material.Leaf.Subject.CommonName,
		"not_after", material.Leaf.NotAfter,
		"tls_version", settings.PinnedTLSVersion())

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: tlsConfig,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   p.timeout,
	}, nil
}
