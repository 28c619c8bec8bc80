package cmd

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/require"
)

var testdataDir = filepath.Join("..", "internal", "tlsclient", "testdata")

const tokenJSON = `{"access_token":"abcdefghijkl","token_type":"Bearer","expires_in":3600,"scope":"api"}`

func testdata(t *testing.T, name string) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join(testdataDir, name))
	require.NoError(t, err)
	return p
}

// newTokenServer starts an https server requiring a client certificate
// from the test CA.
func newTokenServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	cert, err := tls.LoadX509KeyPair(testdata(t, "server.pem"), testdata(t, "server-key.pem"))
	require.NoError(t, err)
	caPEM, err := os.ReadFile(testdata(t, "ca.pem"))
	require.NoError(t, err)
	pool := x509.NewCertPool()
	require.True(t, pool.AppendCertsFromPEM(caPEM))

	srv := httptest.NewUnstartedServer(handler)
	srv.TLS = &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    pool,
	}
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv
}

const profilesTemplate = `
defaultProfile: prod
profiles:
  prod:
    grantType: client_credentials
    clientId: svc
    clientSecret: secret
    tokenServerUrl: {{ .URL }}/oauth/token
    apiRequestUrl: {{ .URL }}/api/
    sslCertPath: {{ .P12 }}
    storePassword: storepass
    keyPassword: keypass
    caCertPath: {{ .CA }}
  rejected:
    grantType: client_credentials
    clientId: svc
    clientSecret: wrong
    tokenServerUrl: {{ .URL }}/oauth/token
    sslCertPath: {{ .P12 }}
    storePassword: storepass
    keyPassword: keypass
    caCertPath: {{ .CA }}
  portal:
    grantType: authorization_code
    clientId: portal
    tokenServerUrl: {{ .URL }}/oauth/token
    authorizationUrl: https://auth.example.com/authorize
    redirectUrl: {{ .Redirect }}
    sslCertPath: {{ .PEM }}
    storePassword: unused
    keyPassword: unused
    caCertPath: {{ .CA }}
    scopes: [api]
`

type profileVars struct {
	URL      string
	P12      string
	PEM      string
	CA       string
	Redirect string
}

// writeProfiles renders the test profile file against srvURL.
func writeProfiles(t *testing.T, srvURL, redirect string) string {
	t.Helper()
	vars := profileVars{
		URL:      srvURL,
		P12:      testdata(t, "client.p12"),
		PEM:      testdata(t, "client.pem"),
		CA:       testdata(t, "ca.pem"),
		Redirect: redirect,
	}
	var buf bytes.Buffer
	require.NoError(t, template.Must(template.New("profiles").Parse(profilesTemplate)).Execute(&buf, vars))

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

// tokenHandler issues a token for client secret "secret" and for code
// "code-1", and rejects everything else with 401.
func tokenHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ok := r.PostForm.Get("client_secret") == "secret" || r.PostForm.Get("code") == "code-1"
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tokenJSON))
	}
}

func newMux(t *testing.T) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", tokenHandler(t))
	mux.HandleFunc("/api/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"auth":"` + r.Header.Get("Authorization") + `","method":"` + r.Method + `"}`))
	})
	mux.HandleFunc("/api/v1/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return mux
}

// execute runs the command tree with args and returns its output streams.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
