package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"apiconnect/internal/errdefs"
	"apiconnect/internal/formatting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_DefaultProfile(t *testing.T) {
	srv := newTokenServer(t, newMux(t))
	path := writeProfiles(t, srv.URL, "http://127.0.0.1:0/callback")

	out, _, err := execute(t, "connect", "--config", path, "-o", "json")
	require.NoError(t, err)

	var statuses []formatting.Status
	require.NoError(t, json.Unmarshal([]byte(out), &statuses))
	require.Len(t, statuses, 1)
	s := statuses[0]
	assert.Equal(t, "prod", s.Profile)
	assert.True(t, s.Alive)
	assert.Equal(t, "connected", s.State)
	assert.Equal(t, "abcd****", s.Token)
	assert.NotNil(t, s.ExpiresAt)
	assert.NotContains(t, out, "abcdefghijkl")
}

func TestConnect_Rejected(t *testing.T) {
	srv := newTokenServer(t, newMux(t))
	path := writeProfiles(t, srv.URL, "http://127.0.0.1:0/callback")

	out, _, err := execute(t, "connect", "--config", path, "--profile", "rejected", "-o", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCodeConnection, getExitCode(err))
	assert.Contains(t, err.Error(), `HTTP/1.1 401 Unauthorized {"error":"invalid_client"}`)

	var statuses []formatting.Status
	require.NoError(t, json.Unmarshal([]byte(out), &statuses))
	assert.False(t, statuses[0].Alive)
	assert.Equal(t, `HTTP/1.1 401 Unauthorized {"error":"invalid_client"}`, statuses[0].ErrorResponse)
}

func TestConnect_EnvOverride(t *testing.T) {
	srv := newTokenServer(t, newMux(t))
	path := writeProfiles(t, srv.URL, "http://127.0.0.1:0/callback")
	t.Setenv("APICONNECT_REJECTED_CLIENT_SECRET", "secret")

	_, _, err := execute(t, "connect", "--config", path, "--profile", "rejected", "-o", "json")
	assert.NoError(t, err)
}

func TestConnect_All(t *testing.T) {
	srv := newTokenServer(t, newMux(t))
	path := writeProfiles(t, srv.URL, "http://127.0.0.1:0/callback")

	out, _, err := execute(t, "connect", "--config", path, "--all", "-o", "plain", "--no-headers")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 profiles failed to connect")
	assert.True(t, errdefs.IsConnectionError(err))

	rows := lines(out)
	require.Len(t, rows, 3)
	assert.Equal(t, "portal", strings.Fields(rows[0])[0])
	assert.Contains(t, rows[0], "authorize")
	assert.Equal(t, []string{"prod", "client_credentials", "connected", "yes"}, strings.Fields(rows[1])[:4])
	assert.Equal(t, []string{"rejected", "client_credentials", "configured", "no"}, strings.Fields(rows[2])[:4])
}

func TestConnect_AllAndProfileExclusive(t *testing.T) {
	_, _, err := execute(t, "connect", "--all", "--profile", "prod")
	assert.Error(t, err)
}

func TestConnect_Template(t *testing.T) {
	srv := newTokenServer(t, newMux(t))
	path := writeProfiles(t, srv.URL, "http://127.0.0.1:0/callback")

	out, _, err := execute(t, "connect", "--config", path,
		"--template", `{{ .profile | upper }} {{ .alive }} {{ .token }} {{ if .now }}ok{{ end }}`)
	require.NoError(t, err)
	assert.Equal(t, "PROD true abcd**** ok\n", out)
}

func TestConnect_TemplateError(t *testing.T) {
	srv := newTokenServer(t, newMux(t))
	path := writeProfiles(t, srv.URL, "http://127.0.0.1:0/callback")

	_, _, err := execute(t, "connect", "--config", path, "--template", `{{ .profile `)
	assert.Error(t, err)
}

func TestConnect_AuthorizationCodeProfileNeedsAuthorize(t *testing.T) {
	srv := newTokenServer(t, newMux(t))
	path := writeProfiles(t, srv.URL, "http://127.0.0.1:0/callback")

	_, _, err := execute(t, "connect", "--config", path, "--profile", "portal")
	require.Error(t, err)
	assert.Equal(t, ExitCodeValidation, getExitCode(err))
	assert.Contains(t, err.Error(), "apiconnect authorize")
}
