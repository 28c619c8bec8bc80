// Package connection manages the lifecycle of OAuth 2.0 connections.
//
// A connection moves through four states:
//
//	Unconfigured -> Configured -> Connected -> Disconnected
//
// Connect validates the held configuration, provisions a mutual-TLS client
// and posts a form-encoded token request. A 200 response is decoded into
// the connection's token; 400, 401 and 500 responses are recorded on
// ErrorResponse without returning an error. Every other failure is an
// *errdefs.ConnectionError whose cause can be inspected with errors.As.
//
// Two variants exist. ClientCredentialsConnection sends the client ID and
// secret. AuthorizationCodeConnection also builds the authorization URL,
// checks the state returned with the redirect and exchanges the code:
//
//	f := connection.DefaultFactory()
//	cfg, _ := f.MakeConfiguration("authorization_code")
//	// populate cfg
//	conn, _ := f.MakeConnection(cfg)
//	ac := conn.(*connection.AuthorizationCodeConnection)
//	authURL, _ := ac.AuthorizationURL()
//	// user consents, redirect delivers code and state
//	_ = ac.CompleteAuthorization(code, state)
//	_ = ac.Connect(ctx)
//
// Connections hold no locks; each must be driven by a single goroutine.
package connection
