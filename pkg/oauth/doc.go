// Package oauth holds the OAuth 2.0 vocabulary shared by apiconnect's
// configuration, connection and CLI layers.
//
// # Core Components
//
//   - GrantType: client_credentials and authorization_code
//   - Scope: openid (default), api and profile
//   - Token: the decoded token-endpoint response
//   - GenerateState / StateMatches: anti-forgery state for redirects
//   - ParseIDTokenClaims: display-only inspection of OIDC ID tokens
//
// # Usage
//
//	gt, ok := oauth.ParseGrantType("client_credentials")
//	state, err := oauth.GenerateState()
//	if !oauth.StateMatches(state, returned) { ... }
package oauth
