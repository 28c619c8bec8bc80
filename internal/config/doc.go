// Package config defines connection configurations and loads them from a
// profile file.
//
// A Configuration is either a *ClientCredentials or an *AuthorizationCode.
// Both embed Settings, the fields every grant type shares; the grant type
// itself comes from the concrete type and cannot be reassigned.
//
// # Profile File
//
// Profiles live in a YAML file, by default $XDG_CONFIG_HOME/apiconnect/config.yaml:
//
//	defaultProfile: prod
//	profiles:
//	  prod:
//	    grantType: client_credentials
//	    clientId: my-client
//	    tokenServerUrl: https://auth.example.com/oauth/token
//	    apiRequestUrl: https://api.example.com
//	    sslCertPath: /etc/apiconnect/client.p12
//	    tokenExpiration: 3600
//	  portal:
//	    grantType: authorization_code
//	    clientId: portal-client
//	    tokenServerUrl: https://auth.example.com/oauth/token
//	    authorizationUrl: https://auth.example.com/oauth/authorize
//	    redirectUrl: http://127.0.0.1:8085/callback
//	    sslCertPath: /etc/apiconnect/client.pem
//	    scopes: [api, profile]
//
// The file is checked against an embedded JSON schema before decoding, so
// misspelled keys are reported rather than silently ignored.
//
// # Secrets
//
// Secrets can stay out of the file. LoadEnv reads a .env file and ApplyEnv
// fills CLIENT_ID, CLIENT_SECRET, KEY_PASSWORD and STORE_PASSWORD from
// APICONNECT_<PROFILE>_<KEY> or APICONNECT_<KEY>.
package config
