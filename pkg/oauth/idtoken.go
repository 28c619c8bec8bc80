package oauth

import (
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// IDTokenClaims holds the identity claims extracted from an ID token.
// They are used for display only; the signature is not verified.
type IDTokenClaims struct {
	// Subject is the unique user identifier (sub claim).
	Subject string `json:"sub"`
	// Email is the user's email address (email claim).
	Email string `json:"email"`
	// Issuer is the identity provider (iss claim).
	Issuer string `json:"iss"`
	// Expiry is when the ID token expires (exp claim).
	Expiry time.Time `json:"-"`
}

var idTokenAlgorithms = []jose.SignatureAlgorithm{
	jose.RS256, jose.RS384, jose.RS512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.HS256, jose.HS384, jose.HS512,
	jose.EdDSA,
}

// ParseIDTokenClaims decodes the claims of a compact-serialized ID token
// without verifying its signature.
func ParseIDTokenClaims(raw string) (*IDTokenClaims, error) {
	tok, err := jwt.ParseSigned(raw, idTokenAlgorithms)
	if err != nil {
		return nil, fmt.Errorf("failed to parse id token: %w", err)
	}

	var std jwt.Claims
	claims := &IDTokenClaims{}
	if err := tok.UnsafeClaimsWithoutVerification(&std, claims); err != nil {
		return nil, fmt.Errorf("failed to decode id token claims: %w", err)
	}
	if std.Expiry != nil {
		claims.Expiry = std.Expiry.Time()
	}
	return claims, nil
}

// IDTokenClaims decodes the token's ID token, if it has one.
func (t Token) IDTokenClaims() (*IDTokenClaims, error) {
	if t.IDToken == "" {
		return nil, nil
	}
	return ParseIDTokenClaims(t.IDToken)
}
