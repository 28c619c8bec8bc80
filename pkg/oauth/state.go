package oauth

import (
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"
)

// GenerateState generates a random anti-forgery state for an authorization
// request. The value is a random (version 4) UUID in its canonical form.
func GenerateState() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return id.String(), nil
}

// StateMatches compares a returned state against the expected one in
// constant time. An empty expected state never matches.
func StateMatches(expected, got string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
