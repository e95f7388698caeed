// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAPIKey = errors.New("invalid api key")
	ErrBadToken      = errors.New("bad token")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateToken creates a random confirmation token for a participant.
// 24 bytes = 192 bits of entropy, URL-safe base64 without padding.
func GenerateToken() (string, error) {
	b := make([]byte, 24)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// TokensEqual compares two tokens in constant time
func TokensEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}

// ValidateAPIKey checks a presented admin key against the configured one.
// The configured key must be non-empty; callers handle that case as a
// server misconfiguration, not an authorization failure.
func ValidateAPIKey(presented, configured string) error {
	if presented == "" || !hmac.Equal([]byte(presented), []byte(configured)) {
		return ErrInvalidAPIKey
	}
	return nil
}
