// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and key validation utilities.

# Confirmation Tokens

Confirmation tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateToken()

Tokens are URL-safe base64 encoded without padding. A participant
receives a token at registration and must present it with every
confirmation; comparison is constant time:

	if !auth.TokensEqual(presented, stored) { ... }

# Admin API Keys

The admin surface is protected by a single static key configured via
BACKEND_API_KEY:

	err := auth.ValidateAPIKey(presented, cfg.BackendAPIKey)

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
