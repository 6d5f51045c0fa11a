// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides keyed hashes and random identifiers.

# Admin Key

The admin routes are protected by a key derived from ADMIN_KEY_SALT with
HMAC-SHA256:

	key := auth.GenerateAdminKey(auth.AdminScope, salt)
	err := auth.ValidateAdminKey(auth.AdminScope, r.Header.Get("X-Admin-Key"), salt)

The key is URL-safe base64 without padding and is never stored. Run the
server with -print-admin-key to see it.

# Share Slugs

Generated quotes get a short base62 slug so they can be shared:

	slug := auth.GenerateShareSlug(quoteText, salt)

The same text and salt always give the same slug.

# IP Hashing

The rate limiter keys visitors by a salted hash of their IP:

	key := auth.HashIP(ip, salt)

# ID Generation

	salt, err := auth.GenerateID(16) // 32 hex characters
*/
package auth
