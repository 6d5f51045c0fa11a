// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// AdminScope is the subject the admin key is derived for.
const AdminScope = "admin"

var ErrInvalidAdminKey = errors.New("invalid admin key")

func mac(subject, salt string) []byte {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(subject))
	return h.Sum(nil)
}

// GenerateID returns byteLen random bytes as hex
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAdminKey derives the key for scope from salt.
// Nothing is stored: the same inputs always give the same key.
func GenerateAdminKey(scope, salt string) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(mac(scope, salt)), "=")
}

// ValidateAdminKey compares adminKey against the derived key in constant time
func ValidateAdminKey(scope, adminKey, salt string) error {
	expected := GenerateAdminKey(scope, salt)
	if adminKey == "" || !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateShareSlug maps text to a short alphanumeric slug.
// Equal text and salt give equal slugs.
func GenerateShareSlug(text, salt string) string {
	return base62Encode(mac(text, salt)[:8])
}

// base62Encode renders up to 8 bytes as a base62 (0-9, a-z, A-Z) number
func base62Encode(data []byte) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}
	if num == 0 {
		return "0"
	}

	var buf [11]byte // 62^11 > 2^64
	i := len(buf)
	for num > 0 {
		i--
		buf[i] = alphabet[num%62]
		num /= 62
	}
	return string(buf[i:])
}

// HashIP returns a salted one-way hash of ip, 16 hex chars long
func HashIP(ip, salt string) string {
	return hex.EncodeToString(mac(ip, salt)[:8])
}
