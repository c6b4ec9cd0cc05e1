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

var ErrInvalidCredentials = errors.New("invalid credentials")

// GenerateToken creates a random opaque bearer credential
func GenerateToken() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// HashPassword derives a deterministic hash of the password under the server
// salt. The salt lives in configuration, not in the database, so a dumped
// usuario table alone is not enough to brute-force credentials offline.
func HashPassword(password, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyPassword checks a password attempt against a stored hash in constant
// time.
func VerifyPassword(password, salt, storedHash string) error {
	attempt := HashPassword(password, salt)
	if !hmac.Equal([]byte(attempt), []byte(storedHash)) {
		return ErrInvalidCredentials
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy.
// Includes salt to prevent rainbow table attacks.
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
