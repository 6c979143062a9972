package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash returns the hex-encoded SHA-256 digest of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HMAC returns the hex-encoded HMAC-SHA256 of message under key.
func HMAC(message, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC reports whether signature matches the HMAC of message under
// key, using a constant-time comparison.
func VerifyHMAC(message, key, signature string) bool {
	expected, err := hex.DecodeString(HMAC(message, key))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}

// GenerateToken returns n random bytes hex-encoded, for temp-file names
// and one-time identifiers.
func GenerateToken(n int) (string, error) {
	if n <= 0 {
		n = 16
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", &CryptoError{Op: "token", Err: err}
	}
	return hex.EncodeToString(buf), nil
}

// MaskSecret hides all but the first and last few characters of a secret
// for log-safe display. Short secrets are fully masked.
func MaskSecret(s string) string {
	const reveal = 4
	if len(s) <= reveal*2 {
		return strings.Repeat("*", len(s))
	}
	return s[:reveal] + strings.Repeat("*", len(s)-reveal*2) + s[len(s)-reveal:]
}
