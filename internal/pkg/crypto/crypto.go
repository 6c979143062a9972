// Package crypto implements the symmetric encryption used for script
// property values: AES-256-GCM with a JSON envelope that tags encrypted
// values so they can be told apart from plaintext in the remote store.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

// ivSize is the GCM nonce length. A fresh IV is drawn from crypto/rand on
// every Encrypt call; reusing an IV under the same key breaks the GCM
// authenticity guarantee.
const ivSize = 12

// tagSize is the GCM authentication tag length.
const tagSize = 16

// CryptoError reports a failed encrypt or decrypt operation.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto %s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// Envelope is the JSON wrapper stored in place of an encrypted value.
// The Encrypted field is the sentinel distinguishing envelopes from
// plaintext that happens to parse as JSON.
type Envelope struct {
	Encrypted  bool   `json:"__encrypted"`
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	AuthTag    string `json:"authTag"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// Cipher performs authenticated encryption of single string values under a
// fixed 32-byte key.
type Cipher struct {
	key  []byte
	aead cipher.AEAD
}

// NewCipher creates a Cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, &CryptoError{Op: "init", Err: fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))}
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &CryptoError{Op: "init", Err: err}
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, &CryptoError{Op: "init", Err: err}
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Cipher{key: k, aead: aead}, nil
}

// NewRandomKey generates a fresh random 32-byte key. Values encrypted
// under a generated key are unrecoverable after restart unless the
// operator captures the key and supplies it via configuration.
func NewRandomKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, &CryptoError{Op: "keygen", Err: err}
	}
	return key, nil
}

// Encrypt seals plaintext into an Envelope with a fresh random IV.
func (c *Cipher) Encrypt(plaintext string) (*Envelope, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, &CryptoError{Op: "encrypt", Err: err}
	}

	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	// Seal appends the tag to the ciphertext; split so the envelope
	// carries them as separate fields.
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return &Envelope{
		Encrypted:  true,
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
		IV:         base64.StdEncoding.EncodeToString(iv),
		AuthTag:    base64.StdEncoding.EncodeToString(tag),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Decrypt opens an Envelope. A wrong key, a flipped ciphertext or tag
// byte, or a malformed envelope all fail with *CryptoError.
func (c *Cipher) Decrypt(env *Envelope) (string, error) {
	if env == nil || !env.Encrypted {
		return "", &CryptoError{Op: "decrypt", Err: fmt.Errorf("not an encrypted envelope")}
	}

	ct, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return "", &CryptoError{Op: "decrypt", Err: fmt.Errorf("malformed ciphertext: %w", err)}
	}
	iv, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return "", &CryptoError{Op: "decrypt", Err: fmt.Errorf("malformed iv: %w", err)}
	}
	tag, err := base64.StdEncoding.DecodeString(env.AuthTag)
	if err != nil {
		return "", &CryptoError{Op: "decrypt", Err: fmt.Errorf("malformed auth tag: %w", err)}
	}
	if len(iv) != ivSize || len(tag) != tagSize {
		return "", &CryptoError{Op: "decrypt", Err: fmt.Errorf("envelope field length mismatch")}
	}

	plaintext, err := c.aead.Open(nil, iv, append(ct, tag...), nil)
	if err != nil {
		return "", &CryptoError{Op: "decrypt", Err: fmt.Errorf("authentication failed: %w", err)}
	}
	return string(plaintext), nil
}

// EncryptToString seals plaintext and returns the serialized envelope.
func (c *Cipher) EncryptToString(plaintext string) (string, error) {
	env, err := c.Encrypt(plaintext)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return "", &CryptoError{Op: "encrypt", Err: err}
	}
	return string(data), nil
}

// ParseEnvelope reports whether raw is a serialized encrypted envelope.
// JSON that lacks the sentinel field is not an envelope — such values are
// returned to callers unchanged, never treated as an error.
func ParseEnvelope(raw string) (*Envelope, bool) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, false
	}
	if !env.Encrypted || env.Ciphertext == "" || env.IV == "" || env.AuthTag == "" {
		return nil, false
	}
	return &env, true
}

// Fingerprint returns a short stable identifier for the key, used to
// detect key rotation between property backup and restore.
func (c *Cipher) Fingerprint() string {
	return Hash(string(c.key))[:16]
}
