package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	key, err := NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey: %v", err)
	}
	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	return c
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := testCipher(t)

	cases := []string{
		"",
		"abc123",
		"a longer value with spaces and unicode: héllo wörld",
		`{"looks":"like json"}`,
		strings.Repeat("x", 10000),
	}
	for _, plaintext := range cases {
		env, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", plaintext, err)
		}
		if !env.Encrypted {
			t.Error("envelope missing encrypted sentinel")
		}
		got, err := c.Decrypt(env)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if got != plaintext {
			t.Errorf("round trip = %q, want %q", got, plaintext)
		}
	}
}

func TestDecryptFlippedTagByte(t *testing.T) {
	c := testCipher(t)

	env, err := c.Encrypt("sensitive")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	tag, _ := base64.StdEncoding.DecodeString(env.AuthTag)
	tag[0] ^= 0x01
	env.AuthTag = base64.StdEncoding.EncodeToString(tag)

	_, err = c.Decrypt(env)
	var ce *CryptoError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CryptoError for flipped tag byte, got %v", err)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	c1 := testCipher(t)
	c2 := testCipher(t)

	env, err := c1.Encrypt("abc123")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	_, err = c2.Decrypt(env)
	var ce *CryptoError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CryptoError under wrong key, got %v", err)
	}
}

func TestFreshIVPerCall(t *testing.T) {
	c := testCipher(t)

	e1, err := c.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	e2, err := c.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if e1.IV == e2.IV {
		t.Error("IV reused across Encrypt calls")
	}
	if e1.Ciphertext == e2.Ciphertext {
		t.Error("identical ciphertext for two encryptions of the same plaintext")
	}
}

func TestNewCipherBadKeyLength(t *testing.T) {
	if _, err := NewCipher([]byte("short")); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestParseEnvelope(t *testing.T) {
	c := testCipher(t)
	raw, err := c.EncryptToString("value")
	if err != nil {
		t.Fatalf("EncryptToString: %v", err)
	}

	env, ok := ParseEnvelope(raw)
	if !ok {
		t.Fatal("expected serialized envelope to parse")
	}
	got, err := c.Decrypt(env)
	if err != nil || got != "value" {
		t.Fatalf("Decrypt parsed envelope = %q, %v", got, err)
	}

	// Plain JSON without the sentinel is not an envelope.
	for _, raw := range []string{
		"plain text",
		`{"ciphertext":"x","iv":"y","authTag":"z"}`,
		`{"__encrypted":false,"ciphertext":"x","iv":"y","authTag":"z"}`,
		`{"key":"value"}`,
		"",
	} {
		if _, ok := ParseEnvelope(raw); ok {
			t.Errorf("ParseEnvelope(%q) = true, want false", raw)
		}
	}
}

func TestDecryptMalformedEnvelope(t *testing.T) {
	c := testCipher(t)

	cases := []*Envelope{
		nil,
		{Encrypted: false},
		{Encrypted: true, Ciphertext: "!!notbase64!!", IV: "aaaa", AuthTag: "bbbb"},
		{Encrypted: true, Ciphertext: "YWJj", IV: "YWJj", AuthTag: "YWJj"}, // wrong lengths
	}
	for i, env := range cases {
		_, err := c.Decrypt(env)
		var ce *CryptoError
		if !errors.As(err, &ce) {
			t.Errorf("case %d: expected *CryptoError, got %v", i, err)
		}
	}
}

func TestEnvelopeSerializationCarriesSentinel(t *testing.T) {
	c := testCipher(t)
	raw, err := c.EncryptToString("abc")
	if err != nil {
		t.Fatalf("EncryptToString: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("stored value is not JSON: %v", err)
	}
	if m["__encrypted"] != true {
		t.Error("stored envelope missing __encrypted sentinel")
	}
}

func TestFingerprintStablePerKey(t *testing.T) {
	key, _ := NewRandomKey()
	c1, _ := NewCipher(key)
	c2, _ := NewCipher(key)
	if c1.Fingerprint() != c2.Fingerprint() {
		t.Error("same key produced different fingerprints")
	}
	other := testCipher(t)
	if c1.Fingerprint() == other.Fingerprint() {
		t.Error("different keys produced identical fingerprints")
	}
	if len(c1.Fingerprint()) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(c1.Fingerprint()))
	}
}

func TestVerifyHMAC(t *testing.T) {
	sig := HMAC("message", "key")
	if !VerifyHMAC("message", "key", sig) {
		t.Error("valid signature rejected")
	}
	if VerifyHMAC("message", "other-key", sig) {
		t.Error("signature accepted under wrong key")
	}
	if VerifyHMAC("tampered", "key", sig) {
		t.Error("signature accepted for tampered message")
	}
	if VerifyHMAC("message", "key", "not-hex!") {
		t.Error("malformed signature accepted")
	}
}

func TestMaskSecret(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"short", "*****"},
		{"12345678", "********"},
		{"abcdefghijkl", "abcd****ijkl"},
	}
	for _, tc := range cases {
		if got := MaskSecret(tc.in); got != tc.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(16)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(tok) != 32 {
		t.Errorf("token length = %d, want 32 hex chars", len(tok))
	}
	tok2, _ := GenerateToken(16)
	if tok == tok2 {
		t.Error("two generated tokens are identical")
	}
}
