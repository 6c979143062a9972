// Package properties provides encrypted get/set/delete/list, audit, and
// backup/restore semantics for remote script properties. The platform has
// no direct properties API, so every operation synthesizes a small Apps
// Script snippet and executes it through the ephemeral runner.
package properties

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/evert/apps-script-mcp-go/internal/gasapi"
	"github.com/evert/apps-script-mcp-go/internal/pkg/crypto"
)

// ErrKeyMismatch is returned by Restore when the snapshot was taken under
// a different encryption key and the caller did not opt into a raw
// restore.
var ErrKeyMismatch = errors.New("backup was taken under a different encryption key — pass allow_key_mismatch to restore raw values")

// IntegrityError reports a checksum mismatch between a snapshot's stored
// mapping and its recorded checksum.
type IntegrityError struct {
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("backup integrity check failed: checksum %s, expected %s", e.Actual, e.Expected)
}

// SnippetRunner is the slice of the ephemeral runner the manager needs.
type SnippetRunner interface {
	Run(ctx context.Context, scriptID, function, source string) (*gasapi.ExecutionResult, error)
	SweepOrphans(ctx context.Context, scriptID string) ([]string, error)
}

// Value is one resolved property.
type Value struct {
	Value     string
	Encrypted bool
}

// Manager composes the snippet runner and the cipher.
type Manager struct {
	runner SnippetRunner
	cipher *crypto.Cipher

	mu    sync.Mutex
	swept map[string]bool
}

// NewManager creates a Manager. cipher may be nil, in which case encrypted
// operations fail and stored envelopes are returned verbatim.
func NewManager(runner SnippetRunner, cipher *crypto.Cipher) *Manager {
	return &Manager{runner: runner, cipher: cipher, swept: make(map[string]bool)}
}

// SweepOnce runs Sweep the first time a script is touched in this process.
func (m *Manager) SweepOnce(ctx context.Context, scriptID string) {
	m.mu.Lock()
	done := m.swept[scriptID]
	m.swept[scriptID] = true
	m.mu.Unlock()
	if !done {
		m.Sweep(ctx, scriptID)
	}
}

// Sweep removes orphaned temporary snippet files left by crashed runs.
// Best-effort: callers log rather than fail on sweep errors.
func (m *Manager) Sweep(ctx context.Context, scriptID string) {
	removed, err := m.runner.SweepOrphans(ctx, scriptID)
	if err != nil {
		slog.Warn("orphan sweep failed", "scriptId", scriptID, "error", err)
		return
	}
	if len(removed) > 0 {
		slog.Info("removed orphaned temporary script files", "scriptId", scriptID, "count", len(removed))
	}
}

// Set stores a property. With encrypt true the value is sealed into an
// envelope under the current key; otherwise the exact plaintext is stored.
func (m *Manager) Set(ctx context.Context, scriptID, key, value string, encrypt bool) error {
	stored := value
	if encrypt {
		if m.cipher == nil {
			return &crypto.CryptoError{Op: "encrypt", Err: errors.New("no encryption key configured")}
		}
		var err error
		stored, err = m.cipher.EncryptToString(value)
		if err != nil {
			return err
		}
	}

	result, err := m.runner.Run(ctx, scriptID, snippetFunction, setPropertySnippet(key, stored))
	if err != nil {
		return err
	}
	return executionError("setting property", result)
}

// Get fetches a property. With decrypt true, envelope-tagged values are
// unsealed; plain values (including JSON lacking the sentinel) pass
// through unchanged.
func (m *Manager) Get(ctx context.Context, scriptID, key string, decrypt bool) (*Value, bool, error) {
	result, err := m.runner.Run(ctx, scriptID, snippetFunction, getPropertySnippet(key))
	if err != nil {
		return nil, false, err
	}
	if err := executionError("getting property", result); err != nil {
		return nil, false, err
	}

	raw, found, err := stringResult(result)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	v, err := m.resolve(raw, decrypt)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Delete removes a property. Reports whether the key existed.
func (m *Manager) Delete(ctx context.Context, scriptID, key string) (bool, error) {
	result, err := m.runner.Run(ctx, scriptID, snippetFunction, deletePropertySnippet(key))
	if err != nil {
		return false, err
	}
	if err := executionError("deleting property", result); err != nil {
		return false, err
	}

	var existed bool
	if raw := result.Result(); len(raw) > 0 {
		_ = json.Unmarshal(raw, &existed)
	}
	return existed, nil
}

// GetAll fetches every property. With decrypt true, envelope values are
// unsealed per key; a value that fails decryption surfaces the error.
func (m *Manager) GetAll(ctx context.Context, scriptID string, decrypt bool) (map[string]Value, error) {
	raw, err := m.getAllRaw(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Value, len(raw))
	for key, stored := range raw {
		v, err := m.resolve(stored, decrypt)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", key, err)
		}
		out[key] = *v
	}
	return out, nil
}

// getAllRaw fetches the stored values without decryption.
func (m *Manager) getAllRaw(ctx context.Context, scriptID string) (map[string]string, error) {
	result, err := m.runner.Run(ctx, scriptID, snippetFunction, getAllPropertiesSnippet())
	if err != nil {
		return nil, err
	}
	if err := executionError("listing properties", result); err != nil {
		return nil, err
	}

	props := make(map[string]string)
	if raw := result.Result(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &props); err != nil {
			return nil, fmt.Errorf("parsing property map: %w", err)
		}
	}
	return props, nil
}

// resolve applies envelope detection and optional decryption to a stored
// value.
func (m *Manager) resolve(stored string, decrypt bool) (*Value, error) {
	env, ok := crypto.ParseEnvelope(stored)
	if !ok {
		return &Value{Value: stored}, nil
	}
	if !decrypt || m.cipher == nil {
		return &Value{Value: stored, Encrypted: true}, nil
	}
	plaintext, err := m.cipher.Decrypt(env)
	if err != nil {
		return nil, err
	}
	return &Value{Value: plaintext, Encrypted: true}, nil
}

// executionError promotes a remote script error into a Go error.
func executionError(op string, result *gasapi.ExecutionResult) error {
	if result.Error == nil {
		return nil
	}
	return fmt.Errorf("%s: script error: %s", op, result.Error.Message)
}

// stringResult extracts a string-or-null function return value.
func stringResult(result *gasapi.ExecutionResult) (string, bool, error) {
	raw := result.Result()
	if len(raw) == 0 || string(raw) == "null" {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false, fmt.Errorf("unexpected property value type: %w", err)
	}
	return s, true, nil
}
