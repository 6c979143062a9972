package properties

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evert/apps-script-mcp-go/internal/pkg/crypto"
)

// Snapshot is a point-in-time copy of a project's properties. Values are
// stored exactly as they sit in the remote store, so encrypted properties
// stay encrypted inside the snapshot.
type Snapshot struct {
	Timestamp      time.Time         `json:"timestamp"`
	ScriptID       string            `json:"scriptId"`
	Count          int               `json:"count"`
	HasEncrypted   bool              `json:"hasEncrypted"`
	KeyFingerprint string            `json:"keyFingerprint,omitempty"`
	Properties     map[string]string `json:"properties"`
	Checksum       string            `json:"checksum"`
}

// RestoreOptions control how Restore treats a snapshot.
type RestoreOptions struct {
	// SkipVerify disables the checksum integrity check.
	SkipVerify bool
	// AllowKeyMismatch lets a snapshot taken under a different encryption
	// key restore its encrypted values verbatim instead of failing.
	AllowKeyMismatch bool
}

// Backup captures every property as currently stored and seals the
// snapshot with a checksum over the mapping.
func (m *Manager) Backup(ctx context.Context, scriptID string) (*Snapshot, error) {
	raw, err := m.getAllRaw(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Timestamp:  time.Now().UTC(),
		ScriptID:   scriptID,
		Count:      len(raw),
		Properties: raw,
	}
	for _, stored := range raw {
		if _, ok := crypto.ParseEnvelope(stored); ok {
			snap.HasEncrypted = true
			break
		}
	}
	if snap.HasEncrypted && m.cipher != nil {
		snap.KeyFingerprint = m.cipher.Fingerprint()
	}
	snap.Checksum, err = mappingChecksum(raw)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore writes a snapshot's properties back to a project. The checksum
// is verified before any write, so a tampered snapshot restores nothing.
// Encrypted values are unsealed and re-sealed under the current key; if
// the snapshot's key does not match, Restore fails with ErrKeyMismatch
// unless AllowKeyMismatch is set, in which case envelopes restore
// verbatim. Returns the number of properties written.
func (m *Manager) Restore(ctx context.Context, scriptID string, snap *Snapshot, opts RestoreOptions) (int, error) {
	if !opts.SkipVerify {
		actual, err := mappingChecksum(snap.Properties)
		if err != nil {
			return 0, err
		}
		if actual != snap.Checksum {
			return 0, &IntegrityError{Expected: snap.Checksum, Actual: actual}
		}
	}

	keyMatches := m.cipher != nil && snap.KeyFingerprint == m.cipher.Fingerprint()
	if snap.HasEncrypted && !keyMatches && !opts.AllowKeyMismatch {
		return 0, ErrKeyMismatch
	}

	written := 0
	for key, stored := range snap.Properties {
		if _, ok := crypto.ParseEnvelope(stored); ok && keyMatches {
			// Re-seal so the restored value carries a fresh IV under the
			// current key.
			env, _ := crypto.ParseEnvelope(stored)
			plaintext, err := m.cipher.Decrypt(env)
			if err != nil {
				return written, fmt.Errorf("property %q: %w", key, err)
			}
			if err := m.Set(ctx, scriptID, key, plaintext, true); err != nil {
				return written, err
			}
		} else {
			if err := m.Set(ctx, scriptID, key, stored, false); err != nil {
				return written, err
			}
		}
		written++
	}
	return written, nil
}

// mappingChecksum hashes the canonical JSON form of the mapping. Map keys
// serialize in sorted order, so equal mappings always hash equal.
func mappingChecksum(props map[string]string) (string, error) {
	canonical, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("serializing snapshot: %w", err)
	}
	return crypto.Hash(string(canonical)), nil
}
