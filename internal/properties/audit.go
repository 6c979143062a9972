package properties

import (
	"context"
	"sort"
	"strings"

	"github.com/evert/apps-script-mcp-go/internal/pkg/crypto"
)

// sensitiveKeywords flag property names that usually hold credentials.
// Matching is substring, case-insensitive, and advisory only.
var sensitiveKeywords = []string{
	"key", "secret", "token", "password", "passwd",
	"credential", "auth", "private", "cert",
}

// Finding is one plaintext property whose name suggests sensitive content.
type Finding struct {
	Key     string
	Keyword string
}

// AuditReport summarizes the encryption posture of a project's properties.
type AuditReport struct {
	Total     int
	Encrypted int
	Plaintext int
	Findings  []Finding
}

// Audit inspects every stored property without decrypting anything and
// reports plaintext values whose key names look sensitive.
func (m *Manager) Audit(ctx context.Context, scriptID string) (*AuditReport, error) {
	raw, err := m.getAllRaw(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{Total: len(raw)}
	for key, stored := range raw {
		if _, ok := crypto.ParseEnvelope(stored); ok {
			report.Encrypted++
			continue
		}
		report.Plaintext++
		if kw, ok := sensitiveKeyword(key); ok {
			report.Findings = append(report.Findings, Finding{Key: key, Keyword: kw})
		}
	}
	sort.Slice(report.Findings, func(i, j int) bool {
		return report.Findings[i].Key < report.Findings[j].Key
	})
	return report, nil
}

// sensitiveKeyword reports the first keyword a key name contains.
func sensitiveKeyword(key string) (string, bool) {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}
