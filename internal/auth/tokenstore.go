package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// TokenStore persists and loads OAuth tokens by identity key.
type TokenStore interface {
	Save(identity string, token *oauth2.Token) error
	Load(identity string) (*oauth2.Token, error)
}

// FileTokenStore stores tokens as JSON files on disk.
// Directory permissions: 0700. File permissions: 0600.
type FileTokenStore struct {
	dir string
}

// NewFileTokenStore creates a token store at the given directory path,
// creating it with 0700 permissions if needed.
func NewFileTokenStore(dir string) (*FileTokenStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating token directory %s: %w", dir, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("checking token directory %s: %w", dir, err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		slog.Warn("token directory has open permissions — should be 0700",
			"dir", dir,
			"perm", fmt.Sprintf("%04o", perm),
		)
	}

	return &FileTokenStore{dir: dir}, nil
}

// Save persists a token under the given identity key.
func (s *FileTokenStore) Save(identity string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshaling token: %w", err)
	}
	path := s.tokenPath(identity)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing token to %s: %w", path, err)
	}
	return nil
}

// Load reads the token cached under the given identity key.
func (s *FileTokenStore) Load(identity string) (*oauth2.Token, error) {
	path := s.tokenPath(identity)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no cached token — authenticate via the start_google_auth tool")
		}
		return nil, fmt.Errorf("reading token from %s: %w", path, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parsing cached token: %w", err)
	}
	return &token, nil
}

func (s *FileTokenStore) tokenPath(identity string) string {
	// Hash the identity key for the filename to prevent path traversal.
	hash := sha256.Sum256([]byte(identity))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}

// PersistingTokenSource wraps an oauth2.TokenSource to persist refreshed
// tokens to disk. It tracks the last known access token so it only writes
// when the token actually changes (i.e. on refresh).
type PersistingTokenSource struct {
	Base     oauth2.TokenSource
	Store    TokenStore
	Identity string

	mu              sync.Mutex
	lastAccessToken string
}

// Token returns a token, persisting it only when the access token has
// changed since the last call.
func (p *PersistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.Base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	changed := token.AccessToken != p.lastAccessToken
	if changed {
		p.lastAccessToken = token.AccessToken
	}
	p.mu.Unlock()

	if changed {
		if err := p.Store.Save(p.Identity, token); err != nil {
			slog.Warn("failed to persist refreshed token", "error", err)
		}
	}
	return token, nil
}
