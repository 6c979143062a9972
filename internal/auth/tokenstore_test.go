package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestFileTokenStore_SaveAndLoad(t *testing.T) {
	store, err := NewFileTokenStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileTokenStore: %v", err)
	}

	token := &oauth2.Token{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		TokenType:    "Bearer",
		Expiry:       time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := store.Save("default:client.json", token); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load("default:client.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.AccessToken != token.AccessToken {
		t.Errorf("AccessToken: got %q, want %q", loaded.AccessToken, token.AccessToken)
	}
	if loaded.RefreshToken != token.RefreshToken {
		t.Errorf("RefreshToken: got %q, want %q", loaded.RefreshToken, token.RefreshToken)
	}
}

func TestFileTokenStore_LoadNonExistent(t *testing.T) {
	store, err := NewFileTokenStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileTokenStore: %v", err)
	}
	if _, err := store.Load("default:missing"); err == nil {
		t.Fatal("expected error for non-existent token")
	}
}

func TestFileTokenStore_PathUsesHash(t *testing.T) {
	store, err := NewFileTokenStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileTokenStore: %v", err)
	}

	path := store.tokenPath("default:../../etc/passwd")
	filename := filepath.Base(path)
	// Hex-encoded SHA-256 (64 chars) + ".json" — no traversal characters.
	if len(filename) != 64+5 {
		t.Errorf("token filename length = %d, want 69: %s", len(filename), filename)
	}
	if path2 := store.tokenPath("default:other"); path == path2 {
		t.Error("different identities produced the same path")
	}
}

func TestFileTokenStore_FilePermissions(t *testing.T) {
	store, err := NewFileTokenStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileTokenStore: %v", err)
	}

	if err := store.Save("perm-check", &oauth2.Token{AccessToken: "t", TokenType: "Bearer"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(store.tokenPath("perm-check"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file permissions = %04o, want 0600", perm)
	}
}

type staticTokenSource struct {
	tokens []*oauth2.Token
	i      int
}

func (s *staticTokenSource) Token() (*oauth2.Token, error) {
	t := s.tokens[s.i]
	if s.i < len(s.tokens)-1 {
		s.i++
	}
	return t, nil
}

type countingStore struct {
	saves int
	last  *oauth2.Token
}

func (c *countingStore) Save(identity string, token *oauth2.Token) error {
	c.saves++
	c.last = token
	return nil
}

func (c *countingStore) Load(identity string) (*oauth2.Token, error) {
	return c.last, nil
}

func TestPersistingTokenSource_SavesOnlyOnChange(t *testing.T) {
	store := &countingStore{}
	src := &PersistingTokenSource{
		Base: &staticTokenSource{tokens: []*oauth2.Token{
			{AccessToken: "first"},
			{AccessToken: "second"},
		}},
		Store:    store,
		Identity: "default",
	}

	if _, err := src.Token(); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if _, err := src.Token(); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if _, err := src.Token(); err != nil {
		t.Fatalf("Token: %v", err)
	}

	// first -> save, second -> save, second again -> no save.
	if store.saves != 2 {
		t.Errorf("saves = %d, want 2 (only on access-token change)", store.saves)
	}
	if store.last.AccessToken != "second" {
		t.Errorf("last saved token = %q, want %q", store.last.AccessToken, "second")
	}
}
