package properties

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/evert/apps-script-mcp-go/internal/gasapi"
	"github.com/evert/apps-script-mcp-go/internal/pkg/crypto"
)

// fakeStore interprets the generated snippets against an in-memory map,
// standing in for the remote property store.
type fakeStore struct {
	props    map[string]string
	runs     int
	sweeps   int
	failNext error
}

func newFakeStore() *fakeStore {
	return &fakeStore{props: make(map[string]string)}
}

func (f *fakeStore) Run(ctx context.Context, scriptID, function, source string) (*gasapi.ExecutionResult, error) {
	f.runs++
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}

	// Dispatch on line prefixes: JSON-encoded literals cannot contain raw
	// newlines, so the snippet's structural lines are unambiguous even for
	// hostile keys and values.
	switch {
	case snippetHasLine(source, "var props = PropertiesService.getScriptProperties();"):
		key, err := literalArgs(source, "getProperty(", 1)
		if err != nil {
			return nil, err
		}
		_, existed := f.props[key[0]]
		delete(f.props, key[0])
		return resultOf(existed), nil
	case snippetHasLine(source, "PropertiesService.getScriptProperties().setProperty("):
		args, err := literalArgs(source, "setProperty(", 2)
		if err != nil {
			return nil, err
		}
		f.props[args[0]] = args[1]
		return resultOf(true), nil
	case snippetHasLine(source, "return PropertiesService.getScriptProperties().getProperties();"):
		return resultOf(f.props), nil
	case snippetHasLine(source, "return PropertiesService.getScriptProperties().getProperty("):
		args, err := literalArgs(source, "getProperty(", 1)
		if err != nil {
			return nil, err
		}
		if v, ok := f.props[args[0]]; ok {
			return resultOf(v), nil
		}
		return &gasapi.ExecutionResult{Done: true, Response: json.RawMessage(`{"result":null}`)}, nil
	}
	return nil, fmt.Errorf("unrecognized snippet:\n%s", source)
}

func (f *fakeStore) SweepOrphans(ctx context.Context, scriptID string) ([]string, error) {
	f.sweeps++
	return nil, nil
}

// snippetHasLine reports whether any line of the snippet starts with
// prefix after trimming indentation.
func snippetHasLine(source, prefix string) bool {
	for _, line := range strings.Split(source, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			return true
		}
	}
	return false
}

// literalArgs decodes n JSON string literals from the call site following
// marker in the snippet source.
func literalArgs(source, marker string, n int) ([]string, error) {
	idx := strings.Index(source, marker)
	if idx < 0 {
		return nil, fmt.Errorf("marker %q not found", marker)
	}
	rest := source[idx+len(marker):]
	args := make([]string, 0, n)
	for len(args) < n {
		dec := json.NewDecoder(strings.NewReader(rest))
		var s string
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decoding literal: %w", err)
		}
		args = append(args, s)
		buffered, _ := io.ReadAll(dec.Buffered())
		rest = strings.TrimPrefix(strings.TrimLeft(string(buffered), " "), ",")
		rest = strings.TrimLeft(rest, " ")
	}
	return args, nil
}

func resultOf(v any) *gasapi.ExecutionResult {
	inner, _ := json.Marshal(v)
	wrapped, _ := json.Marshal(map[string]json.RawMessage{"result": inner})
	return &gasapi.ExecutionResult{Done: true, Response: wrapped}
}

func testCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	key, err := crypto.NewRandomKey()
	if err != nil {
		t.Fatal(err)
	}
	c, err := crypto.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSetGetPlaintext(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, testCipher(t))
	ctx := context.Background()

	if err := m.Set(ctx, "s1", "API_URL", "https://example.com", false); err != nil {
		t.Fatal(err)
	}
	if store.props["API_URL"] != "https://example.com" {
		t.Errorf("stored %q, want plaintext URL", store.props["API_URL"])
	}

	v, found, err := m.Get(ctx, "s1", "API_URL", true)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("property not found")
	}
	if v.Value != "https://example.com" || v.Encrypted {
		t.Errorf("got %+v, want plaintext value", v)
	}
}

func TestSetGetEncrypted(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, testCipher(t))
	ctx := context.Background()

	if err := m.Set(ctx, "s1", "DB_PASSWORD", "hunter2", true); err != nil {
		t.Fatal(err)
	}

	stored := store.props["DB_PASSWORD"]
	if strings.Contains(stored, "hunter2") {
		t.Error("plaintext leaked into stored value")
	}
	if _, ok := crypto.ParseEnvelope(stored); !ok {
		t.Errorf("stored value is not an envelope: %s", stored)
	}

	v, found, err := m.Get(ctx, "s1", "DB_PASSWORD", true)
	if err != nil {
		t.Fatal(err)
	}
	if !found || v.Value != "hunter2" || !v.Encrypted {
		t.Errorf("got %+v found=%v, want decrypted hunter2", v, found)
	}

	// Without decrypt the envelope passes through verbatim.
	v, _, err = m.Get(ctx, "s1", "DB_PASSWORD", false)
	if err != nil {
		t.Fatal(err)
	}
	if v.Value != stored || !v.Encrypted {
		t.Errorf("got %+v, want raw envelope", v)
	}
}

func TestSetEncryptedWithoutKey(t *testing.T) {
	m := NewManager(newFakeStore(), nil)
	err := m.Set(context.Background(), "s1", "SECRET", "x", true)
	var cerr *crypto.CryptoError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want CryptoError", err)
	}
}

func TestGetMissing(t *testing.T) {
	m := NewManager(newFakeStore(), nil)
	v, found, err := m.Get(context.Background(), "s1", "NOPE", true)
	if err != nil {
		t.Fatal(err)
	}
	if found || v != nil {
		t.Errorf("got %+v found=%v, want not found", v, found)
	}
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	store.props["GONE"] = "x"
	m := NewManager(store, nil)
	ctx := context.Background()

	existed, err := m.Delete(ctx, "s1", "GONE")
	if err != nil {
		t.Fatal(err)
	}
	if !existed {
		t.Error("expected existed=true for present key")
	}
	if _, ok := store.props["GONE"]; ok {
		t.Error("property still present after delete")
	}

	existed, err = m.Delete(ctx, "s1", "GONE")
	if err != nil {
		t.Fatal(err)
	}
	if existed {
		t.Error("expected existed=false for absent key")
	}
}

func TestGetAllMixed(t *testing.T) {
	store := newFakeStore()
	cipher := testCipher(t)
	m := NewManager(store, cipher)
	ctx := context.Background()

	if err := m.Set(ctx, "s1", "PLAIN", "visible", false); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(ctx, "s1", "SEALED", "hidden", true); err != nil {
		t.Fatal(err)
	}

	all, err := m.GetAll(ctx, "s1", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d properties, want 2", len(all))
	}
	if all["PLAIN"].Value != "visible" || all["PLAIN"].Encrypted {
		t.Errorf("PLAIN = %+v", all["PLAIN"])
	}
	if all["SEALED"].Value != "hidden" || !all["SEALED"].Encrypted {
		t.Errorf("SEALED = %+v", all["SEALED"])
	}
}

func TestGetAllWrongKeyFails(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, testCipher(t))
	ctx := context.Background()
	if err := m.Set(ctx, "s1", "SEALED", "hidden", true); err != nil {
		t.Fatal(err)
	}

	other := NewManager(store, testCipher(t))
	_, err := other.GetAll(ctx, "s1", true)
	var cerr *crypto.CryptoError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want CryptoError for wrong key", err)
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.failNext = errors.New("boom")
	m := NewManager(store, nil)
	if err := m.Set(context.Background(), "s1", "K", "v", false); err == nil {
		t.Fatal("expected error")
	}
}

func TestScriptErrorPropagates(t *testing.T) {
	m := NewManager(&errorStore{}, nil)
	_, _, err := m.Get(context.Background(), "s1", "K", false)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("got %v, want script error", err)
	}
}

type errorStore struct{}

func (errorStore) Run(ctx context.Context, scriptID, function, source string) (*gasapi.ExecutionResult, error) {
	return &gasapi.ExecutionResult{
		Error: &gasapi.ExecutionError{Message: "quota exceeded", Type: "ScriptError"},
	}, nil
}

func (errorStore) SweepOrphans(ctx context.Context, scriptID string) ([]string, error) {
	return nil, nil
}

func TestSnippetEscaping(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, nil)
	ctx := context.Background()

	// Values that would break naive string interpolation.
	hostile := `"); PropertiesService.getScriptProperties().deleteProperty("X`
	key := `weird "key"` + "\nnewline"

	if err := m.Set(ctx, "s1", key, hostile, false); err != nil {
		t.Fatal(err)
	}
	v, found, err := m.Get(ctx, "s1", key, false)
	if err != nil {
		t.Fatal(err)
	}
	if !found || v.Value != hostile {
		t.Errorf("got %+v found=%v, want hostile value round-tripped", v, found)
	}
}
