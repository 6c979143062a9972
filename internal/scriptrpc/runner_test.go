package scriptrpc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/evert/apps-script-mcp-go/internal/gasapi"
)

// fakeAPI simulates a remote project's file collection in memory.
type fakeAPI struct {
	files       map[string]gasapi.File
	execErr     error
	execResult  *gasapi.ExecutionResult
	execedFuncs []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		files:      map[string]gasapi.File{"appsscript": {Name: "appsscript", Type: "JSON", Source: "{}"}},
		execResult: &gasapi.ExecutionResult{Done: true},
	}
}

func (f *fakeAPI) CreateFile(_ context.Context, _ string, file gasapi.File) error {
	if _, ok := f.files[file.Name]; ok {
		return gasapi.ErrFileExists
	}
	f.files[file.Name] = file
	return nil
}

func (f *fakeAPI) DeleteFile(_ context.Context, _ string, name string) error {
	if _, ok := f.files[name]; !ok {
		return gasapi.ErrFileNotFound
	}
	delete(f.files, name)
	return nil
}

func (f *fakeAPI) GetContent(_ context.Context, scriptID string) (*gasapi.Content, error) {
	content := &gasapi.Content{ScriptID: scriptID}
	for _, file := range f.files {
		content.Files = append(content.Files, file)
	}
	return content, nil
}

func (f *fakeAPI) ExecuteFunction(_ context.Context, _ string, function string, _ []any, _ bool) (*gasapi.ExecutionResult, error) {
	f.execedFuncs = append(f.execedFuncs, function)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.execResult, nil
}

func (f *fakeAPI) tempFileCount() int {
	n := 0
	for name := range f.files {
		if strings.HasPrefix(name, TempFilePrefix) {
			n++
		}
	}
	return n
}

func TestRunDeletesTempFileOnSuccess(t *testing.T) {
	api := newFakeAPI()
	runner := NewRunner(api)

	result, err := runner.Run(context.Background(), "script-1", "handler", "function handler(){}")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Done {
		t.Error("result not marked done")
	}
	if api.tempFileCount() != 0 {
		t.Errorf("temp files remaining after success: %d", api.tempFileCount())
	}
	if len(api.execedFuncs) != 1 || api.execedFuncs[0] != "handler" {
		t.Errorf("executed functions = %v", api.execedFuncs)
	}
}

func TestRunDeletesTempFileOnExecutionFailure(t *testing.T) {
	api := newFakeAPI()
	api.execErr = errors.New("transport exploded")
	runner := NewRunner(api)

	_, err := runner.Run(context.Background(), "script-1", "handler", "function handler(){}")
	if err == nil {
		t.Fatal("expected execution error")
	}
	if api.tempFileCount() != 0 {
		t.Errorf("temp file leaked after failed execution: %d remaining", api.tempFileCount())
	}
}

func TestRunUniqueTempNames(t *testing.T) {
	api := newFakeAPI()
	runner := NewRunner(api)

	// The fake rejects duplicate names, so repeated runs only pass if
	// every run draws a fresh name.
	for i := 0; i < 5; i++ {
		if _, err := runner.Run(context.Background(), "script-1", "handler", "function handler(){}"); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func TestSweepOrphansRemovesOnlyTempFiles(t *testing.T) {
	api := newFakeAPI()
	api.files[TempFilePrefix+"aaaa"] = gasapi.File{Name: TempFilePrefix + "aaaa", Type: "SERVER_JS"}
	api.files[TempFilePrefix+"bbbb"] = gasapi.File{Name: TempFilePrefix + "bbbb", Type: "SERVER_JS"}
	api.files["main"] = gasapi.File{Name: "main", Type: "SERVER_JS", Source: "function f(){}"}

	runner := NewRunner(api)
	removed, err := runner.SweepOrphans(context.Background(), "script-1")
	if err != nil {
		t.Fatalf("SweepOrphans: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("removed %d orphans, want 2: %v", len(removed), removed)
	}
	if _, ok := api.files["main"]; !ok {
		t.Error("sweep deleted a user file")
	}
	if _, ok := api.files["appsscript"]; !ok {
		t.Error("sweep deleted the manifest")
	}
	if api.tempFileCount() != 0 {
		t.Errorf("temp files remaining after sweep: %d", api.tempFileCount())
	}
}

func TestSweepOrphansNoOrphans(t *testing.T) {
	api := newFakeAPI()
	runner := NewRunner(api)

	removed, err := runner.SweepOrphans(context.Background(), "script-1")
	if err != nil {
		t.Fatalf("SweepOrphans: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("removed = %v, want none", removed)
	}
}
