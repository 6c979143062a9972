package clasp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evert/apps-script-mcp-go/internal/testable"
)

func TestVersion(t *testing.T) {
	mock := &testable.MockCommandExecutor{
		CommandOutputs: map[string]string{"clasp --version": "2.4.2\n"},
	}
	c := NewClient(t.TempDir(), WithExecutor(mock))

	version, err := c.Version(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if version != "2.4.2" {
		t.Errorf("version = %q", version)
	}
}

func TestVersionBinaryMissing(t *testing.T) {
	mock := &testable.MockCommandExecutor{LookPathErr: errors.New("not found")}
	c := NewClient(t.TempDir(), WithExecutor(mock))

	_, err := c.Version(context.Background())
	if err == nil || !strings.Contains(err.Error(), "setup_clasp") {
		t.Fatalf("got %v, want guidance toward setup", err)
	}
	if len(mock.Calls) != 0 {
		t.Error("subprocess ran despite missing binary")
	}
}

func TestRunFailureCarriesStderr(t *testing.T) {
	mock := &testable.MockCommandExecutor{
		CommandErrors: map[string]string{"clasp push": "Push failed. Errors in Code.js"},
	}
	c := NewClient(t.TempDir(), WithExecutor(mock))

	_, err := c.Push(context.Background(), "", false)
	var serr *SubprocessError
	if !errors.As(err, &serr) {
		t.Fatalf("got %v, want SubprocessError", err)
	}
	if serr.ExitCode != 1 || !strings.Contains(serr.Stderr, "Push failed") {
		t.Errorf("error = %+v", serr)
	}
	if serr.TimedOut {
		t.Error("non-timeout failure flagged as timeout")
	}
}

func TestPushForce(t *testing.T) {
	mock := &testable.MockCommandExecutor{
		CommandOutputs: map[string]string{"clasp push --force": "Pushed 3 files.\n"},
	}
	c := NewClient(t.TempDir(), WithExecutor(mock))

	result, err := c.Push(context.Background(), "", true)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.Command != "clasp push --force" {
		t.Errorf("result = %+v", result)
	}
}

func TestList(t *testing.T) {
	mock := &testable.MockCommandExecutor{
		CommandOutputs: map[string]string{
			"clasp list": "proj – https://script.google.com/d/1Abc/edit\n",
		},
	}
	c := NewClient(t.TempDir(), WithExecutor(mock))

	result, err := c.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Projects) != 1 || result.Projects[0].ScriptID != "1Abc" {
		t.Errorf("result = %+v", result)
	}
}

func TestPullParsesFiles(t *testing.T) {
	mock := &testable.MockCommandExecutor{
		CommandOutputs: map[string]string{
			"clasp pull": "└─ appsscript.json\n└─ Code.js\nPulled 2 files.\n",
		},
	}
	c := NewClient(t.TempDir(), WithExecutor(mock))

	result, files, err := c.Pull(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Errorf("result = %+v", result)
	}
	if len(files) != 2 {
		t.Errorf("files = %v", files)
	}
}

func TestCreatePassesTitleAndType(t *testing.T) {
	mock := &testable.MockCommandExecutor{
		CommandOutputs: map[string]string{
			"clasp create --title Demo --type standalone": "Created new standalone script.\n",
		},
	}
	c := NewClient(t.TempDir(), WithExecutor(mock))

	result, err := c.Create(context.Background(), "Demo", "standalone")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Errorf("result = %+v", result)
	}
}

func TestUseEnvironment(t *testing.T) {
	dir := t.TempDir()
	prodConfig := `{"scriptId":"prod-id","rootDir":"src"}`
	writeFile(t, dir, ".clasp.production.json", prodConfig)
	writeFile(t, dir, ".clasp.json", `{"scriptId":"dev-id"}`)

	c := NewClient(dir)
	if err := c.UseEnvironment("production"); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, dir, ".clasp.json"); got != prodConfig {
		t.Errorf("active config = %s", got)
	}
	if got := readFile(t, dir, ".clasp.json.backup"); got != `{"scriptId":"dev-id"}` {
		t.Errorf("backup = %s", got)
	}
}

func TestUseEnvironmentNoActiveConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".clasp.staging.json", `{"scriptId":"staging-id"}`)

	c := NewClient(dir)
	if err := c.UseEnvironment("staging"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".clasp.json.backup")); !os.IsNotExist(err) {
		t.Error("backup created with nothing to back up")
	}
}

func TestUseEnvironmentMissingConfig(t *testing.T) {
	mock := &testable.MockCommandExecutor{}
	c := NewClient(t.TempDir(), WithExecutor(mock))

	_, _, err := c.Pull(context.Background(), "production")
	var cerr *ConfigNotFoundError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want ConfigNotFoundError", err)
	}
	if cerr.Environment != "production" {
		t.Errorf("error = %+v", cerr)
	}
	if len(mock.Calls) != 0 {
		t.Error("subprocess spawned despite missing environment config")
	}
}

func TestUseEnvironmentEmptyIsNoop(t *testing.T) {
	c := NewClient(t.TempDir())
	if err := c.UseEnvironment(""); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
