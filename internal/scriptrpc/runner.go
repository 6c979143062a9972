// Package scriptrpc executes ad hoc Apps Script snippets in a remote
// project by uploading a temporary file, running one function from it, and
// deleting the file again. This is a workaround for platform capabilities
// (script properties, trigger management) that have no REST endpoint.
package scriptrpc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evert/apps-script-mcp-go/internal/gasapi"
	"github.com/evert/apps-script-mcp-go/internal/pkg/crypto"
)

// TempFilePrefix names temporary snippet files. SweepOrphans relies on
// this prefix to identify leftovers from crashed runs.
const TempFilePrefix = "mcp_tmp_"

// ContentAPI is the slice of the Apps Script client the runner needs.
type ContentAPI interface {
	CreateFile(ctx context.Context, scriptID string, file gasapi.File) error
	DeleteFile(ctx context.Context, scriptID, name string) error
	GetContent(ctx context.Context, scriptID string) (*gasapi.Content, error)
	ExecuteFunction(ctx context.Context, scriptID, function string, parameters []any, devMode bool) (*gasapi.ExecutionResult, error)
}

// Runner owns the temporary-file lifecycle for snippet execution.
type Runner struct {
	api ContentAPI
}

// NewRunner creates a Runner over the given content API.
func NewRunner(api ContentAPI) *Runner {
	return &Runner{api: api}
}

// Run uploads source as a uniquely named temporary file, executes the
// named function in dev mode, and deletes the file on every exit path.
// Deletion uses a context detached from cancellation so an aborted call
// still cleans up.
func (r *Runner) Run(ctx context.Context, scriptID, function, source string) (*gasapi.ExecutionResult, error) {
	token, err := crypto.GenerateToken(8)
	if err != nil {
		return nil, err
	}
	name := TempFilePrefix + token

	if err := r.api.CreateFile(ctx, scriptID, gasapi.File{
		Name:   name,
		Type:   "SERVER_JS",
		Source: source,
	}); err != nil {
		return nil, fmt.Errorf("uploading temporary script: %w", err)
	}

	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		if err := r.api.DeleteFile(cleanupCtx, scriptID, name); err != nil {
			slog.Warn("failed to delete temporary script file — it will be removed by the next sweep",
				"scriptId", scriptID,
				"file", name,
				"error", err,
			)
		}
	}()

	result, err := r.api.ExecuteFunction(ctx, scriptID, function, nil, true)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SweepOrphans deletes leftover temporary files from previous crashed
// runs. Returns the names removed. Callers invoke this best-effort before
// property operations.
func (r *Runner) SweepOrphans(ctx context.Context, scriptID string) ([]string, error) {
	content, err := r.api.GetContent(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, f := range content.Files {
		if !strings.HasPrefix(f.Name, TempFilePrefix) {
			continue
		}
		if err := r.api.DeleteFile(ctx, scriptID, f.Name); err != nil {
			return removed, fmt.Errorf("sweeping orphan %s: %w", f.Name, err)
		}
		removed = append(removed, f.Name)
	}
	return removed, nil
}
