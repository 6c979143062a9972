// Package services builds and caches authenticated Google API service
// clients on top of the Authenticator.
package services

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/script/v1"

	"github.com/evert/apps-script-mcp-go/internal/auth"
)

// Factory hands out Apps Script and Drive service clients bound to the
// Authenticator's current credential state. Clients are cached; the
// underlying ReuseTokenSource refreshes tokens concurrency-safely.
type Factory struct {
	authenticator *auth.Authenticator

	mu     sync.Mutex
	script *script.Service
	drive  *drive.Service
}

// NewFactory creates a service factory backed by the given authenticator.
func NewFactory(authenticator *auth.Authenticator) *Factory {
	return &Factory{authenticator: authenticator}
}

// Authenticator exposes the underlying authenticator for the auth gate
// and the auth tools.
func (f *Factory) Authenticator() *auth.Authenticator {
	return f.authenticator
}

// Script returns the Apps Script service client. Fails with
// auth.ErrNotAuthenticated before a successful Authenticate.
func (f *Factory) Script(ctx context.Context) (*script.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.script != nil {
		return f.script, nil
	}

	client, err := f.authenticator.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	// context.Background so the cached service outlives any single
	// request; individual API calls pass their own context via .Context(ctx).
	srv, err := script.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("building script service: %w", err)
	}
	f.script = srv
	return srv, nil
}

// Drive returns the Drive service client, used for project listing and
// trash-based deletion.
func (f *Factory) Drive(ctx context.Context) (*drive.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.drive != nil {
		return f.drive, nil
	}

	client, err := f.authenticator.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	srv, err := drive.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("building drive service: %w", err)
	}
	f.drive = srv
	return srv, nil
}

// InvalidateClients drops cached service clients so the next call rebuilds
// them from the latest credential state. Call after re-authentication or
// reset.
func (f *Factory) InvalidateClients() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = nil
	f.drive = nil
}
