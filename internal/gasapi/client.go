// Package gasapi wraps the Apps Script and Drive APIs behind a set of
// stateless call wrappers that normalize remote responses into plain
// result structs and remote failures into *APIError.
package gasapi

import (
	"errors"
	"fmt"

	"github.com/evert/apps-script-mcp-go/internal/services"
)

// ErrFileNotFound is returned by file mutations when no file with the
// given name exists in the project.
var ErrFileNotFound = errors.New("file not found in project")

// ErrFileExists is returned by CreateFile when a file with the given name
// already exists.
var ErrFileExists = errors.New("file already exists in project")

// ErrConflict is returned when the project content changed remotely
// between the read and write halves of a read-modify-write mutation.
var ErrConflict = errors.New("project was modified concurrently — re-read and retry")

// ErrManifestNotFound is returned by library mutations when the project
// has no manifest file.
var ErrManifestNotFound = errors.New("project manifest (appsscript.json) not found")

// APIError wraps any failure from the remote APIs with the operation that
// produced it. The underlying googleapi.Error remains reachable via
// errors.As for status-specific translation at the tool boundary.
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Client is the stateless wrapper set. All state lives in the service
// factory it borrows clients from.
type Client struct {
	factory *services.Factory
}

// NewClient creates a Client backed by the given service factory.
func NewClient(factory *services.Factory) *Client {
	return &Client{factory: factory}
}

func apiErr(op string, err error) error {
	return &APIError{Op: op, Err: err}
}
