// Package tools holds the dependency bundle shared by the tool group
// packages. Every group exposes Register(server, deps) which adds its
// typed tools to the MCP server.
package tools

import (
	"github.com/evert/apps-script-mcp-go/internal/auth"
	"github.com/evert/apps-script-mcp-go/internal/clasp"
	"github.com/evert/apps-script-mcp-go/internal/gasapi"
	"github.com/evert/apps-script-mcp-go/internal/properties"
	"github.com/evert/apps-script-mcp-go/internal/scriptrpc"
	"github.com/evert/apps-script-mcp-go/internal/services"
	"github.com/evert/apps-script-mcp-go/internal/triggers"
)

// Deps is constructed once at process start and threaded into every tool
// group. No tool package holds global state.
type Deps struct {
	API        *gasapi.Client
	Runner     *scriptrpc.Runner
	Properties *properties.Manager
	Triggers   *triggers.Manager
	Clasp      *clasp.Client
	Auth       *auth.Authenticator
	Factory    *services.Factory
}
