// Package registry wires the tool group packages into the MCP server and
// applies tier, group, and read-only filtering.
package registry

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/apps-script-mcp-go/internal/config"
	"github.com/evert/apps-script-mcp-go/internal/tools"
	authtools "github.com/evert/apps-script-mcp-go/internal/tools/auth"
	"github.com/evert/apps-script-mcp-go/internal/tools/claspcli"
	"github.com/evert/apps-script-mcp-go/internal/tools/deployment"
	"github.com/evert/apps-script-mcp-go/internal/tools/execution"
	"github.com/evert/apps-script-mcp-go/internal/tools/files"
	"github.com/evert/apps-script-mcp-go/internal/tools/library"
	"github.com/evert/apps-script-mcp-go/internal/tools/logs"
	"github.com/evert/apps-script-mcp-go/internal/tools/project"
	"github.com/evert/apps-script-mcp-go/internal/tools/property"
	"github.com/evert/apps-script-mcp-go/internal/tools/trigger"
)

// toolNameRE enforces SEP-986: tool names must match ^[a-zA-Z0-9_-]{1,64}$
var toolNameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateToolName checks that a tool name complies with SEP-986.
func ValidateToolName(name string) error {
	if !toolNameRE.MatchString(name) {
		return fmt.Errorf("tool name %q does not match SEP-986 pattern ^[a-zA-Z0-9_-]{1,64}$", name)
	}
	return nil
}

// groups maps group name to its Register function, in registration order.
var groups = []struct {
	name     string
	register func(*mcp.Server, *tools.Deps)
}{
	{"project", project.Register},
	{"files", files.Register},
	{"execution", execution.Register},
	{"deployment", deployment.Register},
	{"trigger", trigger.Register},
	{"logs", logs.Register},
	{"library", library.Register},
	{"property", property.Register},
	{"clasp", claspcli.Register},
	{"auth", authtools.Register},
}

// GroupNames lists every registrable tool group.
func GroupNames() []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.name)
	}
	return names
}

// groupEnabled returns true if the group is enabled (or no filter is set).
func groupEnabled(cfg *config.Config, group string) bool {
	if len(cfg.EnabledGroups) == 0 {
		return true
	}
	for _, g := range cfg.EnabledGroups {
		if g == group {
			return true
		}
	}
	return false
}

// RegisterAll registers the enabled tool groups with the server. Each
// group package exposes Register(server, deps) which adds its tools. The
// auth group is always registered: without it an unauthenticated server
// has no way to become usable.
func RegisterAll(server *mcp.Server, deps *tools.Deps, cfg *config.Config, tierMap map[string]config.ToolInfo) {
	slog.Info("registering tools",
		"tier", cfg.ToolTier,
		"groups", cfg.EnabledGroups,
		"readOnly", cfg.ReadOnly,
	)

	_ = tierMap // tier filtering happens in ShouldIncludeTool for servers that pre-filter

	known := make(map[string]bool, len(groups))
	for _, name := range GroupNames() {
		known[name] = true
	}
	for _, g := range cfg.EnabledGroups {
		if !known[g] {
			slog.Warn("unknown tool group in config — no tools match it", "group", g)
		}
	}

	for _, g := range groups {
		if g.name != "auth" && !groupEnabled(cfg, g.name) {
			continue
		}
		g.register(server, deps)
		slog.Info("registered group", "group", g.name)
	}
}

// ShouldIncludeTool checks whether a tool should be registered based on the current config.
func ShouldIncludeTool(toolName string, cfg *config.Config, tierMap map[string]config.ToolInfo, annotations *mcp.ToolAnnotations) bool {
	info, ok := tierMap[toolName]
	if !ok {
		slog.Warn("tool not found in tier config, skipping", "tool", toolName)
		return false
	}

	// Filter by tier level
	if config.TierLevel(info.Tier) > config.TierLevel(cfg.ToolTier) {
		return false
	}

	// Filter by enabled groups; auth tools always pass
	if info.Group != "auth" && !groupEnabled(cfg, info.Group) {
		return false
	}

	// Filter by read-only mode: exclude tools that are not read-only
	if cfg.ReadOnly && annotations != nil && !annotations.ReadOnlyHint {
		return false
	}

	return true
}
