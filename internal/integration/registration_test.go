//go:build integration

// Package integration contains integration tests that verify full system
// wiring without requiring real Google API credentials.
package integration

import (
	"os"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/apps-script-mcp-go/internal/auth"
	"github.com/evert/apps-script-mcp-go/internal/clasp"
	"github.com/evert/apps-script-mcp-go/internal/config"
	"github.com/evert/apps-script-mcp-go/internal/gasapi"
	"github.com/evert/apps-script-mcp-go/internal/properties"
	"github.com/evert/apps-script-mcp-go/internal/registry"
	"github.com/evert/apps-script-mcp-go/internal/scriptrpc"
	"github.com/evert/apps-script-mcp-go/internal/services"
	"github.com/evert/apps-script-mcp-go/internal/tools"
	"github.com/evert/apps-script-mcp-go/internal/triggers"
)

// Shared state loaded once in TestMain.
var (
	sharedCfg     *config.Config
	sharedTierMap map[string]config.ToolInfo
)

func TestMain(m *testing.M) {
	os.Setenv("MCP_TRANSPORT", "stdio")
	os.Setenv("TOOL_TIER", "complete")

	tmpDir, err := os.MkdirTemp("", "mcp-integration-*")
	if err != nil {
		panic("creating temp dir: " + err.Error())
	}
	os.Setenv("GAS_MCP_TOKEN_DIR", tmpDir)
	os.Setenv("CLASP_WORK_DIR", tmpDir)
	defer os.RemoveAll(tmpDir)

	// Load config once (calls flag.Parse)
	cfg, err := config.Load()
	if err != nil {
		panic("loading config: " + err.Error())
	}
	sharedCfg = cfg

	tierMap, err := config.LoadTiers("../../configs/tool_tiers.yaml")
	if err != nil {
		panic("loading tier config: " + err.Error())
	}
	sharedTierMap = tierMap

	os.Exit(m.Run())
}

// createTestServer creates a fully wired MCP server for testing.
func createTestServer(t *testing.T) *mcp.Server {
	t.Helper()

	tokenStore, err := auth.NewFileTokenStore(sharedCfg.Auth.TokenDir)
	if err != nil {
		t.Fatalf("creating token store: %v", err)
	}

	authenticator := auth.New(auth.Options{
		Scopes:     auth.Scopes(sharedCfg.ReadOnly),
		TokenStore: tokenStore,
	})
	factory := services.NewFactory(authenticator)
	api := gasapi.NewClient(factory)
	runner := scriptrpc.NewRunner(api)

	deps := &tools.Deps{
		API:        api,
		Runner:     runner,
		Properties: properties.NewManager(runner, nil),
		Triggers:   triggers.NewManager(runner),
		Clasp:      clasp.NewClient(sharedCfg.Clasp.WorkDir),
		Auth:       authenticator,
		Factory:    factory,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "apps-script-mcp",
		Version: "1.0.0-test",
	}, nil)

	registry.RegisterAll(server, deps, sharedCfg, sharedTierMap)
	return server
}

func TestFullToolRegistration(t *testing.T) {
	server := createTestServer(t)

	if server == nil {
		t.Fatal("server is nil after registration")
	}

	toolCount := 0
	for range sharedTierMap {
		toolCount++
	}

	expectedTotal := 51
	if toolCount != expectedTotal {
		t.Errorf("tier config has %d tools, expected %d", toolCount, expectedTotal)
	}
}

func TestConfigValues(t *testing.T) {
	if sharedCfg.Server.Transport != "stdio" {
		t.Errorf("transport = %q, want %q", sharedCfg.Server.Transport, "stdio")
	}
	if sharedCfg.ToolTier != "complete" {
		t.Errorf("tool tier = %q, want %q", sharedCfg.ToolTier, "complete")
	}
}

func TestTierFiltering(t *testing.T) {
	tests := []struct {
		name  string
		tier  string
		tools int
	}{
		{"core tier", "core", 13},
		{"extended tier", "extended", 32},
		{"complete tier", "complete", 51},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count := 0
			for _, info := range sharedTierMap {
				if config.TierLevel(info.Tier) <= config.TierLevel(tt.tier) {
					count++
				}
			}
			if count != tt.tools {
				t.Errorf("tier %q has %d tools, expected %d", tt.tier, count, tt.tools)
			}
		})
	}
}

func TestToolNameValidation(t *testing.T) {
	for name := range sharedTierMap {
		if err := registry.ValidateToolName(name); err != nil {
			t.Errorf("tool name %q failed SEP-986 validation: %v", name, err)
		}
	}
}

func TestReadOnlyModeFiltering(t *testing.T) {
	cfg := &config.Config{
		ToolTier: "complete",
		ReadOnly: true,
	}

	readOnlyTools := []string{
		"list_projects",
		"get_project_content",
		"list_deployments",
		"list_processes",
	}

	writeTools := []string{
		"create_project",
		"update_file",
		"create_deployment",
		"set_property",
	}

	for _, name := range readOnlyTools {
		annotations := &mcp.ToolAnnotations{ReadOnlyHint: true}
		if !registry.ShouldIncludeTool(name, cfg, sharedTierMap, annotations) {
			t.Errorf("read-only tool %q should be included in read-only mode", name)
		}
	}

	for _, name := range writeTools {
		annotations := &mcp.ToolAnnotations{ReadOnlyHint: false}
		if registry.ShouldIncludeTool(name, cfg, sharedTierMap, annotations) {
			t.Errorf("write tool %q should be excluded in read-only mode", name)
		}
	}
}

func TestGroupFiltering(t *testing.T) {
	cfg := &config.Config{
		ToolTier:      "complete",
		EnabledGroups: []string{"project"},
	}

	annotations := &mcp.ToolAnnotations{ReadOnlyHint: true}
	if !registry.ShouldIncludeTool("list_projects", cfg, sharedTierMap, annotations) {
		t.Error("list_projects should be included when the project group is enabled")
	}
	if registry.ShouldIncludeTool("list_deployments", cfg, sharedTierMap, annotations) {
		t.Error("list_deployments should be excluded when only the project group is enabled")
	}
	// Auth tools bypass group filtering so the server can always become usable.
	if !registry.ShouldIncludeTool("auth_status", cfg, sharedTierMap, annotations) {
		t.Error("auth_status should be included regardless of group filters")
	}
}
