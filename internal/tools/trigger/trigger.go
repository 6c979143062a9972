// Package trigger implements trigger management tools. List/create/delete
// run ScriptApp snippets through the ephemeral runner; generate_trigger_code
// emits installable snippets for container-bound patterns that cannot be
// installed remotely.
package trigger

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/apps-script-mcp-go/internal/pkg/ptr"
	"github.com/evert/apps-script-mcp-go/internal/tools"
)

var serviceIcons = []mcp.Icon{{
	Source:   "https://www.gstatic.com/images/branding/product/1x/apps_script_48dp.png",
	MIMEType: "image/png",
	Sizes:    []string{"48x48"},
}}

// Register registers the trigger tools with the MCP server.
func Register(server *mcp.Server, deps *tools.Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_triggers",
		Icons:       serviceIcons,
		Description: "List the installed triggers of an Apps Script project.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Triggers",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListTriggersHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_trigger",
		Icons:       serviceIcons,
		Description: "Install a time-based trigger in an Apps Script project. For container-bound triggers (spreadsheet, form, document) use generate_trigger_code instead.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Create Trigger",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createCreateTriggerHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_trigger",
		Icons:       serviceIcons,
		Description: "Delete an installed trigger by its unique ID.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Delete Trigger",
			DestructiveHint: ptr.Bool(true),
			OpenWorldHint:   ptr.Bool(true),
		},
	}, createDeleteTriggerHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_trigger_code",
		Icons:       serviceIcons,
		Description: "Generate Apps Script trigger code for common automation patterns (time-based, spreadsheet, form, document events).",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Generate Trigger Code",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createGenerateTriggerCodeHandler())
}
