// Package property implements script property tools: encrypted
// get/set/delete/list plus audit and backup/restore.
package property

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

// Register registers the property tools with the MCP server.
func Register(server *mcp.Server, deps *tools.Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_property",
		Icons:       serviceIcons,
		Description: "Read a script property, transparently decrypting encrypted values.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Property",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createGetPropertyHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_property",
		Icons:       serviceIcons,
		Description: "Write a script property, optionally encrypting the value at rest.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Set Property",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createSetPropertyHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_property",
		Icons:       serviceIcons,
		Description: "Delete a script property.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Delete Property",
			DestructiveHint: ptr.Bool(true),
			IdempotentHint:  true,
			OpenWorldHint:   ptr.Bool(true),
		},
	}, createDeletePropertyHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_properties",
		Icons:       serviceIcons,
		Description: "List all script properties. Encrypted values are masked unless decryption is requested.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Properties",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListPropertiesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "audit_properties",
		Icons:       serviceIcons,
		Description: "Report which script properties look sensitive but are stored in plaintext. Reads no secret values.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Audit Properties",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createAuditPropertiesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "backup_properties",
		Icons:       serviceIcons,
		Description: "Snapshot all script properties, preserving encryption envelopes, with an integrity checksum.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Backup Properties",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createBackupPropertiesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "restore_properties",
		Icons:       serviceIcons,
		Description: "Restore script properties from a backup snapshot after verifying its checksum.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Restore Properties",
			DestructiveHint: ptr.Bool(true),
			OpenWorldHint:   ptr.Bool(true),
		},
	}, createRestorePropertiesHandler(deps))
}
