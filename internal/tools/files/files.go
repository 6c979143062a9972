// Package files implements single-file tools. Each mutation is a
// read-modify-write of the project's full file collection with an
// optimistic-concurrency check; a concurrent modification surfaces as a
// conflict error rather than a silent overwrite.
package files

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

// Register registers the file tools with the MCP server.
func Register(server *mcp.Server, deps *tools.Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_file",
		Icons:       serviceIcons,
		Description: "Add a source file to an Apps Script project. Fails if a file with the same name already exists.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Create File",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createCreateFileHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_file",
		Icons:       serviceIcons,
		Description: "Get one source file from an Apps Script project by name.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get File",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createGetFileHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_file",
		Icons:       serviceIcons,
		Description: "Replace the source of an existing file in an Apps Script project. Fails if the file does not exist.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Update File",
			IdempotentHint: true,
			OpenWorldHint:  ptr.Bool(true),
		},
	}, createUpdateFileHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_file",
		Icons:       serviceIcons,
		Description: "Remove a source file from an Apps Script project.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Delete File",
			DestructiveHint: ptr.Bool(true),
			OpenWorldHint:   ptr.Bool(true),
		},
	}, createDeleteFileHandler(deps))
}
