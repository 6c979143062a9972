// Package project implements the script project CRUD tools.
package project

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

// Register registers the project tools with the MCP server.
func Register(server *mcp.Server, deps *tools.Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_project",
		Icons:       serviceIcons,
		Description: "Create a new Apps Script project, optionally bound to a Google Doc, Sheet, Slide, or Form.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Create Project",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createCreateProjectHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_projects",
		Icons:       serviceIcons,
		Description: "List Apps Script projects owned by or shared with the account via Drive search.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Projects",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListProjectsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_project",
		Icons:       serviceIcons,
		Description: "Get metadata for an Apps Script project including title and create/update times.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Project",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createGetProjectHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_project",
		Icons:       serviceIcons,
		Description: "Move an Apps Script project to the Drive trash.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Delete Project",
			DestructiveHint: ptr.Bool(true),
			OpenWorldHint:   ptr.Bool(true),
		},
	}, createDeleteProjectHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_project_content",
		Icons:       serviceIcons,
		Description: "Get the source code files of an Apps Script project.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Project Content",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createGetContentHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_project_content",
		Icons:       serviceIcons,
		Description: "Replace the full source file collection of an Apps Script project. The manifest (appsscript) must be included.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Update Project Content",
			IdempotentHint: true,
			OpenWorldHint:  ptr.Bool(true),
		},
	}, createUpdateContentHandler(deps))
}
