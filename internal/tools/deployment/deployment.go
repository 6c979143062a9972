// Package deployment implements deployment and version tools.
package deployment

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

// Register registers the deployment and version tools with the MCP server.
func Register(server *mcp.Server, deps *tools.Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_deployment",
		Icons:       serviceIcons,
		Description: "Create a deployment of an Apps Script project (web app, API executable, or add-on).",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Create Deployment",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createCreateDeploymentHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_deployments",
		Icons:       serviceIcons,
		Description: "List all deployments of an Apps Script project.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Deployments",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListDeploymentsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_deployment",
		Icons:       serviceIcons,
		Description: "Get one deployment of an Apps Script project.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Deployment",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createGetDeploymentHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_deployment",
		Icons:       serviceIcons,
		Description: "Point an existing deployment at a different version or change its description.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Update Deployment",
			IdempotentHint: true,
			OpenWorldHint:  ptr.Bool(true),
		},
	}, createUpdateDeploymentHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_deployment",
		Icons:       serviceIcons,
		Description: "Delete a deployment of an Apps Script project.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Delete Deployment",
			DestructiveHint: ptr.Bool(true),
			OpenWorldHint:   ptr.Bool(true),
		},
	}, createDeleteDeploymentHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_version",
		Icons:       serviceIcons,
		Description: "Create an immutable version snapshot of an Apps Script project's current code.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Create Version",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createCreateVersionHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_versions",
		Icons:       serviceIcons,
		Description: "List the saved versions of an Apps Script project.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Versions",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListVersionsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_version",
		Icons:       serviceIcons,
		Description: "Get one saved version of an Apps Script project.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Version",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createGetVersionHandler(deps))
}
