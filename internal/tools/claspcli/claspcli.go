// Package claspcli implements tools that orchestrate the local clasp CLI
// for file sync, multi-environment pushes, and deployments.
package claspcli

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

// Register registers the clasp tools with the MCP server.
func Register(server *mcp.Server, deps *tools.Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "setup_clasp",
		Icons:       serviceIcons,
		Description: "Install the clasp CLI globally through npm.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Setup Clasp",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createSetupHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clasp_version",
		Icons:       serviceIcons,
		Description: "Report the installed clasp CLI version.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "Clasp Version",
			ReadOnlyHint: true,
		},
	}, createVersionHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clasp_login",
		Icons:       serviceIcons,
		Description: "Start clasp's interactive Google login. The browser flow runs on the machine hosting this server.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Clasp Login",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createLoginHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clasp_logout",
		Icons:       serviceIcons,
		Description: "Clear clasp's stored Google credentials.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Clasp Logout",
			IdempotentHint: true,
		},
	}, createLogoutHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clasp_create",
		Icons:       serviceIcons,
		Description: "Create a new Apps Script project in the local clasp working directory.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Clasp Create",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createCreateHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clasp_clone",
		Icons:       serviceIcons,
		Description: "Clone an existing remote Apps Script project into the local working directory.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Clasp Clone",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createCloneHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clasp_pull",
		Icons:       serviceIcons,
		Description: "Pull remote project files into the local working directory, optionally for a named environment.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Clasp Pull",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createPullHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clasp_push",
		Icons:       serviceIcons,
		Description: "Push local project files to the remote project, optionally for a named environment.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Clasp Push",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createPushHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clasp_deploy",
		Icons:       serviceIcons,
		Description: "Push local files and create a deployment in one step, optionally for a named environment.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Clasp Deploy",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createDeployHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clasp_status",
		Icons:       serviceIcons,
		Description: "Show which local files clasp would push or ignore.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "Clasp Status",
			ReadOnlyHint: true,
		},
	}, createStatusHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clasp_list",
		Icons:       serviceIcons,
		Description: "List the Apps Script projects visible to the logged-in clasp account.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Clasp List",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListHandler(deps))
}
