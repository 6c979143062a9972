// Package library implements manifest library dependency tools.
package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/apps-script-mcp-go/internal/gasapi"
	"github.com/evert/apps-script-mcp-go/internal/middleware"
	"github.com/evert/apps-script-mcp-go/internal/pkg/ptr"
	"github.com/evert/apps-script-mcp-go/internal/pkg/response"
	"github.com/evert/apps-script-mcp-go/internal/pkg/validate"
	"github.com/evert/apps-script-mcp-go/internal/tools"
)

var serviceIcons = []mcp.Icon{{
	Source:   "https://www.gstatic.com/images/branding/product/1x/apps_script_48dp.png",
	MIMEType: "image/png",
	Sizes:    []string{"48x48"},
}}

// Register registers the library tools with the MCP server.
func Register(server *mcp.Server, deps *tools.Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_libraries",
		Icons:       serviceIcons,
		Description: "List the library dependencies declared in an Apps Script project's manifest.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Libraries",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListLibrariesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_library",
		Icons:       serviceIcons,
		Description: "Add a library dependency to an Apps Script project's manifest.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Add Library",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createAddLibraryHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_library",
		Icons:       serviceIcons,
		Description: "Change the version or development-mode flag of a library dependency.",
		Annotations: &mcp.ToolAnnotations{
			Title:          "Update Library",
			IdempotentHint: true,
			OpenWorldHint:  ptr.Bool(true),
		},
	}, createUpdateLibraryHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_library",
		Icons:       serviceIcons,
		Description: "Remove a library dependency from an Apps Script project's manifest.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Remove Library",
			DestructiveHint: ptr.Bool(true),
			OpenWorldHint:   ptr.Bool(true),
		},
	}, createRemoveLibraryHandler(deps))
}

// libErr maps manifest sentinels onto actionable messages.
func libErr(err error) error {
	if errors.Is(err, gasapi.ErrManifestNotFound) {
		return fmt.Errorf("the project has no manifest file — every project should contain an appsscript manifest; use get_project_content to inspect the files")
	}
	if errors.Is(err, gasapi.ErrConflict) {
		return fmt.Errorf("the project was modified concurrently — retry the change")
	}
	return middleware.HandleGoogleAPIError(err)
}

// --- list_libraries ---

type ListLibrariesInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
}

type LibraryInfo struct {
	UserSymbol      string `json:"user_symbol"`
	LibraryID       string `json:"library_id"`
	Version         string `json:"version,omitempty"`
	DevelopmentMode bool   `json:"development_mode,omitempty"`
}

type ListLibrariesOutput struct {
	Libraries []LibraryInfo `json:"libraries"`
}

func createListLibrariesHandler(deps *tools.Deps) mcp.ToolHandlerFor[ListLibrariesInput, ListLibrariesOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListLibrariesInput) (*mcp.CallToolResult, ListLibrariesOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, ListLibrariesOutput{}, err
		}

		libs, err := deps.API.ListLibraries(ctx, input.ScriptID)
		if err != nil {
			return nil, ListLibrariesOutput{}, libErr(err)
		}

		rb := response.New()
		rb.Header("Library Dependencies")
		rb.KeyValue("Count", len(libs))
		rb.Blank()

		out := ListLibrariesOutput{}
		for _, lib := range libs {
			out.Libraries = append(out.Libraries, LibraryInfo(lib))
			rb.Item("%s (v%s)", lib.UserSymbol, lib.Version)
			rb.Line("    ID: %s | Dev mode: %t", lib.LibraryID, lib.DevelopmentMode)
		}

		return rb.TextResult(), out, nil
	}
}

// --- add_library ---

type AddLibraryInput struct {
	ScriptID        string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	UserSymbol      string `json:"user_symbol" jsonschema:"required" jsonschema_description:"Identifier the script uses to reference the library"`
	LibraryID       string `json:"library_id" jsonschema:"required" jsonschema_description:"Script ID of the library project"`
	Version         string `json:"version" jsonschema:"required" jsonschema_description:"Library version number to depend on"`
	DevelopmentMode bool   `json:"development_mode,omitempty" jsonschema_description:"Use the library's HEAD code instead of the pinned version"`
}

func createAddLibraryHandler(deps *tools.Deps) mcp.ToolHandlerFor[AddLibraryInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AddLibraryInput) (*mcp.CallToolResult, any, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}
		if err := validate.ScriptID(input.LibraryID); err != nil {
			return nil, nil, err
		}
		if err := validate.FunctionName(input.UserSymbol); err != nil {
			return nil, nil, err
		}

		lib := gasapi.Library{
			UserSymbol:      input.UserSymbol,
			LibraryID:       input.LibraryID,
			Version:         input.Version,
			DevelopmentMode: input.DevelopmentMode,
		}
		if err := deps.API.AddLibrary(ctx, input.ScriptID, lib); err != nil {
			return nil, nil, libErr(err)
		}

		rb := response.New()
		rb.Header("Library Added")
		rb.KeyValue("Symbol", input.UserSymbol)
		rb.KeyValue("Library ID", input.LibraryID)
		rb.KeyValue("Version", input.Version)

		return rb.TextResult(), nil, nil
	}
}

// --- update_library ---

type UpdateLibraryInput struct {
	ScriptID        string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	UserSymbol      string `json:"user_symbol" jsonschema:"required" jsonschema_description:"Identifier of the dependency to update"`
	Version         string `json:"version" jsonschema:"required" jsonschema_description:"New library version number"`
	DevelopmentMode bool   `json:"development_mode,omitempty" jsonschema_description:"Use the library's HEAD code instead of the pinned version"`
}

func createUpdateLibraryHandler(deps *tools.Deps) mcp.ToolHandlerFor[UpdateLibraryInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UpdateLibraryInput) (*mcp.CallToolResult, any, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}

		if err := deps.API.UpdateLibrary(ctx, input.ScriptID, input.UserSymbol, input.Version, input.DevelopmentMode); err != nil {
			return nil, nil, libErr(err)
		}

		rb := response.New()
		rb.Header("Library Updated")
		rb.KeyValue("Symbol", input.UserSymbol)
		rb.KeyValue("Version", input.Version)

		return rb.TextResult(), nil, nil
	}
}

// --- remove_library ---

type RemoveLibraryInput struct {
	ScriptID   string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	UserSymbol string `json:"user_symbol" jsonschema:"required" jsonschema_description:"Identifier of the dependency to remove"`
}

func createRemoveLibraryHandler(deps *tools.Deps) mcp.ToolHandlerFor[RemoveLibraryInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RemoveLibraryInput) (*mcp.CallToolResult, any, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}

		if err := deps.API.RemoveLibrary(ctx, input.ScriptID, input.UserSymbol); err != nil {
			return nil, nil, libErr(err)
		}

		rb := response.New()
		rb.Header("Library Removed")
		rb.KeyValue("Symbol", input.UserSymbol)

		return rb.TextResult(), nil, nil
	}
}
