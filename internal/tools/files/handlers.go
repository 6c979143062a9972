package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/apps-script-mcp-go/internal/gasapi"
	"github.com/evert/apps-script-mcp-go/internal/middleware"
	"github.com/evert/apps-script-mcp-go/internal/pkg/response"
	"github.com/evert/apps-script-mcp-go/internal/pkg/validate"
	"github.com/evert/apps-script-mcp-go/internal/tools"
)

// fileErr maps the API client's sentinel errors onto agent-actionable
// messages before falling back to the generic Google API translation.
func fileErr(err error) error {
	switch {
	case errors.Is(err, gasapi.ErrFileExists):
		return fmt.Errorf("a file with that name already exists — use update_file to change it")
	case errors.Is(err, gasapi.ErrFileNotFound):
		return fmt.Errorf("no file with that name exists — use create_file to add it, or get_project_content to see the current files")
	case errors.Is(err, gasapi.ErrConflict):
		return fmt.Errorf("the project was modified concurrently — re-read it and retry the change")
	default:
		return middleware.HandleGoogleAPIError(err)
	}
}

// --- create_file ---

type CreateFileInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Name     string `json:"name" jsonschema:"required" jsonschema_description:"File name without extension"`
	Type     string `json:"type,omitempty" jsonschema_description:"File type (default SERVER_JS),enum=SERVER_JS,enum=HTML,enum=JSON"`
	Source   string `json:"source" jsonschema:"required" jsonschema_description:"Complete file source"`
}

func createCreateFileHandler(deps *tools.Deps) mcp.ToolHandlerFor[CreateFileInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateFileInput) (*mcp.CallToolResult, any, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}
		if err := validate.FileName(input.Name); err != nil {
			return nil, nil, err
		}
		if input.Type == "" {
			input.Type = "SERVER_JS"
		}

		file := gasapi.File{Name: input.Name, Type: input.Type, Source: input.Source}
		if err := deps.API.CreateFile(ctx, input.ScriptID, file); err != nil {
			return nil, nil, fileErr(err)
		}

		rb := response.New()
		rb.Header("File Created")
		rb.KeyValue("Script ID", input.ScriptID)
		rb.KeyValue("Name", input.Name)
		rb.KeyValue("Type", input.Type)

		return rb.TextResult(), nil, nil
	}
}

// --- get_file ---

type GetFileInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Name     string `json:"name" jsonschema:"required" jsonschema_description:"File name to fetch"`
}

type GetFileOutput struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Source string `json:"source"`
}

func createGetFileHandler(deps *tools.Deps) mcp.ToolHandlerFor[GetFileInput, GetFileOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetFileInput) (*mcp.CallToolResult, GetFileOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, GetFileOutput{}, err
		}

		file, err := deps.API.GetFile(ctx, input.ScriptID, input.Name)
		if err != nil {
			return nil, GetFileOutput{}, fileErr(err)
		}

		rb := response.New()
		rb.Header("%s", file.Name)
		rb.KeyValue("Type", file.Type)
		if file.UpdateTime != "" {
			rb.KeyValue("Updated", file.UpdateTime)
		}
		rb.Blank()
		rb.Code(file.Source)

		return rb.TextResult(), GetFileOutput{Name: file.Name, Type: file.Type, Source: file.Source}, nil
	}
}

// --- update_file ---

type UpdateFileInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Name     string `json:"name" jsonschema:"required" jsonschema_description:"File name to update"`
	Type     string `json:"type,omitempty" jsonschema_description:"New file type, or empty to keep the current one,enum=SERVER_JS,enum=HTML,enum=JSON"`
	Source   string `json:"source" jsonschema:"required" jsonschema_description:"Complete replacement source"`
}

func createUpdateFileHandler(deps *tools.Deps) mcp.ToolHandlerFor[UpdateFileInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UpdateFileInput) (*mcp.CallToolResult, any, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}

		file := gasapi.File{Name: input.Name, Type: input.Type, Source: input.Source}
		if err := deps.API.UpdateFile(ctx, input.ScriptID, file); err != nil {
			return nil, nil, fileErr(err)
		}

		rb := response.New()
		rb.Header("File Updated")
		rb.KeyValue("Script ID", input.ScriptID)
		rb.KeyValue("Name", input.Name)

		return rb.TextResult(), nil, nil
	}
}

// --- delete_file ---

type DeleteFileInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Name     string `json:"name" jsonschema:"required" jsonschema_description:"File name to delete"`
}

func createDeleteFileHandler(deps *tools.Deps) mcp.ToolHandlerFor[DeleteFileInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteFileInput) (*mcp.CallToolResult, any, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}

		if err := deps.API.DeleteFile(ctx, input.ScriptID, input.Name); err != nil {
			return nil, nil, fileErr(err)
		}

		rb := response.New()
		rb.Header("File Deleted")
		rb.KeyValue("Script ID", input.ScriptID)
		rb.KeyValue("Name", input.Name)

		return rb.TextResult(), nil, nil
	}
}
