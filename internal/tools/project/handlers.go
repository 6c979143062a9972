package project

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/apps-script-mcp-go/internal/gasapi"
	"github.com/evert/apps-script-mcp-go/internal/middleware"
	"github.com/evert/apps-script-mcp-go/internal/pkg/format"
	"github.com/evert/apps-script-mcp-go/internal/pkg/response"
	"github.com/evert/apps-script-mcp-go/internal/pkg/validate"
	"github.com/evert/apps-script-mcp-go/internal/tools"
)

// --- create_project ---

type CreateProjectInput struct {
	Title    string `json:"title" jsonschema:"required" jsonschema_description:"Title of the new project"`
	ParentID string `json:"parent_id,omitempty" jsonschema_description:"Drive ID of a Doc, Sheet, Slide, or Form to bind the project to"`
}

type CreateProjectOutput struct {
	ScriptID string `json:"script_id"`
	Title    string `json:"title"`
}

func createCreateProjectHandler(deps *tools.Deps) mcp.ToolHandlerFor[CreateProjectInput, CreateProjectOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateProjectInput) (*mcp.CallToolResult, CreateProjectOutput, error) {
		if input.ParentID != "" {
			if err := validate.ScriptID(input.ParentID); err != nil {
				return nil, CreateProjectOutput{}, err
			}
		}

		project, err := deps.API.CreateProject(ctx, input.Title, input.ParentID)
		if err != nil {
			return nil, CreateProjectOutput{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Project Created")
		rb.KeyValue("Title", project.Title)
		rb.KeyValue("Script ID", project.ScriptID)
		rb.Blank()
		rb.Line("Open in editor: https://script.google.com/d/%s/edit", project.ScriptID)

		return rb.TextResult(), CreateProjectOutput{ScriptID: project.ScriptID, Title: project.Title}, nil
	}
}

// --- list_projects ---

type ListProjectsInput struct {
	PageSize  int    `json:"page_size,omitempty" jsonschema_description:"Max results (default 20)"`
	PageToken string `json:"page_token,omitempty" jsonschema_description:"Token for next page of results"`
}

type ProjectSummary struct {
	ScriptID   string `json:"script_id"`
	Title      string `json:"title"`
	CreateTime string `json:"create_time,omitempty"`
	UpdateTime string `json:"update_time,omitempty"`
}

type ListProjectsOutput struct {
	Projects      []ProjectSummary `json:"projects"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

func createListProjectsHandler(deps *tools.Deps) mcp.ToolHandlerFor[ListProjectsInput, ListProjectsOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListProjectsInput) (*mcp.CallToolResult, ListProjectsOutput, error) {
		if input.PageSize == 0 {
			input.PageSize = 20
		}

		projects, nextToken, err := deps.API.ListProjects(ctx, input.PageSize, input.PageToken)
		if err != nil {
			return nil, ListProjectsOutput{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Script Projects")
		rb.KeyValue("Count", len(projects))
		if nextToken != "" {
			rb.KeyValue("Next page token", nextToken)
		}
		rb.Blank()

		out := ListProjectsOutput{NextPageToken: nextToken}
		for _, p := range projects {
			out.Projects = append(out.Projects, ProjectSummary{
				ScriptID:   p.ScriptID,
				Title:      p.Title,
				CreateTime: p.CreateTime,
				UpdateTime: p.UpdateTime,
			})
			rb.Item("%s", p.Title)
			rb.Line("    ID: %s | Modified: %s", p.ScriptID, p.UpdateTime)
		}

		return rb.TextResult(), out, nil
	}
}

// --- get_project ---

type GetProjectInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
}

type GetProjectOutput struct {
	ScriptID   string `json:"script_id"`
	Title      string `json:"title"`
	CreateTime string `json:"create_time"`
	UpdateTime string `json:"update_time"`
	ParentID   string `json:"parent_id,omitempty"`
	Creator    string `json:"creator,omitempty"`
}

func createGetProjectHandler(deps *tools.Deps) mcp.ToolHandlerFor[GetProjectInput, GetProjectOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetProjectInput) (*mcp.CallToolResult, GetProjectOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, GetProjectOutput{}, err
		}

		project, err := deps.API.GetProject(ctx, input.ScriptID)
		if err != nil {
			return nil, GetProjectOutput{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Script Project")
		rb.KeyValue("Title", project.Title)
		rb.KeyValue("Script ID", project.ScriptID)
		rb.KeyValue("Created", project.CreateTime)
		rb.KeyValue("Updated", project.UpdateTime)
		if project.ParentID != "" {
			rb.KeyValue("Parent ID", project.ParentID)
		}
		if project.Creator != "" {
			rb.KeyValue("Creator", project.Creator)
		}

		return rb.TextResult(), GetProjectOutput{
			ScriptID:   project.ScriptID,
			Title:      project.Title,
			CreateTime: project.CreateTime,
			UpdateTime: project.UpdateTime,
			ParentID:   project.ParentID,
			Creator:    project.Creator,
		}, nil
	}
}

// --- delete_project ---

type DeleteProjectInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID to trash"`
}

func createDeleteProjectHandler(deps *tools.Deps) mcp.ToolHandlerFor[DeleteProjectInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteProjectInput) (*mcp.CallToolResult, any, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}

		if err := deps.API.DeleteProject(ctx, input.ScriptID); err != nil {
			return nil, nil, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Project Deleted")
		rb.KeyValue("Script ID", input.ScriptID)
		rb.Line("The project was moved to the Drive trash and can be restored from there.")

		return rb.TextResult(), nil, nil
	}
}

// --- get_project_content ---

type GetContentInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
}

type FileInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Source string `json:"source"`
}

type GetContentOutput struct {
	ScriptID string     `json:"script_id"`
	Files    []FileInfo `json:"files"`
}

func createGetContentHandler(deps *tools.Deps) mcp.ToolHandlerFor[GetContentInput, GetContentOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetContentInput) (*mcp.CallToolResult, GetContentOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, GetContentOutput{}, err
		}

		content, err := deps.API.GetContent(ctx, input.ScriptID)
		if err != nil {
			return nil, GetContentOutput{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Project Content")
		rb.KeyValue("Script ID", content.ScriptID)
		rb.KeyValue("Files", len(content.Files))
		rb.Blank()

		out := GetContentOutput{ScriptID: content.ScriptID}
		for _, f := range content.Files {
			out.Files = append(out.Files, FileInfo{Name: f.Name, Type: f.Type, Source: f.Source})
			size := format.ByteSize(int64(len(f.Source)))
			if size == "" {
				size = "empty"
			}
			rb.Section("%s (%s, %s)", f.Name, f.Type, size)
			rb.Code(f.Source)
			rb.Blank()
		}

		return rb.TextResult(), out, nil
	}
}

// --- update_project_content ---

type UpdateContentInput struct {
	ScriptID string      `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Files    []FileInput `json:"files" jsonschema:"required" jsonschema_description:"The complete file collection to write, replacing the current one"`
}

type FileInput struct {
	Name   string `json:"name" jsonschema:"required" jsonschema_description:"File name without extension"`
	Type   string `json:"type" jsonschema:"required" jsonschema_description:"File type,enum=SERVER_JS,enum=HTML,enum=JSON"`
	Source string `json:"source" jsonschema:"required" jsonschema_description:"Complete file source"`
}

func createUpdateContentHandler(deps *tools.Deps) mcp.ToolHandlerFor[UpdateContentInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UpdateContentInput) (*mcp.CallToolResult, any, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}

		files := make([]gasapi.File, 0, len(input.Files))
		for _, f := range input.Files {
			if err := validate.FileName(f.Name); err != nil {
				return nil, nil, err
			}
			files = append(files, gasapi.File{Name: f.Name, Type: f.Type, Source: f.Source})
		}

		if err := deps.API.UpdateContent(ctx, input.ScriptID, files); err != nil {
			return nil, nil, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Content Updated")
		rb.KeyValue("Script ID", input.ScriptID)
		rb.KeyValue("Files written", len(files))

		return rb.TextResult(), nil, nil
	}
}
