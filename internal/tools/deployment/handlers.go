package deployment

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/apps-script-mcp-go/internal/gasapi"
	"github.com/evert/apps-script-mcp-go/internal/middleware"
	"github.com/evert/apps-script-mcp-go/internal/pkg/response"
	"github.com/evert/apps-script-mcp-go/internal/pkg/validate"
	"github.com/evert/apps-script-mcp-go/internal/tools"
)

// --- create_deployment ---

type CreateDeploymentInput struct {
	ScriptID      string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	VersionNumber int64  `json:"version_number,omitempty" jsonschema_description:"Version to deploy (0 or omitted deploys HEAD)"`
	Description   string `json:"description,omitempty" jsonschema_description:"Deployment description"`
}

type DeploymentInfo struct {
	DeploymentID string `json:"deployment_id"`
	Description  string `json:"description,omitempty"`
	Version      int64  `json:"version,omitempty"`
	UpdateTime   string `json:"update_time,omitempty"`
	WebAppURL    string `json:"web_app_url,omitempty"`
}

func createCreateDeploymentHandler(deps *tools.Deps) mcp.ToolHandlerFor[CreateDeploymentInput, DeploymentInfo] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateDeploymentInput) (*mcp.CallToolResult, DeploymentInfo, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, DeploymentInfo{}, err
		}

		d, err := deps.API.CreateDeployment(ctx, input.ScriptID, input.VersionNumber, input.Description)
		if err != nil {
			return nil, DeploymentInfo{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Deployment Created")
		rb.KeyValue("Deployment ID", d.DeploymentID)
		rb.KeyValue("Version", d.Version)
		if d.Description != "" {
			rb.KeyValue("Description", d.Description)
		}
		if d.WebAppURL != "" {
			rb.KeyValue("Web App URL", d.WebAppURL)
		}

		return rb.TextResult(), deploymentInfo(d), nil
	}
}

// --- list_deployments ---

type ListDeploymentsInput struct {
	ScriptID  string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	PageSize  int    `json:"page_size,omitempty" jsonschema_description:"Max results (default 20)"`
	PageToken string `json:"page_token,omitempty" jsonschema_description:"Token for next page of results"`
}

type ListDeploymentsOutput struct {
	Deployments   []DeploymentInfo `json:"deployments"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

func createListDeploymentsHandler(deps *tools.Deps) mcp.ToolHandlerFor[ListDeploymentsInput, ListDeploymentsOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListDeploymentsInput) (*mcp.CallToolResult, ListDeploymentsOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, ListDeploymentsOutput{}, err
		}
		if input.PageSize == 0 {
			input.PageSize = 20
		}

		deployments, nextToken, err := deps.API.ListDeployments(ctx, input.ScriptID, input.PageSize, input.PageToken)
		if err != nil {
			return nil, ListDeploymentsOutput{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Deployments")
		rb.KeyValue("Count", len(deployments))
		rb.Blank()

		out := ListDeploymentsOutput{NextPageToken: nextToken}
		for i := range deployments {
			d := &deployments[i]
			out.Deployments = append(out.Deployments, deploymentInfo(d))
			rb.Item("%s (version %d)", d.DeploymentID, d.Version)
			if d.Description != "" {
				rb.Line("    %s", d.Description)
			}
			if d.WebAppURL != "" {
				rb.Line("    Web App: %s", d.WebAppURL)
			}
		}

		return rb.TextResult(), out, nil
	}
}

// --- get_deployment ---

type GetDeploymentInput struct {
	ScriptID     string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	DeploymentID string `json:"deployment_id" jsonschema:"required" jsonschema_description:"The deployment to fetch"`
}

func createGetDeploymentHandler(deps *tools.Deps) mcp.ToolHandlerFor[GetDeploymentInput, DeploymentInfo] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetDeploymentInput) (*mcp.CallToolResult, DeploymentInfo, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, DeploymentInfo{}, err
		}

		d, err := deps.API.GetDeployment(ctx, input.ScriptID, input.DeploymentID)
		if err != nil {
			return nil, DeploymentInfo{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Deployment")
		rb.KeyValue("Deployment ID", d.DeploymentID)
		rb.KeyValue("Version", d.Version)
		if d.Description != "" {
			rb.KeyValue("Description", d.Description)
		}
		if d.UpdateTime != "" {
			rb.KeyValue("Updated", d.UpdateTime)
		}
		if d.WebAppURL != "" {
			rb.KeyValue("Web App URL", d.WebAppURL)
		}

		return rb.TextResult(), deploymentInfo(d), nil
	}
}

// --- update_deployment ---

type UpdateDeploymentInput struct {
	ScriptID      string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	DeploymentID  string `json:"deployment_id" jsonschema:"required" jsonschema_description:"The deployment to update"`
	VersionNumber int64  `json:"version_number,omitempty" jsonschema_description:"Version to point the deployment at (0 or omitted uses HEAD)"`
	Description   string `json:"description,omitempty" jsonschema_description:"New deployment description"`
}

func createUpdateDeploymentHandler(deps *tools.Deps) mcp.ToolHandlerFor[UpdateDeploymentInput, DeploymentInfo] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UpdateDeploymentInput) (*mcp.CallToolResult, DeploymentInfo, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, DeploymentInfo{}, err
		}

		d, err := deps.API.UpdateDeployment(ctx, input.ScriptID, input.DeploymentID, input.VersionNumber, input.Description)
		if err != nil {
			return nil, DeploymentInfo{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Deployment Updated")
		rb.KeyValue("Deployment ID", d.DeploymentID)
		rb.KeyValue("Version", d.Version)

		return rb.TextResult(), deploymentInfo(d), nil
	}
}

// --- delete_deployment ---

type DeleteDeploymentInput struct {
	ScriptID     string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	DeploymentID string `json:"deployment_id" jsonschema:"required" jsonschema_description:"The deployment to delete"`
}

func createDeleteDeploymentHandler(deps *tools.Deps) mcp.ToolHandlerFor[DeleteDeploymentInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteDeploymentInput) (*mcp.CallToolResult, any, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}

		if err := deps.API.DeleteDeployment(ctx, input.ScriptID, input.DeploymentID); err != nil {
			return nil, nil, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Deployment Deleted")
		rb.KeyValue("Deployment ID", input.DeploymentID)

		return rb.TextResult(), nil, nil
	}
}

// --- create_version ---

type CreateVersionInput struct {
	ScriptID    string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Description string `json:"description,omitempty" jsonschema_description:"Version description"`
}

type VersionInfo struct {
	VersionNumber int64  `json:"version_number"`
	Description   string `json:"description,omitempty"`
	CreateTime    string `json:"create_time,omitempty"`
}

func createCreateVersionHandler(deps *tools.Deps) mcp.ToolHandlerFor[CreateVersionInput, VersionInfo] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateVersionInput) (*mcp.CallToolResult, VersionInfo, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, VersionInfo{}, err
		}

		v, err := deps.API.CreateVersion(ctx, input.ScriptID, input.Description)
		if err != nil {
			return nil, VersionInfo{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Version Created")
		rb.KeyValue("Version", v.VersionNumber)
		if v.Description != "" {
			rb.KeyValue("Description", v.Description)
		}

		return rb.TextResult(), versionInfo(v), nil
	}
}

// --- list_versions ---

type ListVersionsInput struct {
	ScriptID  string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	PageSize  int    `json:"page_size,omitempty" jsonschema_description:"Max results (default 20)"`
	PageToken string `json:"page_token,omitempty" jsonschema_description:"Token for next page of results"`
}

type ListVersionsOutput struct {
	Versions      []VersionInfo `json:"versions"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

func createListVersionsHandler(deps *tools.Deps) mcp.ToolHandlerFor[ListVersionsInput, ListVersionsOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListVersionsInput) (*mcp.CallToolResult, ListVersionsOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, ListVersionsOutput{}, err
		}
		if input.PageSize == 0 {
			input.PageSize = 20
		}

		versions, nextToken, err := deps.API.ListVersions(ctx, input.ScriptID, input.PageSize, input.PageToken)
		if err != nil {
			return nil, ListVersionsOutput{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Versions")
		rb.KeyValue("Count", len(versions))
		rb.Blank()

		out := ListVersionsOutput{NextPageToken: nextToken}
		for i := range versions {
			v := &versions[i]
			out.Versions = append(out.Versions, versionInfo(v))
			rb.Item("v%d — %s", v.VersionNumber, v.CreateTime)
			if v.Description != "" {
				rb.Line("    %s", v.Description)
			}
		}

		return rb.TextResult(), out, nil
	}
}

// --- get_version ---

type GetVersionInput struct {
	ScriptID      string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	VersionNumber int64  `json:"version_number" jsonschema:"required" jsonschema_description:"Version number to fetch"`
}

func createGetVersionHandler(deps *tools.Deps) mcp.ToolHandlerFor[GetVersionInput, VersionInfo] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetVersionInput) (*mcp.CallToolResult, VersionInfo, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, VersionInfo{}, err
		}

		v, err := deps.API.GetVersion(ctx, input.ScriptID, input.VersionNumber)
		if err != nil {
			return nil, VersionInfo{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Version %d", v.VersionNumber)
		rb.KeyValue("Created", v.CreateTime)
		if v.Description != "" {
			rb.KeyValue("Description", v.Description)
		}

		return rb.TextResult(), versionInfo(v), nil
	}
}

func deploymentInfo(d *gasapi.Deployment) DeploymentInfo {
	return DeploymentInfo{
		DeploymentID: d.DeploymentID,
		Description:  d.Description,
		Version:      d.Version,
		UpdateTime:   d.UpdateTime,
		WebAppURL:    d.WebAppURL,
	}
}

func versionInfo(v *gasapi.Version) VersionInfo {
	return VersionInfo{
		VersionNumber: v.VersionNumber,
		Description:   v.Description,
		CreateTime:    v.CreateTime,
	}
}
