package claspcli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/apps-script-mcp-go/internal/clasp"
	"github.com/evert/apps-script-mcp-go/internal/pkg/response"
	"github.com/evert/apps-script-mcp-go/internal/pkg/validate"
	"github.com/evert/apps-script-mcp-go/internal/tools"
)

// claspErr maps subprocess failures onto agent-actionable messages.
func claspErr(err error) error {
	var cfgErr *clasp.ConfigNotFoundError
	if errors.As(err, &cfgErr) {
		return fmt.Errorf("%v — create the environment config file in the clasp working directory first", err)
	}
	var subErr *clasp.SubprocessError
	if errors.As(err, &subErr) {
		if strings.Contains(subErr.Stderr, "not logged in") || strings.Contains(subErr.Stderr, "login") {
			return fmt.Errorf("%v — run clasp_login first", err)
		}
		return err
	}
	return err
}

// commandSection appends the standard command/output block to a response.
func commandSection(rb *response.Builder, result *clasp.Result) {
	rb.KeyValue("Command", result.Command)
	if out := strings.TrimSpace(result.Stdout); out != "" {
		rb.Blank()
		rb.Line("Output:")
		rb.Code(out)
	}
	if errOut := strings.TrimSpace(result.Stderr); errOut != "" {
		rb.Blank()
		rb.Line("Stderr:")
		rb.Code(errOut)
	}
}

// --- setup_clasp ---

type SetupInput struct{}

func createSetupHandler(deps *tools.Deps) mcp.ToolHandlerFor[SetupInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SetupInput) (*mcp.CallToolResult, any, error) {
		result, err := deps.Clasp.Install(ctx)
		if err != nil {
			return nil, nil, claspErr(err)
		}

		rb := response.New()
		rb.Header("Clasp Installed")
		commandSection(rb, result)
		rb.Blank()
		rb.Line("Run clasp_login to authenticate.")

		return rb.TextResult(), nil, nil
	}
}

// --- clasp_version ---

type VersionInput struct{}

type VersionOutput struct {
	Version string `json:"version"`
}

func createVersionHandler(deps *tools.Deps) mcp.ToolHandlerFor[VersionInput, VersionOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input VersionInput) (*mcp.CallToolResult, VersionOutput, error) {
		version, err := deps.Clasp.Version(ctx)
		if err != nil {
			return nil, VersionOutput{}, claspErr(err)
		}

		rb := response.New()
		rb.KeyValue("Clasp version", version)

		return rb.TextResult(), VersionOutput{Version: version}, nil
	}
}

// --- clasp_login ---

type LoginInput struct{}

func createLoginHandler(deps *tools.Deps) mcp.ToolHandlerFor[LoginInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input LoginInput) (*mcp.CallToolResult, any, error) {
		if _, err := deps.Clasp.Login(ctx); err != nil {
			return nil, nil, claspErr(err)
		}

		rb := response.New()
		rb.Header("Clasp Login Complete")
		rb.Line("Credentials are stored in the host user's home directory.")

		return rb.TextResult(), nil, nil
	}
}

// --- clasp_logout ---

type LogoutInput struct{}

func createLogoutHandler(deps *tools.Deps) mcp.ToolHandlerFor[LogoutInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input LogoutInput) (*mcp.CallToolResult, any, error) {
		result, err := deps.Clasp.Logout(ctx)
		if err != nil {
			return nil, nil, claspErr(err)
		}

		rb := response.New()
		rb.Header("Clasp Logout Complete")
		commandSection(rb, result)

		return rb.TextResult(), nil, nil
	}
}

// --- clasp_create ---

type CreateInput struct {
	Title string `json:"title" jsonschema:"required" jsonschema_description:"Title for the new project"`
	Type  string `json:"type,omitempty" jsonschema_description:"Project type,enum=standalone,enum=docs,enum=sheets,enum=slides,enum=forms,enum=webapp,enum=api"`
}

func createCreateHandler(deps *tools.Deps) mcp.ToolHandlerFor[CreateInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateInput) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(input.Title) == "" {
			return nil, nil, fmt.Errorf("title is required")
		}

		result, err := deps.Clasp.Create(ctx, input.Title, input.Type)
		if err != nil {
			return nil, nil, claspErr(err)
		}

		rb := response.New()
		rb.Header("Project Created")
		rb.KeyValue("Title", input.Title)
		if input.Type != "" {
			rb.KeyValue("Type", input.Type)
		}
		commandSection(rb, result)

		return rb.TextResult(), nil, nil
	}
}

// --- clasp_clone ---

type CloneInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID to clone"`
}

func createCloneHandler(deps *tools.Deps) mcp.ToolHandlerFor[CloneInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CloneInput) (*mcp.CallToolResult, any, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}

		result, err := deps.Clasp.Clone(ctx, input.ScriptID)
		if err != nil {
			return nil, nil, claspErr(err)
		}

		rb := response.New()
		rb.Header("Project Cloned")
		rb.KeyValue("Script ID", input.ScriptID)
		rb.KeyValue("Directory", deps.Clasp.WorkDir())
		commandSection(rb, result)

		return rb.TextResult(), nil, nil
	}
}

// --- clasp_pull ---

type PullInput struct {
	Environment string `json:"environment,omitempty" jsonschema_description:"Named environment whose .clasp.<env>.json config to activate first"`
}

type PullOutput struct {
	Files []string `json:"files"`
}

func createPullHandler(deps *tools.Deps) mcp.ToolHandlerFor[PullInput, PullOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PullInput) (*mcp.CallToolResult, PullOutput, error) {
		result, files, err := deps.Clasp.Pull(ctx, input.Environment)
		if err != nil {
			return nil, PullOutput{}, claspErr(err)
		}

		rb := response.New()
		rb.Header("Pull Complete")
		if input.Environment != "" {
			rb.KeyValue("Environment", input.Environment)
		}
		rb.KeyValue("Files", len(files))
		for _, f := range files {
			rb.Item("%s", f)
		}
		commandSection(rb, result)

		return rb.TextResult(), PullOutput{Files: files}, nil
	}
}

// --- clasp_push ---

type PushInput struct {
	Environment string `json:"environment,omitempty" jsonschema_description:"Named environment whose .clasp.<env>.json config to activate first"`
	Force       bool   `json:"force,omitempty" jsonschema_description:"Skip the manifest-change confirmation prompt"`
}

func createPushHandler(deps *tools.Deps) mcp.ToolHandlerFor[PushInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PushInput) (*mcp.CallToolResult, any, error) {
		result, err := deps.Clasp.Push(ctx, input.Environment, input.Force)
		if err != nil {
			return nil, nil, claspErr(err)
		}

		rb := response.New()
		rb.Header("Push Complete")
		if input.Environment != "" {
			rb.KeyValue("Environment", input.Environment)
		}
		commandSection(rb, result)

		return rb.TextResult(), nil, nil
	}
}

// --- clasp_deploy ---

type DeployInput struct {
	Environment string `json:"environment,omitempty" jsonschema_description:"Named environment whose .clasp.<env>.json config to activate first"`
	Description string `json:"description,omitempty" jsonschema_description:"Description for the new deployment"`
}

func createDeployHandler(deps *tools.Deps) mcp.ToolHandlerFor[DeployInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeployInput) (*mcp.CallToolResult, any, error) {
		result, err := deps.Clasp.Deploy(ctx, input.Environment, input.Description)
		if err != nil {
			return nil, nil, claspErr(err)
		}

		rb := response.New()
		rb.Header("Deploy Complete")
		if input.Environment != "" {
			rb.KeyValue("Environment", input.Environment)
		}
		if input.Description != "" {
			rb.KeyValue("Description", input.Description)
		}
		commandSection(rb, result)

		return rb.TextResult(), nil, nil
	}
}

// --- clasp_status ---

type StatusInput struct{}

func createStatusHandler(deps *tools.Deps) mcp.ToolHandlerFor[StatusInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, any, error) {
		result, err := deps.Clasp.Status(ctx)
		if err != nil {
			return nil, nil, claspErr(err)
		}

		rb := response.New()
		rb.Header("Clasp Status")
		commandSection(rb, result)

		return rb.TextResult(), nil, nil
	}
}

// --- clasp_list ---

type ListInput struct{}

type RemoteProjectInfo struct {
	Name     string `json:"name"`
	ScriptID string `json:"script_id"`
	URL      string `json:"url"`
}

type ListOutput struct {
	Projects []RemoteProjectInfo `json:"projects"`
}

func createListHandler(deps *tools.Deps) mcp.ToolHandlerFor[ListInput, ListOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
		parsed, err := deps.Clasp.List(ctx)
		if err != nil {
			return nil, ListOutput{}, claspErr(err)
		}
		if parsed.UnknownFormat {
			return nil, ListOutput{}, fmt.Errorf("could not parse clasp list output — the installed clasp version may use an unsupported format")
		}

		rb := response.New()
		rb.Header("Remote Projects")
		rb.KeyValue("Count", len(parsed.Projects))
		rb.Blank()

		out := ListOutput{}
		for _, p := range parsed.Projects {
			out.Projects = append(out.Projects, RemoteProjectInfo(p))
			rb.Item("%s", p.Name)
			rb.Line("    %s", p.URL)
		}
		if parsed.Unrecognized > 0 {
			rb.Blank()
			rb.Line("%d output lines were not recognized and were skipped.", parsed.Unrecognized)
		}

		return rb.TextResult(), out, nil
	}
}
