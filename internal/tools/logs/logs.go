// Package logs implements execution log and metrics tools.
package logs

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

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

// Register registers the log tools with the MCP server.
func Register(server *mcp.Server, deps *tools.Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_processes",
		Icons:       serviceIcons,
		Description: "List execution log entries (processes) of an Apps Script project, optionally filtered by function name.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Processes",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createListProcessesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_metrics",
		Icons:       serviceIcons,
		Description: "Get execution metrics for an Apps Script project: active users, total executions, and failed executions over the last 7 days.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Metrics",
			ReadOnlyHint:  true,
			OpenWorldHint: ptr.Bool(true),
		},
	}, createGetMetricsHandler(deps))
}

// --- list_processes ---

type ListProcessesInput struct {
	ScriptID  string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Function  string `json:"function,omitempty" jsonschema_description:"Only show executions of this function"`
	PageSize  int    `json:"page_size,omitempty" jsonschema_description:"Max results (default 20)"`
	PageToken string `json:"page_token,omitempty" jsonschema_description:"Token for next page of results"`
}

type ProcessInfo struct {
	FunctionName string `json:"function_name"`
	State        string `json:"state"`
	Type         string `json:"type"`
	StartTime    string `json:"start_time"`
	Duration     string `json:"duration,omitempty"`
}

type ListProcessesOutput struct {
	Processes     []ProcessInfo `json:"processes"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

func createListProcessesHandler(deps *tools.Deps) mcp.ToolHandlerFor[ListProcessesInput, ListProcessesOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListProcessesInput) (*mcp.CallToolResult, ListProcessesOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, ListProcessesOutput{}, err
		}
		if input.Function != "" {
			if err := validate.FunctionName(input.Function); err != nil {
				return nil, ListProcessesOutput{}, err
			}
		}

		processes, nextToken, err := deps.API.ListProcesses(ctx, input.ScriptID, input.Function, input.PageSize, input.PageToken)
		if err != nil {
			return nil, ListProcessesOutput{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Execution Log")
		rb.KeyValue("Count", len(processes))
		if input.Function != "" {
			rb.KeyValue("Function filter", input.Function)
		}
		rb.Blank()

		out := ListProcessesOutput{NextPageToken: nextToken}
		for _, p := range processes {
			out.Processes = append(out.Processes, ProcessInfo{
				FunctionName: p.FunctionName,
				State:        p.State,
				Type:         p.Type,
				StartTime:    p.StartTime,
				Duration:     p.Duration,
			})
			rb.Item("%s [%s]", p.FunctionName, p.State)
			rb.Line("    Started: %s | Duration: %s | Type: %s", p.StartTime, p.Duration, p.Type)
		}

		return rb.TextResult(), out, nil
	}
}

// --- get_metrics ---

type GetMetricsInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
}

type GetMetricsOutput struct {
	ActiveUsers      int64 `json:"active_users"`
	TotalExecutions  int64 `json:"total_executions"`
	FailedExecutions int64 `json:"failed_executions"`
}

func createGetMetricsHandler(deps *tools.Deps) mcp.ToolHandlerFor[GetMetricsInput, GetMetricsOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetMetricsInput) (*mcp.CallToolResult, GetMetricsOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, GetMetricsOutput{}, err
		}

		metrics, err := deps.API.GetMetrics(ctx, input.ScriptID)
		if err != nil {
			return nil, GetMetricsOutput{}, middleware.HandleGoogleAPIError(err)
		}

		out := GetMetricsOutput{}
		for _, p := range metrics.ActiveUsers {
			out.ActiveUsers += p.Value
		}
		for _, p := range metrics.TotalExecutions {
			out.TotalExecutions += p.Value
		}
		for _, p := range metrics.FailedExecutions {
			out.FailedExecutions += p.Value
		}

		rb := response.New()
		rb.Header("Project Metrics (last 7 days)")
		rb.KeyValue("Active users", out.ActiveUsers)
		rb.KeyValue("Total executions", out.TotalExecutions)
		rb.KeyValue("Failed executions", out.FailedExecutions)

		return rb.TextResult(), out, nil
	}
}
