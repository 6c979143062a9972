// Package execution implements the remote function execution tool.
package execution

import (
	"context"
	"encoding/json"

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

// Register registers the execution tool with the MCP server.
func Register(server *mcp.Server, deps *tools.Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "execute_function",
		Icons:       serviceIcons,
		Description: "Execute a function in an Apps Script project. The script must be deployed as an API executable and the account must have edit access. Rate limit: ~30 calls/min.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Execute Function",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createExecuteFunctionHandler(deps))
}

type ExecuteFunctionInput struct {
	ScriptID   string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Function   string `json:"function" jsonschema:"required" jsonschema_description:"Name of the function to run"`
	Parameters []any  `json:"parameters,omitempty" jsonschema_description:"Positional parameters passed to the function (JSON primitives, arrays, objects)"`
	DevMode    bool   `json:"dev_mode,omitempty" jsonschema_description:"Run the latest saved code instead of the deployed version (owner only)"`
}

type ExecuteFunctionOutput struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ExecutionError `json:"error,omitempty"`
}

type ExecutionError struct {
	Message string   `json:"message"`
	Type    string   `json:"type,omitempty"`
	Trace   []string `json:"trace,omitempty"`
}

func createExecuteFunctionHandler(deps *tools.Deps) mcp.ToolHandlerFor[ExecuteFunctionInput, ExecuteFunctionOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ExecuteFunctionInput) (*mcp.CallToolResult, ExecuteFunctionOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, ExecuteFunctionOutput{}, err
		}
		if err := validate.FunctionName(input.Function); err != nil {
			return nil, ExecuteFunctionOutput{}, err
		}

		var result *gasapi.ExecutionResult
		// scripts.run is the most aggressively rate-limited endpoint; retry
		// 429s with backoff before giving up.
		err := middleware.WithRetry(ctx, 3, func() error {
			var callErr error
			result, callErr = deps.API.ExecuteFunction(ctx, input.ScriptID, input.Function, input.Parameters, input.DevMode)
			return callErr
		})
		if err != nil {
			return nil, ExecuteFunctionOutput{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Function Execution")
		rb.KeyValue("Function", input.Function)
		rb.KeyValue("Script ID", input.ScriptID)
		rb.Blank()

		// A script-level error is part of the result, not a transport
		// failure; surface it in the display text so the caller can fix
		// the script.
		if result.Error != nil {
			out := ExecuteFunctionOutput{Error: &ExecutionError{
				Message: result.Error.Message,
				Type:    result.Error.Type,
				Trace:   result.Error.Trace,
			}}
			rb.Line("Execution failed inside the script:")
			rb.KeyValue("Error", result.Error.Message)
			if result.Error.Type != "" {
				rb.KeyValue("Type", result.Error.Type)
			}
			for _, frame := range result.Error.Trace {
				rb.Item("%s", frame)
			}
			return rb.TextResult(), out, nil
		}

		raw := result.Result()
		if len(raw) == 0 {
			rb.Line("Function completed with no return value.")
			return rb.TextResult(), ExecuteFunctionOutput{}, nil
		}

		rb.Line("Result:")
		rb.Code(string(raw))
		return rb.TextResult(), ExecuteFunctionOutput{Result: raw}, nil
	}
}
