package trigger

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/apps-script-mcp-go/internal/middleware"
	"github.com/evert/apps-script-mcp-go/internal/pkg/response"
	"github.com/evert/apps-script-mcp-go/internal/pkg/validate"
	"github.com/evert/apps-script-mcp-go/internal/tools"
	"github.com/evert/apps-script-mcp-go/internal/triggers"
)

// --- list_triggers ---

type ListTriggersInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
}

type TriggerInfo struct {
	ID              string `json:"id"`
	HandlerFunction string `json:"handler_function"`
	EventType       string `json:"event_type"`
	Source          string `json:"source"`
}

type ListTriggersOutput struct {
	Triggers []TriggerInfo `json:"triggers"`
}

func createListTriggersHandler(deps *tools.Deps) mcp.ToolHandlerFor[ListTriggersInput, ListTriggersOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListTriggersInput) (*mcp.CallToolResult, ListTriggersOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, ListTriggersOutput{}, err
		}

		list, err := deps.Triggers.List(ctx, input.ScriptID)
		if err != nil {
			return nil, ListTriggersOutput{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Installed Triggers")
		rb.KeyValue("Count", len(list))
		rb.Blank()

		out := ListTriggersOutput{}
		for _, t := range list {
			out.Triggers = append(out.Triggers, TriggerInfo(t))
			rb.Item("%s → %s", t.EventType, t.HandlerFunction)
			rb.Line("    ID: %s | Source: %s", t.ID, t.Source)
		}

		return rb.TextResult(), out, nil
	}
}

// --- create_trigger ---

type CreateTriggerInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Function string `json:"function" jsonschema:"required" jsonschema_description:"Name of the function the trigger fires"`
	Interval string `json:"interval" jsonschema:"required" jsonschema_description:"Firing interval,enum=every_minute,enum=every_5_minutes,enum=every_10_minutes,enum=every_15_minutes,enum=every_30_minutes,enum=hourly,enum=daily,enum=weekly"`
}

func createCreateTriggerHandler(deps *tools.Deps) mcp.ToolHandlerFor[CreateTriggerInput, TriggerInfo] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateTriggerInput) (*mcp.CallToolResult, TriggerInfo, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, TriggerInfo{}, err
		}
		if err := validate.FunctionName(input.Function); err != nil {
			return nil, TriggerInfo{}, err
		}

		t, err := deps.Triggers.CreateTimeBased(ctx, input.ScriptID, input.Function, input.Interval)
		if err != nil {
			return nil, TriggerInfo{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Trigger Created")
		rb.KeyValue("ID", t.ID)
		rb.KeyValue("Function", t.HandlerFunction)
		rb.KeyValue("Interval", input.Interval)

		return rb.TextResult(), TriggerInfo(*t), nil
	}
}

// --- delete_trigger ---

type DeleteTriggerInput struct {
	ScriptID  string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	TriggerID string `json:"trigger_id" jsonschema:"required" jsonschema_description:"Unique ID of the trigger to delete (from list_triggers)"`
}

type DeleteTriggerOutput struct {
	Found bool `json:"found"`
}

func createDeleteTriggerHandler(deps *tools.Deps) mcp.ToolHandlerFor[DeleteTriggerInput, DeleteTriggerOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteTriggerInput) (*mcp.CallToolResult, DeleteTriggerOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, DeleteTriggerOutput{}, err
		}

		found, err := deps.Triggers.Delete(ctx, input.ScriptID, input.TriggerID)
		if err != nil {
			return nil, DeleteTriggerOutput{}, middleware.HandleGoogleAPIError(err)
		}

		rb := response.New()
		rb.Header("Delete Trigger")
		rb.KeyValue("Trigger ID", input.TriggerID)
		if found {
			rb.Line("Trigger deleted.")
		} else {
			rb.Line("No trigger with that ID was found — it may already be deleted. Use list_triggers to see current triggers.")
		}

		return rb.TextResult(), DeleteTriggerOutput{Found: found}, nil
	}
}

// --- generate_trigger_code ---

type GenerateTriggerCodeInput struct {
	TriggerType  string `json:"trigger_type" jsonschema:"required" jsonschema_description:"Type of trigger,enum=time_based,enum=spreadsheet_open,enum=spreadsheet_edit,enum=form_submit,enum=document_open"`
	FunctionName string `json:"function_name" jsonschema:"required" jsonschema_description:"Name of the function to trigger"`
	Interval     string `json:"interval,omitempty" jsonschema_description:"For time-based triggers (default hourly),enum=every_minute,enum=every_5_minutes,enum=every_10_minutes,enum=every_15_minutes,enum=every_30_minutes,enum=hourly,enum=daily,enum=weekly"`
}

type GenerateTriggerCodeOutput struct {
	Code        string `json:"code"`
	TriggerType string `json:"trigger_type"`
}

func createGenerateTriggerCodeHandler() mcp.ToolHandlerFor[GenerateTriggerCodeInput, GenerateTriggerCodeOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GenerateTriggerCodeInput) (*mcp.CallToolResult, GenerateTriggerCodeOutput, error) {
		if err := validate.FunctionName(input.FunctionName); err != nil {
			return nil, GenerateTriggerCodeOutput{}, err
		}

		code, err := triggers.GenerateCode(input.TriggerType, input.FunctionName, input.Interval)
		if err != nil {
			return nil, GenerateTriggerCodeOutput{}, err
		}

		rb := response.New()
		rb.Header("Generated Trigger Code")
		rb.KeyValue("Trigger Type", input.TriggerType)
		rb.KeyValue("Function", input.FunctionName)
		rb.Blank()
		rb.Code(code)
		rb.Blank()
		rb.Line("To install: add this code to the project and run the createTrigger function once.")

		return rb.TextResult(), GenerateTriggerCodeOutput{Code: code, TriggerType: input.TriggerType}, nil
	}
}
