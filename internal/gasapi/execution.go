package gasapi

import (
	"context"
	"encoding/json"
	"strconv"

	scriptpb "google.golang.org/api/script/v1"
)

// ExecutionError is a script-level failure returned by the remote runtime,
// as opposed to a transport failure.
type ExecutionError struct {
	Message string
	Type    string
	Trace   []string
}

// ExecutionResult carries either the function's return value or a remote
// execution error. Callers must check Error as well as the transport
// error returned by ExecuteFunction — they are distinct failure channels.
type ExecutionResult struct {
	Response json.RawMessage
	Error    *ExecutionError
	Done     bool
}

// Result extracts the function's return value from the raw operation
// response, or nil for void functions.
func (r *ExecutionResult) Result() json.RawMessage {
	if len(r.Response) == 0 {
		return nil
	}
	var wrapper struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(r.Response, &wrapper); err != nil {
		return r.Response
	}
	if len(wrapper.Result) == 0 {
		return nil
	}
	return wrapper.Result
}

// ExecuteFunction runs a function in the project. The script must be
// deployed as an API executable. Transport failures return a Go error;
// failures inside the script come back in ExecutionResult.Error.
func (c *Client) ExecuteFunction(ctx context.Context, scriptID, function string, parameters []any, devMode bool) (*ExecutionResult, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, err
	}

	req := &scriptpb.ExecutionRequest{
		Function:   function,
		Parameters: parameters,
		DevMode:    devMode,
	}

	op, err := srv.Scripts.Run(scriptID, req).Context(ctx).Do()
	if err != nil {
		return nil, apiErr("executing function "+function, err)
	}

	result := &ExecutionResult{Done: op.Done, Response: json.RawMessage(op.Response)}
	if op.Error != nil {
		execErr := &ExecutionError{Message: op.Error.Message}
		for _, detail := range op.Error.Details {
			var d struct {
				ErrorMessage string `json:"errorMessage"`
				ErrorType    string `json:"errorType"`
				ScriptStack  []struct {
					Function   string `json:"function"`
					LineNumber int    `json:"lineNumber"`
				} `json:"scriptStackTraceElements"`
			}
			if err := json.Unmarshal(detail, &d); err != nil {
				continue
			}
			if d.ErrorMessage != "" {
				execErr.Message = d.ErrorMessage
			}
			if d.ErrorType != "" {
				execErr.Type = d.ErrorType
			}
			for _, frame := range d.ScriptStack {
				execErr.Trace = append(execErr.Trace, frameString(frame.Function, frame.LineNumber))
			}
		}
		result.Error = execErr
	}
	return result, nil
}

func frameString(function string, line int) string {
	if function == "" {
		function = "(anonymous)"
	}
	return function + ":" + strconv.Itoa(line)
}
