// Package triggers manages a project's installable triggers. The REST
// surface exposes no trigger endpoints, so every operation runs a
// ScriptApp snippet through the ephemeral runner.
package triggers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/evert/apps-script-mcp-go/internal/gasapi"
)

const snippetFunction = "mcpTriggerOp"

// Trigger describes one installed trigger.
type Trigger struct {
	ID              string `json:"id"`
	HandlerFunction string `json:"handlerFunction"`
	EventType       string `json:"eventType"`
	Source          string `json:"source"`
}

// SnippetRunner is the slice of the ephemeral runner the manager needs.
type SnippetRunner interface {
	Run(ctx context.Context, scriptID, function, source string) (*gasapi.ExecutionResult, error)
}

// Manager lists, creates, and deletes project triggers.
type Manager struct {
	runner SnippetRunner
}

func NewManager(runner SnippetRunner) *Manager {
	return &Manager{runner: runner}
}

// List returns every installed trigger for the project.
func (m *Manager) List(ctx context.Context, scriptID string) ([]Trigger, error) {
	result, err := m.runner.Run(ctx, scriptID, snippetFunction, listTriggersSnippet())
	if err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("listing triggers: script error: %s", result.Error.Message)
	}

	var triggers []Trigger
	if raw := result.Result(); len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &triggers); err != nil {
			return nil, fmt.Errorf("parsing trigger list: %w", err)
		}
	}
	return triggers, nil
}

// CreateTimeBased installs a clock trigger firing functionName on the
// named interval. Container-bound trigger types (spreadsheet, form,
// document) cannot be installed remotely; GenerateCode emits installable
// snippets for those.
func (m *Manager) CreateTimeBased(ctx context.Context, scriptID, functionName, interval string) (*Trigger, error) {
	builder, ok := clockBuilders[interval]
	if !ok {
		return nil, fmt.Errorf("unknown interval %q - use: %s", interval, intervalNames())
	}

	result, err := m.runner.Run(ctx, scriptID, snippetFunction, createTriggerSnippet(functionName, builder))
	if err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, fmt.Errorf("creating trigger: script error: %s", result.Error.Message)
	}

	var trigger Trigger
	raw := result.Result()
	if len(raw) == 0 {
		return nil, fmt.Errorf("creating trigger: empty response")
	}
	if err := json.Unmarshal(raw, &trigger); err != nil {
		return nil, fmt.Errorf("parsing created trigger: %w", err)
	}
	return &trigger, nil
}

// Delete removes the trigger with the given unique ID. Reports whether a
// matching trigger was found.
func (m *Manager) Delete(ctx context.Context, scriptID, triggerID string) (bool, error) {
	result, err := m.runner.Run(ctx, scriptID, snippetFunction, deleteTriggerSnippet(triggerID))
	if err != nil {
		return false, err
	}
	if result.Error != nil {
		return false, fmt.Errorf("deleting trigger: script error: %s", result.Error.Message)
	}

	var found bool
	if raw := result.Result(); len(raw) > 0 {
		_ = json.Unmarshal(raw, &found)
	}
	return found, nil
}

// jsLiteral renders a Go string as a JavaScript string literal.
func jsLiteral(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func listTriggersSnippet() string {
	return fmt.Sprintf(`function %s() {
  return ScriptApp.getProjectTriggers().map(function (t) {
    return {
      id: t.getUniqueId(),
      handlerFunction: t.getHandlerFunction(),
      eventType: String(t.getEventType()),
      source: String(t.getTriggerSource())
    };
  });
}`, snippetFunction)
}

func createTriggerSnippet(functionName, clockBuilder string) string {
	return fmt.Sprintf(`function %s() {
  var t = ScriptApp.newTrigger(%s)
    .timeBased()
    %s
    .create();
  return {
    id: t.getUniqueId(),
    handlerFunction: t.getHandlerFunction(),
    eventType: String(t.getEventType()),
    source: String(t.getTriggerSource())
  };
}`, snippetFunction, jsLiteral(functionName), clockBuilder)
}

func deleteTriggerSnippet(triggerID string) string {
	return fmt.Sprintf(`function %s() {
  var triggers = ScriptApp.getProjectTriggers();
  for (var i = 0; i < triggers.length; i++) {
    if (triggers[i].getUniqueId() === %s) {
      ScriptApp.deleteTrigger(triggers[i]);
      return true;
    }
  }
  return false;
}`, snippetFunction, jsLiteral(triggerID))
}
