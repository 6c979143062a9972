package triggers

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/evert/apps-script-mcp-go/internal/gasapi"
)

// scriptedRunner replays a canned result and records the snippet it ran.
type scriptedRunner struct {
	result *gasapi.ExecutionResult
	err    error
	source string
}

func (r *scriptedRunner) Run(ctx context.Context, scriptID, function, source string) (*gasapi.ExecutionResult, error) {
	r.source = source
	return r.result, r.err
}

func resultOf(t *testing.T, v any) *gasapi.ExecutionResult {
	t.Helper()
	inner, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	wrapped, _ := json.Marshal(map[string]json.RawMessage{"result": inner})
	return &gasapi.ExecutionResult{Done: true, Response: wrapped}
}

func TestList(t *testing.T) {
	runner := &scriptedRunner{result: resultOf(t, []Trigger{
		{ID: "t1", HandlerFunction: "onTimer", EventType: "CLOCK", Source: "CLOCK"},
		{ID: "t2", HandlerFunction: "onEdit", EventType: "ON_EDIT", Source: "SPREADSHEETS"},
	})}

	triggers, err := NewManager(runner).List(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(triggers) != 2 {
		t.Fatalf("got %d triggers, want 2", len(triggers))
	}
	if triggers[0].ID != "t1" || triggers[1].HandlerFunction != "onEdit" {
		t.Errorf("triggers = %+v", triggers)
	}
	if !strings.Contains(runner.source, "getProjectTriggers()") {
		t.Errorf("snippet does not enumerate triggers:\n%s", runner.source)
	}
}

func TestListEmpty(t *testing.T) {
	runner := &scriptedRunner{result: resultOf(t, []Trigger{})}
	triggers, err := NewManager(runner).List(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(triggers) != 0 {
		t.Errorf("got %d triggers, want 0", len(triggers))
	}
}

func TestCreateTimeBased(t *testing.T) {
	runner := &scriptedRunner{result: resultOf(t, Trigger{
		ID: "new1", HandlerFunction: "syncData", EventType: "CLOCK", Source: "CLOCK",
	})}

	trigger, err := NewManager(runner).CreateTimeBased(context.Background(), "s1", "syncData", "every_5_minutes")
	if err != nil {
		t.Fatal(err)
	}
	if trigger.ID != "new1" {
		t.Errorf("trigger = %+v", trigger)
	}
	if !strings.Contains(runner.source, `.everyMinutes(5)`) {
		t.Errorf("snippet missing interval builder:\n%s", runner.source)
	}
	if !strings.Contains(runner.source, `ScriptApp.newTrigger("syncData")`) {
		t.Errorf("snippet missing quoted handler name:\n%s", runner.source)
	}
}

func TestCreateUnknownInterval(t *testing.T) {
	runner := &scriptedRunner{}
	_, err := NewManager(runner).CreateTimeBased(context.Background(), "s1", "f", "fortnightly")
	if err == nil || !strings.Contains(err.Error(), "unknown interval") {
		t.Fatalf("got %v, want unknown interval error", err)
	}
	if runner.source != "" {
		t.Error("snippet ran despite invalid interval")
	}
}

func TestCreateScriptError(t *testing.T) {
	runner := &scriptedRunner{result: &gasapi.ExecutionResult{
		Error: &gasapi.ExecutionError{Message: "too many triggers"},
	}}
	_, err := NewManager(runner).CreateTimeBased(context.Background(), "s1", "f", "hourly")
	if err == nil || !strings.Contains(err.Error(), "too many triggers") {
		t.Fatalf("got %v, want script error", err)
	}
}

func TestDelete(t *testing.T) {
	runner := &scriptedRunner{result: resultOf(t, true)}
	found, err := NewManager(runner).Delete(context.Background(), "s1", "t1")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("expected found=true")
	}
	if !strings.Contains(runner.source, `"t1"`) {
		t.Errorf("snippet missing trigger ID:\n%s", runner.source)
	}

	runner.result = resultOf(t, false)
	found, err = NewManager(runner).Delete(context.Background(), "s1", "absent")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected found=false for absent trigger")
	}
}

func TestGenerateCodeTimeBased(t *testing.T) {
	code, err := GenerateCode("time_based", "dailyReport", "daily")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"function createTrigger()", "ScriptApp.newTrigger('dailyReport')", ".everyDays(1)", ".atHour(9)"} {
		if !strings.Contains(code, want) {
			t.Errorf("code missing %q:\n%s", want, code)
		}
	}
}

func TestGenerateCodeDefaultInterval(t *testing.T) {
	code, err := GenerateCode("time_based", "f", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(code, ".everyHours(1)") {
		t.Errorf("default interval should be hourly:\n%s", code)
	}
}

func TestGenerateCodeContainerBound(t *testing.T) {
	cases := []struct {
		triggerType string
		want        []string
	}{
		{"spreadsheet_open", []string{"SpreadsheetApp.getActive()", ".forSpreadsheet(ss)", ".onOpen()"}},
		{"spreadsheet_edit", []string{".forSpreadsheet(ss)", ".onEdit()"}},
		{"form_submit", []string{"FormApp.getActiveForm()", ".onFormSubmit()"}},
		{"document_open", []string{"DocumentApp.getActiveDocument()", ".forDocument(doc)"}},
	}
	for _, tc := range cases {
		code, err := GenerateCode(tc.triggerType, "handler", "")
		if err != nil {
			t.Fatalf("%s: %v", tc.triggerType, err)
		}
		for _, want := range tc.want {
			if !strings.Contains(code, want) {
				t.Errorf("%s: code missing %q", tc.triggerType, want)
			}
		}
	}
}

func TestGenerateCodeUnknownType(t *testing.T) {
	_, err := GenerateCode("calendar_event", "f", "")
	if err == nil || !strings.Contains(err.Error(), "unknown trigger type") {
		t.Fatalf("got %v, want unknown trigger type error", err)
	}
}
