package triggers

import (
	"fmt"
	"sort"
	"strings"
)

// clockBuilders maps interval names to the ScriptApp time-based builder
// chain fragment that implements them. Daily and weekly default to 9am.
var clockBuilders = map[string]string{
	"every_minute":     ".everyMinutes(1)",
	"every_5_minutes":  ".everyMinutes(5)",
	"every_10_minutes": ".everyMinutes(10)",
	"every_15_minutes": ".everyMinutes(15)",
	"every_30_minutes": ".everyMinutes(30)",
	"hourly":           ".everyHours(1)",
	"daily":            ".everyDays(1)\n    .atHour(9)",
	"weekly":           ".onWeekDay(ScriptApp.WeekDay.MONDAY)\n    .atHour(9)",
}

// containerBuilders maps container-bound trigger types to the setup line
// obtaining the container and the builder chain binding to it.
var containerBuilders = map[string]struct {
	setup string
	chain string
	label string
}{
	"spreadsheet_open": {
		setup: "var ss = SpreadsheetApp.getActive();",
		chain: ".forSpreadsheet(ss)\n    .onOpen()",
		label: "an onOpen",
	},
	"spreadsheet_edit": {
		setup: "var ss = SpreadsheetApp.getActive();",
		chain: ".forSpreadsheet(ss)\n    .onEdit()",
		label: "an onEdit",
	},
	"form_submit": {
		setup: "var form = FormApp.getActiveForm();",
		chain: ".forForm(form)\n    .onFormSubmit()",
		label: "a form submit",
	},
	"document_open": {
		setup: "var doc = DocumentApp.getActiveDocument();",
		chain: ".forDocument(doc)\n    .onOpen()",
		label: "an onOpen",
	},
}

func intervalNames() string {
	names := make([]string, 0, len(clockBuilders))
	for name := range clockBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func triggerTypeNames() string {
	names := make([]string, 0, len(containerBuilders)+1)
	names = append(names, "time_based")
	for name := range containerBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// GenerateCode emits an installable trigger snippet for common automation
// patterns. The returned code defines a createTrigger function the user
// runs once inside the project.
func GenerateCode(triggerType, functionName, interval string) (string, error) {
	if triggerType == "time_based" {
		if interval == "" {
			interval = "hourly"
		}
		builder, ok := clockBuilders[interval]
		if !ok {
			return "", fmt.Errorf("unknown interval %q - use: %s", interval, intervalNames())
		}
		return fmt.Sprintf(`/**
 * Creates a time-based trigger for %s.
 * Run this function once to install the trigger.
 */
function createTrigger() {
  ScriptApp.newTrigger('%s')
    .timeBased()
    %s
    .create();
}
`, functionName, functionName, builder), nil
	}

	cb, ok := containerBuilders[triggerType]
	if !ok {
		return "", fmt.Errorf("unknown trigger type %q - use: %s", triggerType, triggerTypeNames())
	}
	return fmt.Sprintf(`/**
 * Creates %s trigger for %s.
 * Run this function once to install the trigger.
 */
function createTrigger() {
  %s
  ScriptApp.newTrigger('%s')
    %s
    .create();
}
`, cb.label, functionName, cb.setup, functionName, cb.chain), nil
}
