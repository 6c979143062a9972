// Package validate checks identifier-shaped tool inputs before they reach
// remote APIs or generated script source.
package validate

import (
	"fmt"
	"regexp"
)

// scriptIDRE matches Apps Script project IDs. They share the Drive file ID
// alphabet: alphanumeric with hyphens and underscores.
var scriptIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)

// ScriptID validates that the given string is a safe script project ID.
// This prevents query injection when IDs are interpolated into Drive API
// queries.
func ScriptID(id string) error {
	if !scriptIDRE.MatchString(id) {
		return fmt.Errorf("invalid script ID %q — expected alphanumeric characters, hyphens, and underscores", id)
	}
	return nil
}

// functionNameRE matches JavaScript identifiers, which is what the
// execution API accepts as a function name.
var functionNameRE = regexp.MustCompile(`^[a-zA-Z_$][a-zA-Z0-9_$]*$`)

// FunctionName validates that the given string is a plausible script
// function name.
func FunctionName(name string) error {
	if len(name) > 256 {
		return fmt.Errorf("function name too long (max 256 characters)")
	}
	if !functionNameRE.MatchString(name) {
		return fmt.Errorf("invalid function name %q — expected a JavaScript identifier", name)
	}
	return nil
}

// fileNameRE matches project file names. Names may use path-like segments
// (e.g. "src/Code") but not control characters.
var fileNameRE = regexp.MustCompile(`^[a-zA-Z0-9_\-./ ]{1,256}$`)

// FileName validates a project file name.
func FileName(name string) error {
	if !fileNameRE.MatchString(name) {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}

// PropertyKey validates a script property key. The platform accepts most
// strings; this only rejects empty and absurdly long keys.
func PropertyKey(key string) error {
	if key == "" {
		return fmt.Errorf("property key must not be empty")
	}
	if len(key) > 500 {
		return fmt.Errorf("property key too long (max 500 characters)")
	}
	return nil
}
