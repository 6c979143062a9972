package properties

import (
	"encoding/json"
	"fmt"
)

// snippetFunction is the entry point every generated snippet exposes.
const snippetFunction = "mcpPropertyOp"

// jsLiteral renders a Go string as a JavaScript string literal. JSON string
// encoding is a valid JS literal and handles quoting and escapes.
func jsLiteral(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func getPropertySnippet(key string) string {
	return fmt.Sprintf(`function %s() {
  return PropertiesService.getScriptProperties().getProperty(%s);
}`, snippetFunction, jsLiteral(key))
}

func setPropertySnippet(key, value string) string {
	return fmt.Sprintf(`function %s() {
  PropertiesService.getScriptProperties().setProperty(%s, %s);
  return true;
}`, snippetFunction, jsLiteral(key), jsLiteral(value))
}

func deletePropertySnippet(key string) string {
	return fmt.Sprintf(`function %s() {
  var props = PropertiesService.getScriptProperties();
  var existed = props.getProperty(%s) !== null;
  props.deleteProperty(%s);
  return existed;
}`, snippetFunction, jsLiteral(key), jsLiteral(key))
}

func getAllPropertiesSnippet() string {
	return fmt.Sprintf(`function %s() {
  return PropertiesService.getScriptProperties().getProperties();
}`, snippetFunction)
}
