package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type staticURLProvider string

func (p staticURLProvider) AuthURL() string { return string(p) }

func fakeToolRequest() mcp.Request {
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      "list_projects",
			Arguments: json.RawMessage(`{}`),
		},
	}
}

func toolError(text string) mcp.MethodHandler {
	return func(_ context.Context, _ string, _ mcp.Request) (mcp.Result, error) {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	}
}

func TestAuthEnhancerAppendsURL(t *testing.T) {
	mw := AuthEnhancerMiddleware(staticURLProvider("https://accounts.google.com/o/oauth2/auth?client_id=x"))
	errText := "not authenticated — call start_google_auth first"
	handler := mw(toolError(errText))

	result, err := handler(context.Background(), "tools/call", fakeToolRequest())
	if err != nil {
		t.Fatal(err)
	}
	text := result.(*mcp.CallToolResult).Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, errText) {
		t.Errorf("original error text missing: %s", text)
	}
	if !strings.Contains(text, "accounts.google.com") {
		t.Errorf("auth URL missing: %s", text)
	}
	if !strings.Contains(text, "complete_google_auth") {
		t.Errorf("completion guidance missing: %s", text)
	}
}

func TestAuthEnhancerIgnoresUnrelatedErrors(t *testing.T) {
	mw := AuthEnhancerMiddleware(staticURLProvider("https://example.com/auth"))
	errText := "script not found"
	handler := mw(toolError(errText))

	result, err := handler(context.Background(), "tools/call", fakeToolRequest())
	if err != nil {
		t.Fatal(err)
	}
	text := result.(*mcp.CallToolResult).Content[0].(*mcp.TextContent).Text
	if text != errText {
		t.Errorf("unrelated error was modified: %s", text)
	}
}

func TestAuthEnhancerIgnoresSuccess(t *testing.T) {
	mw := AuthEnhancerMiddleware(staticURLProvider("https://example.com/auth"))
	okText := "3 projects found"
	handler := mw(func(_ context.Context, _ string, _ mcp.Request) (mcp.Result, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: okText}},
		}, nil
	})

	result, err := handler(context.Background(), "tools/call", fakeToolRequest())
	if err != nil {
		t.Fatal(err)
	}
	text := result.(*mcp.CallToolResult).Content[0].(*mcp.TextContent).Text
	if text != okText {
		t.Errorf("success result was modified: %s", text)
	}
}

func TestAuthEnhancerIgnoresOtherMethods(t *testing.T) {
	mw := AuthEnhancerMiddleware(staticURLProvider("https://example.com/auth"))
	errText := "not authenticated"
	handler := mw(toolError(errText))

	result, err := handler(context.Background(), "tools/list", fakeToolRequest())
	if err != nil {
		t.Fatal(err)
	}
	text := result.(*mcp.CallToolResult).Content[0].(*mcp.TextContent).Text
	if text != errText {
		t.Errorf("non-tools/call result was modified: %s", text)
	}
}

func TestAuthEnhancerNoURLConfigured(t *testing.T) {
	mw := AuthEnhancerMiddleware(staticURLProvider(""))
	errText := "not authenticated"
	handler := mw(toolError(errText))

	result, err := handler(context.Background(), "tools/call", fakeToolRequest())
	if err != nil {
		t.Fatal(err)
	}
	text := result.(*mcp.CallToolResult).Content[0].(*mcp.TextContent).Text
	if text != errText {
		t.Errorf("error modified despite no URL: %s", text)
	}
}
