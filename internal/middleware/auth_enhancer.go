package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// authErrorMarkers are substrings that identify auth-related tool errors.
var authErrorMarkers = []string{
	"start_google_auth",
	"not authenticated",
	"authentication expired",
}

// AuthURLProvider yields the OAuth authorization URL, or "" when the
// server is not configured for the OAuth strategy.
type AuthURLProvider interface {
	AuthURL() string
}

// AuthEnhancerMiddleware returns MCP SDK middleware that detects
// auth-related tool errors and appends the OAuth authorization URL so the
// user can authenticate without an extra round-trip.
func AuthEnhancerMiddleware(provider AuthURLProvider) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			result, err := next(ctx, method, req)

			// Only enhance tools/call responses.
			if method != "tools/call" {
				return result, err
			}

			toolResult, ok := result.(*mcp.CallToolResult)
			if !ok || !toolResult.IsError || len(toolResult.Content) == 0 {
				return result, err
			}

			textContent, ok := toolResult.Content[0].(*mcp.TextContent)
			if !ok {
				return result, err
			}

			if !isAuthRelatedError(textContent.Text) {
				return result, err
			}

			authURL := provider.AuthURL()
			if authURL == "" {
				return result, err
			}

			textContent.Text = fmt.Sprintf(
				"%s\n\nPlease authenticate by visiting this URL:\n%s\n\nThen pass the authorization code to complete_google_auth.",
				textContent.Text, authURL,
			)

			return result, err
		}
	}
}

// isAuthRelatedError returns true if the text contains any auth-error
// marker.
func isAuthRelatedError(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range authErrorMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
