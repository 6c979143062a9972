// Package auth implements the Google authentication tools.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	iauth "github.com/evert/apps-script-mcp-go/internal/auth"
	"github.com/evert/apps-script-mcp-go/internal/pkg/ptr"
	"github.com/evert/apps-script-mcp-go/internal/pkg/response"
	"github.com/evert/apps-script-mcp-go/internal/tools"
)

var serviceIcons = []mcp.Icon{{
	Source:   "https://www.gstatic.com/images/branding/product/1x/apps_script_48dp.png",
	MIMEType: "image/png",
	Sizes:    []string{"48x48"},
}}

// Register registers the authentication tools with the MCP server.
func Register(server *mcp.Server, deps *tools.Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "start_google_auth",
		Icons:       serviceIcons,
		Description: "Start Google authentication. With OAuth configured this returns an authorization URL to open in a browser.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Start Google Auth",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createStartAuthHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_google_auth",
		Icons:       serviceIcons,
		Description: "Complete the OAuth flow by exchanging the authorization code from the browser.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Complete Google Auth",
			OpenWorldHint: ptr.Bool(true),
		},
	}, createCompleteAuthHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "auth_status",
		Icons:       serviceIcons,
		Description: "Report whether the server holds valid Google credentials and which strategy produced them.",
		Annotations: &mcp.ToolAnnotations{
			Title:        "Auth Status",
			ReadOnlyHint: true,
		},
	}, createStatusHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reset_auth",
		Icons:       serviceIcons,
		Description: "Discard the current credentials so the next call re-authenticates from scratch.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Reset Auth",
			DestructiveHint: ptr.Bool(true),
			IdempotentHint:  true,
		},
	}, createResetHandler(deps))
}

// --- start_google_auth ---

type StartAuthInput struct{}

type StartAuthOutput struct {
	Authenticated bool   `json:"authenticated"`
	Strategy      string `json:"strategy,omitempty"`
	AuthURL       string `json:"auth_url,omitempty"`
}

func createStartAuthHandler(deps *tools.Deps) mcp.ToolHandlerFor[StartAuthInput, StartAuthOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StartAuthInput) (*mcp.CallToolResult, StartAuthOutput, error) {
		err := deps.Auth.Authenticate(ctx)
		if err == nil {
			deps.Factory.InvalidateClients()

			rb := response.New()
			rb.Header("Authenticated")
			rb.KeyValue("Strategy", string(deps.Auth.Strategy()))

			out := StartAuthOutput{Authenticated: true, Strategy: string(deps.Auth.Strategy())}
			return rb.TextResult(), out, nil
		}

		// An OAuth strategy with no cached token is the expected first-run
		// path, not a failure: hand back the authorization URL.
		var authErr *iauth.AuthError
		if errors.As(err, &authErr) && authErr.AuthURL != "" {
			rb := response.New()
			rb.Header("Authorization Required")
			rb.Line("Open this URL in a browser and approve access:")
			rb.Blank()
			rb.Line("%s", authErr.AuthURL)
			rb.Blank()
			rb.Line("Then pass the authorization code to complete_google_auth.")

			out := StartAuthOutput{AuthURL: authErr.AuthURL}
			return rb.TextResult(), out, nil
		}

		return nil, StartAuthOutput{}, fmt.Errorf("authentication failed: %w", err)
	}
}

// --- complete_google_auth ---

type CompleteAuthInput struct {
	Code string `json:"code" jsonschema:"required" jsonschema_description:"Authorization code from the browser consent screen"`
}

func createCompleteAuthHandler(deps *tools.Deps) mcp.ToolHandlerFor[CompleteAuthInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CompleteAuthInput) (*mcp.CallToolResult, any, error) {
		code := strings.TrimSpace(input.Code)
		if code == "" {
			return nil, nil, fmt.Errorf("authorization code is required — run start_google_auth to get the authorization URL")
		}

		if err := deps.Auth.CompleteOAuth(ctx, code); err != nil {
			return nil, nil, fmt.Errorf("completing authentication: %w", err)
		}
		deps.Factory.InvalidateClients()

		rb := response.New()
		rb.Header("Authentication Complete")
		rb.Line("The token is cached; future restarts will reuse it.")

		return rb.TextResult(), nil, nil
	}
}

// --- auth_status ---

type StatusInput struct{}

type StatusOutput struct {
	Authenticated bool   `json:"authenticated"`
	Strategy      string `json:"strategy"`
}

func createStatusHandler(deps *tools.Deps) mcp.ToolHandlerFor[StatusInput, StatusOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
		out := StatusOutput{
			Authenticated: deps.Auth.IsAuthenticated(),
			Strategy:      string(deps.Auth.Strategy()),
		}

		rb := response.New()
		rb.Header("Authentication Status")
		rb.KeyValue("Authenticated", out.Authenticated)
		rb.KeyValue("Strategy", out.Strategy)
		if !out.Authenticated {
			rb.Blank()
			rb.Line("Run start_google_auth to authenticate.")
		}

		return rb.TextResult(), out, nil
	}
}

// --- reset_auth ---

type ResetInput struct{}

func createResetHandler(deps *tools.Deps) mcp.ToolHandlerFor[ResetInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ResetInput) (*mcp.CallToolResult, any, error) {
		deps.Auth.Reset()
		deps.Factory.InvalidateClients()

		rb := response.New()
		rb.Header("Credentials Cleared")
		rb.Line("Run start_google_auth to authenticate again.")

		return rb.TextResult(), nil, nil
	}
}
