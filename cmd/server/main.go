package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/apps-script-mcp-go/internal/auth"
	"github.com/evert/apps-script-mcp-go/internal/clasp"
	"github.com/evert/apps-script-mcp-go/internal/config"
	"github.com/evert/apps-script-mcp-go/internal/gasapi"
	"github.com/evert/apps-script-mcp-go/internal/middleware"
	"github.com/evert/apps-script-mcp-go/internal/pkg/crypto"
	"github.com/evert/apps-script-mcp-go/internal/properties"
	"github.com/evert/apps-script-mcp-go/internal/registry"
	"github.com/evert/apps-script-mcp-go/internal/scriptrpc"
	"github.com/evert/apps-script-mcp-go/internal/services"
	"github.com/evert/apps-script-mcp-go/internal/tools"
	"github.com/evert/apps-script-mcp-go/internal/triggers"
)

func main() {
	// Structured logging to stderr (stdout is reserved for MCP stdio transport)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := run(ctx, logger); err != nil {
		cancel()
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
	cancel()
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Set log level from config
	switch cfg.LogLevel {
	case "debug":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	case "warn":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	case "error":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	}

	tokenStore, err := auth.NewFileTokenStore(cfg.Auth.TokenDir)
	if err != nil {
		return fmt.Errorf("initializing token store: %w", err)
	}

	authenticator := auth.New(auth.Options{
		ServiceAccountKey:     cfg.Auth.ServiceAccountKey,
		ServiceAccountKeyFile: cfg.Auth.ServiceAccountKeyFile,
		OAuthClientFile:       cfg.Auth.OAuthClientFile,
		Scopes:                auth.Scopes(cfg.ReadOnly),
		TokenStore:            tokenStore,
	})

	// Authenticate eagerly when credentials are already available; an
	// OAuth flow that still needs the browser round trip is not fatal.
	if err := authenticator.Authenticate(ctx); err != nil {
		slog.Info("not yet authenticated — start_google_auth will begin the flow", "error", err)
	}

	cipher, err := buildCipher(cfg.EncryptionKey)
	if err != nil {
		return err
	}

	factory := services.NewFactory(authenticator)
	api := gasapi.NewClient(factory)
	runner := scriptrpc.NewRunner(api)

	deps := &tools.Deps{
		API:        api,
		Runner:     runner,
		Properties: properties.NewManager(runner, cipher),
		Triggers:   triggers.NewManager(runner),
		Clasp: clasp.NewClient(cfg.Clasp.WorkDir,
			clasp.WithBin(cfg.Clasp.Bin),
			clasp.WithTimeout(cfg.Clasp.Timeout),
		),
		Auth:    authenticator,
		Factory: factory,
	}

	// Load tier config — try absolute path (container) then relative (local dev)
	tierConfigPath := "/configs/tool_tiers.yaml"
	if _, statErr := os.Stat(tierConfigPath); statErr != nil {
		tierConfigPath = filepath.Join("configs", "tool_tiers.yaml")
	}
	tierMap, err := config.LoadTiers(tierConfigPath)
	if err != nil {
		slog.Warn("could not load tier config — all tools will be registered unfiltered",
			"path", tierConfigPath,
			"error", err,
		)
		tierMap = make(map[string]config.ToolInfo)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "apps-script-mcp",
		Version: "1.0.0",
	}, nil)

	server.AddReceivingMiddleware(
		middleware.LoggingMiddleware(logger),
		middleware.AuthEnhancerMiddleware(authenticator),
	)

	registry.RegisterAll(server, deps, cfg, tierMap)

	slog.Info("starting Apps Script MCP server",
		"transport", cfg.Server.Transport,
		"tier", cfg.ToolTier,
		"readOnly", cfg.ReadOnly,
	)

	switch cfg.Server.Transport {
	case "stdio":
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
			return fmt.Errorf("stdio server error: %w", err)
		}

	case "streamable-http":
		mcpHandler := mcp.NewStreamableHTTPHandler(
			func(r *http.Request) *mcp.Server { return server },
			nil,
		)

		// Use a mux to route /oauth/callback separately from MCP
		mux := http.NewServeMux()
		mux.Handle("/mcp", mcpHandler)
		mux.HandleFunc("/oauth/callback", auth.OAuthCallbackHandler(authenticator, factory))

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		httpServer := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			slog.Info("shutting down HTTP server")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP server shutdown error", "error", err)
			}
		}()

		slog.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}

	default:
		return fmt.Errorf("unknown transport %q — use 'stdio' or 'streamable-http'", cfg.Server.Transport)
	}

	return nil
}

// buildCipher resolves the property encryption key. With no configured key
// a random per-process key is generated and logged once so operators can
// pin it for future runs.
func buildCipher(hexKey string) (*crypto.Cipher, error) {
	if hexKey != "" {
		raw, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("GAS_ENCRYPTION_KEY is not valid hex: %w", err)
		}
		return crypto.NewCipher(raw)
	}

	raw, err := crypto.NewRandomKey()
	if err != nil {
		return nil, fmt.Errorf("generating encryption key: %w", err)
	}
	slog.Warn("GAS_ENCRYPTION_KEY not set — generated a per-process key; values encrypted now cannot be decrypted after restart unless you pin it",
		"key", hex.EncodeToString(raw),
	)
	return crypto.NewCipher(raw)
}
