// Package config loads server configuration from environment variables
// and CLI flags. Flags take precedence over the environment.
package config

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Auth struct {
		// ServiceAccountKey is an inline service account key JSON. Takes
		// precedence over ServiceAccountKeyFile, which takes precedence
		// over the OAuth client file, which takes precedence over
		// application-default credentials.
		ServiceAccountKey     string
		ServiceAccountKeyFile string
		OAuthClientFile       string
		TokenDir              string
	}
	// EncryptionKey is the hex-encoded 32-byte key for property
	// encryption. Empty means a random per-process key is generated and
	// logged once.
	EncryptionKey string
	Clasp         struct {
		Bin     string
		WorkDir string
		Timeout time.Duration
	}
	Server struct {
		Transport string
		Port      int
		Host      string
		BaseURI   string
	}
	ToolTier      string
	EnabledGroups []string
	ReadOnly      bool
	LogLevel      string
}

// FromEnv reads configuration from environment variables only. Load adds
// CLI flag handling on top; tests use FromEnv directly.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	cfg.Auth.ServiceAccountKey = os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY")
	cfg.Auth.ServiceAccountKeyFile = os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY_FILE")
	cfg.Auth.OAuthClientFile = os.Getenv("GOOGLE_OAUTH_CLIENT_FILE")

	cfg.Auth.TokenDir = os.Getenv("GAS_MCP_TOKEN_DIR")
	if cfg.Auth.TokenDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfg.Auth.TokenDir = filepath.Join(home, ".gas-mcp", "tokens")
	}

	cfg.EncryptionKey = os.Getenv("GAS_ENCRYPTION_KEY")
	if cfg.EncryptionKey != "" {
		raw, err := hex.DecodeString(cfg.EncryptionKey)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("GAS_ENCRYPTION_KEY must be 64 hex characters (32 bytes)")
		}
	}

	cfg.Clasp.Bin = envOrDefault("CLASP_BIN", "clasp")
	cfg.Clasp.WorkDir = os.Getenv("CLASP_WORK_DIR")
	if cfg.Clasp.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working directory: %w", err)
		}
		cfg.Clasp.WorkDir = wd
	}
	timeoutStr := envOrDefault("CLASP_TIMEOUT_SECONDS", "60")
	timeoutSec, err := strconv.Atoi(timeoutStr)
	if err != nil || timeoutSec <= 0 {
		return nil, fmt.Errorf("invalid CLASP_TIMEOUT_SECONDS %q", timeoutStr)
	}
	cfg.Clasp.Timeout = time.Duration(timeoutSec) * time.Second

	cfg.Server.Host = envOrDefault("GAS_MCP_HOST", "0.0.0.0")
	cfg.Server.BaseURI = envOrDefault("GAS_MCP_BASE_URI", "http://localhost")
	cfg.Server.Transport = envOrDefault("MCP_TRANSPORT", "stdio")
	cfg.LogLevel = envOrDefault("LOG_LEVEL", "info")
	cfg.ToolTier = envOrDefault("TOOL_TIER", "complete")
	cfg.ReadOnly = envBool("GAS_MCP_READ_ONLY")

	if groups := os.Getenv("ENABLED_TOOL_GROUPS"); groups != "" {
		cfg.EnabledGroups = splitList(groups)
	}

	portStr := os.Getenv("MCP_PORT")
	if portStr == "" {
		portStr = os.Getenv("PORT")
	}
	if portStr == "" {
		portStr = "8000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	cfg.Server.Port = port

	return cfg, nil
}

// Load reads configuration from environment variables and CLI flags.
// CLI flags take precedence over environment variables.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	flag.StringVar(&cfg.Server.Transport, "transport", cfg.Server.Transport, "Transport mode: stdio or streamable-http")
	var toolsFlag string
	flag.StringVar(&toolsFlag, "tools", "", "Tool groups to enable (comma-separated): project,files,execution,deployment,trigger,logs,library,property,clasp,auth")
	flag.StringVar(&cfg.ToolTier, "tool-tier", cfg.ToolTier, "Load tools by tier: core, extended, or complete")
	flag.BoolVar(&cfg.ReadOnly, "read-only", cfg.ReadOnly, "Request only read-only scopes, disable write tools")
	flag.StringVar(&cfg.Clasp.WorkDir, "clasp-workdir", cfg.Clasp.WorkDir, "Directory clasp commands run in")
	flag.Parse()

	// The --tools flag overrides (not appends to) ENABLED_TOOL_GROUPS.
	if toolsFlag != "" {
		cfg.EnabledGroups = splitList(toolsFlag)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}
