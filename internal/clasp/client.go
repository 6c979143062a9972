// Package clasp shells out to the clasp CLI for local project workflows
// that the REST surface does not cover: cloning, pulling, pushing, and
// interactive login. Output parsing is line-pattern matching against
// clasp's current text format and is coupled to it; the parser reports an
// unknown format rather than silently dropping rows.
package clasp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/evert/apps-script-mcp-go/internal/testable"
)

// DefaultTimeout is the per-invocation timeout for non-interactive
// commands. Interactive commands (login) run without one.
const DefaultTimeout = 60 * time.Second

// DefaultBin is the clasp executable name resolved via PATH.
const DefaultBin = "clasp"

// Result is the outcome of one completed clasp invocation.
type Result struct {
	Success bool
	Stdout  string
	Stderr  string
	Command string
}

// Client invokes clasp as a subprocess in a working directory.
type Client struct {
	exec    testable.CommandExecutor
	bin     string
	workDir string
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithExecutor swaps the command executor, used by tests.
func WithExecutor(exec testable.CommandExecutor) Option {
	return func(c *Client) { c.exec = exec }
}

// WithBin sets the clasp executable path.
func WithBin(bin string) Option {
	return func(c *Client) { c.bin = bin }
}

// WithTimeout sets the per-invocation timeout for non-interactive
// commands.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a Client rooted at workDir.
func NewClient(workDir string, opts ...Option) *Client {
	c := &Client{
		exec:    testable.DefaultExecutor(),
		bin:     DefaultBin,
		workDir: workDir,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WorkDir returns the directory clasp commands run in.
func (c *Client) WorkDir() string { return c.workDir }

// run executes a command with captured stdio and the client timeout.
func (c *Client) run(ctx context.Context, name string, args ...string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := c.exec.CommandContext(ctx, name, args...)
	cmd.Dir = c.workDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	display := name + " " + strings.Join(args, " ")
	slog.Debug("running subprocess", "command", display, "dir", c.workDir)

	err := cmd.Run()
	result := &Result{
		Success: err == nil,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Command: display,
	}
	if err != nil {
		return result, subprocessErr(ctx, display, err, stderr.String())
	}
	return result, nil
}

// runInteractive executes a command with inherited stdio so the user can
// answer prompts. No timeout: the command completes when the user does.
func (c *Client) runInteractive(ctx context.Context, name string, args ...string) (*Result, error) {
	cmd := c.exec.CommandContext(ctx, name, args...)
	cmd.Dir = c.workDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	display := name + " " + strings.Join(args, " ")
	slog.Debug("running interactive subprocess", "command", display)

	err := cmd.Run()
	result := &Result{Success: err == nil, Command: display}
	if err != nil {
		return result, subprocessErr(ctx, display, err, "")
	}
	return result, nil
}

func subprocessErr(ctx context.Context, command string, err error, stderr string) error {
	serr := &SubprocessError{
		Command: command,
		Stderr:  strings.TrimSpace(stderr),
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		serr.TimedOut = true
		return serr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		serr.ExitCode = exitErr.ExitCode()
		return serr
	}
	return fmt.Errorf("%s: %w", command, err)
}

// Install installs clasp globally through npm with captured stdio.
func (c *Client) Install(ctx context.Context) (*Result, error) {
	return c.run(ctx, "npm", "install", "-g", "@google/clasp")
}

// Version reports the installed clasp version, or an error if the binary
// is missing from PATH.
func (c *Client) Version(ctx context.Context) (string, error) {
	if _, err := c.exec.LookPath(c.bin); err != nil {
		return "", fmt.Errorf("clasp not found in PATH (run setup_clasp first): %w", err)
	}
	result, err := c.run(ctx, c.bin, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

// Login hands the terminal to clasp for the interactive OAuth flow.
func (c *Client) Login(ctx context.Context) (*Result, error) {
	return c.runInteractive(ctx, c.bin, "login")
}

// Logout clears clasp's stored credentials.
func (c *Client) Logout(ctx context.Context) (*Result, error) {
	return c.run(ctx, c.bin, "logout")
}

// Create makes a new local project. scriptType is one of clasp's project
// types (standalone, docs, sheets, slides, forms, webapp, api).
func (c *Client) Create(ctx context.Context, title, scriptType string) (*Result, error) {
	args := []string{"create", "--title", title}
	if scriptType != "" {
		args = append(args, "--type", scriptType)
	}
	return c.run(ctx, c.bin, args...)
}

// Clone pulls down an existing remote project into the working directory.
func (c *Client) Clone(ctx context.Context, scriptID string) (*Result, error) {
	return c.run(ctx, c.bin, "clone", scriptID)
}

// Pull fetches remote files into the working directory. With env set, the
// environment's configuration is activated first.
func (c *Client) Pull(ctx context.Context, env string) (*Result, []string, error) {
	if err := c.UseEnvironment(env); err != nil {
		return nil, nil, err
	}
	result, err := c.run(ctx, c.bin, "pull")
	if err != nil {
		return result, nil, err
	}
	files, perr := ParsePullOutput(result.Stdout)
	if perr != nil {
		slog.Warn("unrecognized pull output", "error", perr)
	}
	return result, files, nil
}

// Push uploads local files to the remote project. With env set, the
// environment's configuration is activated first.
func (c *Client) Push(ctx context.Context, env string, force bool) (*Result, error) {
	if err := c.UseEnvironment(env); err != nil {
		return nil, err
	}
	args := []string{"push"}
	if force {
		args = append(args, "--force")
	}
	return c.run(ctx, c.bin, args...)
}

// Deploy pushes local files and creates a deployment in one step.
func (c *Client) Deploy(ctx context.Context, env, description string) (*Result, error) {
	if _, err := c.Push(ctx, env, true); err != nil {
		return nil, err
	}
	args := []string{"deploy"}
	if description != "" {
		args = append(args, "--description", description)
	}
	return c.run(ctx, c.bin, args...)
}

// Status reports which local files clasp would push or ignore.
func (c *Client) Status(ctx context.Context) (*Result, error) {
	return c.run(ctx, c.bin, "status")
}

// List enumerates the projects the logged-in clasp account can see.
func (c *Client) List(ctx context.Context) (*ListResult, error) {
	result, err := c.run(ctx, c.bin, "list")
	if err != nil {
		return nil, err
	}
	return ParseProjectList(result.Stdout), nil
}
