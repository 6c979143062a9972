package clasp

import "fmt"

// SubprocessError reports a failed or timed-out clasp invocation.
type SubprocessError struct {
	Command  string
	ExitCode int
	Stderr   string
	TimedOut bool
}

func (e *SubprocessError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s: timed out", e.Command)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s: exit %d", e.Command, e.ExitCode)
}

// ConfigNotFoundError reports a missing environment-specific configuration
// file. It fires before any subprocess is spawned.
type ConfigNotFoundError struct {
	Environment string
	Path        string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("no configuration for environment %q: %s does not exist", e.Environment, e.Path)
}
