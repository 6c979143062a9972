package clasp

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	activeConfig = ".clasp.json"
	backupConfig = ".clasp.json.backup"
)

// envConfig returns the file name holding env's configuration, e.g.
// .clasp.production.json.
func envConfig(env string) string {
	return fmt.Sprintf(".clasp.%s.json", env)
}

// UseEnvironment activates a named environment by copying its
// configuration file over the active one. The previous active file is
// backed up first, best-effort. An empty env leaves the active
// configuration alone. A missing environment file fails with
// ConfigNotFoundError before any subprocess runs.
func (c *Client) UseEnvironment(env string) error {
	if env == "" {
		return nil
	}

	src := filepath.Join(c.workDir, envConfig(env))
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return &ConfigNotFoundError{Environment: env, Path: src}
		}
		return fmt.Errorf("reading %s: %w", src, err)
	}

	active := filepath.Join(c.workDir, activeConfig)
	if current, err := os.ReadFile(active); err == nil {
		// Best-effort backup of whatever was active before the switch.
		_ = os.WriteFile(filepath.Join(c.workDir, backupConfig), current, 0o644)
	}

	if err := os.WriteFile(active, data, 0o644); err != nil {
		return fmt.Errorf("activating environment %q: %w", env, err)
	}
	return nil
}
