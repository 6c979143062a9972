package gasapi

import (
	"context"
	"fmt"
)

// File-level mutations are full read-modify-write sequences: the API has
// no partial update. Each mutation captures the project update timestamp
// at read time and re-checks it immediately before the write; a mismatch
// fails with ErrConflict instead of silently overwriting a concurrent
// writer's changes.

// CreateFile appends a file to the project. Fails with ErrFileExists when
// the name is already taken.
func (c *Client) CreateFile(ctx context.Context, scriptID string, file File) error {
	content, err := c.GetContent(ctx, scriptID)
	if err != nil {
		return err
	}

	files, err := mergeCreate(content.Files, file)
	if err != nil {
		return err
	}
	return c.writeChecked(ctx, scriptID, content.UpdateTime, files)
}

// UpdateFile replaces the source (and optionally type) of the named file.
// Fails with ErrFileNotFound without mutating remote state when no file
// matches.
func (c *Client) UpdateFile(ctx context.Context, scriptID string, file File) error {
	content, err := c.GetContent(ctx, scriptID)
	if err != nil {
		return err
	}

	files, err := mergeUpdate(content.Files, file)
	if err != nil {
		return err
	}
	return c.writeChecked(ctx, scriptID, content.UpdateTime, files)
}

// DeleteFile removes the named file from the project.
func (c *Client) DeleteFile(ctx context.Context, scriptID, name string) error {
	content, err := c.GetContent(ctx, scriptID)
	if err != nil {
		return err
	}

	files, err := mergeDelete(content.Files, name)
	if err != nil {
		return err
	}
	return c.writeChecked(ctx, scriptID, content.UpdateTime, files)
}

// GetFile returns a single file from the project by name.
func (c *Client) GetFile(ctx context.Context, scriptID, name string) (*File, error) {
	content, err := c.GetContent(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	for i := range content.Files {
		if content.Files[i].Name == name {
			return &content.Files[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrFileNotFound, name)
}

// writeChecked verifies the optimistic-concurrency token against current
// project metadata, then writes the full collection. The check narrows
// the race window; it cannot eliminate it, since the API offers no
// conditional write.
func (c *Client) writeChecked(ctx context.Context, scriptID, readUpdateTime string, files []File) error {
	current, err := c.GetProject(ctx, scriptID)
	if err != nil {
		return err
	}
	if readUpdateTime != "" && current.UpdateTime != readUpdateTime {
		return fmt.Errorf("%w (read at %s, now %s)", ErrConflict, readUpdateTime, current.UpdateTime)
	}
	return c.UpdateContent(ctx, scriptID, files)
}

// mergeCreate appends file, enforcing name uniqueness by linear scan.
func mergeCreate(files []File, file File) ([]File, error) {
	for _, f := range files {
		if f.Name == file.Name {
			return nil, fmt.Errorf("%w: %q", ErrFileExists, file.Name)
		}
	}
	out := make([]File, len(files), len(files)+1)
	copy(out, files)
	return append(out, file), nil
}

// mergeUpdate replaces the matching file's source and type, leaving the
// rest of the collection untouched.
func mergeUpdate(files []File, file File) ([]File, error) {
	out := make([]File, len(files))
	copy(out, files)
	for i := range out {
		if out[i].Name == file.Name {
			out[i].Source = file.Source
			if file.Type != "" {
				out[i].Type = file.Type
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrFileNotFound, file.Name)
}

// mergeDelete filters out the named file.
func mergeDelete(files []File, name string) ([]File, error) {
	out := make([]File, 0, len(files))
	found := false
	for _, f := range files {
		if f.Name == name {
			found = true
			continue
		}
		out = append(out, f)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}
	return out, nil
}
