package gasapi

import (
	"context"
	"encoding/json"
	"fmt"
)

// manifestFileName is the fixed name of the project manifest file.
const manifestFileName = "appsscript"

// Library is one library dependency declared in the project manifest.
type Library struct {
	UserSymbol      string `json:"userSymbol"`
	LibraryID       string `json:"libraryId"`
	Version         string `json:"version"`
	DevelopmentMode bool   `json:"developmentMode,omitempty"`
}

// manifest models only the dependency section; every other manifest key
// is preserved verbatim across read-modify-write so library edits never
// clobber runtime or deployment settings.
type manifest struct {
	root map[string]json.RawMessage
}

func parseManifest(source string) (*manifest, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(source), &root); err != nil {
		return nil, fmt.Errorf("malformed manifest: %w", err)
	}
	if root == nil {
		root = make(map[string]json.RawMessage)
	}
	return &manifest{root: root}, nil
}

func (m *manifest) libraries() ([]Library, error) {
	raw, ok := m.root["dependencies"]
	if !ok {
		return nil, nil
	}
	var deps struct {
		Libraries []Library `json:"libraries"`
	}
	if err := json.Unmarshal(raw, &deps); err != nil {
		return nil, fmt.Errorf("malformed dependencies section: %w", err)
	}
	return deps.Libraries, nil
}

func (m *manifest) setLibraries(libs []Library) error {
	deps := make(map[string]json.RawMessage)
	if raw, ok := m.root["dependencies"]; ok {
		if err := json.Unmarshal(raw, &deps); err != nil {
			return fmt.Errorf("malformed dependencies section: %w", err)
		}
	}

	if len(libs) == 0 {
		delete(deps, "libraries")
	} else {
		encoded, err := json.Marshal(libs)
		if err != nil {
			return err
		}
		deps["libraries"] = encoded
	}

	if len(deps) == 0 {
		delete(m.root, "dependencies")
		return nil
	}
	encoded, err := json.Marshal(deps)
	if err != nil {
		return err
	}
	m.root["dependencies"] = encoded
	return nil
}

func (m *manifest) serialize() (string, error) {
	data, err := json.MarshalIndent(m.root, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListLibraries returns the library dependencies declared in the project
// manifest. A missing or malformed manifest yields an empty list, not an
// error.
func (c *Client) ListLibraries(ctx context.Context, scriptID string) ([]Library, error) {
	content, err := c.GetContent(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	source, ok := findManifest(content.Files)
	if !ok {
		return nil, nil
	}
	m, err := parseManifest(source)
	if err != nil {
		return nil, nil
	}
	libs, err := m.libraries()
	if err != nil {
		return nil, nil
	}
	return libs, nil
}

// AddLibrary declares a new library dependency. Fails with
// ErrManifestNotFound when the project has no manifest file.
func (c *Client) AddLibrary(ctx context.Context, scriptID string, lib Library) error {
	return c.mutateLibraries(ctx, scriptID, func(libs []Library) ([]Library, error) {
		for _, existing := range libs {
			if existing.UserSymbol == lib.UserSymbol {
				return nil, fmt.Errorf("library with symbol %q already declared", lib.UserSymbol)
			}
		}
		return append(libs, lib), nil
	})
}

// RemoveLibrary drops the library with the given user symbol.
func (c *Client) RemoveLibrary(ctx context.Context, scriptID, userSymbol string) error {
	return c.mutateLibraries(ctx, scriptID, func(libs []Library) ([]Library, error) {
		out := libs[:0]
		found := false
		for _, l := range libs {
			if l.UserSymbol == userSymbol {
				found = true
				continue
			}
			out = append(out, l)
		}
		if !found {
			return nil, fmt.Errorf("no library with symbol %q", userSymbol)
		}
		return out, nil
	})
}

// UpdateLibrary changes the pinned version (and development-mode flag) of
// an existing library dependency.
func (c *Client) UpdateLibrary(ctx context.Context, scriptID, userSymbol, version string, developmentMode bool) error {
	return c.mutateLibraries(ctx, scriptID, func(libs []Library) ([]Library, error) {
		for i := range libs {
			if libs[i].UserSymbol == userSymbol {
				libs[i].Version = version
				libs[i].DevelopmentMode = developmentMode
				return libs, nil
			}
		}
		return nil, fmt.Errorf("no library with symbol %q", userSymbol)
	})
}

// mutateLibraries runs a read-modify-write over the manifest's library
// list, with the same optimistic-concurrency check as file mutations.
func (c *Client) mutateLibraries(ctx context.Context, scriptID string, mutate func([]Library) ([]Library, error)) error {
	content, err := c.GetContent(ctx, scriptID)
	if err != nil {
		return err
	}

	source, ok := findManifest(content.Files)
	if !ok {
		return ErrManifestNotFound
	}
	m, err := parseManifest(source)
	if err != nil {
		return apiErr("parsing manifest", err)
	}
	libs, err := m.libraries()
	if err != nil {
		return apiErr("parsing manifest", err)
	}

	updated, err := mutate(libs)
	if err != nil {
		return err
	}
	if err := m.setLibraries(updated); err != nil {
		return apiErr("updating manifest", err)
	}
	serialized, err := m.serialize()
	if err != nil {
		return apiErr("serializing manifest", err)
	}

	files, err := mergeUpdate(content.Files, File{Name: manifestFileName, Type: "JSON", Source: serialized})
	if err != nil {
		return err
	}
	return c.writeChecked(ctx, scriptID, content.UpdateTime, files)
}

func findManifest(files []File) (string, bool) {
	for _, f := range files {
		if f.Name == manifestFileName {
			return f.Source, true
		}
	}
	return "", false
}
