package gasapi

import (
	"context"

	drivepb "google.golang.org/api/drive/v3"
	scriptpb "google.golang.org/api/script/v1"
)

// Project is the normalized project metadata.
type Project struct {
	ScriptID   string
	Title      string
	CreateTime string
	UpdateTime string
	ParentID   string
	Creator    string
}

// File is one source file in a project's content collection.
// Type is SERVER_JS, HTML, or JSON.
type File struct {
	Name       string
	Type       string
	Source     string
	CreateTime string
	UpdateTime string
}

// Content is a project's full file collection plus the project update
// timestamp captured at read time, used as the optimistic-concurrency
// token for read-modify-write mutations.
type Content struct {
	ScriptID   string
	Files      []File
	UpdateTime string
}

// CreateProject creates a new Apps Script project, optionally bound to a
// Drive parent (Doc, Sheet, Slide, or Form).
func (c *Client) CreateProject(ctx context.Context, title, parentID string) (*Project, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, err
	}

	created, err := srv.Projects.Create(&scriptpb.CreateProjectRequest{
		Title:    title,
		ParentId: parentID,
	}).Context(ctx).Do()
	if err != nil {
		return nil, apiErr("creating project", err)
	}
	return projectFromAPI(created), nil
}

// GetProject fetches project metadata.
func (c *Client) GetProject(ctx context.Context, scriptID string) (*Project, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, err
	}

	project, err := srv.Projects.Get(scriptID).Context(ctx).Do()
	if err != nil {
		return nil, apiErr("getting project", err)
	}
	return projectFromAPI(project), nil
}

// ListProjects searches Drive for Apps Script files, most recently
// modified first.
func (c *Client) ListProjects(ctx context.Context, pageSize int, pageToken string) ([]Project, string, error) {
	srv, err := c.factory.Drive(ctx)
	if err != nil {
		return nil, "", err
	}

	if pageSize <= 0 {
		pageSize = 20
	}
	call := srv.Files.List().
		Q("mimeType='application/vnd.google-apps.script' and trashed=false").
		Fields("files(id, name, createdTime, modifiedTime, parents), nextPageToken").
		PageSize(int64(pageSize)).
		OrderBy("modifiedTime desc").
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	result, err := call.Do()
	if err != nil {
		return nil, "", apiErr("listing projects", err)
	}

	projects := make([]Project, 0, len(result.Files))
	for _, f := range result.Files {
		p := Project{
			ScriptID:   f.Id,
			Title:      f.Name,
			CreateTime: f.CreatedTime,
			UpdateTime: f.ModifiedTime,
		}
		if len(f.Parents) > 0 {
			p.ParentID = f.Parents[0]
		}
		projects = append(projects, p)
	}
	return projects, result.NextPageToken, nil
}

// DeleteProject moves the project's Drive file to trash. Apps Script has
// no delete endpoint of its own.
func (c *Client) DeleteProject(ctx context.Context, scriptID string) error {
	srv, err := c.factory.Drive(ctx)
	if err != nil {
		return err
	}

	_, err = srv.Files.Update(scriptID, &drivepb.File{Trashed: true}).Context(ctx).Do()
	if err != nil {
		return apiErr("deleting project", err)
	}
	return nil
}

// GetContent fetches the project's file collection along with the project
// update timestamp for optimistic-concurrency checks.
func (c *Client) GetContent(ctx context.Context, scriptID string) (*Content, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, err
	}

	content, err := srv.Projects.GetContent(scriptID).Context(ctx).Do()
	if err != nil {
		return nil, apiErr("getting content", err)
	}

	meta, err := srv.Projects.Get(scriptID).Context(ctx).Do()
	if err != nil {
		return nil, apiErr("getting project metadata", err)
	}

	files := make([]File, 0, len(content.Files))
	for _, f := range content.Files {
		files = append(files, File{
			Name:       f.Name,
			Type:       f.Type,
			Source:     f.Source,
			CreateTime: f.CreateTime,
			UpdateTime: f.UpdateTime,
		})
	}
	return &Content{ScriptID: content.ScriptId, Files: files, UpdateTime: meta.UpdateTime}, nil
}

// UpdateContent replaces the project's entire file collection.
func (c *Client) UpdateContent(ctx context.Context, scriptID string, files []File) error {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return err
	}

	apiFiles := make([]*scriptpb.File, 0, len(files))
	for _, f := range files {
		apiFiles = append(apiFiles, &scriptpb.File{
			Name:   f.Name,
			Type:   f.Type,
			Source: f.Source,
		})
	}

	_, err = srv.Projects.UpdateContent(scriptID, &scriptpb.Content{
		ScriptId: scriptID,
		Files:    apiFiles,
	}).Context(ctx).Do()
	if err != nil {
		return apiErr("updating content", err)
	}
	return nil
}

func projectFromAPI(p *scriptpb.Project) *Project {
	out := &Project{
		ScriptID:   p.ScriptId,
		Title:      p.Title,
		CreateTime: p.CreateTime,
		UpdateTime: p.UpdateTime,
		ParentID:   p.ParentId,
	}
	if p.Creator != nil {
		out.Creator = p.Creator.Email
	}
	return out
}
