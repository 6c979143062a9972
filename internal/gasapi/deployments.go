package gasapi

import (
	"context"

	scriptpb "google.golang.org/api/script/v1"
)

// Deployment is the normalized deployment record.
type Deployment struct {
	DeploymentID string
	Description  string
	Version      int64
	UpdateTime   string
	WebAppURL    string
}

// Version is an immutable project version.
type Version struct {
	VersionNumber int64
	Description   string
	CreateTime    string
}

// CreateDeployment deploys the given version (HEAD when versionNumber is 0).
func (c *Client) CreateDeployment(ctx context.Context, scriptID string, versionNumber int64, description string) (*Deployment, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &scriptpb.DeploymentConfig{Description: description}
	if versionNumber > 0 {
		cfg.VersionNumber = versionNumber
	}

	created, err := srv.Projects.Deployments.Create(scriptID, cfg).Context(ctx).Do()
	if err != nil {
		return nil, apiErr("creating deployment", err)
	}
	return deploymentFromAPI(created), nil
}

// ListDeployments lists the project's deployments.
func (c *Client) ListDeployments(ctx context.Context, scriptID string, pageSize int, pageToken string) ([]Deployment, string, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, "", err
	}

	if pageSize <= 0 {
		pageSize = 20
	}
	call := srv.Projects.Deployments.List(scriptID).
		PageSize(int64(pageSize)).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	result, err := call.Do()
	if err != nil {
		return nil, "", apiErr("listing deployments", err)
	}

	deployments := make([]Deployment, 0, len(result.Deployments))
	for _, d := range result.Deployments {
		deployments = append(deployments, *deploymentFromAPI(d))
	}
	return deployments, result.NextPageToken, nil
}

// GetDeployment fetches one deployment.
func (c *Client) GetDeployment(ctx context.Context, scriptID, deploymentID string) (*Deployment, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, err
	}

	d, err := srv.Projects.Deployments.Get(scriptID, deploymentID).Context(ctx).Do()
	if err != nil {
		return nil, apiErr("getting deployment", err)
	}
	return deploymentFromAPI(d), nil
}

// UpdateDeployment repoints a deployment at a different version or
// description.
func (c *Client) UpdateDeployment(ctx context.Context, scriptID, deploymentID string, versionNumber int64, description string) (*Deployment, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, err
	}

	req := &scriptpb.UpdateDeploymentRequest{
		DeploymentConfig: &scriptpb.DeploymentConfig{Description: description},
	}
	if versionNumber > 0 {
		req.DeploymentConfig.VersionNumber = versionNumber
	}

	updated, err := srv.Projects.Deployments.Update(scriptID, deploymentID, req).Context(ctx).Do()
	if err != nil {
		return nil, apiErr("updating deployment", err)
	}
	return deploymentFromAPI(updated), nil
}

// DeleteDeployment removes a deployment.
func (c *Client) DeleteDeployment(ctx context.Context, scriptID, deploymentID string) error {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return err
	}

	_, err = srv.Projects.Deployments.Delete(scriptID, deploymentID).Context(ctx).Do()
	if err != nil {
		return apiErr("deleting deployment", err)
	}
	return nil
}

// CreateVersion snapshots the project as a new immutable version.
func (c *Client) CreateVersion(ctx context.Context, scriptID, description string) (*Version, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, err
	}

	created, err := srv.Projects.Versions.Create(scriptID, &scriptpb.Version{
		Description: description,
	}).Context(ctx).Do()
	if err != nil {
		return nil, apiErr("creating version", err)
	}
	return &Version{
		VersionNumber: created.VersionNumber,
		Description:   created.Description,
		CreateTime:    created.CreateTime,
	}, nil
}

// ListVersions lists the project's versions.
func (c *Client) ListVersions(ctx context.Context, scriptID string, pageSize int, pageToken string) ([]Version, string, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, "", err
	}

	if pageSize <= 0 {
		pageSize = 20
	}
	call := srv.Projects.Versions.List(scriptID).
		PageSize(int64(pageSize)).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	result, err := call.Do()
	if err != nil {
		return nil, "", apiErr("listing versions", err)
	}

	versions := make([]Version, 0, len(result.Versions))
	for _, v := range result.Versions {
		versions = append(versions, Version{
			VersionNumber: v.VersionNumber,
			Description:   v.Description,
			CreateTime:    v.CreateTime,
		})
	}
	return versions, result.NextPageToken, nil
}

// GetVersion fetches one version.
func (c *Client) GetVersion(ctx context.Context, scriptID string, versionNumber int64) (*Version, error) {
	srv, err := c.factory.Script(ctx)
	if err != nil {
		return nil, err
	}

	v, err := srv.Projects.Versions.Get(scriptID, versionNumber).Context(ctx).Do()
	if err != nil {
		return nil, apiErr("getting version", err)
	}
	return &Version{
		VersionNumber: v.VersionNumber,
		Description:   v.Description,
		CreateTime:    v.CreateTime,
	}, nil
}

func deploymentFromAPI(d *scriptpb.Deployment) *Deployment {
	out := &Deployment{
		DeploymentID: d.DeploymentId,
		UpdateTime:   d.UpdateTime,
	}
	if d.DeploymentConfig != nil {
		out.Description = d.DeploymentConfig.Description
		out.Version = d.DeploymentConfig.VersionNumber
	}
	for _, ep := range d.EntryPoints {
		if ep.WebApp != nil && ep.WebApp.Url != "" {
			out.WebAppURL = ep.WebApp.Url
		}
	}
	return out
}
