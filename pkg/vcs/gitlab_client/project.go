package gitlab_client

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/xanzy/go-gitlab"

	"github.com/zapier/headscan/pkg/vcs"
	"github.com/zapier/headscan/telemetry"
)

type projectInfo struct {
	namespace, name string
}

// getProjectByID gets a project by the given project path or ID
func (c *Client) getProjectByID(project interface{}) (*gitlab.Project, error) {
	var proj *gitlab.Project
	err := backoff.Retry(func() error {
		var err error
		var resp *gitlab.Response
		proj, resp, err = c.c.Projects.GetProject(project, nil)
		return checkReturnForBackoff(resp, err)
	}, getBackOff())
	return proj, err
}

// sourceProject resolves the namespace and path of a project by id. Merge
// requests reference their source project by id only, and many merge requests
// share one source project, so lookups are cached for the lifetime of the
// client.
func (c *Client) sourceProject(projectID int) (projectInfo, error) {
	c.mu.Lock()
	info, ok := c.projects[projectID]
	c.mu.Unlock()
	if ok {
		return info, nil
	}

	proj, err := c.getProjectByID(projectID)
	if err != nil {
		return projectInfo{}, err
	}

	info = projectInfo{name: proj.Path}
	if proj.Namespace != nil {
		info.namespace = proj.Namespace.FullPath
	}

	c.mu.Lock()
	c.projects[projectID] = info
	c.mu.Unlock()
	return info, nil
}

// GetMetadata returns the project description, web URL and default branch.
func (c *Client) GetMetadata(ctx context.Context, repo vcs.Repo) (vcs.Metadata, error) {
	_, span := tracer.Start(ctx, "GetMetadata")
	defer span.End()

	proj, err := c.getProjectByID(repo.FullName())
	if err != nil {
		telemetry.SetError(span, err, "GetMetadata")
		return vcs.Metadata{}, errors.Wrap(err, "failed to get project")
	}

	return vcs.Metadata{
		Description:   proj.Description,
		URL:           proj.WebURL,
		DefaultBranch: proj.DefaultBranch,
	}, nil
}

type ProjectsServices interface {
	GetProject(pid interface{}, opt *gitlab.GetProjectOptions, options ...gitlab.RequestOptionFunc) (*gitlab.Project, *gitlab.Response, error)
}

type ProjectsService struct {
	ProjectsServices
}
