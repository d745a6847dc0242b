package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/figma-client/internal/http"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// ProjectsClient implements figma.ProjectsClient.
type ProjectsClient struct {
	httpClient *http.Client
}

// NewProjectsClient creates a new projects client.
func NewProjectsClient(httpClient *http.Client) *ProjectsClient {
	return &ProjectsClient{
		httpClient: httpClient,
	}
}

// ListTeamProjects implements figma.ProjectsClient.ListTeamProjects.
func (c *ProjectsClient) ListTeamProjects(ctx context.Context, teamID string) (*figma.TeamProjects, error) {
	path := "/v1/teams/" + url.PathEscape(teamID) + "/projects"

	var projects figma.TeamProjects

	err := fetch(ctx, c.httpClient, "GET", path, nil, nil, &projects)
	if err != nil {
		return nil, fmt.Errorf("listing team projects: %w", err)
	}

	return &projects, nil
}

// ListProjectFiles implements figma.ProjectsClient.ListProjectFiles.
func (c *ProjectsClient) ListProjectFiles(ctx context.Context, projectID string, branchData bool) (*figma.ProjectFiles, error) {
	path := "/v1/projects/" + url.PathEscape(projectID) + "/files"

	var params map[string]any
	if branchData {
		params = map[string]any{"branch_data": true}
	}

	var files figma.ProjectFiles

	err := fetch(ctx, c.httpClient, "GET", path, params, nil, &files)
	if err != nil {
		return nil, fmt.Errorf("listing project files: %w", err)
	}

	return &files, nil
}
