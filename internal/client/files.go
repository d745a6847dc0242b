package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/figma-client/internal/http"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// FilesClient implements figma.FilesClient.
type FilesClient struct {
	httpClient *http.Client
}

// NewFilesClient creates a new files client.
func NewFilesClient(httpClient *http.Client) *FilesClient {
	return &FilesClient{
		httpClient: httpClient,
	}
}

// Get implements figma.FilesClient.Get.
func (c *FilesClient) Get(ctx context.Context, fileKey string, params *figma.GetFileParams) (*figma.File, error) {
	path := "/v1/files/" + url.PathEscape(fileKey)

	var file figma.File

	err := fetch(ctx, c.httpClient, "GET", path, params.ToParams(), nil, &file)
	if err != nil {
		return nil, fmt.Errorf("getting file: %w", err)
	}

	return &file, nil
}

// GetNodes implements figma.FilesClient.GetNodes.
func (c *FilesClient) GetNodes(ctx context.Context, fileKey string, ids []string, params *figma.GetFileParams) (*figma.FileNodes, error) {
	path := "/v1/files/" + url.PathEscape(fileKey) + "/nodes"

	query := params.ToParams()
	query["ids"] = ids

	var nodes figma.FileNodes

	err := fetch(ctx, c.httpClient, "GET", path, query, nil, &nodes)
	if err != nil {
		return nil, fmt.Errorf("getting file nodes: %w", err)
	}

	return &nodes, nil
}

// GetImages implements figma.FilesClient.GetImages.
func (c *FilesClient) GetImages(ctx context.Context, fileKey string, params *figma.ImageParams) (*figma.Images, error) {
	path := "/v1/images/" + url.PathEscape(fileKey)

	var images figma.Images

	err := fetch(ctx, c.httpClient, "GET", path, params.ToParams(), nil, &images)
	if err != nil {
		return nil, fmt.Errorf("rendering images: %w", err)
	}

	return &images, nil
}

// ListVersions implements figma.FilesClient.ListVersions.
func (c *FilesClient) ListVersions(ctx context.Context, fileKey string) ([]figma.Version, error) {
	path := "/v1/files/" + url.PathEscape(fileKey) + "/versions"

	var resp struct {
		Versions []figma.Version `json:"versions"`
	}

	err := fetch(ctx, c.httpClient, "GET", path, nil, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("listing file versions: %w", err)
	}

	return resp.Versions, nil
}

// ListComments implements figma.FilesClient.ListComments.
func (c *FilesClient) ListComments(ctx context.Context, fileKey string) ([]figma.Comment, error) {
	path := "/v1/files/" + url.PathEscape(fileKey) + "/comments"

	var resp struct {
		Comments []figma.Comment `json:"comments"`
	}

	err := fetch(ctx, c.httpClient, "GET", path, nil, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	return resp.Comments, nil
}

// PostComment implements figma.FilesClient.PostComment.
func (c *FilesClient) PostComment(ctx context.Context, fileKey string, request *figma.CommentCreateRequest) (*figma.Comment, error) {
	path := "/v1/files/" + url.PathEscape(fileKey) + "/comments"

	var comment figma.Comment

	err := fetch(ctx, c.httpClient, "POST", path, nil, request, &comment)
	if err != nil {
		return nil, fmt.Errorf("posting comment: %w", err)
	}

	return &comment, nil
}

// DeleteComment implements figma.FilesClient.DeleteComment.
func (c *FilesClient) DeleteComment(ctx context.Context, fileKey, commentID string) error {
	path := "/v1/files/" + url.PathEscape(fileKey) + "/comments/" + url.PathEscape(commentID)

	err := fetch(ctx, c.httpClient, "DELETE", path, nil, nil, nil)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	return nil
}
