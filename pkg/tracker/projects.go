package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListProjects(ctx context.Context, accessToken string, page, perPage int) (*ProjectList, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}

	var result ProjectList
	if err := c.do(ctx, accessToken, http.MethodGet, "/projects", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetProject(ctx context.Context, accessToken string, id int64) (*Project, error) {
	var project Project
	if err := c.do(ctx, accessToken, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) CreateProject(ctx context.Context, accessToken string, input CreateProjectInput) (*Project, error) {
	var project Project
	if err := c.do(ctx, accessToken, http.MethodPost, "/projects", nil, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, accessToken string, id int64, input UpdateProjectInput) (*Project, error) {
	var project Project
	if err := c.do(ctx, accessToken, http.MethodPatch, fmt.Sprintf("/projects/%d", id), nil, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) ArchiveProject(ctx context.Context, accessToken string, id int64) (*Project, error) {
	active := false
	return c.UpdateProject(ctx, accessToken, id, UpdateProjectInput{IsActive: &active})
}
