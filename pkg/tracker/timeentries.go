package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListTimeEntries(ctx context.Context, accessToken string, opts TimeEntryListOptions) (*TimeEntryList, error) {
	query := url.Values{}
	if opts.From != "" {
		query.Set("from", opts.From)
	}
	if opts.To != "" {
		query.Set("to", opts.To)
	}
	if opts.ProjectID != 0 {
		query.Set("project_id", strconv.FormatInt(opts.ProjectID, 10))
	}
	if opts.State != "" {
		query.Set("state", opts.State)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opts.PerPage))
	}

	var result TimeEntryList
	if err := c.do(ctx, accessToken, http.MethodGet, "/time_entries", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetTimeEntry(ctx context.Context, accessToken string, id int64) (*TimeEntry, error) {
	var entry TimeEntry
	if err := c.do(ctx, accessToken, http.MethodGet, fmt.Sprintf("/time_entries/%d", id), nil, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) CreateTimeEntry(ctx context.Context, accessToken string, input CreateTimeEntryInput) (*TimeEntry, error) {
	var entry TimeEntry
	if err := c.do(ctx, accessToken, http.MethodPost, "/time_entries", nil, input, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) UpdateTimeEntry(ctx context.Context, accessToken string, id int64, input UpdateTimeEntryInput) (*TimeEntry, error) {
	var entry TimeEntry
	if err := c.do(ctx, accessToken, http.MethodPatch, fmt.Sprintf("/time_entries/%d", id), nil, input, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) DeleteTimeEntry(ctx context.Context, accessToken string, id int64) error {
	return c.do(ctx, accessToken, http.MethodDelete, fmt.Sprintf("/time_entries/%d", id), nil, nil, nil)
}

// SetTimeEntryState transitions an entry through the approval workflow
// (draft -> submitted -> approved/rejected). The tracker enforces the legal
// transitions; invalid ones come back as a 422.
func (c *Client) SetTimeEntryState(ctx context.Context, accessToken string, id int64, state string) (*TimeEntry, error) {
	payload := struct {
		State string `json:"state"`
	}{State: state}

	var entry TimeEntry
	if err := c.do(ctx, accessToken, http.MethodPatch, fmt.Sprintf("/time_entries/%d", id), nil, payload, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
