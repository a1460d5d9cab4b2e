package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListExpenses(ctx context.Context, accessToken string, opts ExpenseListOptions) (*ExpenseList, error) {
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
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opts.PerPage))
	}

	var result ExpenseList
	if err := c.do(ctx, accessToken, http.MethodGet, "/expenses", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetExpense(ctx context.Context, accessToken string, id int64) (*Expense, error) {
	var expense Expense
	if err := c.do(ctx, accessToken, http.MethodGet, fmt.Sprintf("/expenses/%d", id), nil, nil, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (c *Client) CreateExpense(ctx context.Context, accessToken string, input CreateExpenseInput) (*Expense, error) {
	var expense Expense
	if err := c.do(ctx, accessToken, http.MethodPost, "/expenses", nil, input, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (c *Client) UpdateExpense(ctx context.Context, accessToken string, id int64, input UpdateExpenseInput) (*Expense, error) {
	var expense Expense
	if err := c.do(ctx, accessToken, http.MethodPatch, fmt.Sprintf("/expenses/%d", id), nil, input, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (c *Client) DeleteExpense(ctx context.Context, accessToken string, id int64) error {
	return c.do(ctx, accessToken, http.MethodDelete, fmt.Sprintf("/expenses/%d", id), nil, nil, nil)
}
