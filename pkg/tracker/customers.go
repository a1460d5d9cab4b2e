package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListCustomers(ctx context.Context, accessToken string, page, perPage int) (*CustomerList, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}

	var result CustomerList
	if err := c.do(ctx, accessToken, http.MethodGet, "/clients", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetCustomer(ctx context.Context, accessToken string, id int64) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, accessToken, http.MethodGet, fmt.Sprintf("/clients/%d", id), nil, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *Client) CreateCustomer(ctx context.Context, accessToken string, input CreateCustomerInput) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, accessToken, http.MethodPost, "/clients", nil, input, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, accessToken string, id int64, input UpdateCustomerInput) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, accessToken, http.MethodPatch, fmt.Sprintf("/clients/%d", id), nil, input, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *Client) ArchiveCustomer(ctx context.Context, accessToken string, id int64) (*Customer, error) {
	active := false
	return c.UpdateCustomer(ctx, accessToken, id, UpdateCustomerInput{IsActive: &active})
}
