package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListCustomers(ctx context.Context, filter CustomerFilter) ([]Customer, error) {
	query := pageQuery(filter.Page)
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.IsActive != nil {
		query.Set("is_active", strconv.FormatBool(*filter.IsActive))
	}
	var out []Customer
	if err := c.do(ctx, request{method: http.MethodGet, path: "/customers", query: query, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, request{method: http.MethodGet, path: "/customers/" + url.PathEscape(id), kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, in CustomerUpdate) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, request{method: http.MethodPut, path: "/customers/" + url.PathEscape(id), body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/customers/" + url.PathEscape(id), kind: authenticatedCall}, nil)
}

func (c *Client) CustomerStats(ctx context.Context) (*CustomerStats, error) {
	var out CustomerStats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/customers/stats/summary", kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
