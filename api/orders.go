package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListOrders lists the instructor's orders, optionally of one status.
func (c *Client) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	query := pageQuery(filter.Page)
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	var out []Order
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders", query: query, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	var out Order
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders/" + url.PathEscape(id), kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, in OrderCreate) (*Order, error) {
	var out Order
	if err := c.do(ctx, request{method: http.MethodPost, path: "/orders", body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, in OrderUpdate) (*Order, error) {
	var out Order
	path := "/orders/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, request{method: http.MethodPatch, path: path, body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OrderStats(ctx context.Context) (*OrderStats, error) {
	var out OrderStats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders/stats/summary", kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyOrders lists the logged in customer's orders.
func (c *Client) MyOrders(ctx context.Context, page Page) ([]Order, error) {
	var out []Order
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders/my", query: pageQuery(page), kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
