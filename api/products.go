package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListProducts(ctx context.Context, page Page) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products", query: pageQuery(page), kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var out Product
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products/" + url.PathEscape(id), kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductUpdate) (*Product, error) {
	var out Product
	if err := c.do(ctx, request{method: http.MethodPost, path: "/products", body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductUpdate) (*Product, error) {
	var out Product
	if err := c.do(ctx, request{method: http.MethodPut, path: "/products/" + url.PathEscape(id), body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/products/" + url.PathEscape(id), kind: authenticatedCall}, nil)
}

func (c *Client) ProductStats(ctx context.Context) (*ProductStats, error) {
	var out ProductStats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products/stats/summary", kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
