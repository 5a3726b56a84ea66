package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-storefront/tenants"
)

func storePath(subdomain, suffix string) string {
	return "/public/store/" + url.PathEscape(subdomain) + suffix
}

// StoreInfo fetches the public description of a store.
func (c *Client) StoreInfo(ctx context.Context, subdomain string) (*tenants.Tenant, error) {
	var out tenants.Tenant
	if err := c.do(ctx, request{method: http.MethodGet, path: storePath(subdomain, "/info")}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StoreProducts lists a store's published products.
func (c *Client) StoreProducts(ctx context.Context, subdomain string, page Page) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, request{method: http.MethodGet, path: storePath(subdomain, "/products"), query: pageQuery(page)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StoreProduct(ctx context.Context, subdomain, productID string) (*Product, error) {
	var out Product
	path := storePath(subdomain, "/products/"+url.PathEscape(productID))
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StoreSignup registers a customer with one store.
func (c *Client) StoreSignup(ctx context.Context, subdomain string, in CustomerSignup) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, request{method: http.MethodPost, path: storePath(subdomain, "/signup"), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StoreLogin logs a customer in to one store.
func (c *Client) StoreLogin(ctx context.Context, subdomain string, creds Credentials) (*Token, error) {
	return c.login(ctx, storePath(subdomain, "/login"), creds)
}

// StoreMe returns the logged in customer of a store.
func (c *Client) StoreMe(ctx context.Context, subdomain string) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, request{method: http.MethodGet, path: storePath(subdomain, "/me"), kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Tenants exposes store info lookups as a tenants.Repo.
func (c *Client) Tenants() tenants.Repo {
	return storeInfoRepo{client: c}
}

type storeInfoRepo struct {
	client *Client
}

func (r storeInfoRepo) Get(ctx context.Context, subdomain string) (*tenants.Tenant, error) {
	return r.client.StoreInfo(ctx, subdomain)
}
