package api

import (
	"context"
	"net/http"
)

func (c *Client) SignupUser(ctx context.Context, in SignupUserRequest) (*User, error) {
	var out User
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/signup/user", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SignupInstructor(ctx context.Context, in SignupInstructorRequest) (*Instructor, error) {
	var out Instructor
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/signup/instructor", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LoginUser(ctx context.Context, creds Credentials) (*Token, error) {
	return c.login(ctx, "/auth/login/user", creds)
}

func (c *Client) LoginInstructor(ctx context.Context, creds Credentials) (*Token, error) {
	return c.login(ctx, "/auth/login/instructor", creds)
}

func (c *Client) login(ctx context.Context, path string, creds Credentials) (*Token, error) {
	var out Token
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: creds, kind: loginCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CurrentInstructor(ctx context.Context) (*Instructor, error) {
	var out Instructor
	if err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me/instructor", kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateInstructor(ctx context.Context, in InstructorUpdate) (*Instructor, error) {
	var out Instructor
	if err := c.do(ctx, request{method: http.MethodPut, path: "/auth/me/instructor", body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
