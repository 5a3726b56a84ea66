// Package api is the typed REST client for the storefront backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/i18n"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Invalidator is implemented by token sources that can drop their token.
// The client calls it when the backend rejects the token with a 401.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Client calls the backend. A Client without a token source can only call
// public endpoints; use WithTokenSource or Authorized for the rest.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    oauth2.TokenSource
	locale         string
	onUnauthorized func(ctx context.Context)
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		c.tokenSource = ts
	}
}

// WithLocale selects the language of fallback error messages.
func WithLocale(locale string) Option {
	return func(c *Client) {
		c.locale = locale
	}
}

// WithUnauthorizedHandler registers fn to run after any authenticated call
// is answered with a 401.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	c.locale = i18n.Resolve(c.locale)
	return c
}

// Authorized returns a copy of c that authenticates with ts.
func (c *Client) Authorized(ts oauth2.TokenSource) *Client {
	clone := *c
	clone.tokenSource = ts
	return &clone
}

// Localized returns a copy of c whose fallback messages are in locale.
func (c *Client) Localized(locale string) *Client {
	clone := *c
	clone.locale = i18n.Resolve(locale)
	return &clone
}

// Locale is the resolved locale of fallback messages.
func (c *Client) Locale() string {
	return c.locale
}

type callKind int

const (
	publicCall callKind = iota
	authenticatedCall
	loginCall
)

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	kind   callKind
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] encode request body")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "[Client.do] build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpClient := c.httpClient
	if req.kind == authenticatedCall {
		if c.tokenSource == nil {
			return sferrors.NewAuthError(i18n.Text(c.locale, i18n.MsgNoSession), sferrors.ErrNoSession)
		}
		httpClient = c.authenticatedHTTPClient()
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		if sferrors.Is(err, sferrors.ErrNoSession) || sferrors.Is(err, sferrors.ErrSessionExpired) {
			return sferrors.NewAuthError(i18n.Text(c.locale, i18n.MsgNoSession), err)
		}
		return errors.Wrapf(err, "[Client.do] %s %s", req.method, req.path)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := c.remoteError(resp)
		log.Debug().
			Str("method", req.method).
			Str("path", req.path).
			Int("status", resp.StatusCode).
			Str("detail", remoteErr.Detail).
			Msg("backend request failed")
		return c.classify(ctx, req.kind, remoteErr)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[Client.do] decode %s %s", req.method, req.path)
	}
	return nil
}

func (c *Client) authenticatedHTTPClient() *http.Client {
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	clone := *c.httpClient
	clone.Transport = &oauth2.Transport{Source: c.tokenSource, Base: base}
	return &clone
}

func (c *Client) classify(ctx context.Context, kind callKind, remoteErr *sferrors.RemoteError) error {
	switch {
	case kind == authenticatedCall && remoteErr.Status == http.StatusUnauthorized:
		if invalidator, ok := c.tokenSource.(Invalidator); ok {
			if err := invalidator.Invalidate(ctx); err != nil {
				log.Err(err).Msg("Failed to clear rejected token")
			}
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return sferrors.NewAuthError(i18n.Text(c.locale, i18n.MsgAuthExpired), remoteErr)
	case kind == loginCall && (remoteErr.Status == http.StatusUnauthorized || remoteErr.Status == http.StatusForbidden):
		message := remoteErr.Detail
		if message == "" {
			message = i18n.Text(c.locale, i18n.MsgAuthFailed)
		}
		return sferrors.NewAuthError(message, remoteErr)
	}
	return remoteErr
}

func (c *Client) remoteError(resp *http.Response) *sferrors.RemoteError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	detail := parseDetail(raw)
	message := detail
	if message == "" {
		message = i18n.Text(c.locale, i18n.MsgRemoteGeneric)
	}
	return &sferrors.RemoteError{Status: resp.StatusCode, Detail: detail, Message: message}
}

// parseDetail reads the detail field of an error body. It is either a
// string or a list of validation problems each carrying a msg.
func parseDetail(raw []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var problems []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &problems); err == nil {
		messages := make([]string, 0, len(problems))
		for _, p := range problems {
			if p.Msg != "" {
				messages = append(messages, p.Msg)
			}
		}
		return strings.Join(messages, "; ")
	}
	return ""
}

func pageQuery(page Page) url.Values {
	page = page.normalized()
	q := url.Values{}
	q.Set("skip", strconv.Itoa(page.Skip))
	q.Set("limit", strconv.Itoa(page.Limit))
	return q
}
