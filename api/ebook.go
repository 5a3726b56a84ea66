package api

import (
	"context"
	"net/http"
	"net/url"
)

// Customer reading endpoints. The structure call verifies the purchase.

func (c *Client) EbookStructure(ctx context.Context, productID string) (*EbookStructure, error) {
	var out EbookStructure
	path := "/ebook/customer/products/" + url.PathEscape(productID) + "/structure"
	if err := c.do(ctx, request{method: http.MethodGet, path: path, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SectionContent(ctx context.Context, sectionID string) (*Section, error) {
	var out Section
	path := "/ebook/customer/sections/" + url.PathEscape(sectionID)
	if err := c.do(ctx, request{method: http.MethodGet, path: path, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProgress overwrites the customer's record for the section.
func (c *Client) UpdateProgress(ctx context.Context, in ProgressUpdate) (*Progress, error) {
	var out Progress
	if err := c.do(ctx, request{method: http.MethodPost, path: "/ebook/customer/progress", body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProductProgress(ctx context.Context, productID string) ([]Progress, error) {
	var out []Progress
	path := "/ebook/customer/products/" + url.PathEscape(productID) + "/progress"
	if err := c.do(ctx, request{method: http.MethodGet, path: path, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBookmark(ctx context.Context, in BookmarkInput) (*Bookmark, error) {
	var out Bookmark
	if err := c.do(ctx, request{method: http.MethodPost, path: "/ebook/customer/bookmarks", body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProductBookmarks(ctx context.Context, productID string) ([]Bookmark, error) {
	var out []Bookmark
	path := "/ebook/customer/products/" + url.PathEscape(productID) + "/bookmarks"
	if err := c.do(ctx, request{method: http.MethodGet, path: path, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteBookmark(ctx context.Context, bookmarkID string) error {
	path := "/ebook/customer/bookmarks/" + url.PathEscape(bookmarkID)
	return c.do(ctx, request{method: http.MethodDelete, path: path, kind: authenticatedCall}, nil)
}

// Instructor authoring endpoints.

func (c *Client) CreateChapter(ctx context.Context, in ChapterInput) (*Chapter, error) {
	var out Chapter
	if err := c.do(ctx, request{method: http.MethodPost, path: "/ebook/instructor/chapters", body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProductChapters(ctx context.Context, productID string) ([]Chapter, error) {
	var out []Chapter
	path := "/ebook/instructor/products/" + url.PathEscape(productID) + "/chapters"
	if err := c.do(ctx, request{method: http.MethodGet, path: path, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateChapter(ctx context.Context, chapterID string, in ChapterInput) (*Chapter, error) {
	var out Chapter
	path := "/ebook/instructor/chapters/" + url.PathEscape(chapterID)
	if err := c.do(ctx, request{method: http.MethodPut, path: path, body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteChapter(ctx context.Context, chapterID string) error {
	path := "/ebook/instructor/chapters/" + url.PathEscape(chapterID)
	return c.do(ctx, request{method: http.MethodDelete, path: path, kind: authenticatedCall}, nil)
}

func (c *Client) CreateSection(ctx context.Context, in SectionInput) (*Section, error) {
	var out Section
	if err := c.do(ctx, request{method: http.MethodPost, path: "/ebook/instructor/sections", body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSection(ctx context.Context, sectionID string, in SectionInput) (*Section, error) {
	var out Section
	path := "/ebook/instructor/sections/" + url.PathEscape(sectionID)
	if err := c.do(ctx, request{method: http.MethodPut, path: path, body: in, kind: authenticatedCall}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSection(ctx context.Context, sectionID string) error {
	path := "/ebook/instructor/sections/" + url.PathEscape(sectionID)
	return c.do(ctx, request{method: http.MethodDelete, path: path, kind: authenticatedCall}, nil)
}
