// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notion is the HTTP transport for the block children endpoints:
// listing a block's children page by page and appending children to a block.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/notion-math/pkg/types"
)

const (
	defaultPageSize = 100
	maxPageSize     = 100

	// MaxAppendChildren is the largest children array one append request accepts.
	MaxAppendChildren = 100
)

// Client issues authenticated requests against the Notion API. Its
// configuration is fixed at construction and never mutated.
type Client struct {
	cfg  types.NotionConfig
	http *http.Client
}

// NewClient validates cfg, fills defaults, and returns a client. When hc is
// nil a client with cfg.Timeout is created.
func NewClient(cfg types.NotionConfig, hc *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("notion API key is required")
	}
	if cfg.Version == "" {
		cfg.Version = types.DefaultNotionVersion
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = types.DefaultNotionBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		cfg.PageSize = defaultPageSize
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: hc}, nil
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() types.NotionConfig { return c.cfg }

// ListChildren fetches one page of blockID's direct children. An empty
// cursor requests the first page.
func (c *Client) ListChildren(ctx context.Context, blockID, cursor string) (types.ChildrenPage, error) {
	params := url.Values{"page_size": {strconv.Itoa(c.cfg.PageSize)}}
	if cursor != "" {
		params.Set("start_cursor", cursor)
	}
	endpoint := c.childrenURL(blockID) + "?" + params.Encode()

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.ChildrenPage{}, err
	}

	resp, err := c.do(req)
	if err != nil {
		return types.ChildrenPage{}, err
	}
	defer resp.Body.Close()

	// A body cut off mid-read is a network failure, not a malformed page.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.ChildrenPage{}, ctxErr
		}
		return types.ChildrenPage{}, &TransportError{Method: req.Method, Path: req.URL.Path, Err: err}
	}

	var page types.ChildrenPage
	if err := json.Unmarshal(data, &page); err != nil {
		return types.ChildrenPage{}, errors.Wrapf(ErrMalformedResponse, "decoding children of %s: %v", blockID, err)
	}
	if page.HasMore && page.Cursor() == "" {
		return types.ChildrenPage{}, errors.Wrapf(ErrMalformedResponse, "children of %s: has_more without next_cursor", blockID)
	}

	log.Debug().
		Str("block_id", blockID).
		Int("results", len(page.Results)).
		Bool("has_more", page.HasMore).
		Msg("listed children")
	return page, nil
}

// AppendChildren appends blocks to blockID in one request. It is attempted
// exactly once.
func (c *Client) AppendChildren(ctx context.Context, blockID string, blocks []types.OutboundBlock) error {
	if len(blocks) > MaxAppendChildren {
		return errors.Errorf("append to %s: %d blocks exceeds limit of %d", blockID, len(blocks), MaxAppendChildren)
	}

	children := make([]json.RawMessage, 0, len(blocks))
	for _, b := range blocks {
		raw, err := b.MarshalNotion()
		if err != nil {
			return errors.Wrapf(err, "append to %s", blockID)
		}
		children = append(children, raw)
	}
	body, err := json.Marshal(map[string]any{"children": children})
	if err != nil {
		return errors.Wrap(err, "encoding append body")
	}

	req, err := c.newRequest(ctx, http.MethodPatch, c.childrenURL(blockID), bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) childrenURL(blockID string) string {
	return c.cfg.BaseURL + "/v1/blocks/" + url.PathEscape(blockID) + "/children"
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Notion-Version", c.cfg.Version)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	return req, nil
}

// do sends req and converts transport failures and non-2xx statuses to
// typed errors. On success the caller owns resp.Body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Method: req.Method, Path: req.URL.Path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newStatusError(req, resp)
	}
	return resp, nil
}
