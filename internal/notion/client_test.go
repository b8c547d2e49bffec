// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notion-math/pkg/types"
)

func testClient(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(types.NotionConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "notion-math/test"},
		APIKey:     "secret_abc",
		BaseURL:    ts.URL + "/",
	}, ts.Client())
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(types.NotionConfig{APIKey: "  "}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(types.NotionConfig{APIKey: "k", PageSize: 500}, nil)
	require.NoError(t, err)
	cfg := c.Config()
	assert.Equal(t, types.DefaultNotionVersion, cfg.Version)
	assert.Equal(t, types.DefaultNotionBaseURL, cfg.BaseURL)
	assert.Equal(t, 100, cfg.PageSize)
}

func TestListChildrenRequest(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","results":[
			{"object":"block","id":"c1","type":"paragraph","has_children":true,
			 "paragraph":{"rich_text":[{"type":"text","text":{"content":"hi"}}]}}
		],"has_more":true,"next_cursor":"cur-2"}`)
	}))
	defer ts.Close()

	page, err := testClient(t, ts).ListChildren(context.Background(), "root-id", "cur-1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "/v1/blocks/root-id/children", captured.URL.Path)
	assert.Equal(t, "100", captured.URL.Query().Get("page_size"))
	assert.Equal(t, "cur-1", captured.URL.Query().Get("start_cursor"))
	assert.Equal(t, "Bearer secret_abc", captured.Header.Get("Authorization"))
	assert.Equal(t, "2022-06-28", captured.Header.Get("Notion-Version"))
	assert.Equal(t, "notion-math/test", captured.Header.Get("User-Agent"))

	require.Len(t, page.Results, 1)
	assert.Equal(t, "c1", page.Results[0].ID)
	assert.True(t, page.Results[0].HasChildren)
	assert.True(t, page.HasMore)
	assert.Equal(t, "cur-2", page.Cursor())
}

func TestListChildrenFirstPageOmitsCursor(t *testing.T) {
	var query map[string][]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{"results":[],"has_more":false,"next_cursor":null}`)
	}))
	defer ts.Close()

	_, err := testClient(t, ts).ListChildren(context.Background(), "p", "")
	require.NoError(t, err)
	_, ok := query["start_cursor"]
	assert.False(t, ok)
}

func TestListChildrenErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantTransient bool
		wantMalformed bool
		wantMsg       string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"object":"error","status":429,"code":"rate_limited","message":"slow down"}`, true, false, "rate_limited: slow down"},
		{"server error", http.StatusBadGateway, ``, true, false, "HTTP 502"},
		{"not found", http.StatusNotFound, `{"object":"error","status":404,"code":"object_not_found","message":"missing"}`, false, false, "object_not_found"},
		{"unauthorized", http.StatusUnauthorized, `not json`, false, false, "HTTP 401"},
		{"malformed body", http.StatusOK, `{"results": [`, false, true, "malformed"},
		{"has_more without cursor", http.StatusOK, `{"results":[],"has_more":true}`, false, true, "next_cursor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			_, err := testClient(t, ts).ListChildren(context.Background(), "p", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, tt.wantTransient, IsTransient(err))
			assert.Equal(t, tt.wantMalformed, errors.Is(err, ErrMalformedResponse))
		})
	}
}

func TestListChildrenTransportErrorIsTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := testClient(t, ts)
	ts.Close()

	_, err := c.ListChildren(context.Background(), "p", "")
	require.Error(t, err)
	var te *TransportError
	assert.ErrorAs(t, err, &te)
	assert.True(t, IsTransient(err))
}

func TestListChildrenTruncatedBodyIsTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "500")
		fmt.Fprint(w, `{"results":[{"object":"block","id":"c1"`)
	}))
	defer ts.Close()

	_, err := testClient(t, ts).ListChildren(context.Background(), "p", "")
	require.Error(t, err)
	var te *TransportError
	assert.ErrorAs(t, err, &te)
	assert.False(t, errors.Is(err, ErrMalformedResponse))
	assert.True(t, IsTransient(err))
}

func TestListChildrenCancelledContextNotTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testClient(t, ts).ListChildren(ctx, "p", "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTransient(err))
}

func TestAppendChildrenRequest(t *testing.T) {
	var (
		method string
		path   string
		body   map[string][]map[string]any
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		fmt.Fprint(w, `{"object":"list","results":[]}`)
	}))
	defer ts.Close()

	blocks := []types.OutboundBlock{
		{Type: types.BlockDivider},
		{Type: types.BlockParagraph, Runs: []types.Run{types.EquationRun("e=mc^2")}},
	}
	err := testClient(t, ts).AppendChildren(context.Background(), "target", blocks)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/v1/blocks/target/children", path)
	require.Len(t, body["children"], 2)
	assert.Equal(t, "divider", body["children"][0]["type"])
	assert.Equal(t, "paragraph", body["children"][1]["type"])
}

func TestAppendChildrenStatusError(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	err := testClient(t, ts).AppendChildren(context.Background(), "target", []types.OutboundBlock{{Type: types.BlockDivider}})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestAppendChildrenTooMany(t *testing.T) {
	c, err := NewClient(types.NotionConfig{APIKey: "k"}, nil)
	require.NoError(t, err)
	blocks := make([]types.OutboundBlock, MaxAppendChildren+1)
	err = c.AppendChildren(context.Background(), "t", blocks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}
