// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mirror composes the pipeline: fetch a block tree, flatten it to
// records, rewrite records into equation-aware blocks, and append them back
// in batches.
package mirror

import (
	"context"
	"net/http"

	"github.com/pdiddy/notion-math/internal/fetch"
	"github.com/pdiddy/notion-math/internal/notion"
	"github.com/pdiddy/notion-math/internal/publish"
	"github.com/pdiddy/notion-math/internal/transform"
	"github.com/pdiddy/notion-math/pkg/types"
)

// Mirror holds the configured fetcher and writer. Both share one transport.
type Mirror struct {
	Fetcher *fetch.Fetcher
	Writer  *publish.Writer
}

// New builds a Mirror over a Notion client created from cfg.
func New(cfg types.Config, hc *http.Client) (*Mirror, error) {
	client, err := notion.NewClient(cfg.Notion, hc)
	if err != nil {
		return nil, err
	}
	return &Mirror{
		Fetcher: fetch.New(client, cfg.Fetch),
		Writer:  publish.New(client, cfg.Publish),
	}, nil
}

// TreeResult is the flattened tree and every failure met on the way:
// fetch gaps and per-block normalization errors.
type TreeResult struct {
	Records     []types.FlatRecord
	FetchErrors []error
	BlockErrors []error
}

// Complete reports whether every block was fetched and normalized.
func (r TreeResult) Complete() bool {
	return len(r.FetchErrors) == 0 && len(r.BlockErrors) == 0
}

// FetchTree retrieves rootID's descendants and flattens them to records
// in pre-order.
func (m *Mirror) FetchTree(ctx context.Context, rootID string) TreeResult {
	fr := m.Fetcher.Fetch(ctx, rootID)
	nr := transform.NormalizeAll(fr.Blocks)
	return TreeResult{
		Records:     nr.Records,
		FetchErrors: fr.Errors,
		BlockErrors: nr.Errors,
	}
}

// Transform rewrites records into outbound blocks.
func Transform(records []types.FlatRecord) []types.OutboundBlock {
	return transform.Transform(records)
}

// Publish appends blocks to targetID in batches.
func (m *Mirror) Publish(ctx context.Context, targetID string, blocks []types.OutboundBlock) publish.Report {
	return m.Writer.WriteAll(ctx, targetID, blocks)
}
