// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves a block's full descendant tree, page by page,
// flattened in pre-order: each block is followed by its whole subtree
// before its next sibling.
//
// Retrieval is partial-success. A page that cannot be fetched ends that
// subtree, the failure is recorded in the Result, and traversal resumes
// with the next sibling of the failed block's parent.
package fetch

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/notion-math/internal/httputil"
	"github.com/pdiddy/notion-math/internal/notion"
	"github.com/pdiddy/notion-math/pkg/types"
)

// DefaultMaxDepth bounds recursion when FetchConfig.MaxDepth is not set.
const DefaultMaxDepth = 32

// ErrMaxDepth is recorded for a block whose children lie below the depth limit.
var ErrMaxDepth = errors.New("maximum nesting depth reached")

// ChildLister lists one page of a block's direct children.
type ChildLister interface {
	ListChildren(ctx context.Context, blockID, cursor string) (types.ChildrenPage, error)
}

// Result is the outcome of a tree retrieval: every block that could be
// fetched, in pre-order, and every subtree failure.
type Result struct {
	Blocks []types.Block
	Errors []error
}

// Complete reports whether the whole tree was retrieved.
func (r Result) Complete() bool { return len(r.Errors) == 0 }

// Fetcher walks a block tree sequentially, one request at a time.
type Fetcher struct {
	Lister ChildLister

	// Retry governs each page request.
	Retry httputil.Policy

	// Retryable classifies errors worth another attempt
	// (default notion.IsTransient).
	Retryable func(error) bool

	// MaxDepth is the deepest nesting level fetched; the root's direct
	// children are level 1.
	MaxDepth int
}

// New returns a Fetcher configured from cfg.
func New(lister ChildLister, cfg types.FetchConfig) *Fetcher {
	return &Fetcher{
		Lister:   lister,
		Retry:    httputil.Policy{MaxAttempts: cfg.MaxRetries, Unit: cfg.RetryUnit},
		MaxDepth: cfg.MaxDepth,
	}
}

// Fetch retrieves blockID's children and, recursively, all descendants.
// It never fails outright; inspect Result.Errors for gaps.
func (f *Fetcher) Fetch(ctx context.Context, blockID string) Result {
	t := &traversal{
		f:        f,
		maxDepth: f.MaxDepth,
		blocks:   make([]types.Block, 0, 128),
	}
	if t.maxDepth <= 0 {
		t.maxDepth = DefaultMaxDepth
	}
	t.retryable = f.Retryable
	if t.retryable == nil {
		t.retryable = notion.IsTransient
	}

	if err := t.walk(ctx, blockID, 1); err != nil {
		t.errs = append(t.errs, err)
	}

	ev := log.Info()
	if len(t.errs) > 0 {
		ev = log.Warn().Int("errors", len(t.errs))
	}
	ev.Str("block_id", blockID).Int("blocks", len(t.blocks)).Msg("fetched block tree")

	return Result{Blocks: t.blocks, Errors: t.errs}
}

// traversal owns the ordered output buffer for one Fetch call.
type traversal struct {
	f         *Fetcher
	maxDepth  int
	retryable func(error) bool
	blocks    []types.Block
	errs      []error
}

// walk appends the subtree under blockID. It returns an error only when
// the context ends, which stops the whole traversal.
func (t *traversal) walk(ctx context.Context, blockID string, depth int) error {
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := t.listPage(ctx, blockID, cursor)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			err = errors.Wrapf(err, "listing children of %s", blockID)
			log.Error().Err(err).Str("block_id", blockID).Msg("giving up on subtree")
			t.errs = append(t.errs, err)
			return nil
		}

		for _, b := range page.Results {
			t.blocks = append(t.blocks, b)
			if !b.HasChildren {
				continue
			}
			if depth >= t.maxDepth {
				log.Warn().Str("block_id", b.ID).Int("max_depth", t.maxDepth).Msg("not descending further")
				t.errs = append(t.errs, errors.Wrapf(ErrMaxDepth, "children of %s", b.ID))
				continue
			}
			if err := t.walk(ctx, b.ID, depth+1); err != nil {
				return err
			}
		}

		if !page.HasMore {
			return nil
		}
		cursor = page.Cursor()
	}
}

func (t *traversal) listPage(ctx context.Context, blockID, cursor string) (types.ChildrenPage, error) {
	var page types.ChildrenPage
	err := t.f.Retry.Do(ctx, t.retryable, func(int) error {
		p, err := t.f.Lister.ListChildren(ctx, blockID, cursor)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	return page, err
}
