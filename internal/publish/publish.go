// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish appends outbound blocks to a target block in fixed-size
// batches, one request at a time, in order. Each batch is attempted once;
// a failed batch does not stop the batches after it.
package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/notion-math/internal/httputil"
	"github.com/pdiddy/notion-math/internal/notion"
	"github.com/pdiddy/notion-math/pkg/types"
)

// DefaultBatchSize is used when the configured size is not positive.
const DefaultBatchSize = 10

// ChildAppender appends blocks to a parent block in one request.
type ChildAppender interface {
	AppendChildren(ctx context.Context, blockID string, blocks []types.OutboundBlock) error
}

// BatchResult is the outcome of one append request. Start and End are the
// half-open range of the batch in the full block list.
type BatchResult struct {
	Index int
	Start int
	End   int
	Err   error
}

// Size returns the number of blocks in the batch.
func (b BatchResult) Size() int { return b.End - b.Start }

// Report summarizes a WriteAll run.
type Report struct {
	TargetID string
	Total    int
	Batches  []BatchResult
}

// Written returns the number of blocks in batches that succeeded.
func (r Report) Written() int {
	n := 0
	for _, b := range r.Batches {
		if b.Err == nil {
			n += b.Size()
		}
	}
	return n
}

// Failed returns the batches that did not succeed.
func (r Report) Failed() []BatchResult {
	var out []BatchResult
	for _, b := range r.Batches {
		if b.Err != nil {
			out = append(out, b)
		}
	}
	return out
}

// HasFailures reports whether any batch failed.
func (r Report) HasFailures() bool { return len(r.Failed()) > 0 }

// Writer issues the append requests.
type Writer struct {
	Appender  ChildAppender
	BatchSize int

	// Delay is the pause between consecutive batches.
	Delay time.Duration

	// Sleep replaces the real wait between batches in tests.
	Sleep httputil.SleepFunc
}

// New returns a Writer configured from cfg.
func New(appender ChildAppender, cfg types.PublishConfig) *Writer {
	return &Writer{Appender: appender, BatchSize: cfg.BatchSize, Delay: cfg.BatchDelay}
}

// Partition splits blocks into contiguous chunks of at most size blocks.
// Only the last chunk may be shorter. The chunks share blocks' backing array.
func Partition(blocks []types.OutboundBlock, size int) [][]types.OutboundBlock {
	if size <= 0 {
		size = DefaultBatchSize
	}
	chunks := make([][]types.OutboundBlock, 0, (len(blocks)+size-1)/size)
	for start := 0; start < len(blocks); start += size {
		end := min(start+size, len(blocks))
		chunks = append(chunks, blocks[start:end:end])
	}
	return chunks
}

// WriteAll appends blocks to targetID batch by batch. Failures are logged
// and recorded in the Report. Context cancellation stops before the next
// batch; the remaining batches are recorded with the context error.
func (w *Writer) WriteAll(ctx context.Context, targetID string, blocks []types.OutboundBlock) Report {
	size := w.batchSize()
	sleep := w.Sleep
	if sleep == nil {
		sleep = httputil.Sleep
	}

	report := Report{TargetID: targetID, Total: len(blocks)}
	start := 0
	for i, batch := range Partition(blocks, size) {
		res := BatchResult{Index: i, Start: start, End: start + len(batch)}
		start = res.End

		if i > 0 && w.Delay > 0 {
			if err := sleep(ctx, w.Delay); err != nil {
				res.Err = err
			}
		}
		if res.Err == nil {
			res.Err = ctx.Err()
		}
		if res.Err == nil {
			log.Info().
				Str("target_id", targetID).
				Msgf("uploading blocks %d to %d of %d", res.Start+1, res.End, len(blocks))
			res.Err = w.Appender.AppendChildren(ctx, targetID, batch)
		}
		if res.Err != nil {
			log.Error().Err(res.Err).Int("batch", i).Str("target_id", targetID).Msg("batch upload failed")
		}
		report.Batches = append(report.Batches, res)
	}

	log.Info().
		Str("target_id", targetID).
		Int("written", report.Written()).
		Int("total", report.Total).
		Int("failed_batches", len(report.Failed())).
		Msg("upload finished")
	return report
}

func (w *Writer) batchSize() int {
	size := w.BatchSize
	if size <= 0 {
		return DefaultBatchSize
	}
	if size > notion.MaxAppendChildren {
		log.Warn().Int("batch_size", size).Int("limit", notion.MaxAppendChildren).Msg("batch size clamped")
		return notion.MaxAppendChildren
	}
	return size
}

// String renders a one-line summary.
func (r Report) String() string {
	return fmt.Sprintf("%d/%d blocks written in %d batch(es), %d failed",
		r.Written(), r.Total, len(r.Batches), len(r.Failed()))
}
