// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notion-math/pkg/types"
)

type fakeAppender struct {
	calls  [][]types.OutboundBlock
	failOn map[int]error // call index to error
}

func (f *fakeAppender) AppendChildren(_ context.Context, _ string, blocks []types.OutboundBlock) error {
	idx := len(f.calls)
	f.calls = append(f.calls, blocks)
	return f.failOn[idx]
}

func makeBlocks(n int) []types.OutboundBlock {
	out := make([]types.OutboundBlock, n)
	for i := range out {
		out[i] = types.OutboundBlock{Type: types.BlockParagraph, Runs: []types.Run{types.TextRun(fmt.Sprint(i))}}
	}
	return out
}

func TestPartition(t *testing.T) {
	tests := []struct {
		n, size   int
		wantSizes []int
	}{
		{0, 10, []int{}},
		{1, 10, []int{1}},
		{10, 10, []int{10}},
		{11, 10, []int{10, 1}},
		{25, 10, []int{10, 10, 5}},
		{30, 10, []int{10, 10, 10}},
		{7, 3, []int{3, 3, 1}},
		{12, 0, []int{10, 2}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d size=%d", tt.n, tt.size), func(t *testing.T) {
			chunks := Partition(makeBlocks(tt.n), tt.size)
			sizes := make([]int, len(chunks))
			for i, c := range chunks {
				sizes[i] = len(c)
			}
			assert.Equal(t, tt.wantSizes, sizes)
		})
	}
}

func TestPartitionPreservesOrder(t *testing.T) {
	blocks := makeBlocks(23)
	var flat []types.OutboundBlock
	for _, c := range Partition(blocks, 10) {
		flat = append(flat, c...)
	}
	assert.Equal(t, blocks, flat)
}

func TestWriteAllBatchCount(t *testing.T) {
	for _, n := range []int{1, 9, 10, 11, 20, 47} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			app := &fakeAppender{}
			rep := (&Writer{Appender: app, BatchSize: 10}).WriteAll(context.Background(), "page", makeBlocks(n))

			wantCalls := (n + 9) / 10
			require.Len(t, app.calls, wantCalls)
			wantLast := n % 10
			if wantLast == 0 {
				wantLast = 10
			}
			assert.Len(t, app.calls[wantCalls-1], wantLast)
			assert.Equal(t, n, rep.Written())
			assert.False(t, rep.HasFailures())
		})
	}
}

func TestWriteAllEmpty(t *testing.T) {
	app := &fakeAppender{}
	rep := (&Writer{Appender: app}).WriteAll(context.Background(), "page", nil)
	assert.Empty(t, app.calls)
	assert.Empty(t, rep.Batches)
	assert.Equal(t, 0, rep.Written())
}

func TestWriteAllContinuesAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	app := &fakeAppender{failOn: map[int]error{1: boom}}
	rep := (&Writer{Appender: app, BatchSize: 10}).WriteAll(context.Background(), "page", makeBlocks(25))

	require.Len(t, app.calls, 3)
	assert.True(t, rep.HasFailures())
	assert.Equal(t, 15, rep.Written())

	failed := rep.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Index)
	assert.Equal(t, 10, failed[0].Start)
	assert.Equal(t, 20, failed[0].End)
	assert.ErrorIs(t, failed[0].Err, boom)
	assert.Equal(t, "15/25 blocks written in 3 batch(es), 1 failed", rep.String())
}

func TestWriteAllDelayBetweenBatches(t *testing.T) {
	var sleeps []time.Duration
	w := &Writer{
		Appender:  &fakeAppender{},
		BatchSize: 2,
		Delay:     time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		},
	}
	w.WriteAll(context.Background(), "page", makeBlocks(5))
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeps)
}

func TestWriteAllCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app := &fakeAppender{}
	rep := (&Writer{Appender: app, BatchSize: 10}).WriteAll(ctx, "page", makeBlocks(15))
	assert.Empty(t, app.calls)
	require.Len(t, rep.Batches, 2)
	for _, b := range rep.Batches {
		assert.ErrorIs(t, b.Err, context.Canceled)
	}
}

func TestWriteAllClampsBatchSize(t *testing.T) {
	app := &fakeAppender{}
	(&Writer{Appender: app, BatchSize: 500}).WriteAll(context.Background(), "page", makeBlocks(150))
	require.Len(t, app.calls, 2)
	assert.Len(t, app.calls[0], 100)
	assert.Len(t, app.calls[1], 50)
}

func TestNewFromConfig(t *testing.T) {
	w := New(&fakeAppender{}, types.PublishConfig{BatchSize: 7, BatchDelay: time.Second})
	assert.Equal(t, 7, w.BatchSize)
	assert.Equal(t, time.Second, w.Delay)
}
