// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/memobucket/bucket"
	"github.com/staranto/memobucket/internal/store"
)

func newTestRunner(opts ...RunnerOption) (*Runner, *store.MemoryStore, *manualClock) {
	clk := newManualClock()
	s := store.NewMemoryStore(clk.Now)
	return NewRunner(s, append([]RunnerOption{WithClock(clk)}, opts...)...), s, clk
}

func TestRun_ReusesAcrossRuns(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRunner()
	ct := &countingTask{}
	p := bucket.ExpireWithinCounts(3)

	var outs []string
	var refreshed []bool
	for range 7 {
		o, err := r.Run(ctx, "k", p, ct.task())
		require.NoError(t, err)
		outs = append(outs, o.Output.Stdout)
		refreshed = append(refreshed, o.Refreshed)
	}

	assert.Equal(t, 3, ct.calls)
	assert.Equal(t, []string{"run-1", "run-1", "run-1", "run-2", "run-2", "run-2", "run-3"}, outs)
	assert.Equal(t, []bool{true, false, false, true, false, false, true}, refreshed)
}

func TestRun_Outcome(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRunner()
	ct := &countingTask{}
	p := bucket.ExpireWithinCounts(2)

	o, err := r.Run(ctx, "k", p, ct.task())
	require.NoError(t, err)
	assert.Equal(t, "k", o.Key)
	assert.True(t, o.Refreshed)
	assert.Nil(t, o.Previous)
	assert.Equal(t, uint64(1), o.Hits)
	assert.Equal(t, "fresh", o.State)
	assert.Equal(t, p, o.Policy)

	o, err = r.Run(ctx, "k", p, ct.task())
	require.NoError(t, err)
	assert.False(t, o.Refreshed)
	assert.Nil(t, o.Previous)
	assert.Equal(t, uint64(2), o.Hits)
	assert.Equal(t, "stale", o.State)

	o, err = r.Run(ctx, "k", p, ct.task())
	require.NoError(t, err)
	assert.True(t, o.Refreshed)
	require.NotNil(t, o.Previous)
	assert.Equal(t, "run-1", o.Previous.Stdout)
	assert.Equal(t, "run-2", o.Output.Stdout)
}

func TestRun_ForceRefresh(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRunner()
	ct := &countingTask{}
	p := bucket.BottomLess()

	_, err := r.Run(ctx, "k", p, ct.task())
	require.NoError(t, err)

	o, err := r.Run(ctx, "k", p, ct.task(), ForceRefresh())
	require.NoError(t, err)
	assert.Equal(t, 2, ct.calls)
	assert.True(t, o.Refreshed)
	assert.Equal(t, "run-2", o.Output.Stdout)
	require.NotNil(t, o.Previous)
	assert.Equal(t, "run-1", o.Previous.Stdout)

	o, err = r.Run(ctx, "k", p, ct.task())
	require.NoError(t, err)
	assert.False(t, o.Refreshed)
	assert.Equal(t, "run-2", o.Output.Stdout)

	o, err = r.Run(ctx, "fresh-key", p, ct.task(), ForceRefresh())
	require.NoError(t, err)
	assert.True(t, o.Refreshed)
	assert.Nil(t, o.Previous)
}

func TestRun_DecaysWithClock(t *testing.T) {
	ctx := context.Background()
	r, _, clk := newTestRunner()
	ct := &countingTask{}
	p := bucket.ExpireWithinSeconds(60)

	_, err := r.Run(ctx, "k", p, ct.task())
	require.NoError(t, err)

	clk.Advance(59 * time.Second)
	o, err := r.Run(ctx, "k", p, ct.task())
	require.NoError(t, err)
	assert.False(t, o.Refreshed)

	clk.Advance(time.Second)
	o, err = r.Run(ctx, "k", p, ct.task())
	require.NoError(t, err)
	assert.True(t, o.Refreshed)
	assert.Equal(t, 2, ct.calls)
}

func TestRun_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRunner()
	ct := &countingTask{}

	_, err := r.Run(ctx, "a", bucket.BottomLess(), ct.task())
	require.NoError(t, err)
	_, err = r.Run(ctx, "b", bucket.BottomLess(), ct.task())
	require.NoError(t, err)
	_, err = r.Run(ctx, "a", bucket.BottomLess(), ct.task())
	require.NoError(t, err)

	assert.Equal(t, 2, ct.calls)
}

func TestRun_PolicyChangeKeepsValue(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRunner()
	ct := &countingTask{}

	_, err := r.Run(ctx, "k", bucket.ExpireWithinCounts(2), ct.task())
	require.NoError(t, err)

	o, err := r.Run(ctx, "k", bucket.ExpireWithinCounts(10), ct.task())
	require.NoError(t, err)
	assert.False(t, o.Refreshed)
	assert.Equal(t, bucket.ExpireWithinCounts(10), o.Policy)

	in, err := r.Inspect(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, bucket.ExpireWithinCounts(10), in.Policy)
	assert.Equal(t, 1, ct.calls)
}

func TestRun_FailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRunner()
	ct := &countingTask{}
	p := bucket.BottomLess()

	_, err := r.Run(ctx, "k", p, ct.task())
	require.NoError(t, err)

	require.NoError(t, r.Invalidate(ctx, "k"))
	ct.fail = errors.New("boom")
	_, err = r.Run(ctx, "k", p, ct.task())
	require.Error(t, err)
	assert.ErrorIs(t, err, ct.fail)

	in, err := r.Inspect(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "empty", in.State)
	assert.Nil(t, in.Output)

	ct.fail = nil
	o, err := r.Run(ctx, "k", p, ct.task())
	require.NoError(t, err)
	assert.True(t, o.Refreshed)
	assert.Equal(t, "run-3", o.Output.Stdout)
}

func TestRun_CancelledContext(t *testing.T) {
	r, _, _ := newTestRunner()
	ct := &countingTask{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, "k", bucket.BottomLess(), ct.task())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, ct.calls)

	in, err := r.Inspect(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "empty", in.State)
}

func TestRun_UnreadableSnapshotIsDiscarded(t *testing.T) {
	ctx := context.Background()
	r, s, _ := newTestRunner()
	require.NoError(t, s.Put(ctx, "k", []byte("{not json")))

	ct := &countingTask{}
	o, err := r.Run(ctx, "k", bucket.BottomLess(), ct.task())
	require.NoError(t, err)
	assert.True(t, o.Refreshed)
}

func TestRun_YAMLFormat(t *testing.T) {
	ctx := context.Background()
	r, s, _ := newTestRunner(WithFormat(bucket.FormatYAML))
	ct := &countingTask{}

	_, err := r.Run(ctx, "k", bucket.BottomLess(), ct.task())
	require.NoError(t, err)

	raw, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "stdout: run-1")

	o, err := r.Run(ctx, "k", bucket.BottomLess(), ct.task())
	require.NoError(t, err)
	assert.False(t, o.Refreshed)
}

func TestInspect(t *testing.T) {
	ctx := context.Background()
	r, _, clk := newTestRunner()
	ct := &countingTask{}
	p := bucket.NewPolicy(100, 10, 1)

	_, err := r.Inspect(ctx, "k")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = r.Run(ctx, "k", p, ct.task())
	require.NoError(t, err)
	clk.Advance(30 * time.Second)

	in, err := r.Inspect(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "fresh", in.State)
	assert.Equal(t, uint64(1), in.Hits)
	assert.Equal(t, 30*time.Second, in.Age)
	assert.Equal(t, uint64(60), in.Remaining)
	require.NotNil(t, in.Output)
	assert.Equal(t, "run-1", in.Output.Stdout)

	// Inspecting does not count as an access.
	in, err = r.Inspect(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), in.Hits)
}

func TestInvalidateAndForget(t *testing.T) {
	ctx := context.Background()
	r, s, _ := newTestRunner()
	ct := &countingTask{}

	assert.ErrorIs(t, r.Invalidate(ctx, "k"), store.ErrNotFound)

	_, err := r.Run(ctx, "k", bucket.BottomLess(), ct.task())
	require.NoError(t, err)
	require.NoError(t, r.Invalidate(ctx, "k"))

	o, err := r.Run(ctx, "k", bucket.BottomLess(), ct.task())
	require.NoError(t, err)
	assert.True(t, o.Refreshed)
	assert.Equal(t, 2, ct.calls)

	require.NoError(t, r.Forget(ctx, "k"))
	assert.Equal(t, 0, s.Len())
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	r, s, clk := newTestRunner()
	ct := &countingTask{}

	_, err := r.Run(ctx, "old", bucket.BottomLess(), ct.task())
	require.NoError(t, err)
	clk.Advance(48 * time.Hour)
	_, err = r.Run(ctx, "new", bucket.BottomLess(), ct.task())
	require.NoError(t, err)

	n, err := r.Purge(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Len())
}
