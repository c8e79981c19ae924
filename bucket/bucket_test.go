// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package bucket

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter is a task that returns 0, 1, 2, ... and remembers how often it ran.
type counter struct {
	calls int
}

func (c *counter) Run() (int, error) {
	v := c.calls
	c.calls++
	return v, nil
}

func TestCall_FirstCallInvokesOnce(t *testing.T) {
	policies := map[string]Policy{
		"bottomless": BottomLess(),
		"pierced":    Pierced(),
		"counts":     ExpireWithinCounts(3),
		"seconds":    ExpireWithinSeconds(3),
		"custom":     NewPolicy(100, 10, 50),
	}

	for name, p := range policies {
		t.Run(name, func(t *testing.T) {
			b := New[int](p, WithClock(newManualClock()))
			assert.Equal(t, Empty, b.State())

			task := &counter{}
			v, err := b.Call(task)
			require.NoError(t, err)
			assert.Equal(t, 0, v)
			assert.Equal(t, 1, task.calls)
			assert.Equal(t, uint64(1), b.Hits())
		})
	}
}

func TestCall_ReusesWithinBudget(t *testing.T) {
	b := New[int](NewPolicy(100, 10, 0), WithClock(newManualClock()))
	task := &counter{}

	for i := 0; i < 9; i++ {
		v, err := b.Call(task)
		require.NoError(t, err)
		assert.Equal(t, 0, v)
	}
	assert.Equal(t, 1, task.calls)
	assert.Equal(t, uint64(9), b.Hits())

	// Hit at hits=9 costs 90, still under 100.
	v, _ := b.Call(task)
	assert.Equal(t, 0, v)
	assert.Equal(t, 1, task.calls)

	// hits=10 costs 100, which is the budget.
	v, _ = b.Call(task)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, task.calls)
	assert.Equal(t, uint64(1), b.Hits())
}

func TestCall_CountPreset(t *testing.T) {
	b := New[int](ExpireWithinCounts(3), WithClock(newManualClock()))
	task := &counter{}

	var got []int
	for i := 0; i < 7; i++ {
		v, err := b.Call(task)
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, 2}, got)
}

func TestCall_DecayThreshold(t *testing.T) {
	clk := newManualClock()
	b := New[int](NewPolicy(100, 10, 50), WithClock(clk))
	task := &counter{}

	v, err := b.Call(task)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	start := clk.Now()

	// 10*1 + 50*0 = 10
	clk.Advance(500 * time.Millisecond)
	v, _ = b.Call(task)
	assert.Equal(t, 0, v)
	assert.Equal(t, Fresh, b.State())

	// 10*2 + 50*1 = 70
	clk.Advance(500 * time.Millisecond)
	v, _ = b.Call(task)
	assert.Equal(t, 0, v)
	assert.Equal(t, 1, task.calls)

	// 10*3 + 50*2 = 130
	clk.Advance(time.Second)
	assert.Equal(t, Stale, b.State())
	v, _ = b.Call(task)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, task.calls)
	assert.Equal(t, uint64(1), b.Hits())
	assert.Equal(t, start.Add(2*time.Second), b.Epoch())
}

func TestCall_PiercedAlwaysRefreshes(t *testing.T) {
	b := New[int](Pierced(), WithClock(newManualClock()))
	task := &counter{}

	for i := 0; i < 5; i++ {
		v, err := b.Call(task)
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 5, task.calls)
}

func TestCall_BottomLessNeverRefreshes(t *testing.T) {
	clk := newManualClock()
	b := New[int](BottomLess(), WithClock(clk))
	task := &counter{}

	for i := 0; i < 100; i++ {
		clk.Advance(time.Hour)
		v, _ := b.Call(task)
		assert.Equal(t, 0, v)
	}
	assert.Equal(t, 1, task.calls)
}

func TestCall_TaskFailureLeavesEmpty(t *testing.T) {
	clk := newManualClock()
	b := New[int](ExpireWithinCounts(2), WithClock(clk))
	boom := errors.New("boom")

	_, err := b.Call(TaskFunc[int](func() (int, error) { return 7, nil }))
	require.NoError(t, err)
	_, _ = b.Call(TaskFunc[int](func() (int, error) { return 0, boom }))

	// Third call is past budget and the task fails.
	_, err = b.Call(TaskFunc[int](func() (int, error) { return 0, boom }))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Empty, b.State())
	assert.Equal(t, uint64(0), b.Hits())
	_, ok := b.Peek()
	assert.False(t, ok)

	// Next call tries again.
	v, err := b.Call(TaskFunc[int](func() (int, error) { return 8, nil }))
	require.NoError(t, err)
	assert.Equal(t, 8, v)
}

func TestRefresh_TransitionsToEmpty(t *testing.T) {
	clk := newManualClock()
	b := New[int](BottomLess(), WithClock(clk))
	task := &counter{}

	_, _ = b.Call(task)
	_, _ = b.Call(task)
	assert.Equal(t, Fresh, b.State())

	clk.Advance(3 * time.Second)
	b.Refresh()
	assert.Equal(t, Empty, b.State())
	assert.Equal(t, uint64(0), b.Hits())
	assert.Equal(t, clk.Now(), b.Epoch())
	assert.Equal(t, 1, task.calls, "refresh must not run a task")

	v, _ := b.Call(task)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, task.calls)
}

func TestReload_RunsTaskOnce(t *testing.T) {
	b := New[int](BottomLess(), WithClock(newManualClock()))
	task := &counter{}

	_, _ = b.Call(task)
	v, err := b.Reload(task)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, task.calls)
	assert.Equal(t, uint64(1), b.Hits())
}

func TestCall_ClockStepsBackwards(t *testing.T) {
	clk := newManualClock()
	b := New[string](ExpireWithinSeconds(1), WithClock(clk))

	_, _ = b.Call(Value(func() string { return "a" }))
	clk.Advance(-time.Hour)
	v, _ := b.Call(Value(func() string { return "b" }))
	assert.Equal(t, "a", v)
}

func TestPeek_DoesNotCount(t *testing.T) {
	b := New[string](ExpireWithinCounts(2), WithClock(newManualClock()))
	_, ok := b.Peek()
	assert.False(t, ok)

	_, _ = b.Call(Value(func() string { return "x" }))
	for i := 0; i < 5; i++ {
		v, ok := b.Peek()
		assert.True(t, ok)
		assert.Equal(t, "x", v)
	}
	assert.Equal(t, uint64(1), b.Hits())
}

type ints []int

func (s ints) Clone() ints { return append(ints(nil), s...) }

func TestCall_HandsOutCopies(t *testing.T) {
	b := New[ints](BottomLess(), WithClock(newManualClock()))
	task := Value(func() ints { return ints{1, 2, 3} })

	first, _ := b.Call(task)
	first[0] = 99

	second, _ := b.Call(task)
	assert.Equal(t, ints{1, 2, 3}, second)
}

func TestCloneWith(t *testing.T) {
	copies := 0
	b := New[[]string](BottomLess(), WithClock(newManualClock())).
		CloneWith(func(v []string) []string {
			copies++
			return append([]string(nil), v...)
		})

	v, _ := b.Call(Value(func() []string { return []string{"a"} }))
	v[0] = "z"
	v, _ = b.Call(Value(func() []string { return nil }))
	assert.Equal(t, []string{"a"}, v)
	assert.Equal(t, 2, copies)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "fresh", Fresh.String())
	assert.Equal(t, "stale", Stale.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestPolicyProjection(t *testing.T) {
	p := NewPolicy(10, 2, 3)
	b := New[int](p)
	assert.Equal(t, p, b.Policy())
}
