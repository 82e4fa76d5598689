// Copyright 2025 samber.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://github.com/samber/ro/blob/main/licenses/LICENSE.apache.md
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rxwindow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/windowkit/rxwindow/internal/boundedqueue"
)

// windowResult captures what a single window delivered to its own
// collector Observer.
type windowResult[T any] struct {
	values    []T
	err       error
	completed bool
}

// collectAll subscribes to pub with an outer Observer that requests
// unbounded demand, and for every window handed to it subscribes a second
// collector Observer (also unbounded demand) that records the window's
// contents. Every signal path exercised by these tests is synchronous, so
// by the time Subscribe returns every window result is final unless the
// test itself cancels mid-stream.
func collectAll[T any](pub Publisher[Publisher[T]]) (results []*windowResult[T], outerErr error, outerCompleted bool) {
	outer := NewObserverWithDemand[Publisher[T]](
		func(ctx context.Context, subscription Subscription) {
			subscription.RequestWithContext(ctx, 1<<62)
		},
		func(ctx context.Context, w Publisher[T]) {
			r := &windowResult[T]{}
			results = append(results, r)

			w.SubscribeWithContext(ctx, NewObserverWithDemand[T](
				func(ctx context.Context, innerSub Subscription) {
					innerSub.RequestWithContext(ctx, 1<<62)
				},
				func(ctx context.Context, v T) {
					r.values = append(r.values, v)
				},
				func(ctx context.Context, err error) {
					r.err = err
				},
				func(ctx context.Context) {
					r.completed = true
				},
			))
		},
		func(ctx context.Context, err error) {
			outerErr = err
		},
		func(ctx context.Context) {
			outerCompleted = true
		},
	)

	pub.Subscribe(outer)

	return results, outerErr, outerCompleted
}

func windowValues[T any](r []*windowResult[T]) [][]T {
	out := make([][]T, len(r))
	for i, w := range r {
		out[i] = w.values
	}
	return out
}

func TestWindow_Exact(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	upstream := NewSliceSource([]int{1, 2, 3, 4, 5, 6, 7, 8})
	op := Window[int](upstream, 3, 3, boundedqueue.NewSupplier[int](3), nil)

	results, outerErr, completed := collectAll[int](op)

	is.NoError(outerErr)
	is.True(completed)
	is.Equal([][]int{{1, 2, 3}, {4, 5, 6}, {7, 8}}, windowValues(results))
	for _, r := range results {
		is.True(r.completed)
		is.NoError(r.err)
	}
}

func TestWindow_Skip(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	upstream := NewSliceSource([]int{1, 2, 3, 4, 5, 6, 7, 8})
	op := Window[int](upstream, 3, 5, boundedqueue.NewSupplier[int](3), nil)

	results, outerErr, completed := collectAll[int](op)

	is.NoError(outerErr)
	is.True(completed)
	is.Equal([][]int{{1, 2, 3}, {6, 7, 8}}, windowValues(results))
}

func TestWindow_Overlap(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	upstream := NewSliceSource([]int{1, 2, 3, 4, 5})
	op := Window[int](upstream, 3, 1,
		boundedqueue.NewSupplier[int](3),
		boundedqueue.NewSupplier[Publisher[int]](4),
	)

	results, outerErr, completed := collectAll[int](op)

	is.NoError(outerErr)
	is.True(completed)
	is.Equal([][]int{
		{1, 2, 3},
		{2, 3, 4},
		{3, 4, 5},
		{4, 5},
		{5},
	}, windowValues(results))
}

// countingCancelSource wraps NewSliceSource and counts how many times its
// Subscription's Cancel is invoked, to check the at-most-once upstream
// cancel guarantee.
type countingCancelSource struct {
	inner    Publisher[int]
	cancels  int
}

func (c *countingCancelSource) Subscribe(observer Observer[int]) Subscription {
	return c.SubscribeWithContext(context.Background(), observer)
}

func (c *countingCancelSource) SubscribeWithContext(ctx context.Context, observer Observer[int]) Subscription {
	return c.inner.SubscribeWithContext(ctx, NewObserverWithDemand[int](
		func(ctx context.Context, sub Subscription) {
			observer.OnSubscribeWithContext(ctx, &countingCancelSubscription{Subscription: sub, counts: c})
		},
		func(ctx context.Context, v int) { observer.NextWithContext(ctx, v) },
		func(ctx context.Context, err error) { observer.ErrorWithContext(ctx, err) },
		func(ctx context.Context) { observer.CompleteWithContext(ctx) },
	))
}

type countingCancelSubscription struct {
	Subscription
	counts *countingCancelSource
}

func (s *countingCancelSubscription) Cancel() {
	s.counts.cancels++
	s.Subscription.Cancel()
}

func (s *countingCancelSubscription) CancelWithContext(ctx context.Context) {
	s.counts.cancels++
	s.Subscription.CancelWithContext(ctx)
}

func TestWindow_Overlap_CancelAfterTwoWindows(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	src := &countingCancelSource{inner: NewSliceSource([]int{1, 2, 3})}
	op := Window[int](src, 2, 1,
		boundedqueue.NewSupplier[int](2),
		boundedqueue.NewSupplier[Publisher[int]](2),
	)

	var sub Subscription
	windowCount := 0

	outer := NewObserverWithDemand[Publisher[int]](
		func(ctx context.Context, subscription Subscription) {
			sub = subscription
			subscription.RequestWithContext(ctx, 1<<62)
		},
		func(ctx context.Context, w Publisher[int]) {
			windowCount++
			w.SubscribeWithContext(ctx, NoopObserver[int]())
			if windowCount == 2 {
				sub.CancelWithContext(ctx)
			}
		},
		func(ctx context.Context, err error) {},
		func(ctx context.Context) {},
	)

	op.Subscribe(outer)

	is.Equal(1, src.cancels)
	is.Equal(2, windowCount)
}

func TestWindow_Exact_UpstreamError(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	wantErr := errors.New("boom")
	upstream := NewSliceSourceWithError([]int{1, 2}, wantErr)
	op := Window[int](upstream, 3, 3, boundedqueue.NewSupplier[int](3), nil)

	results, outerErr, completed := collectAll[int](op)

	is.Equal(wantErr, outerErr)
	is.False(completed)
	is.Len(results, 1)
	is.Equal([]int{1, 2}, results[0].values)
	is.Equal(wantErr, results[0].err)
}

func TestWindow_Overlap_NullSupplier(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	upstream := NewSliceSource([]int{1, 2, 3, 4, 5})

	opened := 0
	processorSupplier := func() (boundedqueue.Queue[int], error) {
		opened++
		if opened == 3 {
			return nil, nil
		}
		return boundedqueue.NewQueue[int](2), nil
	}

	op := Window[int](upstream, 2, 1, processorSupplier, boundedqueue.NewSupplier[Publisher[int]](2))

	results, outerErr, completed := collectAll[int](op)

	is.ErrorIs(outerErr, ErrNullSupplier)
	is.False(completed)
	is.Len(results, 2)
	is.True(results[0].completed)
	is.ErrorIs(results[1].err, ErrNullSupplier)
}
