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
	"fmt"

	"github.com/windowkit/rxwindow/internal/boundedqueue"
)

// Window re-chunks upstream into a Publisher of Publisher[T] (a stream of
// windows, each itself a stream of T). size and skip pick one of three
// strategies: Exact when skip == size, Skip when skip > size, Overlap when
// skip < size. processorQueueSupplier allocates the bounded element buffer
// backing each window; overflowQueueSupplier allocates the queue of
// opened-but-undelivered windows and is only required (non-nil) for the
// Overlap strategy.
//
// Window panics if size <= 0, skip <= 0, or processorQueueSupplier is nil:
// these are programmer errors caught at construction, not at subscribe
// time. A queue supplier that fails or returns a nil queue while the stream
// is running is instead reported as an onError to the outer subscriber.
func Window[T any](upstream Publisher[T], size, skip int64, processorQueueSupplier boundedqueue.Supplier[T], overflowQueueSupplier boundedqueue.Supplier[Publisher[T]]) Publisher[Publisher[T]] {
	if size <= 0 {
		panic(fmt.Sprintf("rxwindow: size must be > 0, got %d", size))
	}
	if skip <= 0 {
		panic(fmt.Sprintf("rxwindow: skip must be > 0, got %d", skip))
	}
	if processorQueueSupplier == nil {
		panic("rxwindow: processorQueueSupplier must not be nil")
	}
	if skip < size && overflowQueueSupplier == nil {
		panic("rxwindow: overflowQueueSupplier must not be nil when skip < size")
	}

	return &windowOperator[T]{
		upstream:               upstream,
		size:                   size,
		skip:                   skip,
		processorQueueSupplier: processorQueueSupplier,
		overflowQueueSupplier:  overflowQueueSupplier,
	}
}

type windowOperator[T any] struct {
	upstream               Publisher[T]
	size, skip             int64
	processorQueueSupplier boundedqueue.Supplier[T]
	overflowQueueSupplier  boundedqueue.Supplier[Publisher[T]]
}

var _ Publisher[Publisher[int]] = (*windowOperator[int])(nil)

func (op *windowOperator[T]) Subscribe(observer Observer[Publisher[T]]) Subscription {
	return op.SubscribeWithContext(context.Background(), observer)
}

func (op *windowOperator[T]) SubscribeWithContext(ctx context.Context, observer Observer[Publisher[T]]) Subscription {
	switch {
	case op.skip == op.size:
		sub := newExactSubscriber(observer, op.size, op.processorQueueSupplier)
		op.upstream.SubscribeWithContext(ctx, sub)
		return sub
	case op.skip > op.size:
		sub := newSkipSubscriber(observer, op.size, op.skip, op.processorQueueSupplier)
		op.upstream.SubscribeWithContext(ctx, sub)
		return sub
	default:
		sub := newOverlapSubscriber(observer, op.size, op.skip, op.processorQueueSupplier, op.overflowQueueSupplier)
		op.upstream.SubscribeWithContext(ctx, sub)
		return sub
	}
}
