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
	"sync/atomic"

	"github.com/windowkit/rxwindow/internal/boundedqueue"
	"github.com/windowkit/rxwindow/internal/satmath"
)

// exactSubscriber implements the skip == size strategy: contiguous,
// non-overlapping windows of exactly size elements each.
type exactSubscriber[T any] struct {
	Subscription // teardown chaining only; Request/Cancel overridden below

	outer                  Observer[Publisher[T]]
	size                   int64
	processorQueueSupplier boundedqueue.Supplier[T]

	upstream Subscription // set once, on upstream OnSubscribe

	currentWindow *WindowPublisher[T]
	index         int64 // only touched from the upstream-signal path

	terminal  int32 // atomic: 0 none, 1 error, 2 complete
	cancelled onceLatch
}

var _ Subscriber[int] = (*exactSubscriber[int])(nil)

func newExactSubscriber[T any](outer Observer[Publisher[T]], size int64, processorQueueSupplier boundedqueue.Supplier[T]) *exactSubscriber[T] {
	return &exactSubscriber[T]{
		Subscription:           NewSubscription(nil),
		outer:                  outer,
		size:                   size,
		processorQueueSupplier: processorQueueSupplier,
	}
}

func (s *exactSubscriber[T]) OnSubscribe(subscription Subscription) {
	s.OnSubscribeWithContext(context.Background(), subscription)
}

func (s *exactSubscriber[T]) OnSubscribeWithContext(ctx context.Context, subscription Subscription) {
	if s.upstream != nil {
		OnDroppedNotification(ctx, NewNotificationError[Publisher[T]](errDuplicateUpstreamSubscribe))
		subscription.CancelWithContext(ctx)
		return
	}

	s.upstream = subscription
	s.outer.OnSubscribeWithContext(ctx, s)
}

func (s *exactSubscriber[T]) Next(v T) {
	s.NextWithContext(context.Background(), v)
}

func (s *exactSubscriber[T]) NextWithContext(ctx context.Context, v T) {
	if atomic.LoadInt32(&s.terminal) != 0 {
		OnDroppedNotification(ctx, NewNotificationNext(v))
		return
	}

	if s.index == 0 {
		buf, err := s.openQueue()
		if err != nil {
			s.failWithContext(ctx, err)
			return
		}

		s.currentWindow = NewWindowPublisher[T](buf, func() {})
		s.outer.NextWithContext(ctx, s.currentWindow)
	}

	if s.currentWindow != nil {
		s.currentWindow.pushNext(ctx, v)
	}

	s.index++
	if s.index == s.size {
		if s.currentWindow != nil {
			s.currentWindow.pushComplete(ctx)
		}
		s.currentWindow = nil
		s.index = 0
	}
}

func (s *exactSubscriber[T]) openQueue() (boundedqueue.Queue[T], error) {
	q, err := s.processorQueueSupplier()
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrNullSupplier
	}
	return q, nil
}

func (s *exactSubscriber[T]) failWithContext(ctx context.Context, err error) {
	atomic.StoreInt32(&s.terminal, 1)
	if s.upstream != nil {
		s.upstream.CancelWithContext(ctx)
	}
	s.outer.ErrorWithContext(ctx, err)
}

func (s *exactSubscriber[T]) Error(err error) {
	s.ErrorWithContext(context.Background(), err)
}

func (s *exactSubscriber[T]) ErrorWithContext(ctx context.Context, err error) {
	if !atomic.CompareAndSwapInt32(&s.terminal, 0, 1) {
		OnDroppedNotification(ctx, NewNotificationError[Publisher[T]](err))
		return
	}

	if s.currentWindow != nil {
		s.currentWindow.pushError(ctx, err)
		s.currentWindow = nil
	}
	s.outer.ErrorWithContext(ctx, err)
}

func (s *exactSubscriber[T]) Complete() {
	s.CompleteWithContext(context.Background())
}

func (s *exactSubscriber[T]) CompleteWithContext(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&s.terminal, 0, 2) {
		OnDroppedNotification(ctx, NewNotificationComplete[Publisher[T]]())
		return
	}

	if s.currentWindow != nil {
		s.currentWindow.pushComplete(ctx)
		s.currentWindow = nil
	}
	s.outer.CompleteWithContext(ctx)
}

func (s *exactSubscriber[T]) IsClosed() bool {
	return atomic.LoadInt32(&s.terminal) != 0 || s.cancelled.isTriggered()
}

func (s *exactSubscriber[T]) HasThrown() bool {
	return atomic.LoadInt32(&s.terminal) == 1
}

func (s *exactSubscriber[T]) IsCompleted() bool {
	return atomic.LoadInt32(&s.terminal) == 2
}

// Request translates outer demand for windows into upstream demand for
// elements: n windows of size elements each need size*n upstream elements.
func (s *exactSubscriber[T]) Request(n int64) {
	s.RequestWithContext(context.Background(), n)
}

func (s *exactSubscriber[T]) RequestWithContext(ctx context.Context, n int64) {
	if n <= 0 {
		OnDroppedNotification(ctx, NewNotificationError[Publisher[T]](errInvalidRequest))
		return
	}
	if s.upstream == nil {
		return
	}
	s.upstream.RequestWithContext(ctx, satmath.MulInt64(s.size, n))
}

func (s *exactSubscriber[T]) Cancel() {
	s.CancelWithContext(context.Background())
}

func (s *exactSubscriber[T]) CancelWithContext(ctx context.Context) {
	if !s.cancelled.trigger() {
		return
	}
	if s.upstream != nil {
		s.upstream.CancelWithContext(ctx)
	}
	s.Subscription.CancelWithContext(ctx)
}
