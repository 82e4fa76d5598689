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

// skipSubscriber implements the skip > size strategy: windows of size
// elements beginning every skip upstream elements, with skip-size elements
// dropped between windows.
type skipSubscriber[T any] struct {
	Subscription

	outer                  Observer[Publisher[T]]
	size, skip             int64
	processorQueueSupplier boundedqueue.Supplier[T]

	upstream Subscription

	currentWindow *WindowPublisher[T]
	index         int64

	firstRequest onceLatch
	terminal     int32
	cancelled    onceLatch
}

var _ Subscriber[int] = (*skipSubscriber[int])(nil)

func newSkipSubscriber[T any](outer Observer[Publisher[T]], size, skip int64, processorQueueSupplier boundedqueue.Supplier[T]) *skipSubscriber[T] {
	return &skipSubscriber[T]{
		Subscription:           NewSubscription(nil),
		outer:                  outer,
		size:                   size,
		skip:                   skip,
		processorQueueSupplier: processorQueueSupplier,
	}
}

func (s *skipSubscriber[T]) OnSubscribe(subscription Subscription) {
	s.OnSubscribeWithContext(context.Background(), subscription)
}

func (s *skipSubscriber[T]) OnSubscribeWithContext(ctx context.Context, subscription Subscription) {
	if s.upstream != nil {
		OnDroppedNotification(ctx, NewNotificationError[Publisher[T]](errDuplicateUpstreamSubscribe))
		subscription.CancelWithContext(ctx)
		return
	}

	s.upstream = subscription
	s.outer.OnSubscribeWithContext(ctx, s)
}

func (s *skipSubscriber[T]) Next(v T) {
	s.NextWithContext(context.Background(), v)
}

func (s *skipSubscriber[T]) NextWithContext(ctx context.Context, v T) {
	if atomic.LoadInt32(&s.terminal) != 0 {
		OnDroppedNotification(ctx, NewNotificationNext(v))
		return
	}

	if s.index == 0 {
		q, err := s.processorQueueSupplier()
		if err == nil && q == nil {
			err = ErrNullSupplier
		}
		if err != nil {
			s.failWithContext(ctx, err)
			return
		}

		s.currentWindow = NewWindowPublisher[T](q, func() {})
		s.outer.NextWithContext(ctx, s.currentWindow)
	}

	if s.currentWindow != nil {
		s.currentWindow.pushNext(ctx, v)
	}

	i := s.index + 1
	if i == s.size {
		if s.currentWindow != nil {
			s.currentWindow.pushComplete(ctx)
			s.currentWindow = nil
		}
	}
	if i == s.skip {
		s.index = 0
	} else {
		s.index = i
	}
}

func (s *skipSubscriber[T]) failWithContext(ctx context.Context, err error) {
	atomic.StoreInt32(&s.terminal, 1)
	if s.upstream != nil {
		s.upstream.CancelWithContext(ctx)
	}
	s.outer.ErrorWithContext(ctx, err)
}

func (s *skipSubscriber[T]) Error(err error) {
	s.ErrorWithContext(context.Background(), err)
}

func (s *skipSubscriber[T]) ErrorWithContext(ctx context.Context, err error) {
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

func (s *skipSubscriber[T]) Complete() {
	s.CompleteWithContext(context.Background())
}

func (s *skipSubscriber[T]) CompleteWithContext(ctx context.Context) {
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

func (s *skipSubscriber[T]) IsClosed() bool {
	return atomic.LoadInt32(&s.terminal) != 0 || s.cancelled.isTriggered()
}

func (s *skipSubscriber[T]) HasThrown() bool {
	return atomic.LoadInt32(&s.terminal) == 1
}

func (s *skipSubscriber[T]) IsCompleted() bool {
	return atomic.LoadInt32(&s.terminal) == 2
}

func (s *skipSubscriber[T]) Request(n int64) {
	s.RequestWithContext(context.Background(), n)
}

// RequestWithContext expands the first outer request into enough upstream
// elements to fill the first window plus n-1 full strides; every
// subsequent request is a plain multiple of the stride.
func (s *skipSubscriber[T]) RequestWithContext(ctx context.Context, n int64) {
	if n <= 0 {
		OnDroppedNotification(ctx, NewNotificationError[Publisher[T]](errInvalidRequest))
		return
	}
	if s.upstream == nil {
		return
	}

	var upstreamN int64
	if s.firstRequest.trigger() {
		upstreamN = satmath.AddInt64(
			satmath.MulInt64(s.size, n),
			satmath.MulInt64(s.skip-s.size, n-1),
		)
	} else {
		upstreamN = satmath.MulInt64(s.skip, n)
	}

	s.upstream.RequestWithContext(ctx, upstreamN)
}

func (s *skipSubscriber[T]) Cancel() {
	s.CancelWithContext(context.Background())
}

func (s *skipSubscriber[T]) CancelWithContext(ctx context.Context) {
	if !s.cancelled.trigger() {
		return
	}
	if s.upstream != nil {
		s.upstream.CancelWithContext(ctx)
	}
	s.Subscription.CancelWithContext(ctx)
}
