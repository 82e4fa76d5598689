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

import "context"

// Publisher is a reactive-streams source: calling Subscribe hands the
// Observer a Subscription via OnSubscribe, after which elements, at most one
// error, or at most one completion are delivered according to demand
// signaled through that Subscription.
//
// Window itself is a Publisher of Publisher[T]: the outer subscriber
// receives window handles, each of which is in turn a Publisher[T].
type Publisher[T any] interface {
	Subscribe(observer Observer[T]) Subscription
	SubscribeWithContext(ctx context.Context, observer Observer[T]) Subscription
}

var _ Publisher[int] = (*sliceSource[int])(nil)

// NewSliceSource returns a Publisher that emits the given values in order,
// then completes, honoring Request-driven demand. It exists for composing
// and testing window subscribers against a known upstream sequence; it is
// not a performance-oriented general-purpose source.
func NewSliceSource[T any](values []T) Publisher[T] {
	return &sliceSource[T]{values: values}
}

// NewSliceSourceWithError is NewSliceSource, except once every value has
// been delivered the source emits err instead of completing.
func NewSliceSourceWithError[T any](values []T, err error) Publisher[T] {
	return &sliceSource[T]{values: values, err: err}
}

type sliceSource[T any] struct {
	values []T
	err    error
}

func (p *sliceSource[T]) Subscribe(observer Observer[T]) Subscription {
	return p.SubscribeWithContext(context.Background(), observer)
}

func (p *sliceSource[T]) SubscribeWithContext(ctx context.Context, observer Observer[T]) Subscription {
	s := &sliceSourceSubscription[T]{
		values:   p.values,
		err:      p.err,
		observer: observer,
	}
	s.Subscription = NewSubscription(nil)
	observer.OnSubscribeWithContext(ctx, s)
	return s
}

// sliceSourceSubscription drains values synchronously within Request, which
// is sufficient since every signal path in this module tolerates reentrant,
// synchronous delivery from Request (the overlap subscriber's own upstream
// Subscription behaves the same way in production reactive-streams
// libraries: fast sources reply to request() inline).
type sliceSourceSubscription[T any] struct {
	Subscription
	values   []T
	err      error
	observer Observer[T]
	offset   int
}

func (s *sliceSourceSubscription[T]) Request(n int64) {
	s.RequestWithContext(context.Background(), n)
}

func (s *sliceSourceSubscription[T]) RequestWithContext(ctx context.Context, n int64) {
	if n <= 0 {
		OnDroppedNotification(ctx, NewNotificationError[T](errInvalidRequest))
		return
	}

	for i := int64(0); i < n; i++ {
		if s.IsClosed() {
			return
		}
		if s.offset >= len(s.values) {
			s.Subscription.Cancel()
			if s.err != nil {
				s.observer.ErrorWithContext(ctx, s.err)
			} else {
				s.observer.CompleteWithContext(ctx)
			}
			return
		}
		v := s.values[s.offset]
		s.offset++
		s.observer.NextWithContext(ctx, v)
	}
}
