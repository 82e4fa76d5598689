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

// WindowPublisher is the hot, single-subscriber Publisher backing one
// window. Elements are pushed onto it by the window subscriber's serialized
// upstream-signal path (pushNext/pushError/pushComplete) and buffered in a
// bounded queue; the single inner subscriber drains that queue according to
// its own Request calls, which may arrive on any goroutine. The drain
// algorithm is the same work-claim pattern as the overlap subscriber's outer
// drain loop, applied here to a single window's element buffer instead of a
// queue of windows.
type WindowPublisher[T any] struct {
	buffer boundedqueue.Queue[T]

	subscribed int32 // one-shot: Subscribe may only succeed once

	observer Observer[T]

	requested int64 // atomic, saturating
	dw        int32 // atomic work-claim counter

	done  int32 // atomic bool: producer side reached a terminal signal
	err   error // set once, after done is set and before onErr is set
	onErr int32 // atomic bool: terminal was an error rather than complete

	cancelled int32 // atomic bool: the inner subscriber cancelled
	release   func()
	released  onceLatch
}

var _ Publisher[int] = (*WindowPublisher[int])(nil)

// NewWindowPublisher creates a WindowPublisher backed by buffer. onRelease
// runs exactly once, the first time this window's single subscriber
// cancels or this window reaches a terminal signal with its buffer drained.
// The window subscribers in this package pass a no-op: the overlap
// subscriber releases its active count itself when it completes or fails a
// window, so an inner subscriber's Cancel does not release that count.
func NewWindowPublisher[T any](buffer boundedqueue.Queue[T], onRelease func()) *WindowPublisher[T] {
	return &WindowPublisher[T]{
		buffer:  buffer,
		release: onRelease,
	}
}

func (w *WindowPublisher[T]) Subscribe(observer Observer[T]) Subscription {
	return w.SubscribeWithContext(context.Background(), observer)
}

func (w *WindowPublisher[T]) SubscribeWithContext(ctx context.Context, observer Observer[T]) Subscription {
	if !atomic.CompareAndSwapInt32(&w.subscribed, 0, 1) {
		sub := NewSubscription(nil)
		observer.OnSubscribeWithContext(ctx, sub)
		observer.ErrorWithContext(ctx, errMultipleWindowSubscribers)
		return sub
	}

	w.observer = observer

	sub := newWindowSubscription(w)
	observer.OnSubscribeWithContext(ctx, sub)
	return sub
}

func (w *WindowPublisher[T]) pushNext(ctx context.Context, v T) {
	if atomic.LoadInt32(&w.done) != 0 {
		OnDroppedNotification(ctx, NewNotificationNext(v))
		return
	}
	if !w.buffer.Offer(v) {
		OnDroppedNotification(ctx, NewNotificationNext(v))
		return
	}
	w.drain(ctx)
}

func (w *WindowPublisher[T]) pushError(ctx context.Context, err error) {
	if !atomic.CompareAndSwapInt32(&w.done, 0, 1) {
		OnDroppedNotification(ctx, NewNotificationError[T](err))
		return
	}
	w.err = err
	atomic.StoreInt32(&w.onErr, 1)
	w.drain(ctx)
}

func (w *WindowPublisher[T]) pushComplete(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&w.done, 0, 1) {
		OnDroppedNotification(ctx, NewNotificationComplete[T]())
		return
	}
	w.drain(ctx)
}

// drain moves buffered elements to the observer while requested demand and
// buffered elements both remain, then emits a terminal signal once the
// buffer is drained and done is set. Concurrent callers (Request, and each
// push* call) all funnel through this same work-claim loop.
func (w *WindowPublisher[T]) drain(ctx context.Context) {
	if atomic.AddInt32(&w.dw, 1) != 1 {
		return
	}

	missed := int32(1)
	for {
		emitted := int64(0)
		requested := atomic.LoadInt64(&w.requested)

		for emitted < requested {
			if atomic.LoadInt32(&w.cancelled) != 0 {
				w.releaseOnce()
				return
			}

			v, ok := w.buffer.Poll()
			if !ok {
				if atomic.LoadInt32(&w.done) != 0 && w.buffer.IsEmpty() {
					w.emitTerminal(ctx)
					return
				}
				break
			}

			w.observer.NextWithContext(ctx, v)
			emitted++
		}

		if atomic.LoadInt32(&w.cancelled) != 0 {
			w.releaseOnce()
			return
		}

		if emitted == requested && atomic.LoadInt32(&w.done) != 0 && w.buffer.IsEmpty() {
			w.emitTerminal(ctx)
			return
		}

		if emitted > 0 && requested != satmath.MaxInt64 {
			atomic.AddInt64(&w.requested, -emitted)
		}

		missed = atomic.AddInt32(&w.dw, -missed)
		if missed == 0 {
			break
		}
	}
}

func (w *WindowPublisher[T]) emitTerminal(ctx context.Context) {
	if atomic.LoadInt32(&w.onErr) != 0 {
		w.observer.ErrorWithContext(ctx, w.err)
	} else {
		w.observer.CompleteWithContext(ctx)
	}
	w.releaseOnce()
}

func (w *WindowPublisher[T]) releaseOnce() {
	if w.released.trigger() && w.release != nil {
		w.release()
	}
}

type windowSubscription[T any] struct {
	Subscription
	w *WindowPublisher[T]
}

func newWindowSubscription[T any](w *WindowPublisher[T]) *windowSubscription[T] {
	return &windowSubscription[T]{
		Subscription: NewSubscription(nil),
		w:            w,
	}
}

func (s *windowSubscription[T]) Request(n int64) {
	s.RequestWithContext(context.Background(), n)
}

func (s *windowSubscription[T]) RequestWithContext(ctx context.Context, n int64) {
	if n <= 0 {
		OnDroppedNotification(ctx, NewNotificationError[T](errInvalidRequest))
		return
	}

	for {
		cur := atomic.LoadInt64(&s.w.requested)
		next := satmath.AddInt64(cur, n)
		if atomic.CompareAndSwapInt64(&s.w.requested, cur, next) {
			break
		}
	}

	s.w.drain(ctx)
}

func (s *windowSubscription[T]) Cancel() {
	s.CancelWithContext(context.Background())
}

func (s *windowSubscription[T]) CancelWithContext(ctx context.Context) {
	atomic.StoreInt32(&s.w.cancelled, 1)
	s.Subscription.CancelWithContext(ctx)
	s.w.releaseOnce()
}
