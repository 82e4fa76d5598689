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

	"golang.org/x/exp/slices"

	"github.com/windowkit/rxwindow/internal/boundedqueue"
	"github.com/windowkit/rxwindow/internal/satmath"
)

// overlapSubscriber implements the skip < size strategy: up to
// ceil(size/skip) windows open simultaneously. This is the core of the
// operator: a serialized drain loop moves opened windows from readyQueue to
// the outer subscriber according to outer demand, while the upstream-signal
// path fans every element into every currently open window and retires the
// oldest one once it has accumulated size elements.
type overlapSubscriber[T any] struct {
	Subscription // teardown chaining only; Cancel/Request overridden below

	outer                  Observer[Publisher[T]]
	size, skip             int64
	processorQueueSupplier boundedqueue.Supplier[T]
	overflowQueueSupplier  boundedqueue.Supplier[Publisher[T]]

	upstream Subscription

	// Upstream-signal-path-only state; never touched from Request/Cancel.
	openWindows []*WindowPublisher[T]
	produced    int64
	index       int64

	readyQueue boundedqueue.Queue[Publisher[T]]

	requested int64 // atomic, saturating
	dw        int32 // atomic work-claim counter

	active       *activeCounter
	cancelled    onceLatch
	firstRequest onceLatch

	done  int32 // atomic bool: upstream reached a terminal signal
	err   error
	onErr int32 // atomic bool: err is stored; set after done, never before
}

var _ Subscriber[int] = (*overlapSubscriber[int])(nil)

func newOverlapSubscriber[T any](outer Observer[Publisher[T]], size, skip int64, processorQueueSupplier boundedqueue.Supplier[T], overflowQueueSupplier boundedqueue.Supplier[Publisher[T]]) *overlapSubscriber[T] {
	s := &overlapSubscriber[T]{
		Subscription:           NewSubscription(nil),
		outer:                  outer,
		size:                   size,
		skip:                   skip,
		processorQueueSupplier: processorQueueSupplier,
		overflowQueueSupplier:  overflowQueueSupplier,
	}
	s.active = newActiveCounter(func() {
		if s.upstream != nil {
			s.upstream.Cancel()
		}
	})
	return s
}

func (s *overlapSubscriber[T]) OnSubscribe(subscription Subscription) {
	s.OnSubscribeWithContext(context.Background(), subscription)
}

func (s *overlapSubscriber[T]) OnSubscribeWithContext(ctx context.Context, subscription Subscription) {
	if s.upstream != nil {
		OnDroppedNotification(ctx, NewNotificationError[Publisher[T]](errDuplicateUpstreamSubscribe))
		subscription.CancelWithContext(ctx)
		return
	}

	q, err := s.overflowQueueSupplier()
	if err == nil && q == nil {
		err = ErrNullSupplier
	}
	if err != nil {
		subscription.CancelWithContext(ctx)
		s.outer.ErrorWithContext(ctx, err)
		return
	}
	s.readyQueue = q

	s.upstream = subscription
	s.outer.OnSubscribeWithContext(ctx, s)
}

func (s *overlapSubscriber[T]) Next(v T) {
	s.NextWithContext(context.Background(), v)
}

func (s *overlapSubscriber[T]) NextWithContext(ctx context.Context, v T) {
	if atomic.LoadInt32(&s.done) != 0 {
		OnDroppedNotification(ctx, NewNotificationNext(v))
		return
	}

	if s.index == 0 && !s.cancelled.isTriggered() {
		buf, err := s.processorQueueSupplier()
		if err == nil && buf == nil {
			err = ErrNullSupplier
		}
		if err != nil {
			atomic.StoreInt32(&s.done, 1)

			// The failed window itself never opened, so only the windows
			// already open get a terminal signal; each still owes active
			// one release, same as the upstream-error path below.
			for _, w := range s.openWindows {
				w.pushError(ctx, err)
				s.active.release()
			}
			s.openWindows = nil

			if s.upstream != nil {
				s.upstream.CancelWithContext(ctx)
			}
			s.outer.ErrorWithContext(ctx, err)
			return
		}

		w := NewWindowPublisher[T](buf, func() {})
		s.openWindows = append(s.openWindows, w)
		if !s.readyQueue.Offer(w) {
			OnDroppedNotification(ctx, NewNotificationNext[Publisher[T]](w))
		}
		s.active.acquire()
		s.drain(ctx)
	}

	for _, w := range s.openWindows {
		w.pushNext(ctx, v)
	}

	p := s.produced + 1
	if p == s.size {
		if len(s.openWindows) > 0 {
			head := s.openWindows[0]
			s.openWindows = slices.Delete(s.openWindows, 0, 1)
			head.pushComplete(ctx)
			s.active.release()
		}
		s.produced = p - s.skip
	} else {
		s.produced = p
	}

	i := s.index + 1
	if i == s.skip {
		s.index = 0
	} else {
		s.index = i
	}
}

func (s *overlapSubscriber[T]) Error(err error) {
	s.ErrorWithContext(context.Background(), err)
}

func (s *overlapSubscriber[T]) ErrorWithContext(ctx context.Context, err error) {
	if !atomic.CompareAndSwapInt32(&s.done, 0, 1) {
		OnDroppedNotification(ctx, NewNotificationError[Publisher[T]](err))
		return
	}

	for _, w := range s.openWindows {
		w.pushError(ctx, err)
		s.active.release()
	}
	s.openWindows = nil

	s.err = err
	atomic.StoreInt32(&s.onErr, 1)
	s.drain(ctx)
}

func (s *overlapSubscriber[T]) Complete() {
	s.CompleteWithContext(context.Background())
}

func (s *overlapSubscriber[T]) CompleteWithContext(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&s.done, 0, 2) {
		OnDroppedNotification(ctx, NewNotificationComplete[Publisher[T]]())
		return
	}

	for _, w := range s.openWindows {
		w.pushComplete(ctx)
		s.active.release()
	}
	s.openWindows = nil

	s.drain(ctx)
}

func (s *overlapSubscriber[T]) IsClosed() bool {
	return atomic.LoadInt32(&s.done) != 0 || s.cancelled.isTriggered()
}

func (s *overlapSubscriber[T]) HasThrown() bool {
	return atomic.LoadInt32(&s.done) == 1 && atomic.LoadInt32(&s.onErr) != 0
}

func (s *overlapSubscriber[T]) IsCompleted() bool {
	return atomic.LoadInt32(&s.done) == 2
}

// Request saturatingly adds n to outstanding demand, translates it into an
// upstream request, and re-enters drain. The first outer request must fill
// the initial window plus the strides needed for the remaining n-1 windows;
// subsequent requests are a plain multiple of the stride.
func (s *overlapSubscriber[T]) Request(n int64) {
	s.RequestWithContext(context.Background(), n)
}

func (s *overlapSubscriber[T]) RequestWithContext(ctx context.Context, n int64) {
	if n <= 0 {
		OnDroppedNotification(ctx, NewNotificationError[Publisher[T]](errInvalidRequest))
		return
	}

	for {
		cur := atomic.LoadInt64(&s.requested)
		next := satmath.AddInt64(cur, n)
		if atomic.CompareAndSwapInt64(&s.requested, cur, next) {
			break
		}
	}

	if s.upstream != nil {
		var upstreamN int64
		if s.firstRequest.trigger() {
			// First outer request: the initial window needs size elements,
			// and each of the remaining n-1 windows starts skip later.
			upstreamN = satmath.AddInt64(s.size, satmath.MulInt64(s.skip, n-1))
		} else {
			upstreamN = satmath.MulInt64(s.skip, n)
		}
		s.upstream.RequestWithContext(ctx, upstreamN)
	}

	s.drain(ctx)
}

// Cancel is idempotent: it marks cancelled and releases the baseline active
// unit. Upstream is not cancelled here directly; it is cancelled by the
// active counter once every still-open window has also released.
func (s *overlapSubscriber[T]) Cancel() {
	s.CancelWithContext(context.Background())
}

func (s *overlapSubscriber[T]) CancelWithContext(ctx context.Context) {
	if !s.cancelled.trigger() {
		return
	}
	s.Subscription.CancelWithContext(ctx)
	s.active.release()
	s.drain(ctx)
}

// drain is the serialized emission loop: only the caller that raises dw from
// zero performs work, every other concurrent caller's contribution is
// absorbed by that entrant's next iteration.
func (s *overlapSubscriber[T]) drain(ctx context.Context) {
	if atomic.AddInt32(&s.dw, 1) != 1 {
		return
	}

	missed := int32(1)
	for {
		emitted := int64(0)
		requested := atomic.LoadInt64(&s.requested)

		for emitted < requested {
			done := atomic.LoadInt32(&s.done) != 0
			w, ok := s.readyQueue.Poll()
			empty := !ok

			if s.checkTerminated(ctx, done, empty) {
				return
			}
			if empty {
				break
			}

			s.outer.NextWithContext(ctx, w)
			emitted++
		}

		if emitted == requested && s.checkTerminated(ctx, atomic.LoadInt32(&s.done) != 0, s.readyQueue.IsEmpty()) {
			return
		}

		if emitted > 0 && requested != satmath.MaxInt64 {
			atomic.AddInt64(&s.requested, -emitted)
		}

		missed = atomic.AddInt32(&s.dw, -missed)
		if missed == 0 {
			break
		}
	}
}

// checkTerminated implements the shared terminal-check policy for the drain
// loop: cancellation wins outright; otherwise a stored upstream error or an
// empty, completed ready queue resolves the outer subscription.
func (s *overlapSubscriber[T]) checkTerminated(ctx context.Context, done, empty bool) bool {
	if s.cancelled.isTriggered() {
		s.drainReadyQueue()
		return true
	}

	if done {
		if atomic.LoadInt32(&s.onErr) != 0 {
			s.drainReadyQueue()
			s.outer.ErrorWithContext(ctx, s.err)
			return true
		}
		if empty && atomic.LoadInt32(&s.done) == 2 {
			s.outer.CompleteWithContext(ctx)
			return true
		}
	}

	return false
}

func (s *overlapSubscriber[T]) drainReadyQueue() {
	for {
		if _, ok := s.readyQueue.Poll(); !ok {
			return
		}
	}
}
