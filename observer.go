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
	"sync/atomic"

	"github.com/samber/lo"
	"github.com/windowkit/rxwindow/internal/satmath"
	"github.com/windowkit/rxwindow/internal/xerrors"
)

// Context key used to opt-out of observer panic capture for a specific
// subscription. Use WithObserverPanicCaptureDisabled to set this value on a
// subscription's context. The key type is unexported to avoid collisions
// with user-defined context keys.
type observerPanicCaptureDisabledKeyType struct{}

var observerPanicCaptureDisabledKey observerPanicCaptureDisabledKeyType

// WithObserverPanicCaptureDisabled returns a derived context that disables
// wrapping observer callbacks with panic-capture for the subscription that
// uses this context. Intended for benchmarking or latency-sensitive
// pipelines; by default the library keeps panic-capture enabled.
func WithObserverPanicCaptureDisabled(ctx context.Context) context.Context {
	return context.WithValue(ctx, observerPanicCaptureDisabledKey, true)
}

func isObserverPanicCaptureDisabled(ctx context.Context) bool {
	v := ctx.Value(observerPanicCaptureDisabledKey)
	b, ok := v.(bool)
	return ok && b
}

// Observer is the consumer of a Publisher. It receives OnSubscribe once,
// followed by zero or more Next calls, followed by at most one of Error or
// Complete. Observers are safe for concurrent calls to Next, Error, and
// Complete; it is the Publisher's responsibility not to call them out of
// order or after a terminal signal (late signals go to the
// dropped-notification side channel instead).
type Observer[T any] interface {
	// OnSubscribe hands the Observer its Subscription. The Observer must
	// call Request on it (directly or via the default behavior below)
	// before any element will be delivered.
	OnSubscribe(subscription Subscription)
	OnSubscribeWithContext(ctx context.Context, subscription Subscription)

	// Next receives the next value. Called zero or more times, never after
	// Error or Complete.
	Next(value T)
	NextWithContext(ctx context.Context, value T)
	// Error receives an error. Called at most once, terminal.
	Error(err error)
	ErrorWithContext(ctx context.Context, err error)
	// Complete receives a completion notification. Called at most once,
	// terminal.
	Complete()
	CompleteWithContext(ctx context.Context)

	// IsClosed returns true once the Observer has reached a terminal state.
	IsClosed() bool
	// HasThrown returns true if the Observer received an error.
	HasThrown() bool
	// IsCompleted returns true if the Observer received a completion.
	IsCompleted() bool
}

var _ Observer[int] = (*observerImpl[int])(nil)

// NewObserver creates an Observer from the given callbacks. It requests
// unbounded demand (MaxInt64) as soon as it is subscribed, matching the
// eager-consumption default expected by simple collector-style observers.
func NewObserver[T any](onNext func(value T), onError func(err error), onComplete func()) Observer[T] {
	return NewObserverWithContext(
		func(ctx context.Context, value T) { onNext(value) },
		func(ctx context.Context, err error) { onError(err) },
		func(ctx context.Context) { onComplete() },
	)
}

// NewObserverWithContext creates an Observer from the given callbacks, each
// receiving a context. It requests unbounded demand as soon as it is
// subscribed; use NewObserverWithDemand to take control of Request calls.
func NewObserverWithContext[T any](onNext func(ctx context.Context, value T), onError func(ctx context.Context, err error), onComplete func(ctx context.Context)) Observer[T] {
	return &observerImpl[T]{
		status:        0,
		capturePanics: true,
		onNext:        onNext,
		onError:       onError,
		onComplete:    onComplete,
		onSubscribe: func(ctx context.Context, subscription Subscription) {
			subscription.RequestWithContext(ctx, satmath.MaxInt64)
		},
	}
}

// NewObserverWithDemand creates an Observer that delegates subscription
// handling (and therefore Request timing) to onSubscribe, instead of
// requesting unbounded demand automatically.
func NewObserverWithDemand[T any](onSubscribe func(ctx context.Context, subscription Subscription), onNext func(ctx context.Context, value T), onError func(ctx context.Context, err error), onComplete func(ctx context.Context)) Observer[T] {
	return &observerImpl[T]{
		status:        0,
		capturePanics: true,
		onNext:        onNext,
		onError:       onError,
		onComplete:    onComplete,
		onSubscribe:   onSubscribe,
	}
}

// NewUnsafeObserver creates an Observer that does NOT wrap callbacks with
// panic-recovery. Use only in performance-sensitive paths where callers
// guarantee no panics, or want panics to propagate.
func NewUnsafeObserver[T any](onNext func(value T), onError func(err error), onComplete func()) Observer[T] {
	return NewObserverWithContextUnsafe(
		func(ctx context.Context, value T) { onNext(value) },
		func(ctx context.Context, err error) { onError(err) },
		func(ctx context.Context) { onComplete() },
	)
}

// NewObserverWithContextUnsafe creates an Observer that does NOT wrap
// callbacks with panic-recovery and receives a context in each callback.
func NewObserverWithContextUnsafe[T any](onNext func(ctx context.Context, value T), onError func(ctx context.Context, err error), onComplete func(ctx context.Context)) Observer[T] {
	return &observerImpl[T]{
		status:        0,
		capturePanics: false,
		onNext:        onNext,
		onError:       onError,
		onComplete:    onComplete,
		onSubscribe: func(ctx context.Context, subscription Subscription) {
			subscription.RequestWithContext(ctx, satmath.MaxInt64)
		},
	}
}

type observerImpl[T any] struct {
	// 0: active, 1: errored, 2: completed
	status        int32
	capturePanics bool
	onSubscribe   func(context.Context, Subscription)
	onNext        func(context.Context, T)
	onError       func(context.Context, error)
	onComplete    func(context.Context)
}

func (o *observerImpl[T]) OnSubscribe(subscription Subscription) {
	o.OnSubscribeWithContext(context.Background(), subscription)
}

func (o *observerImpl[T]) OnSubscribeWithContext(ctx context.Context, subscription Subscription) {
	if o.onSubscribe == nil {
		return
	}
	o.onSubscribe(ctx, subscription)
}

func (o *observerImpl[T]) Next(value T) {
	o.NextWithContext(context.Background(), value)
}

func (o *observerImpl[T]) NextWithContext(ctx context.Context, value T) {
	if o.onNext == nil || atomic.LoadInt32(&o.status) != 0 {
		OnDroppedNotification(ctx, NewNotificationNext(value))
		return
	}

	o.tryNext(ctx, value)
}

func (o *observerImpl[T]) Error(err error) {
	o.ErrorWithContext(context.Background(), err)
}

func (o *observerImpl[T]) ErrorWithContext(ctx context.Context, err error) {
	if o.onError == nil || !atomic.CompareAndSwapInt32(&o.status, 0, 1) {
		OnDroppedNotification(ctx, NewNotificationError[T](err))
		return
	}

	o.tryError(ctx, err)
}

func (o *observerImpl[T]) Complete() {
	o.CompleteWithContext(context.Background())
}

func (o *observerImpl[T]) CompleteWithContext(ctx context.Context) {
	if o.onComplete == nil || !atomic.CompareAndSwapInt32(&o.status, 0, 2) {
		OnDroppedNotification(ctx, NewNotificationComplete[T]())
		return
	}

	o.tryComplete(ctx)
}

func (o *observerImpl[T]) tryNext(ctx context.Context, value T) {
	if !o.capturePanics || isObserverPanicCaptureDisabled(ctx) {
		o.onNext(ctx, value)
		return
	}

	lo.TryCatchWithErrorValue(
		func() error {
			o.onNext(ctx, value)
			return nil
		},
		func(e any) {
			err := xerrors.NewObserverError(xerrors.RecoverValueToError(e))

			if o.onError == nil {
				OnUnhandledError(ctx, err)
			} else {
				o.tryError(ctx, err)
			}
		},
	)
}

func (o *observerImpl[T]) tryError(ctx context.Context, err error) {
	if !o.capturePanics || isObserverPanicCaptureDisabled(ctx) {
		o.onError(ctx, err)
		return
	}

	lo.TryCatchWithErrorValue(
		func() error {
			o.onError(ctx, err)
			return nil
		},
		func(e any) {
			OnUnhandledError(ctx, xerrors.NewObserverError(xerrors.RecoverValueToError(e)))
		},
	)
}

func (o *observerImpl[T]) tryComplete(ctx context.Context) {
	if !o.capturePanics || isObserverPanicCaptureDisabled(ctx) {
		o.onComplete(ctx)
		return
	}

	lo.TryCatchWithErrorValue(
		func() error {
			o.onComplete(ctx)
			return nil
		},
		func(e any) {
			OnUnhandledError(ctx, xerrors.NewObserverError(xerrors.RecoverValueToError(e)))
		},
	)
}

func (o *observerImpl[T]) IsClosed() bool {
	return atomic.LoadInt32(&o.status) != 0
}

func (o *observerImpl[T]) HasThrown() bool {
	return atomic.LoadInt32(&o.status) == 1
}

func (o *observerImpl[T]) IsCompleted() bool {
	return atomic.LoadInt32(&o.status) == 2
}

/*********************
 * Partial Observers *
 *********************/

// OnNext is a partial Observer with only the Next method implemented.
// Warning: this observer silences errors.
func OnNext[T any](onNext func(value T)) Observer[T] {
	return NewObserver(onNext, func(err error) {}, func() {})
}

// OnNextWithContext is a partial Observer with only the Next method
// implemented. Warning: this observer silences errors.
func OnNextWithContext[T any](onNext func(ctx context.Context, value T)) Observer[T] {
	return NewObserverWithContext(onNext, func(ctx context.Context, err error) {}, func(ctx context.Context) {})
}

// NoopObserver is an Observer that does nothing. Warning: this observer
// silences errors.
func NoopObserver[T any]() Observer[T] {
	return NewObserverWithContext(
		func(ctx context.Context, value T) {},
		func(ctx context.Context, err error) {},
		func(ctx context.Context) {},
	)
}

// PrintObserver is a utility Observer that dumps notifications, for
// debugging.
func PrintObserver[T any]() Observer[T] {
	return NewObserverWithContext(
		func(ctx context.Context, value T) {
			fmt.Printf("Next: %v\n", value)
		},
		func(ctx context.Context, err error) {
			fmt.Printf("Error: %s\n", err.Error())
		},
		func(ctx context.Context) {
			fmt.Printf("Completed\n")
		},
	)
}
