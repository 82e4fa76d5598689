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
	"sync"

	"github.com/samber/lo"
	"github.com/windowkit/rxwindow/internal/xerrors"
)

// Teardown is a function run when a Subscription is cancelled, e.g. to
// release a resource held open by a Publisher or a window.
type Teardown func()
type TeardownWithContext func(ctx context.Context)

// Cancellable represents anything that can be cancelled.
type Cancellable interface {
	Cancel()
	CancelWithContext(ctx context.Context)
}

// Subscription is the handle a Publisher gives its Observer via OnSubscribe.
// It carries the demand-signaling half of the reactive-streams contract:
// Request(n) asks for n more elements, Cancel() asks the Publisher to stop.
//
// Request and Cancel may be called from any goroutine, including
// concurrently with each other and with the Publisher's own signal delivery.
type Subscription interface {
	Cancellable

	// Request signals readiness to receive up to n more elements. n must be
	// >= 1; implementations route n <= 0 to the validation side channel
	// without otherwise changing state. Requests accumulate (they are not
	// replaced) and saturate instead of overflowing.
	Request(n int64)
	RequestWithContext(ctx context.Context, n int64)

	Add(teardown Teardown)
	AddWithContext(teardown TeardownWithContext)
	AddCancellable(cancellable Cancellable)
	IsClosed() bool
	Wait() // Note: using .Wait() is not recommended.
}

// subscriptionImpl is a teardown-chaining Subscription with no demand
// tracking of its own. It backs the cancel-on-teardown bookkeeping embedded
// by the window subscribers and the window publisher's own Subscription; the
// meaningful Request() behavior for a given stream lives in that stream's
// own type, not here.
type subscriptionImpl struct {
	done          bool
	mu            sync.Mutex
	finalizers    []Teardown
	ctxFinalizers []TeardownWithContext
}

var _ Subscription = (*subscriptionImpl)(nil)

// NewSubscription creates a new Subscription. When `teardown` is nil, nothing
// is added. When the subscription is already closed, `teardown` runs
// immediately.
func NewSubscription(teardown Teardown) Subscription {
	s := &subscriptionImpl{
		finalizers:    []Teardown{},
		ctxFinalizers: []TeardownWithContext{},
	}
	if teardown != nil {
		s.finalizers = append(s.finalizers, teardown)
	}

	return s
}

func NewSubscriptionWithContext(teardown TeardownWithContext) Subscription {
	s := &subscriptionImpl{
		finalizers:    []Teardown{},
		ctxFinalizers: []TeardownWithContext{},
	}
	if teardown != nil {
		s.ctxFinalizers = append(s.ctxFinalizers, teardown)
	}

	return s
}

// Request is a no-op on the base subscription: it carries no upstream
// demand of its own to translate.
func (s *subscriptionImpl) Request(n int64) {}

// RequestWithContext is a no-op on the base subscription, see Request.
func (s *subscriptionImpl) RequestWithContext(ctx context.Context, n int64) {}

// Add receives a finalizer to execute upon cancellation. When `teardown` is
// nil, nothing is added. When the subscription is already closed, the
// `teardown` callback is triggered immediately.
//
// This method is thread-safe.
func (s *subscriptionImpl) Add(teardown Teardown) {
	if teardown == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		_ = execFinalizer(teardown)
		return
	}

	s.finalizers = append(s.finalizers, teardown)
}

// AddWithContext registers a teardown function that receives a context when
// the subscription is cancelled.
func (s *subscriptionImpl) AddWithContext(teardown TeardownWithContext) {
	if teardown == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		_ = execFinalizerWithContext(teardown, context.Background())
		return
	}

	s.ctxFinalizers = append(s.ctxFinalizers, teardown)
}

// AddCancellable merges another cancellable into this subscription's
// teardown chain. It does nothing if `cancellable` is nil.
//
// This method is thread-safe.
func (s *subscriptionImpl) AddCancellable(cancellable Cancellable) {
	if cancellable == nil {
		return
	}

	s.Add(func() {
		cancellable.Cancel()
	})
}

// Cancel disposes the resources held by the subscription. Finalizers run in
// sequence, exactly once.
//
// This method is thread-safe.
func (s *subscriptionImpl) Cancel() {
	s.mu.Lock()

	if s.done {
		s.mu.Unlock()
		return
	}

	s.done = true
	finals := s.finalizers
	ctxFinals := s.ctxFinalizers
	s.finalizers = nil
	s.ctxFinalizers = nil
	s.mu.Unlock()

	var errs []error

	for _, f := range finals {
		if err := execFinalizer(f); err != nil {
			errs = append(errs, err)
		}
	}

	for _, f := range ctxFinals {
		if err := execFinalizerWithContext(f, context.Background()); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		panic(xerrors.Join(errs...))
	}
}

// CancelWithContext cancels the subscription and runs teardown functions
// with the supplied context.
func (s *subscriptionImpl) CancelWithContext(ctx context.Context) {
	s.mu.Lock()

	if s.done {
		s.mu.Unlock()
		return
	}

	s.done = true
	finals := s.finalizers
	ctxFinals := s.ctxFinalizers
	s.finalizers = nil
	s.ctxFinalizers = nil
	s.mu.Unlock()

	var errs []error

	for _, f := range finals {
		if err := execFinalizer(f); err != nil {
			errs = append(errs, err)
		}
	}

	for _, f := range ctxFinals {
		if err := execFinalizerWithContext(f, ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		panic(xerrors.Join(errs...))
	}
}

// IsClosed returns true if the subscription has been cancelled, or
// cancellation is in progress.
func (s *subscriptionImpl) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.done
}

// Wait blocks until the Subscription is cancelled. Please use it carefully:
// it is meant for tests and small command-line tools, not production
// pipelines.
func (s *subscriptionImpl) Wait() {
	ch := make(chan struct{}, 1)

	// There is no guarantee that this callback will be the last finalizer
	// added to this subscription.
	s.Add(func() {
		ch <- struct{}{}
	})

	<-ch
	close(ch)
}

// execFinalizer runs the finalizer and catches any panics, converting them
// to errors.
func execFinalizer(finalizer func()) (err error) {
	lo.TryCatchWithErrorValue(
		func() error {
			finalizer()
			return nil
		},
		func(e any) {
			err = xerrors.NewCancellationError(xerrors.RecoverValueToError(e))
		},
	)

	return err
}

func execFinalizerWithContext(finalizer any, ctx context.Context) (err error) {
	switch f := finalizer.(type) {
	case func():
		return execFinalizer(f)
	case func(context.Context):
		lo.TryCatchWithErrorValue(
			func() error {
				f(ctx)
				return nil
			},
			func(e any) {
				err = xerrors.NewCancellationError(xerrors.RecoverValueToError(e))
			},
		)
	case TeardownWithContext:
		lo.TryCatchWithErrorValue(
			func() error {
				f(ctx)
				return nil
			},
			func(e any) {
				err = xerrors.NewCancellationError(xerrors.RecoverValueToError(e))
			},
		)
	}
	return err
}

// @TODO: Add methods Remove + RemoveSubscription.
// Currently, Go does not support function address comparison, so we cannot
// remove a finalizer from the list.
