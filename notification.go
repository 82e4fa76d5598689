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
	"log"
	"sync/atomic"
)

var (
	// onUnhandledError stores the current handler for unhandled errors. It is
	// accessed via atomic.Value to allow concurrent readers and writers
	// without data races.
	onUnhandledError atomic.Value // func(context.Context, error)

	// onDroppedNotification stores the current handler for dropped
	// notifications (a late signal arriving after a subscription has
	// already reached a terminal state).
	onDroppedNotification atomic.Value // func(context.Context, fmt.Stringer)
)

func init() {
	onUnhandledError.Store(IgnoreOnUnhandledError)
	onDroppedNotification.Store(IgnoreOnDroppedNotification)
}

// SetOnUnhandledError sets the handler invoked when an error is emitted and
// not otherwise handled. Passing nil restores the default (ignore).
func SetOnUnhandledError(fn func(ctx context.Context, err error)) {
	if fn == nil {
		fn = IgnoreOnUnhandledError
	}
	onUnhandledError.Store(fn)
}

// OnUnhandledError calls the currently configured unhandled-error handler.
func OnUnhandledError(ctx context.Context, err error) {
	onUnhandledError.Load().(func(context.Context, error))(ctx, err)
}

// SetOnDroppedNotification sets the handler invoked when a notification is
// dropped (delivered to a subscription, buffer, or supplier after it has
// already terminated). Passing nil restores the default (ignore). This is
// the side channel referenced throughout the window subscribers for
// onNext-after-done, onError-after-done, and invalid-request reporting.
func SetOnDroppedNotification(fn func(ctx context.Context, notification fmt.Stringer)) {
	if fn == nil {
		fn = IgnoreOnDroppedNotification
	}
	onDroppedNotification.Store(fn)
}

// OnDroppedNotification calls the currently configured dropped-notification
// handler.
func OnDroppedNotification(ctx context.Context, notification fmt.Stringer) {
	onDroppedNotification.Load().(func(context.Context, fmt.Stringer))(ctx, notification)
}

// IgnoreOnUnhandledError is the default implementation of OnUnhandledError.
func IgnoreOnUnhandledError(ctx context.Context, err error) {}

// IgnoreOnDroppedNotification is the default implementation of
// OnDroppedNotification.
func IgnoreOnDroppedNotification(ctx context.Context, notification fmt.Stringer) {}

// DefaultOnUnhandledError logs the error. Install it with SetOnUnhandledError
// if silent defaults aren't desired.
func DefaultOnUnhandledError(ctx context.Context, err error) {
	if err != nil {
		// bearer:disable go_lang_logger_leak
		log.Printf("rxwindow: unhandled error: %s\n", err.Error())
	}
}

var _ fmt.Stringer = (*Notification[int])(nil)

// DefaultOnDroppedNotification logs the dropped notification. Install it
// with SetOnDroppedNotification if silent defaults aren't desired.
//
// Since we cannot assign a generic callback to a package-level var, the
// handler is typed over fmt.Stringer instead of Notification[T].
func DefaultOnDroppedNotification(ctx context.Context, notification fmt.Stringer) {
	// bearer:disable go_lang_logger_leak
	log.Printf("rxwindow: dropped notification: %s\n", notification.String())
}

// Kind represents the kind of a Notification: Next, Error, or Complete.
type Kind uint8

// Kind constants.
const (
	KindNext Kind = iota
	KindError
	KindComplete
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return "Next"
	case KindError:
		return "Error"
	case KindComplete:
		return "Complete"
	}

	panic("rxwindow: invalid Kind")
}

// Notification represents a signal emitted by a Publisher: a Next value, an
// Error, or a Complete. It is used by the dropped-notification side channel
// to describe what was discarded.
type Notification[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

func (n Notification[T]) String() string {
	switch n.Kind {
	case KindNext:
		return fmt.Sprintf("Next(%+v)", n.Value)
	case KindError:
		if n.Err == nil {
			return "Error(nil)"
		}
		return fmt.Sprintf("Error(%s)", n.Err.Error())
	case KindComplete:
		return "Complete()"
	}

	panic("rxwindow: invalid Kind")
}

// NewNotificationNext creates a Notification carrying a Next value.
func NewNotificationNext[T any](value T) Notification[T] {
	return Notification[T]{Kind: KindNext, Value: value}
}

// NewNotificationError creates a Notification carrying an Error.
func NewNotificationError[T any](err error) Notification[T] {
	return Notification[T]{Kind: KindError, Err: err}
}

// NewNotificationComplete creates a Notification carrying a Complete signal.
func NewNotificationComplete[T any]() Notification[T] {
	return Notification[T]{Kind: KindComplete}
}
