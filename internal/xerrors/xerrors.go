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

// Package xerrors holds the small error helpers shared across rxwindow,
// kept separate from the public package so its error types stay internal.
package xerrors

import (
	"errors"
	"fmt"
)

// Join wraps the standard library errors.Join so call sites elsewhere in the
// module don't need to special-case a nil-only slice.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// RecoverValueToError normalizes a recover() value into an error, wrapping
// non-error panics in a descriptive error value.
func RecoverValueToError(v any) error {
	if v == nil {
		return nil
	}

	if err, ok := v.(error); ok {
		return err
	}

	return fmt.Errorf("panic: %v", v)
}

// ObserverError wraps a panic recovered from an Observer callback (Next,
// Error, or Complete).
type ObserverError struct {
	Cause error
}

func NewObserverError(cause error) *ObserverError {
	return &ObserverError{Cause: cause}
}

func (e *ObserverError) Error() string {
	return fmt.Sprintf("rxwindow: observer panicked: %s", e.Cause.Error())
}

func (e *ObserverError) Unwrap() error {
	return e.Cause
}

// CancellationError wraps a panic recovered while running a cancellation
// teardown callback.
type CancellationError struct {
	Cause error
}

func NewCancellationError(cause error) *CancellationError {
	return &CancellationError{Cause: cause}
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("rxwindow: cancellation teardown panicked: %s", e.Cause.Error())
}

func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// ErrNullSupplier is reported when a queue factory returns a nil queue
// without an error; the reactive-streams contract treats this the same as a
// thrown error.
var ErrNullSupplier = errors.New("rxwindow: queue supplier returned a nil queue")
