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
	"errors"

	"github.com/windowkit/rxwindow/internal/xerrors"
)

// errInvalidRequest is routed to the dropped-notification side channel when
// Request is called with n <= 0; it never corrupts subscriber state.
var errInvalidRequest = errors.New("rxwindow: request(n) called with n <= 0")

// ErrNullSupplier is reported when a queue supplier returns a nil queue
// without an error. Subscribe-time or signal-time, this is treated the same
// as a thrown error: the subscription fails and upstream is cancelled.
var ErrNullSupplier = xerrors.ErrNullSupplier

// errMultipleWindowSubscribers is reported to any subscriber beyond the
// first on a WindowPublisher: windows are single-subscriber-only.
var errMultipleWindowSubscribers = errors.New("rxwindow: window publisher already has a subscriber")

// errDuplicateUpstreamSubscribe is reported when a window subscriber
// observes a second OnSubscribe; each window subscriber subscribes to
// exactly one upstream.
var errDuplicateUpstreamSubscribe = errors.New("rxwindow: window subscriber already has an upstream subscription")
