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

import "sync/atomic"

// activeCounter tracks how many parties still hold an interest in the
// upstream subscription: a baseline unit for the outer subscriber, plus one
// per currently open window. release fires onZero exactly once, the instant
// the count transitions from 1 to 0.
type activeCounter struct {
	n      int64
	onZero func()
	fired  int32
}

func newActiveCounter(onZero func()) *activeCounter {
	return &activeCounter{n: 1, onZero: onZero}
}

// acquire adds one holder, e.g. a newly opened window.
func (a *activeCounter) acquire() {
	atomic.AddInt64(&a.n, 1)
}

// release removes one holder. Once the count reaches zero, onZero runs on
// whichever goroutine's release observed the transition, and only once.
func (a *activeCounter) release() {
	if atomic.AddInt64(&a.n, -1) == 0 {
		if atomic.CompareAndSwapInt32(&a.fired, 0, 1) {
			a.onZero()
		}
	}
}

// onceLatch guards an action so it runs at most once across concurrent
// callers. It backs the outer cancel latch and the first-request latch.
type onceLatch struct {
	fired int32
}

// trigger returns true the first time it is called, false on every
// subsequent call, regardless of which goroutine calls it.
func (o *onceLatch) trigger() bool {
	return atomic.CompareAndSwapInt32(&o.fired, 0, 1)
}

// isTriggered reports whether trigger has already succeeded once.
func (o *onceLatch) isTriggered() bool {
	return atomic.LoadInt32(&o.fired) != 0
}
