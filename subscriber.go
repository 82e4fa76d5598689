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

// Subscriber implements both Subscription and Observer. Each window
// subscriber (exactSubscriber, skipSubscriber, overlapSubscriber) is a
// Subscriber[T]: it is the Observer its upstream Publisher notifies, and the
// Subscription its outer Observer holds to signal demand and cancellation
// back.
type Subscriber[T any] interface {
	Subscription
	Observer[T]
}
