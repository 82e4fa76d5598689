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
	"testing"

	"go.uber.org/goleak"
)

// Window subscribers never spawn goroutines of their own, but this package
// is concurrency-sensitive enough (the drain loops, the active counter)
// that a leak here would be easy to introduce by accident, e.g. a test
// helper blocking on a channel nobody closes.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
