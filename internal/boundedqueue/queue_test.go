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

package boundedqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_OfferPollFIFO(t *testing.T) {
	is := assert.New(t)

	q := NewQueue[int](3)
	is.True(q.Offer(1))
	is.True(q.Offer(2))
	is.True(q.Offer(3))
	is.False(q.Offer(4), "queue is at capacity")

	v, ok := q.Poll()
	is.True(ok)
	is.Equal(1, v)

	is.True(q.Offer(4), "polling one element frees a slot")

	for _, want := range []int{2, 3, 4} {
		v, ok := q.Poll()
		is.True(ok)
		is.Equal(want, v)
	}

	_, ok = q.Poll()
	is.False(ok)
	is.True(q.IsEmpty())
}

func TestQueue_CapIsRequestedCapacity(t *testing.T) {
	is := assert.New(t)

	q := NewQueue[int](3)
	is.Equal(3, q.Cap())

	is.True(q.Offer(1))
	is.True(q.Offer(2))
	is.True(q.Offer(3))
	is.False(q.Offer(4))
}

func TestSupplier_NewQueueEveryCall(t *testing.T) {
	is := assert.New(t)

	supplier := NewSupplier[string](2)

	a, err := supplier()
	is.NoError(err)
	b, err := supplier()
	is.NoError(err)

	is.True(a.Offer("x"))
	is.True(b.IsEmpty(), "each call to the supplier must return an independent queue")
}
