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

package satmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddInt64(t *testing.T) {
	is := assert.New(t)

	is.Equal(int64(5), AddInt64(2, 3))
	is.Equal(int64(2), AddInt64(2, 0))
	is.Equal(int64(0), AddInt64(0, 0))
	is.Equal(MaxInt64, AddInt64(MaxInt64, 1))
	is.Equal(MaxInt64, AddInt64(MaxInt64-1, 2))
	is.Equal(int64(0), AddInt64(-1, -1), "negative operands clamp to zero")
}

func TestMulInt64(t *testing.T) {
	is := assert.New(t)

	is.Equal(int64(6), MulInt64(2, 3))
	is.Equal(int64(0), MulInt64(0, 100))
	is.Equal(int64(0), MulInt64(100, 0))
	is.Equal(MaxInt64, MulInt64(MaxInt64, 2))
	is.Equal(MaxInt64, MulInt64(MaxInt64/2+1, 2))
}
