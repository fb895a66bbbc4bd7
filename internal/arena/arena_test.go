// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unrealscript-tools/upp/internal/arena"
)

func TestPointers(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var a arena.Arena[int]

	p1 := a.New(5)
	assert.Equal(5, *p1.In(&a))

	for i := range 16 {
		a.New(i + 5)
	}
	assert.Equal(5, *p1.In(&a))

	assert.Equal("[5 5 6 7 8 9 10 11 12 13 14 15 16 17 18 19|20]", a.String())
}

func TestAllocStable(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var a arena.Arena[int]

	p1 := a.Alloc(5)
	for i := range 64 {
		a.Alloc(i + 6)
	}

	// A pointer returned by Alloc must never move, even once later buckets
	// have been allocated into.
	assert.Equal(5, *p1)
	assert.Equal(65, a.Len())
}

func TestIndexOf(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var a arena.Arena[int]

	p1 := a.Alloc(5)
	p2 := a.Alloc(6)

	idx, ok := a.IndexOf(p1)
	assert.True(ok)
	assert.Equal(arena.Untyped(1), idx)

	idx, ok = a.IndexOf(p2)
	assert.True(ok)
	assert.Equal(arena.Untyped(2), idx)

	var stray int
	_, ok = a.IndexOf(&stray)
	assert.False(ok)
}
