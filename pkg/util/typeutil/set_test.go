// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package typeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	set := NewSet[string]("a", "b")
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contain("a"))
	assert.True(t, set.Contain("a", "b"))
	assert.False(t, set.Contain("a", "c"))

	// 重复插入被忽略。
	set.Insert("a")
	assert.Equal(t, 2, set.Len())

	set.Remove("a")
	assert.False(t, set.Contain("a"))
	// 移除不存在的元素被忽略。
	set.Remove("never")
	assert.Equal(t, 1, set.Len())

	set.Insert("c", "d")
	assert.ElementsMatch(t, []string{"b", "c", "d"}, set.Collect())
}

func TestSetRange(t *testing.T) {
	set := NewSet(1, 2, 3)

	seen := NewSet[int]()
	set.Range(func(elem int) bool {
		seen.Insert(elem)
		return true
	})
	assert.Equal(t, 3, seen.Len())

	count := 0
	set.Range(func(int) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestSetClone(t *testing.T) {
	set := NewSet("a", "b")
	clone := set.Clone()
	clone.Insert("c")

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 3, clone.Len())
}
