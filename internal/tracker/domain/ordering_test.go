package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReinsert(t *testing.T) {
	ids := []int64{10, 20, 30, 40} // display order A,B,C,D

	t.Run("moves last project to the front region", func(t *testing.T) {
		out, changed := Reinsert(ids, 40, 2)
		assert.True(t, changed)
		assert.Equal(t, []int64{10, 40, 20, 30}, out)
	})

	t.Run("moves first project to the end", func(t *testing.T) {
		out, changed := Reinsert(ids, 10, 4)
		assert.True(t, changed)
		assert.Equal(t, []int64{20, 30, 40, 10}, out)
	})

	t.Run("same position is a no-op", func(t *testing.T) {
		out, changed := Reinsert(ids, 20, 2)
		assert.False(t, changed)
		assert.Nil(t, out)
	})

	t.Run("out-of-range position clamps to last", func(t *testing.T) {
		out, changed := Reinsert(ids, 20, 99)
		assert.True(t, changed)
		assert.Equal(t, []int64{10, 30, 40, 20}, out)
	})

	t.Run("clamped position equal to current is a no-op", func(t *testing.T) {
		_, changed := Reinsert(ids, 40, 99)
		assert.False(t, changed)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, changed := Reinsert(ids, 77, 1)
		assert.False(t, changed)
	})

	t.Run("non-positive position", func(t *testing.T) {
		_, changed := Reinsert(ids, 10, 0)
		assert.False(t, changed)
	})

	t.Run("input sequence is not mutated", func(t *testing.T) {
		_, _ = Reinsert(ids, 40, 1)
		assert.Equal(t, []int64{10, 20, 30, 40}, ids)
	})
}
