package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseSet_InsertHasIndexOf(t *testing.T) {
	s := newSparseSet()
	assert.False(t, s.has(5))

	idx := s.insert(5)
	assert.Equal(t, 0, idx)
	assert.True(t, s.has(5))
	assert.Equal(t, 0, s.indexOf(5))

	// re-insert is a no-op, returns the same index
	assert.Equal(t, 0, s.insert(5))
	assert.Equal(t, 1, s.count())
}

func TestSparseSet_RemoveSwapsLast(t *testing.T) {
	s := newSparseSet()
	s.insert(10)
	s.insert(20)
	s.insert(30)

	idx, moved := s.remove(10)
	require.Equal(t, 0, idx)
	assert.EqualValues(t, 30, moved) // last element (30) swapped into slot 0

	assert.False(t, s.has(10))
	assert.True(t, s.has(20))
	assert.True(t, s.has(30))
	assert.Equal(t, 0, s.indexOf(30))
	assert.Equal(t, 2, s.count())
}

func TestSparseSet_RemoveLastNoMove(t *testing.T) {
	s := newSparseSet()
	s.insert(1)
	s.insert(2)

	idx, moved := s.remove(2)
	assert.Equal(t, 1, idx)
	assert.Zero(t, moved)
	assert.Equal(t, 1, s.count())
}

func TestSparseSet_RemoveAbsentIsNoop(t *testing.T) {
	s := newSparseSet()
	idx, moved := s.remove(99)
	assert.Equal(t, -1, idx)
	assert.Zero(t, moved)
}
