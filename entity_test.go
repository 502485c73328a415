package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Invariant 1: create calls without intervening destroy return distinct,
// >= 1 identifiers.
func TestEntityAllocator_CreateDistinctAndNonZero(t *testing.T) {
	a := newEntityAllocator()
	seen := map[Entity]bool{}
	for i := 0; i < 100; i++ {
		e := a.create()
		assert.GreaterOrEqual(t, uint32(e), uint32(1))
		assert.False(t, seen[e])
		seen[e] = true
	}
}

// Invariant 2: after destroy(e), the next create returns e (LIFO).
func TestEntityAllocator_RecyclesLIFO(t *testing.T) {
	a := newEntityAllocator()
	x := a.create()
	y := a.create()

	a.destroy(y)
	a.destroy(x)

	assert.Equal(t, x, a.create())
	assert.Equal(t, y, a.create())
	assert.Equal(t, Entity(3), a.create())
}
