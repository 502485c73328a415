package ecs

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vec2 struct{ x, y float64 }

// Invariant 3: has(e,c) ⇔ get(e,c) != absent, and the address is stable
// until a remove of e or a swap caused by removing a different entity.
func TestPool_AddGetHasRoundTrip(t *testing.T) {
	p := newPool(int(unsafe.Sizeof(vec2{})))

	assert.False(t, p.has(1))
	assert.Nil(t, p.get(1))

	ptr := p.add(1)
	(*vec2)(ptr).x = 3
	(*vec2)(ptr).y = 4

	assert.True(t, p.has(1))
	got := (*vec2)(p.get(1))
	require.NotNil(t, got)
	assert.Equal(t, vec2{3, 4}, *got)
}

func TestPool_RemoveSwapsLastIntoHole(t *testing.T) {
	p := newPool(int(unsafe.Sizeof(vec2{})))

	*(*vec2)(p.add(1)) = vec2{1, 1}
	*(*vec2)(p.add(2)) = vec2{2, 2}
	*(*vec2)(p.add(3)) = vec2{3, 3}

	p.remove(1)

	assert.False(t, p.has(1))
	assert.True(t, p.has(2))
	assert.True(t, p.has(3))
	assert.Equal(t, vec2{3, 3}, *(*vec2)(p.get(3)))
	assert.Equal(t, 2, p.count())
}

func TestPool_AddIsIdempotentPerEntity(t *testing.T) {
	p := newPool(int(unsafe.Sizeof(vec2{})))
	first := p.add(1)
	second := p.add(1)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.count())
}

func TestPool_DenseGrowsPastInitialCapacity(t *testing.T) {
	p := newPool(8)
	for i := Entity(1); i <= 64; i++ {
		p.add(i)
	}
	assert.Equal(t, 64, p.count())
	assert.Len(t, p.dense(), 64)
}
