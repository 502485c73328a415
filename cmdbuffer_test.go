package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandBuffer_EnqueueReset(t *testing.T) {
	b := newCommandBuffer()
	b.enqueue(command{kind: cmdDestroy, entity: 7})
	require.Len(t, b.commands, 1)

	b.reset()
	assert.Empty(t, b.commands)
	assert.Zero(t, b.dataOffset)
}

func TestCommandBuffer_AllocDataBumpsAndGrows(t *testing.T) {
	b := newCommandBuffer()

	off1, region1 := b.allocData(16)
	assert.Zero(t, off1)
	assert.Len(t, region1, 16)

	off2, region2 := b.allocData(16)
	assert.Equal(t, 16, off2)
	assert.Len(t, region2, 16)

	// force a grow past the initial arena size
	off3, region3 := b.allocData(cmdArenaInitialBytes)
	assert.Equal(t, 32, off3)
	assert.Len(t, region3, cmdArenaInitialBytes)

	// offsets allocated before the grow are still valid
	assert.Equal(t, region1, b.dataAt(off1, 16))
}

func TestCommandBuffer_ResetRetainsCapacity(t *testing.T) {
	b := newCommandBuffer()
	for i := 0; i < 10; i++ {
		b.enqueue(command{kind: cmdDestroy, entity: Entity(i)})
	}
	b.allocData(64)
	commandsCap := cap(b.commands)

	b.reset()
	assert.Equal(t, commandsCap, cap(b.commands))
	assert.Equal(t, cmdArenaInitialBytes, len(b.data))
}
