package ecs

import "sync"

// commandKind tags a deferred structural mutation.
type commandKind uint8

const (
	cmdDestroy commandKind = iota
	cmdAddComponent
	cmdRemoveComponent
)

// command is a single deferred structural mutation. For cmdAddComponent,
// dataOffset/dataLen locate the payload inside the owning commandBuffer's
// arena; that region is only ever valid until the next reset (drain).
type command struct {
	kind       commandKind
	entity     Entity
	component  ComponentID
	dataOffset int
	dataLen    int
}

// commandBuffer is one task's append-only log of deferred structural
// mutations plus a bump-allocated arena for AddComponent payloads. Both
// regions grow geometrically and are retained (not freed) across resets.
//
// Each (system, slice) task dispatched within a stage is given its own
// commandBuffer (see World.bufferAt), so a single instance is never
// touched by more than one goroutine at a time. mu is kept anyway as a
// cheap guard against future callers that might share one across tasks,
// rather than relied on to make concurrent access via Add/Remove safe: a
// pointer returned by allocData to fill in after unlocking is only safe
// because no other goroutine holds a reference to this buffer at all.
type commandBuffer struct {
	mu         sync.Mutex
	commands   []command
	data       []byte
	dataOffset int
}

func newCommandBuffer() *commandBuffer {
	return &commandBuffer{
		commands: make([]command, 0, cmdBufferInitialCommands),
		data:     make([]byte, cmdArenaInitialBytes),
	}
}

func (b *commandBuffer) enqueue(c command) {
	b.mu.Lock()
	b.commands = append(b.commands, c)
	b.mu.Unlock()
}

// allocData bump-allocates size bytes in the arena, growing geometrically
// if needed, and returns the offset of the new region (stable until the
// next reset) along with the region itself. The caller fills in the
// returned bytes after allocData has returned; that's safe only because
// each commandBuffer is reserved for exactly one task at a time, so
// nothing else can reallocate data out from under the returned slice
// before the next reset.
func (b *commandBuffer) allocData(size int) (off int, region []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dataOffset+size > len(b.data) {
		newCap := len(b.data) * 2
		if newCap == 0 {
			newCap = cmdArenaInitialBytes
		}
		for newCap < b.dataOffset+size {
			newCap *= 2
		}
		grown := make([]byte, newCap)
		copy(grown, b.data[:b.dataOffset])
		b.data = grown
	}
	off = b.dataOffset
	b.dataOffset += size
	return off, b.data[off : off+size]
}

func (b *commandBuffer) dataAt(off, size int) []byte {
	return b.data[off : off+size]
}

// reset discards logged commands and rewinds the arena, retaining
// allocated capacity for reuse on the next stage. Only called between
// stages, with no task running, so it needs no locking.
func (b *commandBuffer) reset() {
	b.commands = b.commands[:0]
	b.dataOffset = 0
}
