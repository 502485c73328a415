package ecs

import "unsafe"

// pool is a packed, sparse-set-indexed store for one component type's raw
// bytes. It never runs a constructor/destructor/move — a removal is a
// memcpy-based swap-with-last, exactly mirroring
// original_source/include/brutal_ecs.h's ecs_pool. Type safety is layered
// on top in world.go via generic accessors; pool itself is type-erased.
type pool struct {
	set         *sparseSet
	elementSize int
	data        []byte
}

// newPool allocates an empty pool sized for elementSize-byte components.
// A missing component's address reads as unsafe.Pointer(nil).
func newPool(elementSize int) *pool {
	return &pool{set: newSparseSet(), elementSize: elementSize}
}

func (p *pool) has(e Entity) bool { return p.set.has(e) }

func (p *pool) count() int { return p.set.count() }

// dense returns the pool's packed dense entity array, used by the
// scheduler to slice a driver pool into contiguous task ranges.
func (p *pool) dense() []Entity { return p.set.dense }

// get returns the address of e's storage, or nil if e has no component in
// this pool.
func (p *pool) get(e Entity) unsafe.Pointer {
	idx := p.set.indexOf(e)
	if idx < 0 {
		return nil
	}
	return p.slot(idx)
}

// add reserves (zero-initializing) storage for e and returns its address.
// If e already has the component, returns the existing slot unchanged.
func (p *pool) add(e Entity) unsafe.Pointer {
	if idx := p.set.indexOf(e); idx >= 0 {
		return p.slot(idx)
	}
	idx := p.set.insert(e)
	p.ensureCapacity(idx + 1)
	off := idx * p.elementSize
	clear(p.data[off : off+p.elementSize])
	return p.slot(idx)
}

// remove drops e's component, if present, swapping the last slot into its
// place to keep the data array packed.
func (p *pool) remove(e Entity) {
	idx, moved := p.set.remove(e)
	if idx < 0 {
		return
	}
	if moved != 0 {
		lastIdx := p.set.count() // count already reflects the post-removal size
		copy(p.slotBytes(idx), p.slotBytes(lastIdx))
	}
}

// zeroSizeSlot is the shared address handed out for zero-size components,
// whose pools never allocate any data bytes.
var zeroSizeSlot byte

func (p *pool) slot(idx int) unsafe.Pointer {
	if p.elementSize == 0 {
		return unsafe.Pointer(&zeroSizeSlot)
	}
	off := idx * p.elementSize
	return unsafe.Pointer(&p.data[off])
}

func (p *pool) slotBytes(idx int) []byte {
	off := idx * p.elementSize
	return p.data[off : off+p.elementSize]
}

func (p *pool) ensureCapacity(slots int) {
	need := slots * p.elementSize
	if need <= len(p.data) {
		return
	}
	newCap := len(p.data)
	if newCap == 0 {
		newCap = p.elementSize * 16
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, newCap)
	copy(grown, p.data)
	p.data = grown
}
