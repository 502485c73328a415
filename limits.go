package ecs

// Compile-time tunables. These mirror the constants a systems-language
// implementation would fix at build time; in Go they're just untyped
// constants, cheap to reference from hot paths.
const (
	// MaxComponents bounds the width of every bitset carried by a System or
	// computed for an Entity. 256 covers any realistic component catalog
	// while keeping bitset words (4 x uint64) cheap to copy and compare.
	MaxComponents = 256

	// MaxSystems bounds the number of systems a single World will schedule.
	// It exists purely as a sanity ceiling for NewSystem; nothing is
	// preallocated to this size.
	MaxSystems = 256

	// MaxTasks bounds World.SetTaskPool's task_count parameter.
	MaxTasks = 1024

	// CacheLine is the assumed CPU cache line size. The taskpool package
	// does not use it: its ring slots are padded with taskpool's own
	// 128-byte cacheLinePad.
	CacheLine = 64

	// cmdBufferInitialCommands is the initial capacity, in commands, of a
	// freshly allocated command buffer.
	cmdBufferInitialCommands = 1024

	// cmdArenaInitialBytes is the initial size of a command buffer's
	// payload arena.
	cmdArenaInitialBytes = 1 << 20
)

// bitsetWords is the number of uint64 words needed to hold MaxComponents
// bits.
const bitsetWords = (MaxComponents + 63) / 64
