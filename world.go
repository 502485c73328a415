package ecs

import (
	"reflect"
	"unsafe"
)

// TaskRunner is the pluggable parallel backend a World dispatches stage
// tasks onto. *taskpool.Pool satisfies it; so does anything else exposing
// a fire-and-forget Go plus a blocking Wait, e.g. a wrapper around
// golang.org/x/sync/errgroup.
type TaskRunner interface {
	// Go schedules fn to run, returning immediately. fn must eventually
	// be invoked exactly once.
	Go(fn func())
	// Wait blocks until every fn passed to Go before this call has
	// returned.
	Wait()
}

// World owns every pool, the entity allocator, the command buffers, and
// the registered systems. The zero value is not usable; construct with
// New.
type World struct {
	log *Logger

	entities *entityAllocator
	alive    []bool  // alive[e] — grown lazily alongside compBits
	compBits []bitset // compBits[e] — the component set for a live entity

	pools           [MaxComponents]*pool
	componentSizes  [MaxComponents]int
	nextComponentID ComponentID
	typeToComponent map[reflect.Type]ComponentID

	systems []*system
	stages  []stage
	dirty   bool

	runner    TaskRunner
	taskCount int

	// cmdBuffers is indexed by global task slot (assigned fresh each stage
	// by dispatchStage, never reused by two tasks running concurrently in
	// the same stage), grown lazily by bufferAt and retained across stages.
	cmdBuffers []*commandBuffer

	inProgress bool
}

// WorldOption configures a World at construction.
type WorldOption func(*World)

// WithLogger overrides the World's structured logger (default: a
// zerolog-backed logiface.Logger writing to stderr).
func WithLogger(l *Logger) WorldOption {
	return func(w *World) { w.log = l }
}

// New allocates an empty World with task_count=1 (serial execution) and no
// task pool configured.
func New(opts ...WorldOption) *World {
	w := &World{
		entities:        newEntityAllocator(),
		typeToComponent: make(map[reflect.Type]ComponentID),
		taskCount:       1,
		cmdBuffers:      []*commandBuffer{newCommandBuffer()},
		log:             defaultLogger(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Close releases the World's resources. After Close, w must not be used.
func (w *World) Close() {
	w.entities = nil
	w.pools = [MaxComponents]*pool{}
	w.cmdBuffers = nil
	w.systems = nil
	w.stages = nil
}

// SetTaskPool configures the optional parallel backend. taskCount is
// clamped to [1, MaxTasks], and should match runner's own worker count.
// Passing a nil runner reverts to serial execution.
func (w *World) SetTaskPool(runner TaskRunner, taskCount int) {
	if taskCount < 1 {
		taskCount = 1
	}
	if taskCount > MaxTasks {
		taskCount = MaxTasks
	}
	w.runner = runner
	w.taskCount = taskCount
}

// -----------------------------------------------------------------------
// Entities

// CreateEntity returns a fresh or recycled entity id. This is always
// immediate and lock-free, even when called from inside a running system
// — a new id has no structural state elsewhere in the World that a
// concurrent reader could observe mid-update.
func (w *World) CreateEntity() Entity {
	e := w.entities.create()
	w.ensureEntityCapacity(e)
	w.alive[e] = true
	return e
}

// DestroyEntity destroys e, or (if called from inside a running stage)
// queues a deferred Destroy command applied at the next drain.
func (w *World) DestroyEntity(e Entity) { w.destroyEntityTask(w.bufferAt(0), e) }

func (w *World) destroyEntityTask(buf *commandBuffer, e Entity) {
	if w.inProgress {
		buf.enqueue(command{kind: cmdDestroy, entity: e})
		return
	}
	w.destroyEntityImmediate(e)
}

func (w *World) destroyEntityImmediate(e Entity) {
	if !w.isLive(e) {
		programmingError(ErrEntityNotLive, "destroy: entity is not live")
	}
	for c := ComponentID(0); c < w.nextComponentID; c++ {
		if p := w.pools[c]; p != nil {
			p.remove(e)
		}
	}
	w.alive[e] = false
	w.compBits[e].zero()
	w.entities.destroy(e)
}

func (w *World) isLive(e Entity) bool {
	return int(e) < len(w.alive) && w.alive[e]
}

func (w *World) ensureEntityCapacity(e Entity) {
	if int(e) < len(w.alive) {
		return
	}
	newLen := len(w.alive)
	if newLen == 0 {
		newLen = 16
	}
	for int(e) >= newLen {
		newLen *= 2
	}
	alive := make([]bool, newLen)
	copy(alive, w.alive)
	w.alive = alive

	bits := make([]bitset, newLen)
	copy(bits, w.compBits)
	w.compBits = bits
}

// -----------------------------------------------------------------------
// Components

// RegisterComponent registers T as a component type, returning its
// ComponentID. Registration is append-only and panics past MaxComponents.
func RegisterComponent[T any](w *World) ComponentID {
	t := reflect.TypeFor[T]()
	if id, ok := w.typeToComponent[t]; ok {
		return id
	}
	if int(w.nextComponentID) >= MaxComponents {
		programmingError(ErrComponentLimitExceeded, "register component: limit exceeded")
	}
	id := w.nextComponentID
	w.nextComponentID++
	w.componentSizes[id] = int(unsafe.Sizeof(*new(T)))
	w.pools[id] = newPool(w.componentSizes[id])
	w.typeToComponent[t] = id
	return id
}

// ComponentIDFor returns the ComponentID previously assigned to T by
// RegisterComponent, and whether T has been registered at all.
func ComponentIDFor[T any](w *World) (ComponentID, bool) {
	id, ok := w.typeToComponent[reflect.TypeFor[T]()]
	return id, ok
}

// Has reports whether e currently carries component c. Always a direct
// pool lookup, never deferred.
func (w *World) Has(e Entity, c ComponentID) bool {
	p := w.poolFor(c)
	return p.has(e)
}

// accessor is satisfied by both *World (immediate outside a stage,
// deferred into task slot 0's buffer while one is running) and *Ctx (bound to whichever task is currently executing), letting
// Add/Remove/Get be called identically from either place: the command
// buffer to defer into, if any, is threaded through explicitly as a
// receiver, rather than read from goroutine-local state.
type accessor interface {
	ecsWorld() *World
	ecsBuffer() *commandBuffer
}

func (w *World) ecsWorld() *World          { return w }
func (w *World) ecsBuffer() *commandBuffer { return w.bufferAt(0) }

// Ctx is the accessor passed to a SystemFunc while its task is running.
// It forwards read-only/always-immediate operations (CreateEntity, Has)
// straight to the World, and routes DestroyEntity/Add/Remove through the
// task's own command buffer whenever the World is mid-stage. buf is
// reserved exclusively for this task for the duration of the stage —
// dispatchStage never hands the same buffer to two tasks running
// concurrently, even when they share a slice index.
type Ctx struct {
	*World
	taskIndex int
	buf       *commandBuffer
}

func (c *Ctx) ecsWorld() *World          { return c.World }
func (c *Ctx) ecsBuffer() *commandBuffer { return c.buf }

// DestroyEntity overrides World.DestroyEntity to use this task's own
// command buffer instead of slot 0.
func (c *Ctx) DestroyEntity(e Entity) { c.World.destroyEntityTask(c.buf, e) }

// Add reserves storage for component T on e and returns a pointer to it
// for the caller to initialize. If a is a *Ctx executing inside a running
// stage, the returned pointer addresses the task's own command buffer,
// copied into the real pool at the next drain; it's valid only until that
// drain completes. If a is the *World itself (called outside any stage),
// the write lands directly in the pool.
func Add[T any](a accessor, e Entity) *T {
	return addTask[T](a.ecsWorld(), a.ecsBuffer(), e)
}

func addTask[T any](w *World, buf *commandBuffer, e Entity) *T {
	c := RegisterComponent[T](w)
	if w.inProgress {
		off, region := buf.allocData(w.componentSizes[c])
		clear(region)
		buf.enqueue(command{kind: cmdAddComponent, entity: e, component: c, dataOffset: off, dataLen: w.componentSizes[c]})
		return (*T)(unsafe.Pointer(&region[0]))
	}
	ptr := w.pools[c].add(e)
	w.compBits[e].set(int(c))
	return (*T)(ptr)
}

// Remove drops component T from e, immediately or deferred, symmetric
// with Add.
func Remove[T any](a accessor, e Entity) {
	removeTask[T](a.ecsWorld(), a.ecsBuffer(), e)
}

func removeTask[T any](w *World, buf *commandBuffer, e Entity) {
	c, ok := ComponentIDFor[T](w)
	if !ok {
		return
	}
	if w.inProgress {
		buf.enqueue(command{kind: cmdRemoveComponent, entity: e, component: c})
		return
	}
	w.pools[c].remove(e)
	w.compBits[e].clear(int(c))
}

// Get returns a pointer to e's T component and true, or (nil, false) if e
// has no such component. Always a direct, non-deferred pool lookup: it
// observes committed state only, never a pending deferred write from the
// current stage.
func Get[T any](a accessor, e Entity) (*T, bool) {
	w := a.ecsWorld()
	c, ok := ComponentIDFor[T](w)
	if !ok {
		return nil, false
	}
	ptr := w.pools[c].get(e)
	if ptr == nil {
		return nil, false
	}
	return (*T)(ptr), true
}

func (w *World) poolFor(c ComponentID) *pool {
	if int(c) >= int(w.nextComponentID) {
		programmingError(ErrInvalidComponent, "component id out of range")
	}
	return w.pools[c]
}

// bufferAt returns the command buffer for global task slot i, growing and
// retaining the backing slice as needed. Called from a stage's
// single-threaded submission loop before any of that stage's tasks are
// launched, and from World-level Add/Remove/DestroyEntity calls made
// outside of any running stage — never concurrently with itself, so it
// needs no locking of its own.
func (w *World) bufferAt(i int) *commandBuffer {
	for i >= len(w.cmdBuffers) {
		w.cmdBuffers = append(w.cmdBuffers, newCommandBuffer())
	}
	return w.cmdBuffers[i]
}

// -----------------------------------------------------------------------
// Systems

// NewSystem registers an empty, enabled system bound to fn, and marks the
// schedule dirty.
func (w *World) NewSystem(fn SystemFunc) *System {
	if len(w.systems) >= MaxSystems {
		programmingError(ErrSystemLimitExceeded, "new system: limit exceeded")
	}
	id := SystemID(len(w.systems))
	rec := &system{id: id, enabled: true, parallel: true, fn: fn}
	w.systems = append(w.systems, rec)
	w.dirty = true
	return &System{w: w, id: id}
}

func (w *World) systemByID(id SystemID) *system {
	if int(id) < 0 || int(id) >= len(w.systems) {
		programmingError(ErrInvalidSystem, "system id out of range")
	}
	return w.systems[id]
}
