package ecs

// ComponentID identifies a registered component type. IDs are handed out
// append-only, starting at 0, and are never reused.
type ComponentID uint16

// SystemID identifies a registered system. IDs are handed out append-only
// in registration order; that order is load-bearing for the scheduler's
// deterministic stage construction.
type SystemID int

// SystemFunc is a system's callback. It receives the task-bound Ctx to
// perform component reads/writes (and deferred structural mutations)
// through, and the view of entities matched for its (system, slice) task.
// A non-nil error aborts the enclosing Progress/RunSystem after the
// current stage finishes draining.
type SystemFunc func(ctx *Ctx, view View) error

// View is the contiguous slice of entities a system task matched.
type View struct {
	Entities []Entity
}

// system is the internal record backing a registered SystemID.
type system struct {
	id       SystemID
	allOf    bitset
	noneOf   bitset
	read     bitset
	write    bitset
	after    bitset // explicit predecessor edges, by registration-order id
	group    int
	enabled  bool
	parallel bool // false forces slice_count=1 even with a pool configured
	fn       SystemFunc
	userData any
}

// rw returns read ∪ write, the system's full declared access set.
func (s *system) rw() bitset {
	var out bitset
	out.or(&s.read, &s.write)
	return out
}

// conflictsWith reports the conflict relation between two systems:
// (A.write ∩ B.rw) ≠ ∅ ∨ (B.write ∩ A.rw) ≠ ∅.
func (a *system) conflictsWith(b *system) bool {
	bRW := b.rw()
	aRW := a.rw()
	return a.write.intersects(&bRW) || b.write.intersects(&aRW)
}

// System is a handle returned by World.NewSystem, used to declare a
// system's component filter, access sets, ordering and group. Every
// mutator that can affect scheduling marks the owning World's schedule
// dirty; SetParallel and SetUserData do not.
type System struct {
	w  *World
	id SystemID
}

// ID returns the handle's SystemID.
func (s *System) ID() SystemID { return s.id }

func (s *System) rec() *system { return s.w.systemByID(s.id) }

// Require adds c to the system's all_of set.
func (s *System) Require(c ComponentID) *System {
	r := s.rec()
	r.allOf.set(int(c))
	if r.noneOf.test(int(c)) {
		programmingError(ErrConflictingRequirement, "system: component already excluded")
	}
	s.w.markDirty()
	return s
}

// Exclude adds c to the system's none_of set.
func (s *System) Exclude(c ComponentID) *System {
	r := s.rec()
	r.noneOf.set(int(c))
	if r.allOf.test(int(c)) {
		programmingError(ErrConflictingRequirement, "system: component already required")
	}
	s.w.markDirty()
	return s
}

// Read declares c as read by this system's callback.
func (s *System) Read(c ComponentID) *System {
	s.rec().read.set(int(c))
	s.w.markDirty()
	return s
}

// Write declares c as written by this system's callback.
func (s *System) Write(c ComponentID) *System {
	s.rec().write.set(int(c))
	s.w.markDirty()
	return s
}

// After adds an explicit predecessor edge: if pred was registered before
// this system, this system is placed in a later stage than pred's,
// regardless of whether they conflict. An edge to a system registered
// after this one is not considered by the scheduler.
func (s *System) After(pred SystemID) *System {
	r := s.rec()
	r.after.set(int(pred))
	s.w.markDirty()
	return s
}

// Enable marks the system active for scheduling.
func (s *System) Enable() *System {
	r := s.rec()
	if !r.enabled {
		r.enabled = true
		s.w.markDirty()
	}
	return s
}

// Disable marks the system inactive; it's skipped by Progress until
// re-enabled. RunSystem does not check this flag and still runs it.
func (s *System) Disable() *System {
	r := s.rec()
	if r.enabled {
		r.enabled = false
		s.w.markDirty()
	}
	return s
}

// SetGroup sets the system's selective-execution group. Group 0 only runs
// via Progress(ctx, 0); any other group g runs whenever mask&g != 0.
func (s *System) SetGroup(group int) *System {
	s.rec().group = group
	s.w.markDirty()
	return s
}

// SetParallel controls whether this system's tasks are sliced across the
// configured task pool. Defaults to true; SetParallel(false) forces a
// single slice for this system even when a pool is configured, for
// systems whose body isn't safe to run concurrently with itself (e.g. one
// that accumulates into a single non-atomic total).
func (s *System) SetParallel(parallel bool) *System {
	s.rec().parallel = parallel
	return s
}

// SetUserData attaches arbitrary opaque data, retrievable via UserData.
func (s *System) SetUserData(data any) *System {
	s.rec().userData = data
	return s
}

// UserData returns whatever was last passed to SetUserData.
func (s *System) UserData() any {
	return s.rec().userData
}
