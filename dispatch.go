package ecs

import (
	"context"
	"sync"
	"unsafe"
)

// Progress runs every stage of the cached schedule (rebuilding it first if
// dirty), restricting each stage's active systems to groupMatches(group,
// groupMask). ctx is only consulted while waiting on a stage's pooled
// tasks: if it is found canceled then, the wait still runs until every
// task of the stage has returned, the stage is drained, and its error is
// returned without starting later stages. Serial dispatch ignores ctx.
func (w *World) Progress(ctx context.Context, groupMask int) error {
	if w.dirty {
		w.rebuildSchedule()
	}
	for _, st := range w.stages {
		active := w.activeSystems(st, groupMask)
		if err := w.dispatchStage(ctx, active); err != nil {
			return err
		}
	}
	return nil
}

// RunSystem dispatches a single system as its own one-system stage,
// ignoring group and the cached schedule, then drains commands exactly as
// Progress would.
func (w *World) RunSystem(ctx context.Context, id SystemID) error {
	w.systemByID(id) // validates id, panics via ErrInvalidSystem otherwise
	return w.dispatchStage(ctx, []SystemID{id})
}

// dispatchStage runs one stage's active systems (serially if no task pool
// is configured, or sliced across w.taskCount tasks otherwise), then
// drains every command buffer used by the stage before returning. The
// first non-nil error from any system task is returned; all tasks still
// run to completion.
func (w *World) dispatchStage(ctx context.Context, active []SystemID) error {
	if len(active) == 0 {
		return nil
	}

	w.inProgress = true

	var (
		errMu    sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		if err == nil {
			return
		}
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	var used []*commandBuffer

	if w.runner == nil || w.taskCount <= 1 {
		buf := w.bufferAt(0)
		used = append(used, buf)
		for _, sid := range active {
			s := w.systemByID(sid)
			setErr(w.runSystemTask(s, buf, 0, 0, 1))
		}
	} else {
		// Every (system, slice) pair submitted this stage gets its own
		// command buffer, indexed by a global slot assigned here in this
		// single-threaded submission loop — never by slice index, which
		// different systems in the same stage can share concurrently.
		slot := 0
		for _, sid := range active {
			s := w.systemByID(sid)
			sliceCount := w.taskCount
			if !s.parallel {
				sliceCount = 1
			}
			for t := 0; t < sliceCount; t++ {
				t := t
				taskIndex := slot
				buf := w.bufferAt(slot)
				slot++
				used = append(used, buf)
				w.runner.Go(func() {
					setErr(w.runSystemTask(s, buf, taskIndex, t, sliceCount))
				})
			}
		}

		waitDone := make(chan struct{})
		go func() {
			w.runner.Wait()
			close(waitDone)
		}()
		select {
		case <-waitDone:
		case <-ctx.Done():
			<-waitDone // tasks in flight are never preempted; still wait for them
			setErr(ctx.Err())
		}
	}

	w.inProgress = false
	w.drain(used)

	return firstErr
}

// runSystemTask is one (system, slice) unit of work: pick the driver
// pool, compute this slice's bounds over its dense array, filter matching
// entities into a scratch slice, and invoke the system's callback with a
// Ctx bound to buf, the command buffer reserved exclusively for this
// task.
//
// The match slice is allocated fresh per task rather than reused from a
// pooled buffer: a shared scratch buffer addressed the same way a command
// buffer used to be would let one task's filter pass clobber another's
// view mid-callback, so there is nothing to key by task identity here at
// all.
func (w *World) runSystemTask(s *system, buf *commandBuffer, taskIndex, sliceIndex, sliceCount int) error {
	driver, ok := w.driverPool(&s.allOf)
	if !ok {
		return nil
	}
	dense := w.pools[driver].dense()

	count := len(dense)
	start := count * sliceIndex / sliceCount
	end := count * (sliceIndex + 1) / sliceCount

	matches := make([]Entity, 0, end-start)
	for _, e := range dense[start:end] {
		if matchEntity(&w.compBits[e], &s.allOf, &s.noneOf) {
			matches = append(matches, e)
		}
	}

	if len(matches) == 0 {
		return nil
	}

	ctx := &Ctx{World: w, taskIndex: taskIndex, buf: buf}
	return s.fn(ctx, View{Entities: matches})
}

// drain replays every command buffer used by the stage just completed, in
// submission order and in-order within a buffer, then resets each for
// reuse. Later buffers win on same-entity conflicts only incidentally —
// there is no dedup, so a RemoveComponent after an AddComponent in a
// later buffer simply applies after, same as any other in-order replay.
func (w *World) drain(used []*commandBuffer) {
	total := 0
	for _, buf := range used {
		total += len(buf.commands)
	}
	if total > 0 {
		w.log.Debug().Int("commands", total).Int("slots", len(used)).Log("draining stage commands")
	}

	for _, buf := range used {
		for _, cmd := range buf.commands {
			switch cmd.kind {
			case cmdDestroy:
				if w.isLive(cmd.entity) {
					w.destroyEntityImmediate(cmd.entity)
				}
			case cmdAddComponent:
				w.applyAddComponent(buf, cmd)
			case cmdRemoveComponent:
				if w.isLive(cmd.entity) {
					w.pools[cmd.component].remove(cmd.entity)
					w.compBits[cmd.entity].clear(int(cmd.component))
				}
			}
		}
		buf.reset()
	}
}

func (w *World) applyAddComponent(buf *commandBuffer, cmd command) {
	if !w.isLive(cmd.entity) {
		return
	}
	src := buf.dataAt(cmd.dataOffset, cmd.dataLen)
	dst := w.pools[cmd.component].add(cmd.entity)
	if cmd.dataLen > 0 {
		copy(unsafe.Slice((*byte)(dst), cmd.dataLen), src)
	}
	w.compBits[cmd.entity].set(int(cmd.component))
}
