package ecs

import (
	"fmt"
	"io"
)

// The World's control path — the goroutine that calls Progress or
// RunSystem — is effectively single-threaded: only that call analyzes and
// dispatches stages. Parallelism exists solely within a stage, across the
// tasks that one Progress/RunSystem call enqueues on the configured
// TaskRunner.

// stage is a maximal set of systems that may execute concurrently: no two
// systems in a stage conflict.
type stage struct {
	systems []SystemID
}

// rebuildSchedule runs a registration-order-stable forward pass: for every
// earlier system j < i in conflict (or linked by an explicit After edge)
// with i, stage(i) = 1 + max(stage(j)). Because every edge points from a
// lower to a higher registration index, a single forward pass over
// registration order already yields a topologically sorted, deterministic
// assignment — no separate cycle detection is needed.
func (w *World) rebuildSchedule() {
	n := len(w.systems)
	stageOf := make([]int, n)
	for i := 0; i < n; i++ {
		si := w.systems[i]
		best := -1
		for j := 0; j < i; j++ {
			sj := w.systems[j]
			if si.after.test(int(sj.id)) || si.conflictsWith(sj) {
				if stageOf[j] > best {
					best = stageOf[j]
				}
			}
		}
		stageOf[i] = best + 1
	}

	maxStage := -1
	for _, s := range stageOf {
		if s > maxStage {
			maxStage = s
		}
	}

	stages := make([]stage, maxStage+1)
	for i := 0; i < n; i++ {
		si := stageOf[i]
		stages[si].systems = append(stages[si].systems, w.systems[i].id)
	}

	w.stages = stages
	w.dirty = false

	w.log.Debug().Int("systems", n).Int("stages", len(stages)).Log("schedule rebuilt")
}

func (w *World) markDirty() { w.dirty = true }

// activeSystems returns the enabled, group-matching systems of a stage, in
// registration order.
func (w *World) activeSystems(st stage, groupMask int) []SystemID {
	out := make([]SystemID, 0, len(st.systems))
	for _, id := range st.systems {
		s := w.systemByID(id)
		if !s.enabled {
			continue
		}
		if groupMatches(s.group, groupMask) {
			out = append(out, id)
		}
	}
	return out
}

// groupMatches: mask 0 selects only group 0; any other mask selects every
// group g with group&mask != 0.
func groupMatches(group, mask int) bool {
	if mask == 0 {
		return group == 0
	}
	return group&mask != 0
}

// driverPool picks the component pool in allOf with the smallest current
// count, breaking ties on the lowest ComponentID for determinism. Any
// all_of member is a legal driver; this tie-break just keeps test output
// reproducible. ok is false iff allOf is empty.
func (w *World) driverPool(allOf *bitset) (id ComponentID, ok bool) {
	best := -1
	bestCount := 0
	allOf.forEach(func(bit int) {
		p := w.pools[bit]
		c := 0
		if p != nil {
			c = p.count()
		}
		if best == -1 || c < bestCount {
			best = bit
			bestCount = c
		}
	})
	if best == -1 {
		return 0, false
	}
	return ComponentID(best), true
}

// matchEntity reports whether e satisfies a system's all_of/none_of
// filter.
func matchEntity(bits *bitset, allOf, noneOf *bitset) bool {
	return bits.contains(allOf) && !bits.intersects(noneOf)
}

// DumpSchedule writes a human-readable rendering of the cached schedule
// to w: one line per stage, one line per system listing its read/write/
// after sets. Rebuilds the schedule first if dirty. Intended for
// debugging and tests, not for parsing.
func (world *World) DumpSchedule(w io.Writer) {
	if world.dirty {
		world.rebuildSchedule()
	}
	for i, st := range world.stages {
		fmt.Fprintf(w, "stage %d:\n", i)
		for _, id := range st.systems {
			s := world.systemByID(id)
			fmt.Fprintf(w, "  system %d: group=%d parallel=%v enabled=%v read=%s write=%s after=%s\n",
				id, s.group, s.parallel, s.enabled,
				formatBitset(&s.read), formatBitset(&s.write), formatBitset(&s.after))
		}
	}
}

func formatBitset(b *bitset) string {
	var ids []int
	b.forEach(func(bit int) { ids = append(ids, bit) })
	return fmt.Sprint(ids)
}
