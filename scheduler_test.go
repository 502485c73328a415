package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopFn(*Ctx, View) error { return nil }

// Invariant 6: if A was registered before B and they conflict, stage(A) <
// stage(B).
func TestScheduler_ConflictingSystemsSeparateStages(t *testing.T) {
	w := New()
	type Pos struct{ x, y float64 }
	cPos := RegisterComponent[Pos](w)

	a := w.NewSystem(noopFn)
	a.Write(cPos)
	b := w.NewSystem(noopFn)
	b.Write(cPos)

	w.rebuildSchedule()
	require.Len(t, w.stages, 2)
	assert.Equal(t, []SystemID{a.ID()}, w.stages[0].systems)
	assert.Equal(t, []SystemID{b.ID()}, w.stages[1].systems)
}

// Invariant 5: non-conflicting systems share a stage.
func TestScheduler_ReadOnlySystemsShareStage(t *testing.T) {
	w := New()
	type Pos struct{ x, y float64 }
	cPos := RegisterComponent[Pos](w)

	a := w.NewSystem(noopFn)
	a.Read(cPos)
	b := w.NewSystem(noopFn)
	b.Read(cPos)

	w.rebuildSchedule()
	require.Len(t, w.stages, 1)
	assert.ElementsMatch(t, []SystemID{a.ID(), b.ID()}, w.stages[0].systems)
}

func TestScheduler_ExplicitAfterEdgeForcesLaterStage(t *testing.T) {
	w := New()
	a := w.NewSystem(noopFn)
	b := w.NewSystem(noopFn)
	b.After(a.ID())

	w.rebuildSchedule()
	require.Len(t, w.stages, 2)
	assert.Equal(t, []SystemID{a.ID()}, w.stages[0].systems)
	assert.Equal(t, []SystemID{b.ID()}, w.stages[1].systems)
}

func TestGroupMatches(t *testing.T) {
	assert.True(t, groupMatches(0, 0))
	assert.False(t, groupMatches(1, 0))
	assert.True(t, groupMatches(1, 1))
	assert.True(t, groupMatches(0b10, 0b11))
	assert.False(t, groupMatches(0b10, 0b01))
}

func TestMatchEntity(t *testing.T) {
	var bits, allOf, noneOf bitset
	bits.set(1)
	bits.set(2)
	allOf.set(1)
	noneOf.set(5)
	assert.True(t, matchEntity(&bits, &allOf, &noneOf))

	noneOf.set(2)
	assert.False(t, matchEntity(&bits, &allOf, &noneOf))
}

func TestDriverPool_PicksSmallestCountWithLowestIDTiebreak(t *testing.T) {
	w := New()
	type A struct{}
	type B struct{}
	cA := RegisterComponent[A](w)
	cB := RegisterComponent[B](w)

	e1 := w.CreateEntity()
	Add[A](w, e1)
	Add[B](w, e1)

	var allOf bitset
	allOf.set(int(cA))
	allOf.set(int(cB))

	id, ok := w.driverPool(&allOf)
	require.True(t, ok)
	assert.Equal(t, cA, id) // tied counts (1 each) -> lowest ComponentID wins

	e2 := w.CreateEntity()
	Add[B](w, e2)

	id, ok = w.driverPool(&allOf)
	require.True(t, ok)
	assert.Equal(t, cA, id) // A now strictly smaller
}

func TestDriverPool_EmptyAllOf(t *testing.T) {
	w := New()
	var allOf bitset
	_, ok := w.driverPool(&allOf)
	assert.False(t, ok)
}
