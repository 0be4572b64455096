package model

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func mustConstraints(t *testing.T, timeslots, rooms, courses int, professors, students [][]Course) *Constraints {
	t.Helper()
	constraints, err := NewConstraints(timeslots, rooms, courses, professors, students)
	require.NoError(t, err)
	return constraints
}

// singleProfessor builds constraints where one professor teaches every course
func singleProfessor(t *testing.T, timeslots, rooms, courses int) *Constraints {
	t.Helper()
	all := make([]Course, 0, courses)
	for course := 1; course <= courses; course++ {
		all = append(all, Course(course))
	}
	professors := make([][]Course, 0)
	for range (courses + timeslots - 1) / timeslots {
		professors = append(professors, all)
	}
	if len(professors) == 0 {
		professors = append(professors, all)
	}
	return mustConstraints(t, timeslots, rooms, courses, professors, nil)
}

// assertConsistent checks the grid, the reverse index and the free cache against each other
func assertConsistent(t *testing.T, timetable *TimeTable) {
	t.Helper()

	occupied := 0
	for time := range timetable.Timeslots() {
		for room := range timetable.Rooms() {
			course := timetable.Get(time, room)
			if course == EmptyCourse {
				continue
			}
			occupied++
			slot, ok := timetable.Find(course)
			assert.True(t, ok, "course %v is in the grid but not in the index", course)
			assert.Equal(t, Slot{Time: time, Room: room}, slot)
		}
	}
	assert.Equal(t, occupied, timetable.Len(), "every indexed course must appear exactly once in the grid")
	assert.Equal(t, occupied, timetable.Courses().Len())

	if timetable.free != nil {
		expected := make([]int, 0)
		for cell, course := range timetable.grid {
			if course == EmptyCourse {
				expected = append(expected, cell)
			}
		}
		actual := slices.Clone(timetable.free)
		slices.Sort(actual)
		assert.Equal(t, expected, actual, "free cache must hold exactly the free cells")
	}
}

func TestSetAndGet(t *testing.T) {
	timetable := NewTimeTable(singleProfessor(t, 4, 2, 4))

	require.NoError(t, timetable.Set(1, 1, 3))

	assert.Equal(t, Course(3), timetable.Get(1, 1))
	assert.Equal(t, EmptyCourse, timetable.Get(0, 0))
	slot, ok := timetable.Find(3)
	assert.True(t, ok)
	assert.Equal(t, Slot{Time: 1, Room: 1}, slot)
	_, ok = timetable.Find(2)
	assert.False(t, ok)
	assert.Equal(t, CourseSet{3}, timetable.Courses())
	assertConsistent(t, timetable)
}

func TestSetAlreadyPlaced(t *testing.T) {
	timetable := NewTimeTable(singleProfessor(t, 4, 2, 4))
	require.NoError(t, timetable.Set(0, 0, 1))

	err := timetable.Set(2, 1, 1)

	var alreadyPlaced *CourseAlreadyPlacedError
	require.True(t, errors.As(err, &alreadyPlaced))
	assert.Equal(t, Course(1), alreadyPlaced.Course)
	assert.Equal(t, Slot{Time: 0, Room: 0}, alreadyPlaced.Existing)
	assert.Equal(t, EmptyCourse, timetable.Get(2, 1), "a rejected set must not change the grid")
	assertConsistent(t, timetable)
}

func TestSetEmptyCourseUnsets(t *testing.T) {
	timetable := NewTimeTable(singleProfessor(t, 4, 2, 4))
	require.NoError(t, timetable.Set(3, 0, 2))

	require.NoError(t, timetable.Set(3, 0, EmptyCourse))

	assert.Equal(t, EmptyCourse, timetable.Get(3, 0))
	_, ok := timetable.Find(2)
	assert.False(t, ok)
	assertConsistent(t, timetable)
}

func TestSetOverOccupiedCell(t *testing.T) {
	timetable := NewTimeTable(singleProfessor(t, 4, 2, 4))
	require.NoError(t, timetable.Set(0, 0, 1))

	require.NoError(t, timetable.Set(0, 0, 2))

	_, ok := timetable.Find(1)
	assert.False(t, ok)
	assert.Equal(t, CourseSet{2}, timetable.Courses())
	assertConsistent(t, timetable)
}

func TestUnset(t *testing.T) {
	timetable := NewTimeTable(singleProfessor(t, 4, 2, 4))
	require.NoError(t, timetable.Set(2, 1, 4))

	timetable.Unset(2, 1)
	timetable.Unset(2, 1) // No-op on an empty cell

	assert.Equal(t, 0, timetable.Len())
	assertConsistent(t, timetable)
}

func TestRandomPlace(t *testing.T) {
	rng := newTestRand(1)
	constraints := singleProfessor(t, 3, 2, 6)
	timetable := NewTimeTable(constraints)

	t.Run("Fills every cell", func(t *testing.T) {
		for _, course := range constraints.CourseIds() {
			require.NoError(t, timetable.RandomPlace(course, rng))
			assertConsistent(t, timetable)
		}
		assert.Equal(t, constraints.CourseIds(), timetable.Courses())
	})

	t.Run("Reports a full timetable", func(t *testing.T) {
		err := timetable.RandomPlace(7, rng)

		var noCapacity *NoCapacityError
		require.True(t, errors.As(err, &noCapacity))
		assert.Equal(t, Course(7), noCapacity.Course)
	})

	t.Run("Rejects placed courses", func(t *testing.T) {
		var alreadyPlaced *CourseAlreadyPlacedError
		assert.True(t, errors.As(timetable.RandomPlace(1, rng), &alreadyPlaced))
	})

	t.Run("Reuses freed cells", func(t *testing.T) {
		slot, _ := timetable.Find(3)
		timetable.Unset(slot.Time, slot.Room)
		assertConsistent(t, timetable)

		require.NoError(t, timetable.RandomPlace(3, rng))

		newSlot, ok := timetable.Find(3)
		assert.True(t, ok)
		assert.Equal(t, slot, newSlot, "the only free cell must be chosen")
		assertConsistent(t, timetable)
	})
}

func TestRandomPlaceIsUniform(t *testing.T) {
	rng := newTestRand(7)
	constraints := singleProfessor(t, 2, 2, 1)
	hits := make(map[Slot]int)

	for range 4000 {
		timetable := NewTimeTable(constraints)
		require.NoError(t, timetable.RandomPlace(1, rng))
		slot, _ := timetable.Find(1)
		hits[slot]++
	}

	assert.Len(t, hits, 4)
	for slot, count := range hits {
		assert.InDelta(t, 1000, count, 150, "slot %v", slot)
	}
}

func TestMixedOperationsKeepInvariants(t *testing.T) {
	rng := newTestRand(3)
	constraints := singleProfessor(t, 5, 3, 12)
	timetable := NewTimeTable(constraints)

	for range 500 {
		course := Course(rng.IntN(constraints.Courses()) + 1)
		time, room := rng.IntN(5), rng.IntN(3)

		switch rng.IntN(3) {
		case 0:
			_ = timetable.Set(time, room, course)
		case 1:
			timetable.Unset(time, room)
		case 2:
			_ = timetable.RandomPlace(course, rng)
		}
		assertConsistent(t, timetable)
	}
}

func TestMakeEmptyCopyAndClone(t *testing.T) {
	rng := newTestRand(5)
	timetable, err := singleProfessor(t, 4, 3, 10).MakeRandomTimeTable(rng)
	require.NoError(t, err)

	empty := timetable.MakeEmptyCopy()
	assert.Equal(t, 4, empty.Timeslots())
	assert.Equal(t, 3, empty.Rooms())
	assert.Equal(t, 0, empty.Len())

	clone := timetable.Clone()
	clone.Unset(0, 0)
	clone.Unset(1, 1)
	require.NoError(t, clone.RandomPlace(42, rng))

	assert.Equal(t, 10, timetable.Len(), "the clone must not share state with the original")
	assertConsistent(t, timetable)
	assertConsistent(t, clone)
}

func TestDefrag(t *testing.T) {
	constraints := singleProfessor(t, 2, 4, 5)
	timetable := NewTimeTable(constraints)
	require.NoError(t, timetable.Set(0, 3, 4))
	require.NoError(t, timetable.Set(0, 1, 2))
	require.NoError(t, timetable.Set(1, 2, 5))
	require.NoError(t, timetable.Set(1, 0, 3))
	require.NoError(t, timetable.Set(1, 3, 1))

	timetable.Defrag()

	assert.Equal(t, []Course{2, 4, EmptyCourse, EmptyCourse}, timetable.grid[:4])
	assert.Equal(t, []Course{1, 3, 5, EmptyCourse}, timetable.grid[4:])
	assertConsistent(t, timetable)

	t.Run("Idempotent", func(t *testing.T) {
		before := slices.Clone(timetable.grid)
		timetable.Defrag()
		assert.Equal(t, before, timetable.grid)
		assertConsistent(t, timetable)
	})

	t.Run("Keeps timeslots", func(t *testing.T) {
		rng := newTestRand(11)
		for range 20 {
			random, err := singleProfessor(t, 6, 4, 20).MakeRandomTimeTable(rng)
			require.NoError(t, err)
			defragged := random.Clone()
			defragged.Defrag()

			assert.Equal(t, random.Courses(), defragged.Courses())
			for _, course := range random.Courses() {
				before, _ := random.Find(course)
				after, _ := defragged.Find(course)
				assert.Equal(t, before.Time, after.Time)
			}
			assertConsistent(t, defragged)
		}
	})
}

func TestString(t *testing.T) {
	timetable := NewTimeTable(singleProfessor(t, 2, 2, 3))
	require.NoError(t, timetable.Set(0, 0, 1))
	require.NoError(t, timetable.Set(1, 1, 12))

	assert.Equal(t, "+ ---\n|    1,    -, \n|    -,   12, \n+ ---\n", timetable.String())
}
