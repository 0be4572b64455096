package model

import (
	"fmt"
	"math/rand/v2"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// MakeMatchedTimeTable builds a timetable that tries to avoid professor overlaps from the start.
//
// Professors are visited in random order. For each one, its unplaced courses are matched against the timeslots
// that still have a free room and in which none of the course's professors teaches yet; a largest matching gives
// every matched course its own timeslot. Courses left unmatched are placed randomly at the end
func (constraints *Constraints) MakeMatchedTimeTable(rng *rand.Rand) (*TimeTable, error) {
	timetable := NewTimeTable(constraints)

	// professorsOf[course] lists the professors teaching the course
	professorsOf := make([][]int, constraints.courses+1)
	for professor, courses := range constraints.professors {
		for _, course := range courses {
			professorsOf[course] = append(professorsOf[course], professor)
		}
	}

	busy := make([][]bool, len(constraints.professors))
	for professor := range busy {
		busy[professor] = make([]bool, constraints.timeslots)
	}
	freeRooms := make([]int, constraints.timeslots)
	for time := range freeRooms {
		freeRooms[time] = constraints.rooms
	}

	for _, professor := range rng.Perm(len(constraints.professors)) {
		pending := lo.Filter(constraints.professors[professor], func(course Course, _ int) bool {
			_, placed := timetable.Find(course)
			return !placed
		})
		timeslots := lo.Filter(rng.Perm(constraints.timeslots), func(time int, _ int) bool {
			return freeRooms[time] > 0
		})
		if len(pending) == 0 || len(timeslots) == 0 {
			continue
		}

		assignments, err := matchTimeslots(pending, timeslots, func(course Course, time int) bool {
			return !lo.SomeBy(professorsOf[course], func(professor int) bool { return busy[professor][time] })
		})
		if err != nil {
			return nil, err
		}

		for _, course := range pending {
			time, ok := assignments[course]
			if !ok {
				continue
			}
			room := randomFreeRoom(timetable, time, rng)
			if err := timetable.Set(time, room, course); err != nil {
				return nil, err
			}
			freeRooms[time]--
			for _, professor := range professorsOf[course] {
				busy[professor][time] = true
			}
		}
	}

	//** Place whatever could not be matched
	for _, course := range constraints.CourseIds().Difference(timetable.Courses()) {
		if err := timetable.RandomPlace(course, rng); err != nil {
			return nil, err
		}
	}

	return timetable, nil
}

func matchTimeslots(courses []Course, timeslots []int, compatible func(course Course, time int) bool) (map[Course]int, error) {
	// Transform courses and timeslots to slices of any
	coursesAny, timeslotsAny := lo.Map(courses, func(course Course, _ int) any { return course }), lo.Map(timeslots, func(time int, _ int) any { return time })

	graph, err := bipartitegraph.NewBipartiteGraph(coursesAny, timeslotsAny, func(courseAny any, timeAny any) (bool, error) {
		return compatible(courseAny.(Course), timeAny.(int)), nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot build course-timeslot graph: %w", err)
	}

	assignments := make(map[Course]int)
	for _, edge := range graph.LargestMatching() {
		courseIndex, timeIndex := edge.Node1, edge.Node2-len(courses)
		assignments[courses[courseIndex]] = timeslots[timeIndex]
	}
	return assignments, nil
}

func randomFreeRoom(timetable *TimeTable, time int, rng *rand.Rand) int {
	rooms := lo.Filter(lo.Range(timetable.rooms), func(room int, _ int) bool {
		return timetable.Get(time, room) == EmptyCourse
	})
	return rooms[rng.IntN(len(rooms))]
}
