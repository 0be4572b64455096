package model

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Mutate returns a copy in which every course is independently moved to a random free cell with probability chance
func (timetable *TimeTable) Mutate(chance float64, rng *rand.Rand) (*TimeTable, error) {
	mutated := timetable.Clone()

	// Trials follow the input's cells so a course moved forward is not rolled twice
	for time := range timetable.timeslots {
		for room := range timetable.rooms {
			course := timetable.Get(time, room)
			if course == EmptyCourse || rng.Float64() >= chance {
				continue
			}
			mutated.Unset(time, room)
			if err := mutated.RandomPlace(course, rng); err != nil {
				return nil, fmt.Errorf("cannot mutate course %v: %w", course, err)
			}
		}
	}

	return mutated, nil
}

// Cross builds a child taking every cell from either parent with equal probability.
// Courses taken twice are skipped and the ones left out are placed randomly afterwards,
// so the child holds exactly the courses of timetable
func (timetable *TimeTable) Cross(other *TimeTable, rng *rand.Rand) (*TimeTable, error) {
	if other.timeslots != timetable.timeslots || other.rooms != timetable.rooms {
		return nil, fmt.Errorf("cannot cross a %vx%v timetable with a %vx%v one", timetable.timeslots, timetable.rooms, other.timeslots, other.rooms)
	}

	child := timetable.MakeEmptyCopy()

	//** Mix parents
	for time := range timetable.timeslots {
		for room := range timetable.rooms {
			parent := timetable
			if rng.IntN(2) == 1 {
				parent = other
			}

			course := parent.Get(time, room)
			if course == EmptyCourse {
				continue
			}
			if _, ok := timetable.Find(course); !ok {
				continue // Not part of the canonical course set
			}

			var alreadyPlaced *CourseAlreadyPlacedError
			if err := child.Set(time, room, course); errors.As(err, &alreadyPlaced) {
				continue
			} else if err != nil {
				return nil, err
			}
		}
	}

	//** Repair omissions
	for _, course := range timetable.Courses().Difference(child.Courses()) {
		if err := child.RandomPlace(course, rng); err != nil {
			return nil, fmt.Errorf("cannot repair crossed timetable: %w", err)
		}
	}

	return child, nil
}
