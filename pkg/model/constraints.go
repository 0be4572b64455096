package model

import (
	"fmt"
	"math/rand/v2"

	"github.com/samber/lo"
)

// Constraints is the immutable description of a timetabling problem
type Constraints struct {
	timeslots  int
	rooms      int
	courses    int
	professors []CourseSet
	students   []CourseSet
}

// NewConstraints validates and builds a problem description.
// Courses are the ids 1..courses; each professor and student is given by the set of courses it attends
func NewConstraints(timeslots, rooms, courses int, professors, students [][]Course) (*Constraints, error) {
	if timeslots <= 0 || rooms <= 0 {
		return nil, &CapacityViolationError{Reason: fmt.Sprintf("timeslots (%v) and rooms (%v) must be positive", timeslots, rooms)}
	} else if courses < 0 {
		return nil, &CapacityViolationError{Reason: fmt.Sprintf("negative number of courses: %v", courses)}
	} else if timeslots*rooms < courses {
		return nil, &CapacityViolationError{Reason: fmt.Sprintf("%v timeslots and %v rooms cannot hold %v courses", timeslots, rooms, courses)}
	} else if len(professors)*timeslots < courses {
		return nil, &CapacityViolationError{Reason: fmt.Sprintf("%v professors cannot teach %v courses in %v timeslots", len(professors), courses, timeslots)}
	}

	constraints := &Constraints{
		timeslots:  timeslots,
		rooms:      rooms,
		courses:    courses,
		professors: lo.Map(professors, func(set []Course, _ int) CourseSet { return NewCourseSet(set...) }),
		students:   lo.Map(students, func(set []Course, _ int) CourseSet { return NewCourseSet(set...) }),
	}

	// Every subscribed course must exist
	for _, entities := range [][]CourseSet{constraints.professors, constraints.students} {
		for _, set := range entities {
			if invalid, ok := lo.Find(set, func(course Course) bool { return !constraints.validCourse(course) }); ok {
				return nil, &CapacityViolationError{Reason: fmt.Sprintf("course %v is outside of [1, %v]", invalid, courses)}
			}
		}
	}

	// Every course must be taught by someone
	taught := make([]bool, courses+1)
	for _, set := range constraints.professors {
		for _, course := range set {
			taught[course] = true
		}
	}
	for course := 1; course <= courses; course++ {
		if !taught[course] {
			return nil, &CapacityViolationError{Reason: fmt.Sprintf("course %v has no professor", course)}
		}
	}

	return constraints, nil
}

func (constraints *Constraints) Timeslots() int {
	return constraints.timeslots
}

func (constraints *Constraints) Rooms() int {
	return constraints.rooms
}

// Courses returns the number of courses
func (constraints *Constraints) Courses() int {
	return constraints.courses
}

func (constraints *Constraints) CourseIds() CourseSet {
	return NewCourseSet(lo.Map(lo.Range(constraints.courses), func(i int, _ int) Course { return Course(i + 1) })...)
}

func (constraints *Constraints) Professors() []CourseSet {
	return constraints.professors
}

func (constraints *Constraints) Students() []CourseSet {
	return constraints.students
}

// MakeRandomTimeTable places every course into a uniformly random free slot
func (constraints *Constraints) MakeRandomTimeTable(rng *rand.Rand) (*TimeTable, error) {
	timetable := NewTimeTable(constraints)
	for _, course := range constraints.CourseIds() {
		if err := timetable.RandomPlace(course, rng); err != nil {
			return nil, err
		}
	}
	return timetable, nil
}

func (constraints *Constraints) validCourse(course Course) bool {
	return course >= 1 && int(course) <= constraints.courses
}
