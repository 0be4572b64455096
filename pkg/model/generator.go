package model

import (
	"fmt"
	"math/rand/v2"

	"github.com/samber/lo"
)

// GeneratorOptions describes a synthetic problem
type GeneratorOptions struct {
	Students            int
	Courses             int
	Timeslots           int
	Rooms               int
	CoursesPerStudent   int
	CoursesPerProfessor int
}

// GenerateConstraints builds random constraints: courses are shuffled and split into professors of
// CoursesPerProfessor courses each (the last one may teach fewer), every student attends
// CoursesPerStudent distinct random courses
func GenerateConstraints(options GeneratorOptions, rng *rand.Rand) (*Constraints, error) {
	if options.CoursesPerProfessor <= 0 {
		return nil, fmt.Errorf("courses per professor must be positive: %v", options.CoursesPerProfessor)
	} else if options.CoursesPerStudent < 0 || options.CoursesPerStudent > options.Courses {
		return nil, fmt.Errorf("courses per student must lie in [0, %v]: %v", options.Courses, options.CoursesPerStudent)
	}

	professors := lo.Chunk(shuffledCourses(options.Courses, rng), options.CoursesPerProfessor)

	students := make([][]Course, options.Students)
	for student := range students {
		students[student] = shuffledCourses(options.Courses, rng)[:options.CoursesPerStudent]
	}

	return NewConstraints(options.Timeslots, options.Rooms, options.Courses, professors, students)
}

func shuffledCourses(courses int, rng *rand.Rand) []Course {
	return lo.Map(rng.Perm(courses), func(i int, _ int) Course { return Course(i + 1) })
}
