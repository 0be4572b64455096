package model

import (
	"slices"

	"github.com/samber/lo"
)

// Course identifies a course. Valid ids lie in [1, n]; EmptyCourse marks a free cell
type Course int

const EmptyCourse Course = 0

// CourseSet is a sorted set of courses without duplicates
type CourseSet []Course

func NewCourseSet(courses ...Course) CourseSet {
	set := lo.Uniq(courses)
	slices.Sort(set)
	return CourseSet(set)
}

func (set CourseSet) Contains(course Course) bool {
	_, found := slices.BinarySearch(set, course)
	return found
}

func (set CourseSet) Len() int {
	return len(set)
}

// Difference returns the courses in set that are not in other
func (set CourseSet) Difference(other CourseSet) CourseSet {
	missing, _ := lo.Difference(set, other)
	return NewCourseSet(missing...)
}

func (set CourseSet) Equal(other CourseSet) bool {
	return slices.Equal(set, other)
}
