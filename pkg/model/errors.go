package model

import "fmt"

// CapacityViolationError reports constraints that no timetable could satisfy
type CapacityViolationError struct {
	Reason string
}

func (err *CapacityViolationError) Error() string {
	return fmt.Sprintf("capacity violation: %v", err.Reason)
}

type CourseAlreadyPlacedError struct {
	Course   Course
	Existing Slot
}

func (err *CourseAlreadyPlacedError) Error() string {
	return fmt.Sprintf("course %v is already placed at timeslot %v, room %v", err.Course, err.Existing.Time, err.Existing.Room)
}

// NoCapacityError is returned when a course must be placed into a full timetable.
// Valid constraints always leave room for every course, so it signals a broken invariant
type NoCapacityError struct {
	Course Course
}

func (err *NoCapacityError) Error() string {
	return fmt.Sprintf("no free slot left for course %v", err.Course)
}
