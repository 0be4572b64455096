package genetic

import "github.com/limaJavier/genetic-timetabling/pkg/model"

const (
	PausePenalty         = 1
	DoubleBookingPenalty = 3

	// ProfessorOverlapPenalty is charged for every professor teaching two courses at once.
	// It outweighs any sum of soft penalties, so it only ranks invalid timetables among themselves
	ProfessorOverlapPenalty = 1_000_000_000
)

// Occupancy counts, per timeslot, how many of the given courses are placed in it
func Occupancy(timetable *model.TimeTable, courses model.CourseSet) []int {
	counts := make([]int, timetable.Timeslots())
	for _, course := range courses {
		if slot, ok := timetable.Find(course); ok {
			counts[slot.Time]++
		}
	}
	return counts
}

// ScanOccupancy charges one PausePenalty per gap between busy timeslots and
// DoubleBookingPenalty for every course beyond the first one in a timeslot
func ScanOccupancy(counts []int) int {
	penalty := 0
	state := Initial
	for _, count := range counts {
		var charged int
		state, charged = state.Next(count > 0)
		penalty += charged

		if count > 1 {
			penalty += (count - 1) * DoubleBookingPenalty
		}
	}
	return penalty
}

// Evaluate returns the soft penalty of an entity attending the given courses
func Evaluate(timetable *model.TimeTable, courses model.CourseSet) int {
	return ScanOccupancy(Occupancy(timetable, courses))
}

// HasOverlap reports whether two of the given courses share a timeslot
func HasOverlap(timetable *model.TimeTable, courses model.CourseSet) bool {
	seen := make([]bool, timetable.Timeslots())
	for _, course := range courses {
		slot, ok := timetable.Find(course)
		if !ok {
			continue
		}
		if seen[slot.Time] {
			return true
		}
		seen[slot.Time] = true
	}
	return false
}
