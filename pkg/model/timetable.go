package model

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/samber/lo"
)

type Slot struct {
	Time int
	Room int
}

// TimeTable is a candidate solution: a timeslot x room grid of courses.
//
// It maintains a reverse index from every placed course to its slot and a lazily built cache of the free cells.
// Whenever the cache is present it holds exactly the unoccupied cells
type TimeTable struct {
	timeslots int
	rooms     int
	grid      []Course // Row-major: grid[time*rooms+room]
	lookup    map[Course]Slot
	free      []int // Free cell indices, nil when invalidated
}

func NewTimeTable(constraints *Constraints) *TimeTable {
	return newTimeTable(constraints.Timeslots(), constraints.Rooms())
}

func newTimeTable(timeslots, rooms int) *TimeTable {
	return &TimeTable{
		timeslots: timeslots,
		rooms:     rooms,
		grid:      make([]Course, timeslots*rooms),
		lookup:    make(map[Course]Slot),
	}
}

// MakeEmptyCopy returns an empty timetable with the same dimensions
func (timetable *TimeTable) MakeEmptyCopy() *TimeTable {
	return newTimeTable(timetable.timeslots, timetable.rooms)
}

func (timetable *TimeTable) Clone() *TimeTable {
	clone := &TimeTable{
		timeslots: timetable.timeslots,
		rooms:     timetable.rooms,
		grid:      slices.Clone(timetable.grid),
		lookup:    make(map[Course]Slot, len(timetable.lookup)),
	}
	for course, slot := range timetable.lookup {
		clone.lookup[course] = slot
	}
	if timetable.free != nil {
		clone.free = slices.Clone(timetable.free)
	}
	return clone
}

func (timetable *TimeTable) Timeslots() int {
	return timetable.timeslots
}

func (timetable *TimeTable) Rooms() int {
	return timetable.rooms
}

// Len returns the number of placed courses
func (timetable *TimeTable) Len() int {
	return len(timetable.lookup)
}

// Set places course at (time, room). Setting EmptyCourse is equivalent to Unset.
// If the course is already placed somewhere a *CourseAlreadyPlacedError is returned and nothing changes
func (timetable *TimeTable) Set(time, room int, course Course) error {
	if course == EmptyCourse {
		timetable.Unset(time, room)
		return nil
	}
	if existing, ok := timetable.lookup[course]; ok {
		return &CourseAlreadyPlacedError{Course: course, Existing: existing}
	}

	cell := timetable.cell(time, room)
	if previous := timetable.grid[cell]; previous != EmptyCourse {
		delete(timetable.lookup, previous)
	}
	timetable.grid[cell] = course
	timetable.lookup[course] = Slot{Time: time, Room: room}
	timetable.free = nil
	return nil
}

func (timetable *TimeTable) Unset(time, room int) {
	cell := timetable.cell(time, room)
	course := timetable.grid[cell]
	if course == EmptyCourse {
		return
	}

	timetable.grid[cell] = EmptyCourse
	delete(timetable.lookup, course)
	if timetable.free != nil {
		timetable.free = append(timetable.free, cell)
	}
}

func (timetable *TimeTable) Get(time, room int) Course {
	return timetable.grid[timetable.cell(time, room)]
}

func (timetable *TimeTable) Find(course Course) (Slot, bool) {
	slot, ok := timetable.lookup[course]
	return slot, ok
}

// Courses returns every placed course
func (timetable *TimeTable) Courses() CourseSet {
	return NewCourseSet(lo.Keys(timetable.lookup)...)
}

// RandomPlace puts course into a uniformly random free cell
func (timetable *TimeTable) RandomPlace(course Course, rng *rand.Rand) error {
	if existing, ok := timetable.lookup[course]; ok {
		return &CourseAlreadyPlacedError{Course: course, Existing: existing}
	}

	free := timetable.freeCells()
	if len(free) == 0 {
		return &NoCapacityError{Course: course}
	}

	i := rng.IntN(len(free))
	cell := free[i]
	if err := timetable.Set(cell/timetable.rooms, cell%timetable.rooms, course); err != nil {
		return err
	}

	// Set drops the cache; the chosen cell is the only change, so keep the rest
	free[i] = free[len(free)-1]
	timetable.free = free[:len(free)-1]
	return nil
}

// Defrag sorts every timeslot by course id, leaving free rooms last.
// Which courses share a timeslot is unchanged, so is any score derived from it
func (timetable *TimeTable) Defrag() {
	for time := range timetable.timeslots {
		row := timetable.grid[time*timetable.rooms : (time+1)*timetable.rooms]
		slices.SortFunc(row, func(a, b Course) int {
			switch {
			case a == b:
				return 0
			case a == EmptyCourse:
				return 1
			case b == EmptyCourse:
				return -1
			case a < b:
				return -1
			default:
				return 1
			}
		})
		for room, course := range row {
			if course != EmptyCourse {
				timetable.lookup[course] = Slot{Time: time, Room: room}
			}
		}
	}
	timetable.free = nil
}

// String renders the grid with one line per timeslot and one column per room
func (timetable *TimeTable) String() string {
	var builder strings.Builder
	builder.WriteString("+ ---\n")
	for time := range timetable.timeslots {
		builder.WriteString("| ")
		for room := range timetable.rooms {
			if course := timetable.Get(time, room); course != EmptyCourse {
				fmt.Fprintf(&builder, "%4d, ", course)
			} else {
				fmt.Fprintf(&builder, "%4s, ", "-")
			}
		}
		builder.WriteString("\n")
	}
	builder.WriteString("+ ---\n")
	return builder.String()
}

func (timetable *TimeTable) freeCells() []int {
	if timetable.free == nil {
		timetable.free = make([]int, 0, len(timetable.grid)-len(timetable.lookup))
		for cell, course := range timetable.grid {
			if course == EmptyCourse {
				timetable.free = append(timetable.free, cell)
			}
		}
	}
	return timetable.free
}

func (timetable *TimeTable) cell(time, room int) int {
	if time < 0 || time >= timetable.timeslots || room < 0 || room >= timetable.rooms {
		panic(fmt.Sprintf("slot (%v, %v) is outside of a %vx%v timetable", time, room, timetable.timeslots, timetable.rooms))
	}
	return time*timetable.rooms + room
}
