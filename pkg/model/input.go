package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// RawConstraints is the persisted form of a problem description
type RawConstraints struct {
	Timeslots  int     `mapstructure:"n_timeslots" json:"n_timeslots"`
	Rooms      int     `mapstructure:"n_rooms" json:"n_rooms"`
	Courses    int     `mapstructure:"n_courses" json:"n_courses"`
	Professors [][]int `mapstructure:"professors" json:"professors"`
	Students   [][]int `mapstructure:"students" json:"students"`
}

func ConstraintsFromJson(file string) (*Constraints, error) {
	reader, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cannot open constraints file: %w", err)
	}
	defer reader.Close()
	return ConstraintsFromReader(reader)
}

func ConstraintsFromReader(reader io.Reader) (*Constraints, error) {
	bytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("cannot read constraints: %w", err)
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, fmt.Errorf("cannot parse constraints: %w", err)
	}

	var raw RawConstraints
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &raw,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return nil, fmt.Errorf("cannot decode constraints: %w", err)
	}

	return raw.Constraints()
}

func (raw RawConstraints) Constraints() (*Constraints, error) {
	return NewConstraints(raw.Timeslots, raw.Rooms, raw.Courses, toCourses(raw.Professors), toCourses(raw.Students))
}

// Raw returns the persisted form of the constraints
func (constraints *Constraints) Raw() RawConstraints {
	return RawConstraints{
		Timeslots:  constraints.timeslots,
		Rooms:      constraints.rooms,
		Courses:    constraints.courses,
		Professors: fromCourses(constraints.professors),
		Students:   fromCourses(constraints.students),
	}
}

func (constraints *Constraints) WriteJson(writer io.Writer) error {
	return json.NewEncoder(writer).Encode(constraints.Raw())
}

func toCourses(sets [][]int) [][]Course {
	return lo.Map(sets, func(set []int, _ int) []Course {
		return lo.Map(set, func(course int, _ int) Course { return Course(course) })
	})
}

func fromCourses(sets []CourseSet) [][]int {
	return lo.Map(sets, func(set CourseSet, _ int) []int {
		return lo.Map(set, func(course Course, _ int) int { return int(course) })
	})
}
