package genetic

import (
	"runtime"

	"github.com/limaJavier/genetic-timetabling/pkg/model"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Evaluator scores timetables against a set of constraints.
// Per-entity contributions are independent, so they are computed concurrently and summed as integers
type Evaluator struct {
	constraints *model.Constraints
	workers     int
}

// NewEvaluator returns an evaluator using up to workers goroutines; workers <= 0 means GOMAXPROCS
func NewEvaluator(constraints *model.Constraints, workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Evaluator{
		constraints: constraints,
		workers:     workers,
	}
}

func (evaluator *Evaluator) Constraints() *model.Constraints {
	return evaluator.constraints
}

// StudentPenalty sums the soft penalty of every student
func (evaluator *Evaluator) StudentPenalty(timetable *model.TimeTable) int {
	return evaluator.studentPenalty(timetable, evaluator.workers)
}

// ProfessorPenalty sums the soft penalty of every professor plus ProfessorOverlapPenalty per overlapping professor
func (evaluator *Evaluator) ProfessorPenalty(timetable *model.TimeTable) int {
	return evaluator.professorPenalty(timetable, evaluator.workers)
}

// Score is the total penalty of the timetable, lower is better
func (evaluator *Evaluator) Score(timetable *model.TimeTable) int {
	return evaluator.score(timetable, evaluator.workers)
}

// Valid reports whether no professor teaches two courses in the same timeslot
func (evaluator *Evaluator) Valid(timetable *model.TimeTable) bool {
	return !lo.SomeBy(evaluator.constraints.Professors(), func(courses model.CourseSet) bool {
		return HasOverlap(timetable, courses)
	})
}

// Scores evaluates a whole population, one individual per goroutine
func (evaluator *Evaluator) Scores(population []*model.TimeTable) []int {
	scores := make([]int, len(population))

	var group errgroup.Group
	group.SetLimit(evaluator.workers)
	for i, timetable := range population {
		group.Go(func() error {
			scores[i] = evaluator.score(timetable, 1)
			return nil
		})
	}
	_ = group.Wait()

	return scores
}

func (evaluator *Evaluator) score(timetable *model.TimeTable, workers int) int {
	return evaluator.studentPenalty(timetable, workers) + evaluator.professorPenalty(timetable, workers)
}

func (evaluator *Evaluator) studentPenalty(timetable *model.TimeTable, workers int) int {
	students := evaluator.constraints.Students()
	return parallelSum(len(students), workers, func(i int) int {
		return Evaluate(timetable, students[i])
	})
}

func (evaluator *Evaluator) professorPenalty(timetable *model.TimeTable, workers int) int {
	professors := evaluator.constraints.Professors()
	return parallelSum(len(professors), workers, func(i int) int {
		penalty := Evaluate(timetable, professors[i])
		if HasOverlap(timetable, professors[i]) {
			penalty += ProfessorOverlapPenalty
		}
		return penalty
	})
}

// parallelSum adds contribution(i) for i in [0, n). Every worker accumulates into its own partial sum
func parallelSum(n, workers int, contribution func(i int) int) int {
	chunks := min(workers, n)
	if chunks <= 1 {
		return lo.Sum(lo.Map(lo.Range(n), func(i int, _ int) int { return contribution(i) }))
	}

	partials := make([]int, chunks)
	var group errgroup.Group
	for chunk := range chunks {
		group.Go(func() error {
			for i := chunk; i < n; i += chunks {
				partials[chunk] += contribution(i)
			}
			return nil
		})
	}
	_ = group.Wait()

	return lo.Sum(partials)
}
