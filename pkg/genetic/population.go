package genetic

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/limaJavier/genetic-timetabling/pkg/model"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

var ErrPopulationTooSmall = errors.New("population is too small")

// GenerationReport summarizes the valid individuals of a generation
type GenerationReport struct {
	Valid   int
	Invalid int
	Mean    float64 // Mean score of the valid individuals
	Best    int     // Lowest score among the valid individuals
}

func (report GenerationReport) HasValid() bool {
	return report.Valid > 0
}

// Select keeps the n individuals with the lowest score; ties keep their population order
func (engine *Engine) Select(population []*model.TimeTable, n int) []*model.TimeTable {
	scores := engine.evaluator.Scores(population)

	order := lo.Range(len(population))
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[a], scores[b])
	})

	n = max(0, min(n, len(population)))
	return lo.Map(order[:n], func(i int, _ int) *model.TimeTable { return population[i] })
}

// Generation breeds a new population: the fittest 2*nPairs individuals are paired consecutively and every pair
// yields nChildren children by crossing and then mutating. The parents are not carried over
func (engine *Engine) Generation(population []*model.TimeTable, nPairs, nChildren int, mutationChance float64) ([]*model.TimeTable, error) {
	if nPairs < 0 || nChildren < 0 {
		return nil, fmt.Errorf("pairs (%v) and children (%v) must not be negative", nPairs, nChildren)
	} else if len(population) < 2*nPairs {
		return nil, fmt.Errorf("%w: %v individuals cannot form %v pairs", ErrPopulationTooSmall, len(population), nPairs)
	}

	parents := engine.Select(population, 2*nPairs)

	// Children are bred concurrently, each from its own source seeded here
	seeds := make([][2]uint64, nPairs*nChildren)
	for i := range seeds {
		seeds[i] = [2]uint64{engine.rng.Uint64(), engine.rng.Uint64()}
	}

	children := make([]*model.TimeTable, nPairs*nChildren)
	var group errgroup.Group
	group.SetLimit(engine.workers)
	for i := range children {
		mother, father := parents[2*(i/nChildren)], parents[2*(i/nChildren)+1]
		group.Go(func() error {
			rng := rand.New(rand.NewPCG(seeds[i][0], seeds[i][1]))

			child, err := mother.Cross(father, rng)
			if err != nil {
				return err
			}
			children[i], err = child.Mutate(mutationChance, rng)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return children, nil
}

// EvaluateGeneration reports the mean and best score among the individuals without professor overlaps and
// returns the best of them, or nil if every individual is invalid
func (engine *Engine) EvaluateGeneration(population []*model.TimeTable) (GenerationReport, *model.TimeTable) {
	scores := engine.evaluator.Scores(population)

	report := GenerationReport{}
	var best *model.TimeTable
	total := 0
	for i, timetable := range population {
		if !engine.evaluator.Valid(timetable) {
			report.Invalid++
			continue
		}

		if best == nil || scores[i] < report.Best {
			best = timetable
			report.Best = scores[i]
		}
		report.Valid++
		total += scores[i]
	}

	if report.HasValid() {
		report.Mean = float64(total) / float64(report.Valid)
	}
	return report, best
}
