package genetic

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/limaJavier/genetic-timetabling/pkg/model"
	"go.uber.org/zap"
)

// Seeding selects how the initial population is built
type Seeding string

const (
	RandomSeeding  Seeding = "random"
	MatchedSeeding Seeding = "matched"
)

// Engine evolves populations of timetables for a fixed set of constraints.
// Its random source is used from one goroutine at a time; concurrent work gets sources derived from it
type Engine struct {
	constraints *model.Constraints
	evaluator   *Evaluator
	rng         *rand.Rand
	logger      *zap.Logger
	workers     int
}

type Option func(engine *Engine)

// WithWorkers bounds the goroutines used for evaluation and breeding; n <= 0 means GOMAXPROCS
func WithWorkers(n int) Option {
	return func(engine *Engine) {
		if n > 0 {
			engine.workers = n
		}
	}
}

func NewEngine(constraints *model.Constraints, rng *rand.Rand, logger *zap.Logger, options ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := &Engine{
		constraints: constraints,
		rng:         rng,
		logger:      logger,
		workers:     runtime.GOMAXPROCS(0),
	}
	for _, option := range options {
		option(engine)
	}
	engine.evaluator = NewEvaluator(constraints, engine.workers)

	return engine
}

func (engine *Engine) Evaluator() *Evaluator {
	return engine.evaluator
}

// RandomPopulation builds size timetables with every course in a random slot
func (engine *Engine) RandomPopulation(size int) ([]*model.TimeTable, error) {
	return engine.population(size, engine.constraints.MakeRandomTimeTable)
}

// MatchedPopulation builds size timetables seeded by per-professor timeslot matchings
func (engine *Engine) MatchedPopulation(size int) ([]*model.TimeTable, error) {
	return engine.population(size, engine.constraints.MakeMatchedTimeTable)
}

func (engine *Engine) population(size int, build func(rng *rand.Rand) (*model.TimeTable, error)) ([]*model.TimeTable, error) {
	population := make([]*model.TimeTable, 0, size)
	for range size {
		timetable, err := build(engine.rng)
		if err != nil {
			return nil, fmt.Errorf("cannot build initial population: %w", err)
		}
		population = append(population, timetable)
	}
	return population, nil
}

// RunConfig drives Run
type RunConfig struct {
	PopulationSize  int
	Generations     int
	SelectionFactor float64 // Share of the population that breeds the next generation
	MutationChance  float64
	Elites          int // Best individuals copied unchanged into the next generation
	Seeding         Seeding
}

type GenerationResult struct {
	Generation int
	Report     GenerationReport
}

type RunResult struct {
	Best        *model.TimeTable // Best valid timetable over all generations, nil if none was found
	BestScore   int
	Generations int  // Generations actually simulated
	Solved      bool // A timetable without penalty was found
}

// Run evolves a fresh population for config.Generations generations, reporting every generation to observe
// (which may be nil). It stops early once a valid timetable without penalty appears
func (engine *Engine) Run(ctx context.Context, config RunConfig, observe func(GenerationResult)) (RunResult, error) {
	result := RunResult{BestScore: math.MaxInt}

	nPairs, nChildren, err := Breeding(config.PopulationSize, config.SelectionFactor)
	if err != nil {
		return result, err
	}

	var population []*model.TimeTable
	switch config.Seeding {
	case MatchedSeeding:
		population, err = engine.MatchedPopulation(config.PopulationSize)
	case RandomSeeding, "":
		population, err = engine.RandomPopulation(config.PopulationSize)
	default:
		err = fmt.Errorf("unknown seeding %q", config.Seeding)
	}
	if err != nil {
		return result, err
	}

	engine.logger.Debug("starting evolution",
		zap.Int("population", len(population)),
		zap.Int("pairs", nPairs),
		zap.Int("children", nChildren),
		zap.Int("generations", config.Generations),
	)

	for generation := 1; generation <= config.Generations; generation++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		next, err := engine.Generation(population, nPairs, nChildren, config.MutationChance)
		if err != nil {
			return result, fmt.Errorf("generation %v: %w", generation, err)
		}
		if config.Elites > 0 {
			next = engine.carryElites(population, next, config.Elites)
		}

		report, best := engine.EvaluateGeneration(next)
		if observe != nil {
			observe(GenerationResult{Generation: generation, Report: report})
		}
		engine.logger.Debug("generation evaluated",
			zap.Int("generation", generation),
			zap.Int("valid", report.Valid),
			zap.Float64("mean", report.Mean),
			zap.Int("best", report.Best),
		)

		result.Generations = generation
		if report.HasValid() && report.Best < result.BestScore {
			result.Best = best.Clone()
			result.BestScore = report.Best
		}

		population = next
		if report.HasValid() && report.Best == 0 {
			result.Solved = true
			engine.logger.Info("found a timetable with no penalty, stopping early", zap.Int("generation", generation))
			break
		}
	}

	return result, nil
}

// carryElites replaces the tail of children with the best individuals of the parent population
func (engine *Engine) carryElites(parents, children []*model.TimeTable, elites int) []*model.TimeTable {
	elites = min(elites, len(children))
	next := append(children[:len(children)-elites:len(children)-elites], engine.Select(parents, elites)...)
	return next
}

// Breeding derives the number of breeding pairs and the children per pair that keep a population of size individuals
func Breeding(size int, selectionFactor float64) (nPairs, nChildren int, err error) {
	if selectionFactor <= 0 || selectionFactor > 1 {
		return 0, 0, fmt.Errorf("selection factor must lie in (0, 1]: %v", selectionFactor)
	}

	nPairs = int(float64(size) * selectionFactor / 2)
	if nPairs < 1 {
		return 0, 0, fmt.Errorf("%w: %v individuals with selection factor %v form no pair", ErrPopulationTooSmall, size, selectionFactor)
	}
	return nPairs, size / nPairs, nil
}
