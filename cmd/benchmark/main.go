package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/limaJavier/genetic-timetabling/pkg/genetic"
	"github.com/limaJavier/genetic-timetabling/pkg/model"

	"github.com/samber/lo"
)

const (
	outputFile     = "benchmark_results.csv"
	seed           = 42
	populationSize = 100
	generations    = 200
)

var (
	instance = model.GeneratorOptions{
		Students:            200,
		Courses:             40,
		Timeslots:           12,
		Rooms:               5,
		CoursesPerStudent:   5,
		CoursesPerProfessor: 3,
	}
	mutationChances  = []float64{0.001, 0.01, 0.05}
	selectionFactors = []float64{0.1, 0.2, 0.5}
	seedings         = []genetic.Seeding{genetic.RandomSeeding, genetic.MatchedSeeding}
)

type BenchmarkCase struct {
	MutationChance  float64
	SelectionFactor float64
	Seeding         genetic.Seeding
}

type BenchmarkResult struct {
	Case          BenchmarkCase
	BestScore     int // -1 when no valid timetable was found
	ValidFraction float64
	Generations   int
	Duration      int64
}

func main() {
	constraints, err := model.GenerateConstraints(instance, rand.New(rand.NewPCG(seed, seed)))
	if err != nil {
		log.Fatalf("cannot generate instance: %v", err)
	}

	cases := benchmarkCases(mutationChances, selectionFactors, seedings)
	results := make([]BenchmarkResult, 0, len(cases))
	for _, benchmarkCase := range cases {
		fmt.Printf("Benchmarking mutation chance \"%v\", selection factor \"%v\" and seeding \"%v\"\n", benchmarkCase.MutationChance, benchmarkCase.SelectionFactor, benchmarkCase.Seeding)

		result, err := measure(constraints, benchmarkCase)
		if err != nil {
			log.Fatalf("an error occurred during the evolution: %v", err)
		}
		results = append(results, result)
	}

	toCsv(results)
}

func benchmarkCases(mutationChances, selectionFactors []float64, seedings []genetic.Seeding) []BenchmarkCase {
	cases := make([]BenchmarkCase, 0, len(mutationChances)*len(selectionFactors)*len(seedings))
	for _, mutationChance := range mutationChances {
		for _, selectionFactor := range selectionFactors {
			for _, seeding := range seedings {
				cases = append(cases, BenchmarkCase{
					MutationChance:  mutationChance,
					SelectionFactor: selectionFactor,
					Seeding:         seeding,
				})
			}
		}
	}
	return cases
}

func measure(constraints *model.Constraints, benchmarkCase BenchmarkCase) (BenchmarkResult, error) {
	engine := genetic.NewEngine(constraints, rand.New(rand.NewPCG(seed, seed)), nil)

	reports := make([]genetic.GenerationReport, 0, generations)
	start := time.Now()
	result, err := engine.Run(context.Background(), genetic.RunConfig{
		PopulationSize:  populationSize,
		Generations:     generations,
		SelectionFactor: benchmarkCase.SelectionFactor,
		MutationChance:  benchmarkCase.MutationChance,
		Seeding:         benchmarkCase.Seeding,
	}, func(generation genetic.GenerationResult) {
		reports = append(reports, generation.Report)
	})
	if err != nil {
		return BenchmarkResult{}, err
	}

	bestScore := -1
	if result.Best != nil {
		bestScore = result.BestScore
	}

	return BenchmarkResult{
		Case:          benchmarkCase,
		BestScore:     bestScore,
		ValidFraction: validFraction(reports),
		Generations:   result.Generations,
		Duration:      time.Since(start).Milliseconds(),
	}, nil
}

// validFraction is the share of valid individuals over every evaluated generation
func validFraction(reports []genetic.GenerationReport) float64 {
	valid := lo.SumBy(reports, func(report genetic.GenerationReport) int { return report.Valid })
	total := lo.SumBy(reports, func(report genetic.GenerationReport) int { return report.Valid + report.Invalid })
	if total == 0 {
		return 0
	}
	return float64(valid) / float64(total)
}

func toCsv(results []BenchmarkResult) {
	file, err := os.Create(outputFile)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Mutation Chance", "Selection Factor", "Seeding", "Best Score", "Valid Fraction", "Generations", "Duration(ms)"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		if err := writer.Write(toRecord(result)); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}

func toRecord(result BenchmarkResult) []string {
	return []string{
		fmt.Sprintf("%g", result.Case.MutationChance),
		fmt.Sprintf("%g", result.Case.SelectionFactor),
		string(result.Case.Seeding),
		fmt.Sprintf("%d", result.BestScore),
		fmt.Sprintf("%.3f", result.ValidFraction),
		fmt.Sprintf("%d", result.Generations),
		fmt.Sprintf("%d", result.Duration),
	}
}
