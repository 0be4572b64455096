package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"

	"github.com/limaJavier/genetic-timetabling/pkg/config"
	"github.com/limaJavier/genetic-timetabling/pkg/genetic"
	"github.com/limaJavier/genetic-timetabling/pkg/logger"
	"github.com/limaJavier/genetic-timetabling/pkg/model"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outFile    string
	inFile     string
	configFile string
	csvOutput  bool
	seed       uint64
	settings   = config.New()
)

func main() {
	log.SetFlags(0)

	cmdTimetable := &cobra.Command{
		Use:   "timetable",
		Short: "Course timetable optimizer",
		Long:  "Assigns courses to timeslots and rooms with a genetic search that minimizes student and professor gaps",
	}

	cmdGenerate := &cobra.Command{
		Use:   "generate <students> <courses> <timeslots> <rooms> <courses-per-student> <courses-per-professor>",
		Short: "generate random constraints",
		Args:  cobra.ExactArgs(6),
		Run:   commandGenerate,
	}
	cmdGenerate.Flags().StringVarP(&outFile, "out", "o", "", "output file; standard output if empty")
	cmdGenerate.Flags().Uint64Var(&seed, "seed", 0, "random seed, 0 picks one")
	cmdTimetable.AddCommand(cmdGenerate)

	cmdCompute := &cobra.Command{
		Use:   "compute",
		Short: "search for a timetable",
		Args:  cobra.NoArgs,
		Run:   commandCompute,
	}
	flags := cmdCompute.Flags()
	flags.StringVarP(&inFile, "file", "f", "", "constraints file; standard input if empty")
	flags.StringVar(&configFile, "config", "", "configuration file")
	flags.BoolVarP(&csvOutput, "csv", "c", false, "print one \"mean,best\" line per generation")
	flags.Int("population-size", 100, "number of timetables per generation")
	flags.Int("generations", 100, "number of generations to simulate")
	flags.Float64("selection-factor", 0.2, "share of the population used to breed the next one")
	flags.Float64("mutation-chance", 0.01, "chance of moving each course when mutating")
	flags.Int("elites", 0, "best timetables copied unchanged into the next generation")
	flags.Int("workers", 0, "goroutines used for evaluation and breeding, 0 uses every CPU")
	flags.Uint64("seed", 0, "random seed, 0 picks one")
	flags.String("seeding", "random", "initial population: \"random\" or \"matched\"")
	for key, flag := range map[string]string{
		"population_size":  "population-size",
		"generations":      "generations",
		"selection_factor": "selection-factor",
		"mutation_chance":  "mutation-chance",
		"elites":           "elites",
		"workers":          "workers",
		"seed":             "seed",
		"seeding":          "seeding",
	} {
		if err := settings.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatalf("cannot bind flag %v: %v", flag, err)
		}
	}
	cmdTimetable.AddCommand(cmdCompute)

	if err := cmdTimetable.Execute(); err != nil {
		os.Exit(1)
	}
}

func commandGenerate(cmd *cobra.Command, args []string) {
	values := lo.Map(args, func(arg string, i int) int {
		value, err := strconv.Atoi(arg)
		if err != nil || value < 0 {
			log.Fatalf("argument %v must be a non-negative integer: %v", i+1, arg)
		}
		return value
	})

	constraints, err := model.GenerateConstraints(model.GeneratorOptions{
		Students:            values[0],
		Courses:             values[1],
		Timeslots:           values[2],
		Rooms:               values[3],
		CoursesPerStudent:   values[4],
		CoursesPerProfessor: values[5],
	}, newRand(seed))
	if err != nil {
		log.Fatalf("cannot generate constraints: %v", err)
	}

	writer := os.Stdout
	if outFile != "" {
		file, err := os.Create(outFile)
		if err != nil {
			log.Fatalf("cannot create output file: %v", err)
		}
		defer file.Close()
		writer = file
	}
	if err := constraints.WriteJson(writer); err != nil {
		log.Fatalf("cannot write constraints: %v", err)
	}
}

func commandCompute(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(settings, configFile)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("cannot build logger: %v", err)
	}
	defer zapLogger.Sync()

	var constraints *model.Constraints
	if inFile == "" {
		constraints, err = model.ConstraintsFromReader(os.Stdin)
	} else {
		constraints, err = model.ConstraintsFromJson(inFile)
	}
	if err != nil {
		log.Fatalf("cannot load constraints: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	evolution := cfg.Evolution
	engine := genetic.NewEngine(constraints, newRand(evolution.Seed), zapLogger, genetic.WithWorkers(evolution.Workers))
	result, err := engine.Run(ctx, genetic.RunConfig{
		PopulationSize:  evolution.PopulationSize,
		Generations:     evolution.Generations,
		SelectionFactor: evolution.SelectionFactor,
		MutationChance:  evolution.MutationChance,
		Elites:          evolution.Elites,
		Seeding:         genetic.Seeding(evolution.Seeding),
	}, func(generation genetic.GenerationResult) {
		printGeneration(generation)
	})
	if err != nil {
		zapLogger.Error("evolution aborted", zap.Error(err))
		return
	}

	if csvOutput {
		// Keep one line per requested generation for scripts reading the output
		for range evolution.Generations - result.Generations {
			fmt.Println("-2,-2")
		}
		return
	}

	if result.Best == nil {
		fmt.Println("No valid timetable found.")
		return
	}
	result.Best.Defrag()
	fmt.Printf("Best timetable found (Penalty: %v):\n%v", result.BestScore, result.Best)
}

func printGeneration(generation genetic.GenerationResult) {
	report := generation.Report
	switch {
	case csvOutput && report.HasValid():
		fmt.Printf("%v,%v\n", report.Mean, report.Best)
	case csvOutput:
		fmt.Println("-1,-1")
	case report.HasValid():
		fmt.Printf("Generation %v: Mean: %.2f Best: %v\n", generation.Generation, report.Mean, report.Best)
	default:
		fmt.Printf("Generation %v: No valid timetables\n", generation.Generation)
	}
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}
