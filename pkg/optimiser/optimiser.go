package optimiser

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/config"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/constraints"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/evaluator"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/layout"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/operators"
)

// Optimiser runs the evolutionary search for one closet configuration.
// Every call to Run builds its own random source, population and operators,
// so independent runs never share mutable state.
type Optimiser struct {
	config    types.Config
	layout    *layout.Layout
	registry  *constraints.Registry
	evaluator *evaluator.Evaluator
	logger    *logrus.Logger

	onGeneration func(types.GenerationRecord)
}

// New validates the configuration and prepares the layout, penalties and evaluator
func New(cfg types.Config) (*Optimiser, error) {
	if err := config.ValidateAlgorithm(cfg.Algorithm); err != nil {
		return nil, err
	}

	l, err := layout.Resolve(cfg.Closet)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	registry, err := constraints.Standard(cfg.Closet)
	if err != nil {
		return nil, err
	}
	eval := evaluator.New(cfg.Evaluator, l, registry)
	eval.SetLogger(logger)

	return &Optimiser{
		config:    cfg,
		layout:    l,
		registry:  registry,
		evaluator: eval,
		logger:    logger,
	}, nil
}

// SetLogger replaces the logger used by the optimiser and its evaluator
func (o *Optimiser) SetLogger(logger *logrus.Logger) {
	o.logger = logger
	o.evaluator.SetLogger(logger)
}

// OnGeneration registers a callback invoked after every completed generation
func (o *Optimiser) OnGeneration(fn func(types.GenerationRecord)) {
	o.onGeneration = fn
}

// Layout returns the resolved layout of this optimiser
func (o *Optimiser) Layout() *layout.Layout {
	return o.layout
}

// Registry returns the penalties applied to every candidate
func (o *Optimiser) Registry() *constraints.Registry {
	return o.registry
}

// Evaluator returns the fitness evaluator
func (o *Optimiser) Evaluator() *evaluator.Evaluator {
	return o.evaluator
}

// Run executes the search for the configured number of generations.
// Cancellation is only observed between generations; a cancelled run returns
// the best candidate of its current population together with the context error.
func (o *Optimiser) Run(ctx context.Context) (*types.RunResult, error) {
	algo := o.config.Algorithm

	seed := algo.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ops := operators.New(o.layout, algo, rand.New(rand.NewSource(seed)))

	result := &types.RunResult{
		ID:         uuid.New().String(),
		Components: o.layout.Names(),
		Trace:      make([]types.GenerationRecord, 0, algo.Generations),
		Config:     o.config,
		Stats: types.RunStats{
			StartTime: time.Now(),
		},
	}

	logger := o.logger.WithField("run", shortID(result.ID))
	logger.WithFields(logrus.Fields{
		"components":  result.Components,
		"population":  algo.PopulationSize,
		"generations": algo.Generations,
		"mutation":    algo.Mutation,
		"elitism":     algo.Elitism,
		"seed":        seed,
	}).Info("Starting optimisation")

	population, err := ops.InitPopulation(algo.PopulationSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise population: %w", err)
	}
	result.Stats.TotalEvaluations += int64(o.evaluator.EvaluateBatch(population))

	var runErr error
	for gen := 0; gen < algo.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			result.Stats.Cancelled = true
			runErr = fmt.Errorf("optimisation stopped after %d generations: %w", gen, err)
			logger.WithField("generation", gen).Warn("Optimisation cancelled")
			break
		}

		elite := operators.SelectElite(population, algo.Elitism)
		offspring := ops.Vary(population, algo.CrossoverProb, algo.MutationProb)
		evaluated := o.evaluator.EvaluateBatch(offspring)
		population = ops.SelectTournament(offspring, len(population), algo.TournamentSize)
		operators.ReplaceWorst(population, elite)

		record := summarise(gen, population, evaluated)
		result.Trace = append(result.Trace, record)
		result.Stats.TotalEvaluations += int64(evaluated)
		result.Stats.Generations = gen + 1

		logger.WithFields(logrus.Fields{
			"generation": gen,
			"max":        record.MaxFitness,
			"avg":        record.MeanFitness,
			"evaluated":  evaluated,
		}).Debug("Generation completed")

		if o.onGeneration != nil {
			o.onGeneration(record)
		}
	}

	best := operators.SelectBest(population).Clone()
	result.Best = best
	result.BestFitness, _ = best.Fitness()
	result.Penalties = o.evaluator.Breakdown(best.Genes)

	result.Stats.EndTime = time.Now()
	result.Stats.Duration = result.Stats.EndTime.Sub(result.Stats.StartTime)

	logger.WithFields(logrus.Fields{
		"fitness":     result.BestFitness,
		"penalties":   result.Penalties,
		"evaluations": result.Stats.TotalEvaluations,
		"duration":    result.Stats.Duration,
	}).Info("Optimisation finished")

	return result, runErr
}

// Arrangement maps a run's best candidate onto columns and components
func (o *Optimiser) Arrangement(result *types.RunResult) (*types.Arrangement, error) {
	if result == nil || result.Best == nil {
		return nil, fmt.Errorf("run result has no best candidate")
	}
	return layout.ToArrangement(result.Best.Genes, o.layout)
}

// summarise computes the trace entry for a scored population
func summarise(gen int, population []*types.Candidate, evaluated int) types.GenerationRecord {
	record := types.GenerationRecord{
		Generation:  gen,
		MaxFitness:  math.Inf(-1),
		MinFitness:  math.Inf(1),
		Evaluations: evaluated,
	}

	sum := 0.0
	for _, c := range population {
		fitness, _ := c.Fitness()
		sum += fitness
		if fitness > record.MaxFitness {
			record.MaxFitness = fitness
		}
		if fitness < record.MinFitness {
			record.MinFitness = fitness
		}
	}
	if len(population) > 0 {
		record.MeanFitness = sum / float64(len(population))
	}
	return record
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
