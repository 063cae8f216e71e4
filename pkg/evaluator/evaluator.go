package evaluator

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/constraints"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/layout"
)

// Evaluator turns the registered penalties into a single fitness per candidate.
// Fitness starts at zero and every penalty is subtracted, so higher is better.
type Evaluator struct {
	config   types.EvaluatorConfig
	layout   *layout.Layout
	registry *constraints.Registry
	logger   *logrus.Logger
}

// New creates a new Evaluator instance
func New(config types.EvaluatorConfig, l *layout.Layout, registry *constraints.Registry) *Evaluator {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	if config.ParallelWorkers <= 0 {
		config.ParallelWorkers = 1
	}

	evaluator := &Evaluator{
		config:   config,
		layout:   l,
		registry: registry,
		logger:   logger,
	}

	logger.WithFields(logrus.Fields{
		"penalties": registry.Names(),
		"parallel":  config.ParallelWorkers,
	}).Debug("Initialized evaluator")

	return evaluator
}

// SetLogger replaces the evaluator's logger
func (e *Evaluator) SetLogger(logger *logrus.Logger) {
	e.logger = logger
}

// Score computes the fitness of a genome without touching any cache
func (e *Evaluator) Score(genes []int) float64 {
	fitness := 0.0
	e.registry.Each(func(_ string, penalty constraints.Penalty) {
		fitness -= penalty(genes, e.layout)
	})
	return fitness
}

// Evaluate scores a candidate and writes the result into its fitness cache
func (e *Evaluator) Evaluate(candidate *types.Candidate) float64 {
	fitness := e.Score(candidate.Genes)
	candidate.SetFitness(fitness)
	return fitness
}

// Breakdown returns every penalty's contribution for a genome
func (e *Evaluator) Breakdown(genes []int) map[string]float64 {
	breakdown := make(map[string]float64, e.registry.Len())
	e.registry.Each(func(name string, penalty constraints.Penalty) {
		breakdown[name] = penalty(genes, e.layout)
	})
	return breakdown
}

// EvaluateBatch evaluates every candidate lacking a valid fitness and returns
// how many were evaluated. With more than one worker the candidates are
// spread over goroutines; penalties are pure, so the outcome is the same.
func (e *Evaluator) EvaluateBatch(candidates []*types.Candidate) int {
	pending := make([]*types.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if _, valid := candidate.Fitness(); !valid {
			pending = append(pending, candidate)
		}
	}

	if e.config.ParallelWorkers <= 1 || len(pending) < 2 {
		for _, candidate := range pending {
			e.Evaluate(candidate)
		}
		return len(pending)
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.config.ParallelWorkers)

	for _, candidate := range pending {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(c *types.Candidate) {
			defer wg.Done()
			defer func() { <-semaphore }()
			e.Evaluate(c)
		}(candidate)
	}

	wg.Wait()
	return len(pending)
}
