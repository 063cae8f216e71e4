package evaluator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/constraints"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/layout"
)

func testCloset() types.ClosetConfig {
	return types.ClosetConfig{
		Width:   2540,
		Height:  2176,
		Columns: 4,
		Components: []types.ComponentConfig{
			{Name: "shelves", Target: 70, MinHeight: 32},
			{Name: "drawers", Target: 30, MinHeight: 224},
		},
		CatchAll: "shelves",
		Heuristics: []types.HeuristicConfig{
			{Component: "drawers", EqualSize: true, Centre: true, FullUtilisation: true},
		},
	}
}

func newTestEvaluator(t *testing.T, workers int) (*Evaluator, *layout.Layout) {
	t.Helper()
	cfg := testCloset()
	l, err := layout.Resolve(cfg)
	require.NoError(t, err)
	registry, err := constraints.Standard(cfg)
	require.NoError(t, err)
	return New(types.EvaluatorConfig{ParallelWorkers: workers}, l, registry), l
}

func TestEvaluateCachesFitness(t *testing.T) {
	e, _ := newTestEvaluator(t, 1)

	candidate := types.NewCandidate([]int{1280, 896, 1280, 896, 1280, 896, 2176, 0})
	fitness := e.Evaluate(candidate)

	cached, valid := candidate.Fitness()
	assert.True(t, valid)
	assert.Equal(t, fitness, cached)
	assert.LessOrEqual(t, fitness, 0.0)

	// Fitness is the negated sum of every penalty
	sum := 0.0
	for _, penalty := range e.Breakdown(candidate.Genes) {
		sum += penalty
	}
	assert.InDelta(t, -sum, fitness, 1e-9)

	// Changing genes invalidates the cache
	candidate.Genes[0] = 0
	candidate.Invalidate()
	_, valid = candidate.Fitness()
	assert.False(t, valid)
}

func TestEvaluateDeterministic(t *testing.T) {
	e, l := newTestEvaluator(t, 1)

	rng := rand.New(rand.NewSource(3))
	for n := 0; n < 20; n++ {
		candidate, err := layout.RandomCandidate(l, rng)
		require.NoError(t, err)
		assert.Equal(t, e.Score(candidate.Genes), e.Score(candidate.Clone().Genes))
	}
}

func TestEmptyCandidate(t *testing.T) {
	e, l := newTestEvaluator(t, 1)

	breakdown := e.Breakdown(make([]int, l.Size()))
	assert.Equal(t, float64(4*2176), breakdown["total_space"])
	assert.Equal(t, 0.0, breakdown["quantization"])
	assert.Equal(t, 0.0, breakdown["column_overflow"])
}

func TestLargerOverflowScoresLower(t *testing.T) {
	e, _ := newTestEvaluator(t, 1)

	// Column 0 overflows by 64 and by 128; everything else is identical
	smaller := []int{2016, 224, 1280, 896, 1280, 896, 1280, 896}
	larger := []int{2080, 224, 1280, 896, 1280, 896, 1280, 896}

	assert.Less(t, e.Score(larger), e.Score(smaller))
	assert.Equal(t, 164.0, e.Breakdown(smaller)["column_overflow"])
	assert.Equal(t, 228.0, e.Breakdown(larger)["column_overflow"])
}

func TestEvaluateBatchSkipsScoredCandidates(t *testing.T) {
	e, l := newTestEvaluator(t, 1)

	rng := rand.New(rand.NewSource(5))
	population := make([]*types.Candidate, 10)
	for i := range population {
		candidate, err := layout.RandomCandidate(l, rng)
		require.NoError(t, err)
		population[i] = candidate
	}
	population[0].SetFitness(-1)
	population[1].SetFitness(-2)

	assert.Equal(t, 8, e.EvaluateBatch(population))
	assert.Equal(t, 0, e.EvaluateBatch(population))

	fitness, _ := population[0].Fitness()
	assert.Equal(t, -1.0, fitness)
	for _, c := range population {
		_, valid := c.Fitness()
		assert.True(t, valid)
	}
}

func TestEvaluateBatchParallelMatchesSequential(t *testing.T) {
	sequential, l := newTestEvaluator(t, 1)
	parallel, _ := newTestEvaluator(t, 4)

	rng := rand.New(rand.NewSource(11))
	a := make([]*types.Candidate, 64)
	b := make([]*types.Candidate, 64)
	for i := range a {
		candidate, err := layout.RandomCandidate(l, rng)
		require.NoError(t, err)
		a[i] = candidate
		b[i] = candidate.Clone()
	}

	assert.Equal(t, 64, sequential.EvaluateBatch(a))
	assert.Equal(t, 64, parallel.EvaluateBatch(b))

	for i := range a {
		fa, _ := a[i].Fitness()
		fb, _ := b[i].Fitness()
		assert.Equal(t, fa, fb)
	}
}
