package operators

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/constants"
	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/layout"
)

// Operators binds the genetic operators of one run to its layout and random
// source. Instances are never shared between runs.
type Operators struct {
	layout *layout.Layout
	config types.AlgorithmConfig
	rng    *rand.Rand
}

// New creates the operator bindings for a run
func New(l *layout.Layout, config types.AlgorithmConfig, rng *rand.Rand) *Operators {
	return &Operators{
		layout: l,
		config: config,
		rng:    rng,
	}
}

// InitPopulation creates n independent random candidates
func (o *Operators) InitPopulation(n int) ([]*types.Candidate, error) {
	if n <= 0 {
		return nil, types.NewConfigurationError("population_size", "must be positive, got %d", n)
	}

	population := make([]*types.Candidate, n)
	for i := range population {
		candidate, err := layout.RandomCandidate(o.layout, o.rng)
		if err != nil {
			return nil, fmt.Errorf("failed to create candidate %d: %w", i, err)
		}
		population[i] = candidate
	}
	return population, nil
}

// Crossover exchanges the segment between two random cut points of a and b.
// Quantization is not repaired here; the quantization penalty handles drift.
func (o *Operators) Crossover(a, b *types.Candidate) {
	size := len(a.Genes)
	if len(b.Genes) < size {
		size = len(b.Genes)
	}
	if size < 2 {
		return
	}

	cx1 := o.rng.Intn(size) + 1
	cx2 := o.rng.Intn(size-1) + 1
	if cx2 >= cx1 {
		cx2++
	} else {
		cx1, cx2 = cx2, cx1
	}

	for i := cx1; i < cx2; i++ {
		a.Genes[i], b.Genes[i] = b.Genes[i], a.Genes[i]
	}
	a.Invalidate()
	b.Invalidate()
}

// Mutate applies the configured mutation to a candidate
func (o *Operators) Mutate(c *types.Candidate) {
	switch o.config.Mutation {
	case types.MutationTypePerGene:
		o.MutatePerGene(c, o.config.GeneMutationProb)
	case types.MutationTypeStep:
		o.MutateStep(c, o.config.GeneMutationProb)
	default:
		o.MutateReset(c)
	}
}

// MutateReset redraws every gene as a fresh quantized height
func (o *Operators) MutateReset(c *types.Candidate) {
	for pos := range c.Genes {
		c.Genes[pos] = o.layout.RandomGene(pos, o.rng)
	}
	c.Invalidate()
}

// MutatePerGene redraws each gene independently with probability indpb
func (o *Operators) MutatePerGene(c *types.Candidate, indpb float64) {
	changed := false
	for pos := range c.Genes {
		if o.rng.Float64() < indpb {
			c.Genes[pos] = o.layout.RandomGene(pos, o.rng)
			changed = true
		}
	}
	if changed {
		c.Invalidate()
	}
}

// MutateStep applies one quantized local move picked at random:
//   - nudge: each gene moves by 1..MaxNudgeUnits of its unit with probability indpb
//   - transfer: each column, with probability indpb, moves height from one
//     component to another in steps both lattices share
//   - shift: one component gains or loses one shared step in every column it
//     occupies, paid for by the catch-all
//
// Transfers and shifts leave column totals unchanged, so a full column stays full.
func (o *Operators) MutateStep(c *types.Candidate, indpb float64) {
	var changed bool
	switch o.rng.Intn(3) {
	case 0:
		changed = o.nudge(c.Genes, indpb)
	case 1:
		changed = o.transfer(c.Genes, indpb)
	default:
		changed = o.shift(c.Genes)
	}
	if changed {
		c.Invalidate()
	}
}

func (o *Operators) nudge(genes []int, indpb float64) bool {
	changed := false
	for pos, h := range genes {
		if o.rng.Float64() >= indpb {
			continue
		}
		unit := o.layout.ComponentAt(pos).MinHeight
		step := (o.rng.Intn(constants.MaxNudgeUnits) + 1) * unit
		if o.rng.Intn(2) == 0 {
			step = -step
		}

		next := h + step
		if next < 0 || next > o.layout.Height {
			next = h - step
		}
		if next < 0 || next > o.layout.Height {
			continue
		}
		genes[pos] = next
		changed = true
	}
	return changed
}

func (o *Operators) transfer(genes []int, indpb float64) bool {
	n := o.layout.NumComponents()
	if n < 2 || len(genes) != o.layout.Size() {
		return false
	}

	changed := false
	for col := 0; col < o.layout.Columns; col++ {
		if o.rng.Float64() >= indpb {
			continue
		}
		to := o.rng.Intn(n)
		from := o.rng.Intn(n - 1)
		if from >= to {
			from++
		}
		if o.move(genes, col, from, to, 0) {
			changed = true
		}
	}
	return changed
}

func (o *Operators) shift(genes []int) bool {
	n := o.layout.NumComponents()
	catchAll, ok := o.layout.Index(o.layout.CatchAll)
	if !ok || n < 2 || len(genes) != o.layout.Size() {
		return false
	}

	comp := o.rng.Intn(n - 1)
	if comp >= catchAll {
		comp++
	}
	from, to := catchAll, comp
	if o.rng.Intn(2) == 0 {
		from, to = comp, catchAll
	}

	heights := o.layout.ComponentHeights(genes, comp)
	present := false
	for _, h := range heights {
		if h > 0 {
			present = true
			break
		}
	}

	changed := false
	for col, h := range heights {
		if present && h == 0 {
			continue
		}
		if o.move(genes, col, from, to, 1) {
			changed = true
		}
	}
	return changed
}

// move shifts height from component from to component to within column col.
// The amount is steps multiples of the least common multiple of both units,
// or a random feasible multiple when steps is zero.
func (o *Operators) move(genes []int, col, from, to, steps int) bool {
	step := lcm(o.layout.Components[from].MinHeight, o.layout.Components[to].MinHeight)
	if step <= 0 {
		return false
	}

	fromPos := o.layout.Offset(col, from)
	toPos := o.layout.Offset(col, to)

	limit := genes[fromPos] / step
	if room := (o.layout.Height - genes[toPos]) / step; room < limit {
		limit = room
	}
	if limit < 1 {
		return false
	}
	if steps == 0 {
		steps = o.rng.Intn(limit) + 1
	}
	if steps > limit {
		return false
	}

	genes[fromPos] -= steps * step
	genes[toPos] += steps * step
	return true
}

func lcm(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	x, y := a, b
	for y != 0 {
		x, y = y, x%y
	}
	return a / x * b
}

// Vary clones the population and applies crossover to consecutive pairs with
// probability cxpb, then mutation to each offspring with probability mutpb.
// Both may hit the same offspring in one generation.
func (o *Operators) Vary(population []*types.Candidate, cxpb, mutpb float64) []*types.Candidate {
	offspring := make([]*types.Candidate, len(population))
	for i, c := range population {
		offspring[i] = c.Clone()
	}

	for i := 1; i < len(offspring); i += 2 {
		if o.rng.Float64() < cxpb {
			o.Crossover(offspring[i-1], offspring[i])
		}
	}

	for _, c := range offspring {
		if o.rng.Float64() < mutpb {
			o.Mutate(c)
		}
	}

	return offspring
}

// SelectTournament picks k candidates, each the fittest of size aspirants
// drawn uniformly with replacement. Selected candidates are copies.
func (o *Operators) SelectTournament(population []*types.Candidate, k, size int) []*types.Candidate {
	if len(population) == 0 || k <= 0 {
		return nil
	}
	if size <= 0 {
		size = 1
	}

	selected := make([]*types.Candidate, k)
	for i := range selected {
		var winner *types.Candidate
		best := math.Inf(-1)
		for j := 0; j < size; j++ {
			aspirant := population[o.rng.Intn(len(population))]
			fitness := fitnessOf(aspirant)
			if winner == nil || fitness > best {
				winner = aspirant
				best = fitness
			}
		}
		selected[i] = winner.Clone()
	}
	return selected
}

// SelectBest returns the fittest candidate, the first one seen on ties
func SelectBest(population []*types.Candidate) *types.Candidate {
	var best *types.Candidate
	bestFitness := math.Inf(-1)
	for _, c := range population {
		fitness := fitnessOf(c)
		if best == nil || fitness > bestFitness {
			best = c
			bestFitness = fitness
		}
	}
	return best
}

// SelectElite returns copies of the n fittest candidates, fittest first
func SelectElite(population []*types.Candidate, n int) []*types.Candidate {
	if n <= 0 || len(population) == 0 {
		return nil
	}
	if n > len(population) {
		n = len(population)
	}

	ranked := make([]*types.Candidate, len(population))
	copy(ranked, population)
	sort.SliceStable(ranked, func(i, j int) bool {
		return fitnessOf(ranked[i]) > fitnessOf(ranked[j])
	})

	elite := make([]*types.Candidate, n)
	for i := range elite {
		elite[i] = ranked[i].Clone()
	}
	return elite
}

// ReplaceWorst overwrites the least fit members of population with elite
func ReplaceWorst(population, elite []*types.Candidate) {
	if len(elite) == 0 || len(population) == 0 {
		return
	}

	order := make([]int, len(population))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return fitnessOf(population[order[i]]) < fitnessOf(population[order[j]])
	})

	for k, c := range elite {
		if k >= len(order) {
			break
		}
		population[order[k]] = c
	}
}

func fitnessOf(c *types.Candidate) float64 {
	fitness, valid := c.Fitness()
	if !valid {
		return math.Inf(-1)
	}
	return fitness
}
