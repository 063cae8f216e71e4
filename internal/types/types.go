package types

import (
	"time"
)

// Candidate represents one layout under evaluation.
// Genes[col*numComponents+i] holds the height given to component i in column col.
type Candidate struct {
	Genes []int `json:"genes"`

	fitness float64
	valid   bool
}

// NewCandidate wraps a genome in a Candidate with no cached fitness
func NewCandidate(genes []int) *Candidate {
	return &Candidate{Genes: genes}
}

// Fitness returns the cached fitness and whether it is valid
func (c *Candidate) Fitness() (float64, bool) {
	return c.fitness, c.valid
}

// SetFitness caches an evaluated fitness
func (c *Candidate) SetFitness(fitness float64) {
	c.fitness = fitness
	c.valid = true
}

// Invalidate drops the cached fitness. Call it whenever Genes change.
func (c *Candidate) Invalidate() {
	c.fitness = 0
	c.valid = false
}

// Clone returns a deep copy, including the fitness cache
func (c *Candidate) Clone() *Candidate {
	genes := make([]int, len(c.Genes))
	copy(genes, c.Genes)
	return &Candidate{Genes: genes, fitness: c.fitness, valid: c.valid}
}

// Allocation is the height given to one component within a column
type Allocation struct {
	Component string `json:"component"`
	Height    int    `json:"height"`
}

// ColumnArrangement lists the allocations of a single column in Component Set order
type ColumnArrangement struct {
	Index       int          `json:"index"`
	Allocations []Allocation `json:"allocations"`
}

// Arrangement is the column -> component -> height result derived from a Candidate
type Arrangement struct {
	Width   int                 `json:"width"`
	Height  int                 `json:"height"`
	Columns []ColumnArrangement `json:"columns"`
}

// Get returns the height allocated to component in column col
func (a *Arrangement) Get(col int, component string) (int, bool) {
	if col < 0 || col >= len(a.Columns) {
		return 0, false
	}
	for _, alloc := range a.Columns[col].Allocations {
		if alloc.Component == component {
			return alloc.Height, true
		}
	}
	return 0, false
}

// Flatten rebuilds the genome ordered by column, then Component Set index
func (a *Arrangement) Flatten() []int {
	genes := make([]int, 0)
	for _, column := range a.Columns {
		for _, alloc := range column.Allocations {
			genes = append(genes, alloc.Height)
		}
	}
	return genes
}

// ComponentTotal sums the height of component across all columns
func (a *Arrangement) ComponentTotal(component string) int {
	total := 0
	for col := range a.Columns {
		if h, ok := a.Get(col, component); ok {
			total += h
		}
	}
	return total
}

// Total sums every allocation in the arrangement
func (a *Arrangement) Total() int {
	total := 0
	for _, h := range a.Flatten() {
		total += h
	}
	return total
}

// GenerationRecord is one entry of the run trace
type GenerationRecord struct {
	Generation  int     `json:"gen"`
	MaxFitness  float64 `json:"max"`
	MeanFitness float64 `json:"avg"`
	MinFitness  float64 `json:"min"`
	Evaluations int     `json:"evaluations"`
}

// RunResult is what a single optimisation run hands back to its caller
type RunResult struct {
	ID          string             `json:"id"`
	Components  []string           `json:"components"`
	Best        *Candidate         `json:"best"`
	BestFitness float64            `json:"best_fitness"`
	Penalties   map[string]float64 `json:"penalties"`
	Trace       []GenerationRecord `json:"trace"`
	Stats       RunStats           `json:"stats"`
	Config      Config             `json:"config"`
}

// RunStats tracks statistics about the run
type RunStats struct {
	TotalEvaluations int64         `json:"total_evaluations"`
	Generations      int           `json:"generations"`
	Cancelled        bool          `json:"cancelled"`
	Duration         time.Duration `json:"duration"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
}

// MutationType selects how a triggered mutation changes a genome
type MutationType string

const (
	// MutationTypeReset redraws every gene
	MutationTypeReset MutationType = "reset"
	// MutationTypePerGene redraws each gene with probability gene_mutation_prob
	MutationTypePerGene MutationType = "per_gene"
	// MutationTypeStep makes small quantized moves that keep most of the layout
	MutationTypeStep MutationType = "step"
)

// Config represents the main configuration
type Config struct {
	Closet    ClosetConfig    `yaml:"closet" json:"closet"`
	Algorithm AlgorithmConfig `yaml:"algorithm" json:"algorithm"`
	Evaluator EvaluatorConfig `yaml:"evaluator" json:"evaluator"`
	Archive   ArchiveConfig   `yaml:"archive" json:"archive"`
	Verbose   bool            `yaml:"verbose" json:"verbose"`
}

// ClosetConfig describes the space being divided and the user's preferences
type ClosetConfig struct {
	Width             int               `yaml:"width" json:"width"`
	Height            int               `yaml:"height" json:"height"`
	Columns           int               `yaml:"columns" json:"columns"`
	Components        []ComponentConfig `yaml:"components" json:"components"`
	CatchAll          string            `yaml:"catch_all" json:"catch_all"`
	Heuristics        []HeuristicConfig `yaml:"heuristics" json:"heuristics"`
	UnusedSpaceWeight float64           `yaml:"unused_space_weight" json:"unused_space_weight"`
}

// ComponentConfig is one storage component with its target share and quantization unit
type ComponentConfig struct {
	Name      string  `yaml:"name" json:"name"`
	Target    float64 `yaml:"target" json:"target"`
	MinHeight int     `yaml:"min_height" json:"min_height"`
}

// HeuristicConfig enables placement heuristics for one component
type HeuristicConfig struct {
	Component       string `yaml:"component" json:"component"`
	EqualSize       bool   `yaml:"equal_size" json:"equal_size"`
	Centre          bool   `yaml:"centre" json:"centre"`
	FullUtilisation bool   `yaml:"full_utilisation" json:"full_utilisation"`
}

// AlgorithmConfig represents the evolutionary search parameters
type AlgorithmConfig struct {
	PopulationSize   int          `yaml:"population_size" json:"population_size"`
	Generations      int          `yaml:"generations" json:"generations"`
	CrossoverProb    float64      `yaml:"crossover_prob" json:"crossover_prob"`
	MutationProb     float64      `yaml:"mutation_prob" json:"mutation_prob"`
	TournamentSize   int          `yaml:"tournament_size" json:"tournament_size"`
	Mutation         MutationType `yaml:"mutation" json:"mutation"`
	GeneMutationProb float64      `yaml:"gene_mutation_prob" json:"gene_mutation_prob"`
	Elitism          int          `yaml:"elitism" json:"elitism"`
	Seed             int64        `yaml:"seed" json:"seed"`
}

// EvaluatorConfig represents evaluator configuration
type EvaluatorConfig struct {
	ParallelWorkers int `yaml:"parallel_workers" json:"parallel_workers"`
}

// ArchiveConfig controls where finished runs are kept
type ArchiveConfig struct {
	Path      string `yaml:"path" json:"path"`
	ExportDir string `yaml:"export_dir" json:"export_dir"`
}
