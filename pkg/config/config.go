package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/constants"
	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
	"github.com/ishanwen-byte/closet-optimiser-go/pkg/layout"
)

// Manager handles configuration loading and validation
type Manager struct {
	config *types.Config
	path   string
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config: getDefaultConfig(),
	}
}

// Load loads configuration from a file
func (m *Manager) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	config := getDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	if err := m.applyEnvOverrides(config); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate configuration
	if err := Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	m.path = path
	return nil
}

// LoadEnv applies environment overrides to the defaults when no file is used
func (m *Manager) LoadEnv() error {
	config := getDefaultConfig()
	if err := m.applyEnvOverrides(config); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	if err := Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	return nil
}

// Save saves configuration to a file
func (m *Manager) Save(path string) error {
	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *types.Config {
	return m.config
}

// SetConfig updates the configuration
func (m *Manager) SetConfig(config *types.Config) {
	m.config = config
}

// GetPath returns the configuration file path
func (m *Manager) GetPath() string {
	return m.path
}

// applyEnvOverrides applies environment variable overrides to the configuration
func (m *Manager) applyEnvOverrides(config *types.Config) error {
	ints := []struct {
		name   string
		target *int
	}{
		{"CLOSET_WIDTH", &config.Closet.Width},
		{"CLOSET_HEIGHT", &config.Closet.Height},
		{"POPULATION_SIZE", &config.Algorithm.PopulationSize},
		{"GENERATIONS", &config.Algorithm.Generations},
		{"PARALLEL_WORKERS", &config.Evaluator.ParallelWorkers},
	}
	for _, env := range ints {
		value := os.Getenv(env.name)
		if value == "" {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			return fmt.Errorf("invalid %s %q: %w", env.name, value, err)
		}
		*env.target = n
	}

	if seed := os.Getenv("SEED"); seed != "" {
		var n int64
		if _, err := fmt.Sscanf(seed, "%d", &n); err != nil {
			return fmt.Errorf("invalid SEED %q: %w", seed, err)
		}
		config.Algorithm.Seed = n
	}
	if archivePath := os.Getenv("ARCHIVE_PATH"); archivePath != "" {
		config.Archive.Path = archivePath
	}
	if verbose := os.Getenv("VERBOSE"); verbose != "" {
		config.Verbose = strings.ToLower(verbose) == "true"
	}

	return nil
}

// Validate checks a configuration the same way a run would, before any search begins
func Validate(config *types.Config) error {
	if err := ValidateAlgorithm(config.Algorithm); err != nil {
		return err
	}
	if _, err := layout.Resolve(config.Closet); err != nil {
		return err
	}
	if config.Evaluator.ParallelWorkers < 0 {
		return types.NewConfigurationError("parallel_workers", "must not be negative, got %d", config.Evaluator.ParallelWorkers)
	}
	return nil
}

// ValidateAlgorithm checks the search parameters before any search begins
func ValidateAlgorithm(cfg types.AlgorithmConfig) error {
	if cfg.PopulationSize <= 0 {
		return types.NewConfigurationError("population_size", "must be positive, got %d", cfg.PopulationSize)
	}
	if cfg.Generations <= 0 {
		return types.NewConfigurationError("generations", "must be positive, got %d", cfg.Generations)
	}
	if cfg.CrossoverProb < 0 || cfg.CrossoverProb > 1 {
		return types.NewConfigurationError("crossover_prob", "must be within [0, 1], got %g", cfg.CrossoverProb)
	}
	if cfg.MutationProb < 0 || cfg.MutationProb > 1 {
		return types.NewConfigurationError("mutation_prob", "must be within [0, 1], got %g", cfg.MutationProb)
	}
	if cfg.TournamentSize <= 0 {
		return types.NewConfigurationError("tournament_size", "must be positive, got %d", cfg.TournamentSize)
	}
	if cfg.Elitism < 0 || cfg.Elitism >= cfg.PopulationSize {
		return types.NewConfigurationError("elitism", "must be within [0, population_size), got %d", cfg.Elitism)
	}
	switch cfg.Mutation {
	case "", types.MutationTypeReset:
	case types.MutationTypePerGene, types.MutationTypeStep:
		if cfg.GeneMutationProb < 0 || cfg.GeneMutationProb > 1 {
			return types.NewConfigurationError("gene_mutation_prob", "must be within [0, 1], got %g", cfg.GeneMutationProb)
		}
	default:
		return types.NewConfigurationError("mutation", "unknown mutation type %q", cfg.Mutation)
	}
	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *types.Config {
	return &types.Config{
		Closet: types.ClosetConfig{
			Width:   constants.DefaultWidth,
			Height:  constants.DefaultHeight,
			Columns: constants.DefaultColumns,
			Components: []types.ComponentConfig{
				{Name: constants.Shelves, Target: 70, MinHeight: constants.ShelfUnit},
				{Name: constants.Drawers, Target: 30, MinHeight: constants.DrawerUnit},
				{Name: constants.ShortHanging, Target: 0, MinHeight: constants.ShortHangingUnit},
				{Name: constants.LongHanging, Target: 0, MinHeight: constants.LongHangingUnit},
			},
			CatchAll: constants.Shelves,
			Heuristics: []types.HeuristicConfig{
				{
					Component:       constants.Drawers,
					EqualSize:       true,
					Centre:          true,
					FullUtilisation: true,
				},
			},
			UnusedSpaceWeight: constants.DefaultUnusedSpaceWeight,
		},
		Algorithm: types.AlgorithmConfig{
			PopulationSize:   constants.DefaultPopulationSize,
			Generations:      constants.DefaultGenerations,
			CrossoverProb:    constants.DefaultCrossoverProb,
			MutationProb:     constants.DefaultMutationProb,
			TournamentSize:   constants.DefaultTournamentSize,
			Mutation:         types.MutationTypeStep,
			GeneMutationProb: constants.DefaultGeneMutationProb,
			Elitism:          constants.DefaultElitism,
		},
		Evaluator: types.EvaluatorConfig{
			ParallelWorkers: constants.DefaultParallelWorkers,
		},
		Archive: types.ArchiveConfig{
			ExportDir: constants.ExportDir,
		},
		Verbose: false,
	}
}

// CreateDefaultConfig creates a default configuration file
func CreateDefaultConfig(path string) error {
	manager := NewManager()
	return manager.Save(path)
}
