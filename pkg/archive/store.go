package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	components    TEXT NOT NULL,
	best_fitness  REAL NOT NULL,
	generations   INTEGER NOT NULL,
	population    INTEGER NOT NULL,
	cancelled     INTEGER NOT NULL DEFAULT 0,
	result_json   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// ErrRunNotFound is returned when a run id is not in the archive
var ErrRunNotFound = errors.New("run not found")

// RunSummary is one row of the run history
type RunSummary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Components  []string  `json:"components"`
	BestFitness float64   `json:"best_fitness"`
	Generations int       `json:"generations"`
	Population  int       `json:"population"`
	Cancelled   bool      `json:"cancelled"`
}

// Store keeps finished runs in SQLite
type Store struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewStore opens a SQLite database and runs migrations
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}

	logger := logrus.New()
	logger.WithField("path", path).Debug("Opened run archive")

	return &Store{db: db, logger: logger}, nil
}

// SetLogger replaces the store's logger
func (s *Store) SetLogger(logger *logrus.Logger) {
	s.logger = logger
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a finished run, replacing any earlier run with the same id
func (s *Store) SaveRun(ctx context.Context, result *types.RunResult) error {
	if result == nil || result.ID == "" {
		return fmt.Errorf("run result has no id")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	createdAt := result.Stats.StartTime
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs
			(run_id, created_at, components, best_fitness, generations, population, cancelled, result_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		createdAt.UTC().Format(time.RFC3339Nano),
		strings.Join(result.Components, ","),
		result.BestFitness,
		result.Stats.Generations,
		result.Config.Algorithm.PopulationSize,
		boolToInt(result.Stats.Cancelled),
		string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", result.ID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"run":     result.ID,
		"fitness": result.BestFitness,
	}).Info("Saved run to archive")

	return nil
}

// GetRun loads a stored run by id
func (s *Store) GetRun(ctx context.Context, id string) (*types.RunResult, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT result_json FROM runs WHERE run_id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	return decodeRun([]byte(data))
}

// ListRuns returns the most recent runs first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, created_at, components, best_fitness, generations, population, cancelled
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]RunSummary, 0)
	for rows.Next() {
		var (
			summary    RunSummary
			createdAt  string
			components string
			cancelled  int
		)
		if err := rows.Scan(&summary.ID, &createdAt, &components, &summary.BestFitness,
			&summary.Generations, &summary.Population, &cancelled); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at of run %s: %w", summary.ID, err)
		}
		summary.CreatedAt = created
		if components != "" {
			summary.Components = strings.Split(components, ",")
		}
		summary.Cancelled = cancelled != 0
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return summaries, nil
}

// decodeRun restores a run and re-primes the best candidate's fitness cache
func decodeRun(data []byte) (*types.RunResult, error) {
	var result types.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	if result.Best != nil {
		result.Best.SetFitness(result.BestFitness)
	}
	return &result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
