package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ishanwen-byte/closet-optimiser-go/internal/constants"
	"github.com/ishanwen-byte/closet-optimiser-go/internal/types"
)

// Export is the JSON document written for a finished run
type Export struct {
	Version     string             `json:"version"`
	Run         *types.RunResult   `json:"run"`
	Arrangement *types.Arrangement `json:"arrangement,omitempty"`
}

// ExportRun writes run_<id>.json and latest.json into dir and returns the run file path
func ExportRun(dir string, result *types.RunResult, arrangement *types.Arrangement) (string, error) {
	if result == nil || result.ID == "" {
		return "", fmt.Errorf("run result has no id")
	}

	data, err := json.MarshalIndent(Export{
		Version:     constants.Version,
		Run:         result,
		Arrangement: arrangement,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run export: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	runFile := filepath.Join(dir, fmt.Sprintf("run_%s.json", result.ID))
	if err := os.WriteFile(runFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run export: %w", err)
	}

	latestFile := filepath.Join(dir, constants.LatestExport)
	if err := os.WriteFile(latestFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write latest export: %w", err)
	}

	return runFile, nil
}

// LoadExport reads a run export written by ExportRun
func LoadExport(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run export: %w", err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run export: %w", err)
	}
	if export.Run != nil && export.Run.Best != nil {
		export.Run.Best.SetFitness(export.Run.BestFitness)
	}
	return &export, nil
}
