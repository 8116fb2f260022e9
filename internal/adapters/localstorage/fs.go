package localstorage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

// LocalStorage owns the on-disk layout of a run: the report output directory,
// the captures directory and the per-run ledger files.
type LocalStorage struct {
	OutputDir   string
	CapturesDir string
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(outputDir, capturesDir string) *LocalStorage {
	return &LocalStorage{OutputDir: outputDir, CapturesDir: capturesDir}
}

// Init creates the directories and verifies the output directory is writable.
func (s *LocalStorage) Init(ctx context.Context) error {
	for _, dir := range []string{s.OutputDir, s.CapturesDir, s.runsDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	probe, err := os.CreateTemp(s.OutputDir, ".write-check-*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", s.OutputDir, err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

// SaveSummary writes the rendered batch summary to path.
func (s *LocalStorage) SaveSummary(ctx context.Context, path string, summary string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(summary), 0644); err != nil {
		return fmt.Errorf("failed to save summary %s: %w", path, err)
	}
	return nil
}

// SaveLedger persists the ledger as JSON under <output>/runs/<run_id>.json.
func (s *LocalStorage) SaveLedger(ctx context.Context, ledger *domain.Ledger) (string, error) {
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode ledger: %w", err)
	}
	path := s.LedgerPath(ledger.RunID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create runs directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save ledger %s: %w", path, err)
	}
	return path, nil
}

// LedgerPath returns the path for a run's ledger file.
func (s *LocalStorage) LedgerPath(runID string) string {
	return filepath.Join(s.runsDir(), runID+".json")
}

func (s *LocalStorage) runsDir() string {
	return filepath.Join(s.OutputDir, "runs")
}
