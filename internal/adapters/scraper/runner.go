package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

// LocationEnv is the environment variable carrying the requested location key.
const LocationEnv = "CITY"

// Config describes how the external scraper is invoked.
type Config struct {
	// Command is the program and its leading arguments, e.g. ["python3"].
	Command []string
	// Script is appended to Command when set and must exist before the run.
	Script string
	// WorkDir is the scraper's working directory.
	WorkDir string
	// OutputPath is the dataset file the scraper is expected to write.
	OutputPath string
	// SettleDelay waits after a clean exit before checking the output file.
	SettleDelay time.Duration
	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration
}

// Runner implements ports.Fetcher by running the scraper as a subprocess.
type Runner struct {
	cfg Config
	now func() time.Time
}

// NewRunner creates a new Runner.
func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg, now: time.Now}
}

// Fetch runs the scraper for locationKey and returns the dataset it wrote.
// Each call overwrites the same output file, so calls must not overlap.
func (r *Runner) Fetch(ctx context.Context, locationKey string) (domain.FetchedDataset, error) {
	if len(r.cfg.Command) == 0 {
		return domain.FetchedDataset{}, &domain.FetchError{Op: "run scraper", Err: errors.New("no scraper command configured")}
	}

	binary, err := exec.LookPath(r.cfg.Command[0])
	if err != nil {
		return domain.FetchedDataset{}, &domain.FetchError{Op: "run scraper", Err: fmt.Errorf("scraper program not found: %w", err)}
	}

	args := append([]string{}, r.cfg.Command[1:]...)
	if r.cfg.Script != "" {
		script := r.resolve(r.cfg.Script)
		if _, err := os.Stat(script); err != nil {
			return domain.FetchedDataset{}, &domain.FetchError{Op: "run scraper", Err: fmt.Errorf("scraper script missing at %s: %w", script, err)}
		}
		args = append(args, script)
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = r.cfg.WorkDir
	cmd.Env = append(os.Environ(), LocationEnv+"="+locationKey)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return domain.FetchedDataset{}, &domain.FetchError{
			Op:  "run scraper",
			Err: fmt.Errorf("scraper failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String())),
		}
	}

	if r.cfg.SettleDelay > 0 {
		select {
		case <-ctx.Done():
			return domain.FetchedDataset{}, &domain.FetchError{Op: "run scraper", Err: ctx.Err()}
		case <-time.After(r.cfg.SettleDelay):
		}
	}

	out := r.resolve(r.cfg.OutputPath)
	if _, err := os.Stat(out); err != nil {
		return domain.FetchedDataset{}, &domain.FetchError{
			Op:  "run scraper",
			Err: fmt.Errorf("%w: %s", domain.ErrMissingOutput, out),
		}
	}

	return domain.FetchedDataset{Path: out, FetchedAt: r.now()}, nil
}

// OutputPath returns the resolved dataset location.
func (r *Runner) OutputPath() string {
	return r.resolve(r.cfg.OutputPath)
}

func (r *Runner) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || r.cfg.WorkDir == "" {
		return p
	}
	return filepath.Join(r.cfg.WorkDir, p)
}
