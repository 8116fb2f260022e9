package scraper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

func TestRunner_FetchWritesDataset(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner(Config{
		Command:    []string{"sh", "-c", `printf 'Ciudad,Temperatura\n%s,21\n' "$CITY" > webdata.csv`},
		WorkDir:    dir,
		OutputPath: "webdata.csv",
	})

	ds, err := r.Fetch(context.Background(), "Madrid")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if ds.Path != filepath.Join(dir, "webdata.csv") {
		t.Errorf("Path = %s", ds.Path)
	}
	data, err := os.ReadFile(ds.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Madrid,21") {
		t.Errorf("scraper did not receive CITY, got %q", data)
	}
}

func TestRunner_FetchErrors(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantMissing bool
		wantInError string
	}{
		{
			name:        "program missing",
			cfg:         Config{Command: []string{"definitely-not-a-real-scraper-binary"}, OutputPath: "out.csv"},
			wantInError: "not found",
		},
		{
			name:        "script missing",
			cfg:         Config{Command: []string{"sh"}, Script: "missing.sh", OutputPath: "out.csv"},
			wantInError: "script missing",
		},
		{
			name:        "non-zero exit carries stderr",
			cfg:         Config{Command: []string{"sh", "-c", "echo boom >&2; exit 3"}, OutputPath: "out.csv"},
			wantInError: "boom",
		},
		{
			name:        "no output file",
			cfg:         Config{Command: []string{"sh", "-c", "exit 0"}, OutputPath: "out.csv"},
			wantMissing: true,
		},
		{
			name:        "no command",
			cfg:         Config{OutputPath: "out.csv"},
			wantInError: "no scraper command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.WorkDir = t.TempDir()
			_, err := NewRunner(tt.cfg).Fetch(context.Background(), "Paris")
			if err == nil {
				t.Fatal("expected error")
			}
			var fe *domain.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FetchError, got %T", err)
			}
			if !domain.IsRetryable(err) {
				t.Error("fetch errors should be retryable")
			}
			if tt.wantMissing && !errors.Is(err, domain.ErrMissingOutput) {
				t.Errorf("expected ErrMissingOutput, got %v", err)
			}
			if tt.wantInError != "" && !strings.Contains(err.Error(), tt.wantInError) {
				t.Errorf("error %q does not mention %q", err, tt.wantInError)
			}
		})
	}
}
