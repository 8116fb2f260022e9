package dataset

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

func writeDataset(t *testing.T, content string) domain.FetchedDataset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webdata.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return domain.FetchedDataset{Path: path}
}

func newTestExtractor() *Extractor {
	return NewExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtract_LastMatchCaseInsensitive(t *testing.T) {
	ds := writeDataset(t, "Ciudad,Temperatura\nMadrid,10\nParis,12\nMadrid,14\n")

	rec, err := newTestExtractor().Extract(ds, "madrid")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if v, _ := rec.Get("Temperatura"); v != "14" {
		t.Errorf("Temperatura = %q, want the last Madrid row (14)", v)
	}
	if v, _ := rec.Get("Ciudad"); v != "Madrid" {
		t.Errorf("Ciudad = %q", v)
	}
}

func TestExtract_FallbackToLastRow(t *testing.T) {
	tests := []struct {
		name    string
		content string
		query   string
		want    string
	}{
		{"no match", "Ciudad,Temperatura\nMadrid,10\nParis,12\nMadrid,14\n", "Rome", "14"},
		{"no location column", "Lugar,Temperatura\nMadrid,10\nParis,12\n", "Madrid", "12"},
		{"lowercase city column", "city,Temperatura\nMadrid,10\nParis,12\n", "PARIS", "12"},
		{"bom header", "\xEF\xBB\xBFCiudad,Temperatura\nMadrid,10\nParis,12\n", "madrid", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := newTestExtractor().Extract(writeDataset(t, tt.content), tt.query)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if v, _ := rec.Get("Temperatura"); v != tt.want {
				t.Errorf("Temperatura = %q, want %q", v, tt.want)
			}
		})
	}
}

func TestExtract_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		ds   domain.FetchedDataset
	}{
		{"missing file", domain.FetchedDataset{Path: filepath.Join(t.TempDir(), "nope.csv")}},
		{"empty file", writeDataset(t, "")},
		{"header only", writeDataset(t, "Ciudad,Temperatura\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestExtractor().Extract(tt.ds, "Madrid")
			var pe *domain.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if domain.IsRetryable(err) {
				t.Error("parse errors must not be retryable")
			}
		})
	}
}

func TestExtract_KeepsColumnOrder(t *testing.T) {
	ds := writeDataset(t, "Ciudad,Temperatura,Estado,Fecha\nMadrid,20,Soleado,2024-01-01\n")
	rec, err := newTestExtractor().Extract(ds, "Madrid")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	keys := rec.Keys()
	want := []string{"Ciudad", "Temperatura", "Estado", "Fecha"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
