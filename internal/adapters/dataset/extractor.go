// Package dataset reads scraped CSV datasets and picks the row for a location.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

// LocationColumns are the header names searched for the location key, in order.
var LocationColumns = []string{"Ciudad", "city"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor implements ports.Extractor for CSV datasets.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates a new Extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the last row whose location equals locationKey, ignoring case.
// Without a match it falls back to the last row of the dataset and logs a warning.
func (e *Extractor) Extract(ds domain.FetchedDataset, locationKey string) (*domain.ClientRecord, error) {
	header, rows, err := ReadCSV(ds.Path)
	if err != nil {
		return nil, &domain.ParseError{Op: "load dataset", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ParseError{Op: "load dataset", Err: fmt.Errorf("dataset %s has no rows", ds.Path)}
	}

	chosen := rows[len(rows)-1]
	col := columnIndex(header, LocationColumns...)
	matched := false
	if col >= 0 {
		want := strings.ToLower(strings.TrimSpace(locationKey))
		for _, row := range rows {
			if col < len(row) && strings.ToLower(strings.TrimSpace(row[col])) == want {
				chosen = row
				matched = true
			}
		}
	}
	if !matched {
		e.logger.Warn("No dataset row for location, using last row", "city", locationKey, "dataset", ds.Path)
	}

	rec := domain.NewClientRecord()
	for i, h := range header {
		v := ""
		if i < len(chosen) {
			v = chosen[i]
		}
		rec.Set(h, v)
	}
	return rec, nil
}

// ReadCSV loads a CSV file, tolerating a UTF-8 BOM, and returns header and data rows.
// Blank lines are skipped by encoding/csv; short rows are allowed.
func ReadCSV(path string) ([]string, [][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return ParseCSV(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
}

// ParseCSV parses CSV content into header and data rows.
func ParseCSV(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("empty file")
	}
	if err != nil {
		return nil, nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func columnIndex(header []string, names ...string) int {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(h, name) {
				return i
			}
		}
	}
	return -1
}
