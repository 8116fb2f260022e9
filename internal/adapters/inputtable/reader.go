// Package inputtable loads batch work items from a CSV or XLSX table.
package inputtable

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/adamzambudio/rpa-lab/internal/adapters/dataset"
	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

var (
	nameColumns  = []string{"name", "Nombre"}
	cityColumns  = []string{"city", "Ciudad"}
	emailColumns = []string{"email", "correo"}
)

// Load reads work items from path. Row order is preserved and blank rows are skipped.
func Load(path string) ([]domain.WorkItem, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		header, rows, err = readXLSX(path)
	default:
		header, rows, err = dataset.ReadCSV(path)
	}
	if err != nil {
		return nil, &domain.ParseError{Op: "read input table", Err: err}
	}
	return fromRows(header, rows)
}

func fromRows(header []string, rows [][]string) ([]domain.WorkItem, error) {
	nameIdx := lookup(header, nameColumns)
	cityIdx := lookup(header, cityColumns)
	emailIdx := lookup(header, emailColumns)
	if nameIdx < 0 || cityIdx < 0 {
		return nil, &domain.ParseError{
			Op:  "read input table",
			Err: fmt.Errorf("input needs name/Nombre and city/Ciudad columns, got %v", header),
		}
	}

	items := make([]domain.WorkItem, 0, len(rows))
	for _, row := range rows {
		item := domain.WorkItem{
			Name:  cell(row, nameIdx),
			City:  cell(row, cityIdx),
			Email: cell(row, emailIdx),
		}
		if item.Name == "" && item.City == "" && item.Email == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func readXLSX(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}
	header := all[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return header, all[1:], nil
}

func lookup(header []string, names []string) int {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(h, name) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
