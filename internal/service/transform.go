package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/adamzambudio/rpa-lab/internal/adapters/dataset"
	"github.com/adamzambudio/rpa-lab/internal/adapters/excel"
	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

// SalesColumns are required in a sales CSV.
var SalesColumns = []string{"fecha", "categoria", "producto", "precio", "cantidad"}

// TransformOptions locates the sales input and the generated outputs.
type TransformOptions struct {
	Input      string
	OutputXLSX string
	RejectsCSV string
}

// TransformResult summarizes a transform run.
type TransformResult struct {
	Valid    int
	Rejected int
	Groups   int
}

type salesGroup struct {
	fecha     string
	categoria string
	ingresos  float64
	unidades  float64
}

// Transform validates a sales CSV, writes rejected rows aside and produces a
// workbook with the clean rows ("Datos") and totals per date and category ("Resumen").
func Transform(ctx context.Context, opts TransformOptions, logger *slog.Logger) (*TransformResult, error) {
	logger.Info("Reading sales CSV", "path", opts.Input)
	header, rows, err := dataset.ReadCSV(opts.Input)
	if err != nil {
		return nil, &domain.ParseError{Op: "read sales", Err: err}
	}

	idx := make(map[string]int, len(SalesColumns))
	for _, col := range SalesColumns {
		i := indexOf(header, col)
		if i < 0 {
			return nil, &domain.ParseError{Op: "read sales", Err: fmt.Errorf("missing column %q", col)}
		}
		idx[col] = i
	}

	title := cases.Title(language.Und)
	var (
		valid    [][]any
		rejected [][]string
		groups   = make(map[[2]string]*salesGroup)
	)

	logger.Info("Splitting valid and invalid rows")
	for _, row := range rows {
		get := func(col string) string {
			i := idx[col]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		precio, perr := strconv.ParseFloat(get("precio"), 64)
		cantidad, cerr := strconv.ParseFloat(get("cantidad"), 64)
		if get("fecha") == "" || get("categoria") == "" || get("producto") == "" || perr != nil || cerr != nil {
			rejected = append(rejected, row)
			continue
		}

		categoria := title.String(get("categoria"))
		producto := title.String(get("producto"))

		out := make([]any, len(header))
		for i := range header {
			if i < len(row) {
				out[i] = row[i]
			}
		}
		out[idx["categoria"]] = categoria
		out[idx["producto"]] = producto
		out[idx["precio"]] = precio
		out[idx["cantidad"]] = cantidad
		valid = append(valid, out)

		key := [2]string{get("fecha"), categoria}
		g, ok := groups[key]
		if !ok {
			g = &salesGroup{fecha: key[0], categoria: key[1]}
			groups[key] = g
		}
		g.ingresos += precio * cantidad
		g.unidades += cantidad
	}

	if len(rejected) > 0 {
		logger.Info("Saving rejected rows", "path", opts.RejectsCSV, "count", len(rejected))
		if err := writeCSV(opts.RejectsCSV, header, rejected); err != nil {
			return nil, &domain.BuildError{Op: "write rejects", Err: err}
		}
	} else {
		logger.Info("No invalid rows found")
	}

	summary := make([]*salesGroup, 0, len(groups))
	for _, g := range groups {
		summary = append(summary, g)
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].fecha != summary[j].fecha {
			return summary[i].fecha < summary[j].fecha
		}
		return summary[i].categoria < summary[j].categoria
	})
	summaryRows := make([][]any, len(summary))
	for i, g := range summary {
		summaryRows[i] = []any{g.fecha, g.categoria, g.ingresos, g.unidades}
	}

	logger.Info("Exporting report to Excel", "path", opts.OutputXLSX)
	err = excel.WriteWorkbook(opts.OutputXLSX,
		excel.Sheet{Name: "Datos", Header: header, Rows: valid},
		excel.Sheet{Name: "Resumen", Header: []string{"fecha", "categoria", "total_ingresos", "total_unidades"}, Rows: summaryRows},
	)
	if err != nil {
		return nil, &domain.BuildError{Op: "write workbook", Err: err}
	}

	return &TransformResult{Valid: len(valid), Rejected: len(rejected), Groups: len(summary)}, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Write(header)
	w.WriteAll(rows)
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}
