package excel

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
	"github.com/adamzambudio/rpa-lab/internal/core/ports"
)

// TimestampLayout is the suffix format for artifact names (YYYYMMDD_HHMMSS).
const TimestampLayout = "20060102_150405"

// ReportSheet is the sheet name used for per-client reports.
const ReportSheet = "Informe"

// ReportBuilder implements ports.ReportBuilder, one workbook per record.
type ReportBuilder struct {
	outDir string
	prefix string
	clock  ports.Clock
	logger *slog.Logger
}

// NewReportBuilder creates a builder writing into outDir.
func NewReportBuilder(outDir string, clock ports.Clock, logger *slog.Logger) *ReportBuilder {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &ReportBuilder{outDir: outDir, clock: clock, logger: logger}
}

// WithPrefix returns a copy of the builder that prepends prefix to file names.
func (b *ReportBuilder) WithPrefix(prefix string) *ReportBuilder {
	c := *b
	c.prefix = prefix
	return &c
}

// Build writes record as a single-row sheet. Two builds of the same identity
// within one second map to the same name.
func (b *ReportBuilder) Build(ctx context.Context, record *domain.ClientRecord) (domain.ReportArtifact, error) {
	now := b.clock.Now()
	path := filepath.Join(b.outDir, b.prefix+FileName(record.Identity(), now))

	row := make([]any, 0, record.Len())
	for _, v := range record.Values() {
		row = append(row, v)
	}
	sheet := Sheet{Name: ReportSheet, Header: record.Keys(), Rows: [][]any{row}}

	if err := WriteWorkbook(path, sheet); err != nil {
		return domain.ReportArtifact{}, &domain.BuildError{Op: "write report", Err: err}
	}
	b.logger.Info("Excel report created", "path", path)
	return domain.ReportArtifact{Path: path, CreatedAt: now}, nil
}

// FileName returns "<safe>_<YYYYMMDD_HHMMSS>.xlsx" for identity at t.
func FileName(identity string, t time.Time) string {
	return SafeName(identity) + "_" + t.Format(TimestampLayout) + ".xlsx"
}

// SafeName replaces every rune that is not an ASCII letter or digit with '_'
// and trims leading and trailing underscores.
func SafeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	safe := strings.Trim(sb.String(), "_")
	if safe == "" {
		return "client"
	}
	return safe
}
