package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

// Render projects the ledger into a Markdown summary table, in ledger order.
func Render(ledger *domain.Ledger) string {
	var sb strings.Builder
	ok, failed := ledger.Counts()

	sb.WriteString("# Batch report\n\n")
	fmt.Fprintf(&sb, "- run: %s\n", ledger.RunID)
	fmt.Fprintf(&sb, "- started: %s\n", formatTime(ledger.StartedAt))
	fmt.Fprintf(&sb, "- finished: %s\n", formatTime(ledger.FinishedAt))
	fmt.Fprintf(&sb, "- dry run: %t\n", ledger.DryRun)
	fmt.Fprintf(&sb, "- items: %d (ok %d, error %d)\n\n", len(ledger.Records), ok, failed)

	sb.WriteString("| name | city | status | time_s | notes |\n")
	sb.WriteString("|---|---|---|---:|---|\n")
	for _, r := range ledger.Records {
		fmt.Fprintf(&sb, "| %s | %s | %s | %.2f | %s |\n",
			cell(r.Name), cell(r.City), r.Status, r.ElapsedSeconds(), cell(r.Notes))
	}
	return sb.String()
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
