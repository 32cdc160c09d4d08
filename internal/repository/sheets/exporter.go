package sheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmreports/internal/domain/models"
)

// DefaultSheet is the tab reports are appended to.
const DefaultSheet = "Reports"

// ErrEmptyReport is returned when a report without rows is exported.
var ErrEmptyReport = errors.New("report has no rows to export")

// Exporter lays a rendered report out as sheet rows: a header block, the
// summary lines, then the column headers and detail rows.
type Exporter struct {
	repo   Repository
	sheet  string
	logger *zap.Logger
}

// NewExporter builds an exporter writing to sheet, or DefaultSheet when empty.
func NewExporter(repo Repository, sheet string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &Exporter{repo: repo, sheet: sheet, logger: logger.Named("sheets.exporter")}
}

// Export appends the report and returns the number of rows written.
func (e *Exporter) Export(ctx context.Context, report models.Report) (int, error) {
	if report.Empty || len(report.DetailRows) == 0 {
		return 0, ErrEmptyReport
	}

	rows := Rows(report)
	if err := e.repo.AppendRows(ctx, e.sheet, rows); err != nil {
		return 0, fmt.Errorf("export %s: %w", report.Kind, err)
	}

	e.logger.Info("report exported",
		zap.String("report_type", string(report.Kind)),
		zap.String("sheet", e.sheet),
		zap.Int("rows", len(rows)),
	)
	return len(rows), nil
}

// Rows converts a report to sheet rows.
func Rows(report models.Report) [][]interface{} {
	rows := [][]interface{}{
		{report.Title},
		{report.Subtitle},
		{report.DateRangeText},
		{"Generated", report.GeneratedAt.Format(time.RFC3339)},
	}
	for _, line := range report.SummaryLines {
		rows = append(rows, []interface{}{line.Label, line.Value})
	}
	rows = append(rows, []interface{}{}, toRow(report.Columns))
	for _, detail := range report.DetailRows {
		rows = append(rows, toRow(detail))
	}
	return append(rows, []interface{}{})
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
