// Package export writes summary rows to spreadsheet files for download.
package export

import (
	"fmt"
	"strings"

	"github.com/fieldops-reporting/internal/domain/report"
)

// Writer persists a summary to a file at path.
type Writer interface {
	Write(path string, rows []report.SummaryRow) error
}

// WriterForFormat returns the writer for a format name.
func WriterForFormat(format string) (Writer, error) {
	switch strings.TrimSpace(strings.ToLower(format)) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// Extension returns the file extension for a format name.
func Extension(format string) string {
	if strings.TrimSpace(strings.ToLower(format)) == "csv" {
		return "csv"
	}
	return "xlsx"
}

var summaryHeaders = []string{"UserID", "UserName", "TotalMinutes", "TotalAmount", "TotalEarnings", "EntryCount"}
