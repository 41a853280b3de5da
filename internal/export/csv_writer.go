package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/fieldops-reporting/internal/domain/report"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, rows []report.SummaryRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(summaryHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.UserID,
			row.UserName,
			strconv.FormatFloat(row.TotalMinutes, 'f', 2, 64),
			strconv.FormatFloat(row.TotalAmount, 'f', 2, 64),
			strconv.FormatFloat(row.TotalEarnings, 'f', 2, 64),
			strconv.Itoa(row.EntryCount),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}
