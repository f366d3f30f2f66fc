package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/fiscal-fox/internal/categorizer"
	"github.com/insightdelivered/fiscal-fox/internal/models"
	"github.com/insightdelivered/fiscal-fox/internal/summary"
)

// Report is an extraction run ready for export.
type Report struct {
	Transactions []models.Transaction
	Summary      *models.Summary
	// Dictionary assigns the Category column; nil puts everything in Other.
	Dictionary *categorizer.Dictionary
}

// CSVWriter writes transactions and summaries to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the transactions of a report to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, r Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, r); err != nil {
		return err
	}
	return f.Close()
}

// Write writes the transactions of a report in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, r Report) error {
	writer := csv.NewWriter(out)

	// Write summary metadata as comment rows
	if w.IncludeHeader && r.Summary != nil {
		meta := [][]string{
			{"# Month", r.Summary.Month},
			{"# Total Spent", formatAmount(r.Summary.TotalSpent)},
			{"# Transactions", strconv.Itoa(r.Summary.TransactionCount)},
		}
		if err := writer.WriteAll(meta); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	header := []string{"Date", "Month", "Description", "Amount", "Category"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range r.Transactions {
		row := []string{
			txn.Date,
			txn.Month,
			txn.Description,
			formatAmount(txn.Amount),
			categorizer.Categorize(txn.Description, r.Dictionary),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSummary writes one row per category of a summary view, in view order.
func (w *CSVWriter) WriteSummary(out io.Writer, v summary.View) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		meta := [][]string{
			{"# Month", v.Month},
			{"# Total Spent", formatAmount(v.TotalSpent)},
			{"# Transactions", strconv.Itoa(v.TransactionCount)},
		}
		if err := writer.WriteAll(meta); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	if err := writer.Write([]string{"Category", "Icon", "Total", "Count"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, c := range v.Categories {
		row := []string{c.Name, c.Icon, formatAmount(c.Total), strconv.Itoa(c.Count)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
