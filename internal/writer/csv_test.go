package writer

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/insightdelivered/fiscal-fox/internal/categorizer"
	"github.com/insightdelivered/fiscal-fox/internal/models"
	"github.com/insightdelivered/fiscal-fox/internal/summary"
)

func testReport() Report {
	dict := categorizer.NewDictionary(
		models.Category{Name: "Dining", Icon: "🍽️", Keywords: []string{"coffee"}},
		models.Category{Name: "Groceries", Icon: "🛒", Keywords: []string{"grocery"}},
	)
	txns := []models.Transaction{
		{Date: "Jan 5, 2026", Month: "Jan 2026", Description: "COFFEE SHOP, DOWNTOWN", Amount: 5.25},
		{Date: "Jan 6, 2026", Month: "Jan 2026", Description: "GROCERY STORE", Amount: 85.10},
		{Date: "Jan 7, 2026", Month: "Jan 2026", Description: "PAYROLL", Amount: -2500},
	}
	return Report{
		Transactions: txns,
		Summary:      summary.Build(txns, dict),
		Dictionary:   dict,
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	err := w.Write(&buf, testReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	// Check metadata headers
	if !strings.Contains(output, "# Month,Jan 2026") {
		t.Error("expected month metadata")
	}
	if !strings.Contains(output, "# Total Spent,90.35") {
		t.Error("expected total spent metadata")
	}
	if !strings.Contains(output, "# Transactions,2") {
		t.Error("expected transaction count metadata")
	}

	// Check column headers
	if !strings.Contains(output, "Date,Month,Description,Amount,Category") {
		t.Error("expected column headers")
	}

	// Descriptions with commas are quoted
	if !strings.Contains(output, `"Jan 5, 2026",Jan 2026,"COFFEE SHOP, DOWNTOWN",5.25,Dining`) {
		t.Errorf("expected first transaction row, got:\n%s", output)
	}
	if !strings.Contains(output, `"Jan 7, 2026",Jan 2026,PAYROLL,-2500.00,Other`) {
		t.Errorf("expected deposit row, got:\n%s", output)
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 3 metadata lines + 1 header + 3 transactions = 7
	if len(lines) != 7 {
		t.Errorf("expected 7 lines, got %d", len(lines))
	}
}

func TestCSVWriter_WriteNoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: false}
	err := w.Write(&buf, testReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	// Should NOT have metadata
	if strings.Contains(output, "# Month") {
		t.Error("should not have metadata when header=false")
	}

	// Should still have column headers
	if !strings.HasPrefix(output, "Date,Month,Description,Amount,Category\n") {
		t.Error("expected column headers even without metadata")
	}
}

func TestCSVWriter_NilDictionary(t *testing.T) {
	r := testReport()
	r.Dictionary = nil
	r.Summary = nil

	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	// no summary, no metadata
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	for _, rec := range records[1:] {
		if rec[4] != "Other" {
			t.Errorf("category: got %q, want %q", rec[4], "Other")
		}
	}
}

func TestCSVWriter_WriteSummary(t *testing.T) {
	view := summary.NewView(testReport().Summary)

	var buf bytes.Buffer
	w := &CSVWriter{}
	if err := w.WriteSummary(&buf, view); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Category,Icon,Total,Count\n" +
		"Groceries,🛒,85.10,1\n" +
		"Dining,🍽️,5.25,1\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCSVWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := &CSVWriter{}
	if err := w.WriteToFile(path, testReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "GROCERY STORE,85.10,Groceries") {
		t.Errorf("expected grocery row, got:\n%s", data)
	}

	if err := w.WriteToFile(filepath.Join(t.TempDir(), "missing", "out.csv"), testReport()); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{25.99, "25.99"},
		{1234.56, "1234.56"},
		{-2500, "-2500.00"},
		{0.1 + 0.2, "0.30"},
	}

	for _, tt := range tests {
		got := formatAmount(tt.input)
		if got != tt.expected {
			t.Errorf("formatAmount(%f): got %q, want %q", tt.input, got, tt.expected)
		}
	}
}
