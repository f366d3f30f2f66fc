package summary

import (
	"fmt"
	"testing"

	"github.com/insightdelivered/fiscal-fox/internal/categorizer"
	"github.com/insightdelivered/fiscal-fox/internal/models"
)

func testDictionary() *categorizer.Dictionary {
	return categorizer.NewDictionary(
		models.Category{Name: "Dining", Icon: "🍽️", Keywords: []string{"coffee", "cafe"}},
		models.Category{Name: "Groceries", Icon: "🛒", Keywords: []string{"grocery"}},
		models.Category{Name: "Other", Icon: "❔"},
	)
}

func TestBuild_Empty(t *testing.T) {
	s := Build(nil, testDictionary())

	if s.TotalSpent != 0 {
		t.Errorf("TotalSpent: got %f, want 0", s.TotalSpent)
	}
	if s.TransactionCount != 0 {
		t.Errorf("TransactionCount: got %d, want 0", s.TransactionCount)
	}
	if len(s.Categories) != 0 {
		t.Errorf("Categories: got %d, want 0", len(s.Categories))
	}
	if s.Month != "All Transactions" {
		t.Errorf("Month: got %q, want %q", s.Month, "All Transactions")
	}
}

func TestBuild_SpendingOnly(t *testing.T) {
	txns := []models.Transaction{
		{Date: "2026-03-02", Month: "Mar 2026", Description: "COFFEE SHOP", Amount: 4.50},
		{Date: "2026-03-03", Month: "Mar 2026", Description: "PAYROLL", Amount: -2000},
		{Date: "2026-03-04", Month: "Mar 2026", Description: "Grocery Store", Amount: 85.23},
		{Date: "2026-03-05", Month: "Mar 2026", Description: "Corner Cafe", Amount: 3.10},
		{Date: "2026-03-06", Month: "Mar 2026", Description: "Zero", Amount: 0},
	}

	s := Build(txns, testDictionary())

	spending := 0
	for _, tx := range txns {
		if tx.Amount > 0 {
			spending++
		}
	}
	if s.TransactionCount != spending {
		t.Errorf("TransactionCount: got %d, want %d", s.TransactionCount, spending)
	}
	if s.TotalSpent != 92.83 {
		t.Errorf("TotalSpent: got %f, want %f", s.TotalSpent, 92.83)
	}
	if s.Month != "Mar 2026" {
		t.Errorf("Month: got %q, want %q", s.Month, "Mar 2026")
	}

	dining := s.Categories["Dining"]
	if dining == nil {
		t.Fatal("expected a Dining bucket")
	}
	if dining.Total != 7.60 || len(dining.Items) != 2 || dining.Icon != "🍽️" {
		t.Errorf("Dining: got %+v", dining)
	}
	if _, ok := s.Categories["Other"]; ok {
		t.Error("credits must not create an Other bucket")
	}
}

func TestBuild_MonthLabel(t *testing.T) {
	tests := []struct {
		name     string
		months   []string
		expected string
	}{
		{"single month", []string{"Mar 2026", "Mar 2026"}, "Mar 2026"},
		{"two months in order of appearance", []string{"Mar 2026", "Feb 2026", "Mar 2026"}, "Mar 2026 & Feb 2026"},
		{"unknown months ignored", []string{"", "Jan 2026"}, "Jan 2026"},
		{"no months", []string{"", ""}, "All Transactions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txns []models.Transaction
			for i, m := range tt.months {
				txns = append(txns, models.Transaction{Month: m, Description: fmt.Sprintf("item %d", i), Amount: 1})
			}
			if got := Build(txns, testDictionary()).Month; got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestBuild_Icons(t *testing.T) {
	dict := categorizer.NewDictionary(models.Category{Name: "Dining", Keywords: []string{"coffee"}})

	s := Build([]models.Transaction{
		{Description: "COFFEE", Amount: 2},
		{Description: "RENT", Amount: 900},
	}, dict)

	if got := s.Categories["Dining"].Icon; got != FallbackIcon {
		t.Errorf("Dining icon: got %q, want %q", got, FallbackIcon)
	}
	if got := s.Categories["Other"].Icon; got != FallbackIcon {
		t.Errorf("Other icon: got %q, want %q", got, FallbackIcon)
	}
}

func TestBuild_CoffeeScenario(t *testing.T) {
	txns := []models.Transaction{{Date: "2026-03-02", Month: "Mar 2026", Description: "COFFEE SHOP", Amount: 4.50}}

	withKeyword := Build(txns, testDictionary())
	if withKeyword.TotalSpent != 4.50 {
		t.Errorf("TotalSpent: got %f, want 4.50", withKeyword.TotalSpent)
	}
	if _, ok := withKeyword.Categories["Dining"]; !ok {
		t.Error("expected COFFEE SHOP under Dining")
	}

	withoutKeyword := Build(txns, categorizer.NewDictionary(models.Category{Name: "Groceries", Keywords: []string{"grocery"}}))
	if _, ok := withoutKeyword.Categories["Other"]; !ok {
		t.Error("expected COFFEE SHOP under Other")
	}
}

func TestFallback(t *testing.T) {
	s := Fallback([]models.Transaction{
		{Description: "COFFEE", Amount: 2.25, Month: "Jan 2026"},
		{Description: "GROCERY", Amount: 10},
		{Description: "REFUND", Amount: -5},
	})

	if len(s.Categories) != 1 {
		t.Fatalf("categories: got %d, want 1", len(s.Categories))
	}
	other := s.Categories["Other"]
	if other == nil || other.Total != 12.25 || len(other.Items) != 2 {
		t.Errorf("Other: got %+v", other)
	}
	if s.Month != "Jan 2026" {
		t.Errorf("Month: got %q, want %q", s.Month, "Jan 2026")
	}
}
