// Package summary rolls extracted transactions up into a categorized
// spending summary and orders it for display.
package summary

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/fiscal-fox/internal/categorizer"
	"github.com/insightdelivered/fiscal-fox/internal/models"
)

// FallbackIcon is used for categories the dictionary does not describe.
const FallbackIcon = "📦"

// Build aggregates the spending transactions (Amount > 0) by category.
// Credits are left out entirely. The label is the single month shared by all
// spending, the distinct months joined with " & " in order of appearance, or
// "All Transactions" when no month is known.
func Build(transactions []models.Transaction, dict *categorizer.Dictionary) *models.Summary {
	return build(transactions, func(t models.Transaction) (string, string) {
		name := categorizer.Categorize(t.Description, dict)
		icon := FallbackIcon
		if c, ok := dict.Get(name); ok && c.Icon != "" {
			icon = c.Icon
		}
		return name, icon
	})
}

// Fallback is the summary shown when the dictionary could not be loaded:
// every spending transaction lands in "Other".
func Fallback(transactions []models.Transaction) *models.Summary {
	return build(transactions, func(models.Transaction) (string, string) {
		return models.OtherCategory, FallbackIcon
	})
}

func build(transactions []models.Transaction, classify func(models.Transaction) (name, icon string)) *models.Summary {
	s := &models.Summary{Categories: make(map[string]*models.Bucket)}

	var (
		months     []string
		seenMonths = make(map[string]bool)
		total      = decimal.Zero
		totals     = make(map[string]decimal.Decimal)
	)

	for _, t := range transactions {
		if !t.IsSpending() {
			continue
		}
		if t.Month != "" && !seenMonths[t.Month] {
			seenMonths[t.Month] = true
			months = append(months, t.Month)
		}

		name, icon := classify(t)
		bucket, ok := s.Categories[name]
		if !ok {
			bucket = &models.Bucket{Icon: icon}
			s.Categories[name] = bucket
		}
		amount := decimal.NewFromFloat(t.Amount)
		totals[name] = totals[name].Add(amount)
		bucket.Total = totals[name].InexactFloat64()
		bucket.Items = append(bucket.Items, t)

		total = total.Add(amount)
		s.TransactionCount++
	}

	s.TotalSpent = total.InexactFloat64()
	switch len(months) {
	case 0:
		s.Month = models.AllTransactionsLabel
	case 1:
		s.Month = months[0]
	default:
		s.Month = strings.Join(months, " & ")
	}
	return s
}
