package summary

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/fiscal-fox/internal/models"
)

// MaxItemsPerCategory caps the transactions listed under one category.
const MaxItemsPerCategory = 10

// NoDataMessage is shown in place of categories when nothing was found.
const NoDataMessage = "No transactions found on this page. Navigate to your transaction history and try again."

// View is a Summary ordered and formatted for display.
type View struct {
	Month            string         `json:"month"`
	TotalSpent       float64        `json:"totalSpent"`
	TotalFormatted   string         `json:"totalFormatted"`
	TransactionCount int            `json:"transactionCount"`
	Categories       []CategoryView `json:"categories"`
	NoData           bool           `json:"noData"`
	Message          string         `json:"message,omitempty"`
}

type CategoryView struct {
	Name           string     `json:"name"`
	Icon           string     `json:"icon"`
	Total          float64    `json:"total"`
	TotalFormatted string     `json:"totalFormatted"`
	Count          int        `json:"count"`
	Items          []ItemView `json:"items"`
}

type ItemView struct {
	Date            string  `json:"date"`
	Description     string  `json:"description"`
	Amount          float64 `json:"amount"`
	AmountFormatted string  `json:"amountFormatted"`
}

// NewView orders categories by total, largest first (ties by name), and
// lists at most MaxItemsPerCategory of each category's largest items.
func NewView(s *models.Summary) View {
	v := View{
		Month:            s.Month,
		TotalSpent:       s.TotalSpent,
		TotalFormatted:   FormatCurrency(s.TotalSpent),
		TransactionCount: s.TransactionCount,
		Categories:       make([]CategoryView, 0, len(s.Categories)),
	}

	for name, b := range s.Categories {
		items := make([]models.Transaction, len(b.Items))
		copy(items, b.Items)
		sort.SliceStable(items, func(i, j int) bool { return items[i].Amount > items[j].Amount })
		if len(items) > MaxItemsPerCategory {
			items = items[:MaxItemsPerCategory]
		}

		cv := CategoryView{
			Name:           name,
			Icon:           b.Icon,
			Total:          b.Total,
			TotalFormatted: FormatCurrency(b.Total),
			Count:          len(b.Items),
			Items:          make([]ItemView, len(items)),
		}
		for i, t := range items {
			cv.Items[i] = ItemView{
				Date:            t.Date,
				Description:     t.Description,
				Amount:          t.Amount,
				AmountFormatted: FormatCurrency(t.Amount),
			}
		}
		v.Categories = append(v.Categories, cv)
	}

	sort.Slice(v.Categories, func(i, j int) bool {
		a, b := v.Categories[i], v.Categories[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Name < b.Name
	})

	if len(v.Categories) == 0 {
		v.NoData = true
		v.Message = NoDataMessage
	}
	return v
}

// FormatCurrency renders an amount as "$1,234.56" ("-$5.00" for negatives).
func FormatCurrency(amount float64) string {
	fixed := decimal.NewFromFloat(amount).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}
