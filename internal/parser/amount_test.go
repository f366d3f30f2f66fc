package parser

import (
	"math"
	"testing"

	"github.com/insightdelivered/fiscal-fox/internal/models"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		force    models.ForceSign
		expected float64
		ok       bool
	}{
		{"forced debit", "$4.50", models.ForceDebit, 4.50, true},
		{"forced credit", "$4.50", models.ForceCredit, -4.50, true},
		{"unlabeled positive is a deposit", "$4.50", models.ForceNone, -4.50, true},
		{"thousands separator", "$1,234.56", models.ForceDebit, 1234.56, true},
		{"minus sign is spending", "-$85.23", models.ForceNone, 85.23, true},
		{"unicode minus is spending", "−$8.10", models.ForceNone, 8.10, true},
		{"parentheses are spending", "($45.00)", models.ForceNone, 45.00, true},
		{"CR marker", "12.00 CR", models.ForceNone, -12.00, true},
		{"DR marker", "12.00 DR", models.ForceNone, 12.00, true},
		{"credit word beats minus sign", "-12.00 credit", models.ForceNone, -12.00, true},
		{"forced sign beats marker", "12.00 DR", models.ForceCredit, -12.00, true},
		{"surrounding whitespace", "  $9.99 ", models.ForceDebit, 9.99, true},
		{"zero", "$0.00", models.ForceDebit, 0, false},
		{"empty", "", models.ForceDebit, 0, false},
		{"no digits", "Not applicable", models.ForceDebit, 0, false},
		{"lone minus", "-", models.ForceNone, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input, tt.force)
			if ok != tt.ok {
				t.Fatalf("ParseAmount(%q) ok: got %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("ParseAmount(%q): got %f, want %f", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseAmount_ForcedSignSymmetry(t *testing.T) {
	inputs := []string{"$1.00", "$12", "-$3.50", "($45.00)", "$1,000,000.01", "7.25 CR", "7.25 DR", "− $2.00"}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			debit, ok := ParseAmount(in, models.ForceDebit)
			if !ok {
				t.Fatalf("ParseAmount(%q, debit) rejected", in)
			}
			credit, ok := ParseAmount(in, models.ForceCredit)
			if !ok {
				t.Fatalf("ParseAmount(%q, credit) rejected", in)
			}
			if debit <= 0 {
				t.Errorf("debit: got %f, want > 0", debit)
			}
			if credit >= 0 {
				t.Errorf("credit: got %f, want < 0", credit)
			}
			if math.Abs(debit) != math.Abs(credit) {
				t.Errorf("magnitudes differ: %f vs %f", debit, credit)
			}
		})
	}
}

func TestSignChainPrecedence(t *testing.T) {
	tests := []struct {
		name string
		in   amountText
		want int
	}{
		{"forced wins over everything", amountText{raw: "5 CR", force: models.ForceDebit, negative: true}, 1},
		{"marker wins over displayed sign", amountText{raw: "-5 CR", negative: true}, -1},
		{"displayed negative", amountText{raw: "-5", negative: true}, 1},
		{"default", amountText{raw: "5"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := 0
			for _, resolve := range signChain {
				if sign, ok := resolve(tt.in); ok {
					got = sign
					break
				}
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
