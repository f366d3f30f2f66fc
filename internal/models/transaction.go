package models

// Transaction represents a single transaction scraped from a statement page.
//
// Amount follows one sign convention regardless of how the page displays it:
// positive means money left the account (debit / spending), negative means
// money came in (credit / deposit).
type Transaction struct {
	Date        string  `json:"date"`            // raw display text
	Month       string  `json:"month,omitempty"` // "Mon YYYY" grouping key, "" when unknown
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Strategy    string  `json:"strategy,omitempty"` // debug: which extraction strategy matched
}

// IsSpending reports whether the transaction is money leaving the account.
func (t Transaction) IsSpending() bool {
	return t.Amount > 0
}

// ForceSign tells the amount parser which side of the ledger a value is on
// when the caller already knows the column or field semantics.
type ForceSign int

const (
	ForceNone ForceSign = iota
	ForceDebit
	ForceCredit
)

func (f ForceSign) String() string {
	switch f {
	case ForceDebit:
		return "debit"
	case ForceCredit:
		return "credit"
	default:
		return "none"
	}
}

// StrategyReport captures what one extraction strategy did during a run.
type StrategyReport struct {
	Strategy string `json:"strategy"`
	Emitted  int    `json:"emitted"`       // records the strategy produced
	Kept     int    `json:"kept"`          // records that survived de-duplication
	Err      string `json:"err,omitempty"` // set when the strategy failed and contributed nothing
}

// ExtractionResult holds the merged output of all strategies.
type ExtractionResult struct {
	Transactions []Transaction
	Reports      []StrategyReport
}
