package models

// OtherCategory is the reserved fallback category name. It is never matched
// against directly.
const OtherCategory = "Other"

// AllTransactionsLabel is used as the summary label when no transaction has
// a resolvable month.
const AllTransactionsLabel = "All Transactions"

// Category is one entry of the keyword -> category dictionary.
type Category struct {
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Keywords []string `json:"keywords"`
}

// Bucket aggregates the spending of one category.
type Bucket struct {
	Icon  string        `json:"icon"`
	Total float64       `json:"total"`
	Items []Transaction `json:"items"`
}

// Summary is the categorized spending summary for one page snapshot.
type Summary struct {
	Month            string             `json:"month"`
	TotalSpent       float64            `json:"totalSpent"`
	Categories       map[string]*Bucket `json:"categories"`
	TransactionCount int                `json:"transactionCount"`
}

// TermMatch is one occurrence of a glossary term in page text.
type TermMatch struct {
	Term       string `json:"term"`       // dictionary key
	Text       string `json:"text"`       // text as it appears on the page
	Definition string `json:"definition"`
	Context    string `json:"context"` // trimmed text node the term was found in
}

// KeywordMatch is a block element whose visible text contains a keyword.
type KeywordMatch struct {
	Index int    `json:"index"`
	Tag   string `json:"tag"`
	Text  string `json:"text"`
}
