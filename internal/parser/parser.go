package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
	"github.com/insightdelivered/fiscal-fox/internal/models"
)

// Strategy names, in the order the engine runs them.
const (
	StrategyTable    = "table"
	StrategyDivRows  = "div-rows"
	StrategyDateScan = "date-scan"
)

// dedupPrefixLen is how much of a description takes part in the dedup key.
const dedupPrefixLen = 20

// Strategy defines the interface for transaction extraction heuristics.
type Strategy interface {
	// Extract scans a page and returns the transactions it recognises.
	Extract(doc *dom.Document) ([]models.Transaction, error)
	// Name returns the strategy's short name.
	Name() string
}

// New returns the strategy registered under name.
func New(name string) (Strategy, error) {
	switch name {
	case StrategyTable:
		return &TableStrategy{}, nil
	case StrategyDivRows:
		return &DivRowStrategy{}, nil
	case StrategyDateScan:
		return &DateScanStrategy{}, nil
	default:
		return nil, fmt.Errorf("unsupported strategy: %q", name)
	}
}

// DefaultStrategies returns table, div-row and date-scan, in that order.
func DefaultStrategies() []Strategy {
	return []Strategy{&TableStrategy{}, &DivRowStrategy{}, &DateScanStrategy{}}
}

// Engine runs strategies in order and merges their output.
type Engine struct {
	strategies []Strategy
	log        zerolog.Logger
}

// NewEngine builds an engine over the given strategies, or the defaults when
// none are given.
func NewEngine(log zerolog.Logger, strategies ...Strategy) *Engine {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Engine{strategies: strategies, log: log}
}

// Extract runs every strategy over doc. The first strategy's records are kept
// whole; later strategies only add records whose dedup key is new. A strategy
// that fails contributes nothing and the merge carries on.
func (e *Engine) Extract(doc *dom.Document) models.ExtractionResult {
	var result models.ExtractionResult
	seen := make(map[string]bool)

	for i, s := range e.strategies {
		txns, err := e.run(s, doc)
		report := models.StrategyReport{Strategy: s.Name(), Emitted: len(txns)}
		if err != nil {
			report.Err = err.Error()
			e.log.Warn().Err(err).Str("strategy", s.Name()).Msg("strategy failed")
			result.Reports = append(result.Reports, report)
			continue
		}

		for _, t := range txns {
			key := DedupKey(t)
			if i > 0 && seen[key] {
				continue
			}
			seen[key] = true
			result.Transactions = append(result.Transactions, t)
			report.Kept++
		}

		e.log.Debug().
			Str("strategy", s.Name()).
			Int("emitted", report.Emitted).
			Int("kept", report.Kept).
			Msg("strategy finished")
		result.Reports = append(result.Reports, report)
	}

	return result
}

// run calls one strategy, turning a panic into an error.
func (e *Engine) run(s Strategy, doc *dom.Document) (txns []models.Transaction, err error) {
	defer func() {
		if r := recover(); r != nil {
			txns = nil
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()

	txns, err = s.Extract(doc)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", s.Name(), err)
	}
	return txns, nil
}

// DedupKey identifies a real-world transaction across strategies: the first
// 20 characters of the description and the amount in whole cents.
func DedupKey(t models.Transaction) string {
	return truncateRunes(t.Description, dedupPrefixLen) + "|" + strconv.FormatFloat(math.Round(t.Amount*100), 'f', 0, 64)
}

// Extract runs the default strategies with a silent logger.
func Extract(doc *dom.Document) []models.Transaction {
	return NewEngine(zerolog.Nop()).Extract(doc).Transactions
}
