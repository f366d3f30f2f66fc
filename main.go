package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/fiscal-fox/internal/api"
	"github.com/insightdelivered/fiscal-fox/internal/categorizer"
	"github.com/insightdelivered/fiscal-fox/internal/config"
	"github.com/insightdelivered/fiscal-fox/internal/dom"
	"github.com/insightdelivered/fiscal-fox/internal/extractor"
	"github.com/insightdelivered/fiscal-fox/internal/glossary"
	"github.com/insightdelivered/fiscal-fox/internal/logger"
	"github.com/insightdelivered/fiscal-fox/internal/models"
	"github.com/insightdelivered/fiscal-fox/internal/parser"
	"github.com/insightdelivered/fiscal-fox/internal/reader"
	"github.com/insightdelivered/fiscal-fox/internal/summary"
	"github.com/insightdelivered/fiscal-fox/internal/writer"
)

const version = "2.0.0"

// session is what the commands of one invocation share: configuration, the
// logger and the dictionary cache. The root command fills it before any
// subcommand runs.
type session struct {
	cfg   config.Config
	log   zerolog.Logger
	cache *cache.Cache
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	s := &session{}

	root := &cobra.Command{
		Use:   "fiscal-fox",
		Short: "Summarize spending from bank statement pages",
		Long: `Fiscal Fox reads a saved bank statement page, a live page URL or a
PDF statement, extracts the transactions it lists and summarizes
spending by category.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if verbose {
				cfg.Log.Level = "debug"
			}
			*s = session{
				cfg:   cfg,
				log:   logger.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Format),
				cache: cache.New(cache.NoExpiration, 0),
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newSummarizeCmd(s),
		newServeCmd(s),
		newTermsCmd(s),
		newFindCmd(s),
		newCategoriesCmd(s),
		newVersionCmd(),
	)
	return root
}

func newSummarizeCmd(s *session) *cobra.Command {
	var (
		csvPath       string
		summaryPath   string
		includeHeader bool
		asJSON        bool
		debug         bool
	)

	cmd := &cobra.Command{
		Use:   "summarize <file.html|file.pdf|URL>",
		Short: "Extract transactions and print a spending summary",
		Example: `  # Summarize a saved activity page
  fiscal-fox summarize activity.html

  # Summarize a PDF statement and export its transactions
  fiscal-fox summarize --csv march.csv statement.pdf

  # Fetch a page and print JSON with per-strategy diagnostics
  fiscal-fox summarize --json --debug https://bank.example.com/activity`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := s.loadDocument(ctx, args[0])
			if err != nil {
				return err
			}

			result := parser.NewEngine(s.log).Extract(doc)
			txns := result.Transactions

			var warning string
			dict, err := categorizer.NewLoaderFor(s.cache, s.cfg.Dictionary.Categories, s.cfg.Fetch.Timeout).Load(ctx)
			var sum *models.Summary
			if err != nil {
				warning = fmt.Sprintf("category dictionary unavailable (%v); all spending is listed under Other", err)
				sum = summary.Fallback(txns)
			} else {
				sum = summary.Build(txns, dict)
			}
			view := summary.NewView(sum)

			if csvPath != "" {
				w := &writer.CSVWriter{IncludeHeader: includeHeader}
				if err := w.WriteToFile(csvPath, writer.Report{Transactions: txns, Summary: sum, Dictionary: dict}); err != nil {
					return fmt.Errorf("CSV write failed: %w", err)
				}
			}

			if summaryPath != "" {
				if err := writeSummaryCSV(summaryPath, includeHeader, view); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if txns == nil {
					txns = []models.Transaction{}
				}
				resp := api.SummarizeResponse{
					Success:      true,
					Warning:      warning,
					NoData:       view.NoData,
					Summary:      &view,
					Transactions: txns,
					Count:        len(txns),
					Version:      version,
				}
				if debug {
					resp.Reports = result.Reports
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			fmt.Fprintf(out, "Processing: %s\n", args[0])
			fmt.Fprintf(out, "  Found %d transaction(s)\n", len(txns))
			if debug {
				for _, r := range result.Reports {
					printReport(out, r)
				}
			}
			if warning != "" {
				fmt.Fprintf(out, "  Warning: %s\n", warning)
			}
			printView(out, view)
			if csvPath != "" {
				fmt.Fprintf(out, "  Output: %s\n", csvPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "write the transactions to a CSV file")
	cmd.Flags().StringVar(&summaryPath, "summary-csv", "", "write the per-category summary to a CSV file")
	cmd.Flags().BoolVar(&includeHeader, "header", true, "include summary metadata rows in CSV output")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&debug, "debug", false, "include per-strategy extraction reports")
	return cmd
}

func newTermsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "terms <file.html|URL>",
		Short: "List the financial terms a page uses, with definitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := s.loadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			m, err := glossary.NewLoaderFor(s.cache, s.cfg.Dictionary.Glossary, s.cfg.Fetch.Timeout).Load(ctx)
			if err != nil {
				return fmt.Errorf("glossary unavailable: %w", err)
			}

			out := cmd.OutOrStdout()
			matches := m.FindTerms(doc)
			if len(matches) == 0 {
				fmt.Fprintln(out, "No glossary terms found.")
				return nil
			}
			seen := make(map[string]bool)
			for _, tm := range matches {
				if seen[tm.Term] {
					continue
				}
				seen[tm.Term] = true
				fmt.Fprintf(out, "%s\n    %s\n", tm.Term, tm.Definition)
			}
			return nil
		},
	}
}

func newFindCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "find <keyword> <file.html|URL>",
		Short: "List the blocks of a page that mention a keyword",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := s.loadDocument(cmd.Context(), args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			matches := reader.FindKeywordMatches(doc, args[0])
			if len(matches) == 0 {
				fmt.Fprintf(out, "No matches for %q.\n", args[0])
				if hint, ok := reader.Suggest(doc, args[0]); ok {
					fmt.Fprintf(out, "Did you mean %q?\n", hint)
				}
				return nil
			}
			for _, m := range matches {
				fmt.Fprintf(out, "%d. <%s> %s\n", m.Index+1, m.Tag, m.Text)
			}
			return nil
		},
	}
}

func newCategoriesCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print the category dictionary in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := categorizer.NewLoaderFor(s.cache, s.cfg.Dictionary.Categories, s.cfg.Fetch.Timeout).Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range dict.Categories() {
				fmt.Fprintf(out, "%s %s\n", c.Icon, c.Name)
				if len(c.Keywords) > 0 {
					fmt.Fprintf(out, "    %s\n", strings.Join(c.Keywords, ", "))
				}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// no configuration needed
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fiscal-fox v%s\n", version)
		},
	}
}

// loadDocument reads a page from a URL, a PDF statement or a saved HTML file.
func (s *session) loadDocument(ctx context.Context, location string) (*dom.Document, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return extractor.FetchURL(ctx, location, s.cfg.Fetch.Timeout)
	}
	if _, err := os.Stat(location); err != nil {
		return nil, fmt.Errorf("input file not found: %s", location)
	}
	return extractor.LoadFile(location)
}

func writeSummaryCSV(path string, includeHeader bool, v summary.View) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	w := &writer.CSVWriter{IncludeHeader: includeHeader}
	if err := w.WriteSummary(f, v); err != nil {
		return fmt.Errorf("summary CSV write failed: %w", err)
	}
	return f.Close()
}

func printView(out io.Writer, v summary.View) {
	if v.NoData {
		fmt.Fprintf(out, "  %s\n", v.Message)
		return
	}
	fmt.Fprintf(out, "  %s: %s spent across %d transaction(s)\n\n", v.Month, v.TotalFormatted, v.TransactionCount)
	for _, c := range v.Categories {
		fmt.Fprintf(out, "  %s %-20s %12s  (%d)\n", c.Icon, c.Name, c.TotalFormatted, c.Count)
		for _, it := range c.Items {
			fmt.Fprintf(out, "      %-14s %-40s %12s\n", it.Date, it.Description, it.AmountFormatted)
		}
	}
	fmt.Fprintln(out)
}

func printReport(out io.Writer, r models.StrategyReport) {
	if r.Err != "" {
		fmt.Fprintf(out, "  [%s] failed: %s\n", r.Strategy, r.Err)
		return
	}
	fmt.Fprintf(out, "  [%s] emitted %d, kept %d\n", r.Strategy, r.Emitted, r.Kept)
}
