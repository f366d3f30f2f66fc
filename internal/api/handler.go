package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/fiscal-fox/internal/categorizer"
	"github.com/insightdelivered/fiscal-fox/internal/dom"
	"github.com/insightdelivered/fiscal-fox/internal/extractor"
	"github.com/insightdelivered/fiscal-fox/internal/glossary"
	"github.com/insightdelivered/fiscal-fox/internal/logger"
	"github.com/insightdelivered/fiscal-fox/internal/models"
	"github.com/insightdelivered/fiscal-fox/internal/parser"
	"github.com/insightdelivered/fiscal-fox/internal/reader"
	"github.com/insightdelivered/fiscal-fox/internal/resource"
	"github.com/insightdelivered/fiscal-fox/internal/summary"
	"github.com/insightdelivered/fiscal-fox/internal/writer"
)

// SummarizeResponse is the JSON response from the /api/summarize endpoint.
type SummarizeResponse struct {
	Success      bool                    `json:"success"`
	Error        string                  `json:"error,omitempty"`
	Warning      string                  `json:"warning,omitempty"`
	NoData       bool                    `json:"noData,omitempty"`
	Summary      *summary.View           `json:"summary,omitempty"`
	Transactions []models.Transaction    `json:"transactions"`
	Count        int                     `json:"count"`
	Reports      []models.StrategyReport `json:"reports,omitempty"`
	CSV          string                  `json:"csv,omitempty"`
	Version      string                  `json:"version,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// pageRequest is the JSON form of a page submission.
type pageRequest struct {
	HTML string `json:"html"`
	URL  string `json:"url"`
}

// FetchFunc downloads and parses the page at a URL.
type FetchFunc func(ctx context.Context, url string, timeout time.Duration) (*dom.Document, error)

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Engine       *parser.Engine
	Categories   *categorizer.Loader
	Glossary     *glossary.Loader
	FetchTimeout time.Duration
	// AllowedHosts gates the "url" field; empty disables it.
	AllowedHosts []string
	Fetch        FetchFunc
	Version      string
	StaticDir    string
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)
	api.Get("/categories", h.HandleCategories)
	api.Post("/summarize", h.HandleSummarize)
	api.Post("/terms", h.HandleTerms)
	api.Post("/find", h.HandleFind)

	// Serve the web UI, falling back to index.html for client-side routes
	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
		app.Get("/*", func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api/") {
				return fiber.ErrNotFound
			}
			return c.SendFile(filepath.Join(h.StaticDir, "index.html"))
		})
	}
}

// HandleHealth handles GET /api/health
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

// HandleCategories handles GET /api/categories, listing the dictionary in
// priority order.
func (h *Handler) HandleCategories(c *fiber.Ctx) error {
	dict, err := h.Categories.Load(c.UserContext())
	if err != nil {
		log := logger.FromContext(c.UserContext())
		log.Error().Err(err).Msg("Failed to load category dictionary")
		return fiber.NewError(fiber.StatusServiceUnavailable, "Category dictionary unavailable.")
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"categories": dict.Categories(),
		"count":      dict.Len(),
	})
}

// HandleSummarize handles POST /api/summarize. The page is taken from an
// HTML body, a multipart "file" upload (.html, .htm or .pdf) or a JSON body
// with "html" or "url". Query flags: debug=true adds strategy reports,
// csv=true adds the transactions as CSV, header=false drops its metadata rows.
func (h *Handler) HandleSummarize(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.FromContext(ctx)

	doc, err := h.readDocument(c)
	if err != nil {
		return err
	}

	result := h.Engine.Extract(doc)
	txns := result.Transactions
	// Ensure transactions is never nil (nil marshals to JSON null, not [])
	if txns == nil {
		txns = []models.Transaction{}
	}

	resp := SummarizeResponse{
		Success:      true,
		Transactions: txns,
		Count:        len(txns),
		Version:      h.Version,
	}

	dict, err := h.Categories.Load(ctx)
	var sum *models.Summary
	if err != nil {
		log.Warn().Err(err).Msg("Category dictionary unavailable, summarizing without categories")
		sum = summary.Fallback(txns)
		resp.Warning = "Category dictionary unavailable; all spending is listed under Other."
	} else {
		sum = summary.Build(txns, dict)
	}

	view := summary.NewView(sum)
	resp.Summary = &view
	resp.NoData = view.NoData

	if c.QueryBool("debug") {
		resp.Reports = result.Reports
	}

	if c.QueryBool("csv") {
		var buf bytes.Buffer
		w := &writer.CSVWriter{IncludeHeader: c.QueryBool("header", true)}
		if err := w.Write(&buf, writer.Report{Transactions: txns, Summary: sum, Dictionary: dict}); err != nil {
			return fmt.Errorf("CSV generation failed: %w", err)
		}
		resp.CSV = buf.String()
	}

	log.Debug().
		Int("transactions", resp.Count).
		Int("spending", sum.TransactionCount).
		Float64("total", sum.TotalSpent).
		Msg("Page summarized")
	return c.JSON(resp)
}

// HandleTerms handles POST /api/terms, returning every glossary term found
// in the page.
func (h *Handler) HandleTerms(c *fiber.Ctx) error {
	doc, err := h.readDocument(c)
	if err != nil {
		return err
	}

	m, err := h.Glossary.Load(c.UserContext())
	if err != nil {
		log := logger.FromContext(c.UserContext())
		log.Error().Err(err).Msg("Failed to load glossary")
		return fiber.NewError(fiber.StatusServiceUnavailable, "Glossary unavailable.")
	}

	matches := m.FindTerms(doc)
	if matches == nil {
		matches = []models.TermMatch{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"matches": matches,
		"count":   len(matches),
	})
}

// HandleFind handles POST /api/find?q=keyword. When nothing matches, the
// closest word on the page is offered as a suggestion.
func (h *Handler) HandleFind(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing keyword. Use query parameter 'q'.")
	}

	doc, err := h.readDocument(c)
	if err != nil {
		return err
	}

	matches := reader.FindKeywordMatches(doc, q)
	resp := fiber.Map{
		"success": true,
		"query":   q,
		"count":   len(matches),
	}
	if matches == nil {
		matches = []models.KeywordMatch{}
		if s, ok := reader.Suggest(doc, q); ok {
			resp["suggestion"] = s
		}
	}
	resp["matches"] = matches
	return c.JSON(resp)
}

// readDocument parses the page submitted with a request.
func (h *Handler) readDocument(c *fiber.Ctx) (*dom.Document, error) {
	ctype := strings.ToLower(c.Get(fiber.HeaderContentType))

	switch {
	case strings.HasPrefix(ctype, fiber.MIMEMultipartForm):
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
		}
		return h.readUpload(fh)

	case strings.HasPrefix(ctype, fiber.MIMEApplicationJSON):
		var req pageRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body.")
		}
		switch {
		case strings.TrimSpace(req.HTML) != "":
			return extractor.LoadHTML(strings.NewReader(req.HTML))
		case req.URL != "":
			return h.fetch(c.UserContext(), req.URL)
		}
		return nil, fiber.NewError(fiber.StatusBadRequest, "Request must include 'html' or 'url'.")

	default:
		body := c.Body()
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Empty request body. Send the page HTML.")
		}
		return extractor.LoadHTML(bytes.NewReader(body))
	}
}

func (h *Handler) readUpload(fh *multipart.FileHeader) (*dom.Document, error) {
	switch {
	case extractor.IsHTML(fh.Filename):
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		return extractor.LoadHTML(f)

	case extractor.IsPDF(fh.Filename):
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()

		// ledongthuc/pdf reads from a path
		tmpFile, err := os.CreateTemp("", "statement-*.pdf")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp file: %w", err)
		}
		defer os.Remove(tmpFile.Name())
		defer tmpFile.Close()

		if _, err := io.Copy(tmpFile, f); err != nil {
			return nil, fmt.Errorf("failed to save uploaded file: %w", err)
		}
		if err := tmpFile.Close(); err != nil {
			return nil, fmt.Errorf("failed to save uploaded file: %w", err)
		}

		pages, err := extractor.ExtractPDF(tmpFile.Name())
		if err != nil {
			if errors.Is(err, extractor.ErrUnreadablePDF) {
				return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "No readable text in PDF. Scanned statements are not supported.")
			}
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
		}
		return extractor.PDFDocument(pages), nil
	}

	return nil, fiber.NewError(fiber.StatusBadRequest, "Only .html, .htm and .pdf files are supported.")
}

func (h *Handler) fetch(ctx context.Context, rawURL string) (*dom.Document, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, fiber.NewError(fiber.StatusBadRequest, "URL must start with http:// or https://.")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid URL.")
	}
	if len(h.AllowedHosts) == 0 || h.Fetch == nil {
		return nil, fiber.NewError(fiber.StatusForbidden, "URL input is disabled on this server.")
	}
	if !hostAllowed(u.Hostname(), h.AllowedHosts) {
		return nil, fiber.NewError(fiber.StatusForbidden, "Host is not allowed.")
	}

	doc, err := h.Fetch(ctx, rawURL, h.FetchTimeout)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("url", rawURL).Msg("Page fetch failed")
		if errors.Is(err, resource.ErrForbiddenAddress) {
			return nil, fiber.NewError(fiber.StatusForbidden, "Host is not allowed.")
		}
		return nil, fiber.NewError(fiber.StatusBadGateway, "Failed to fetch page.")
	}
	return doc, nil
}

// hostAllowed matches host against the allow list. "*" admits any host.
func hostAllowed(host string, allowed []string) bool {
	host = strings.ToLower(host)
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, host) {
			return true
		}
	}
	return false
}

// ErrorHandler renders every error as an ErrorResponse. Errors that are not
// *fiber.Error are reported as 500 without their details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error."

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	} else {
		log := logger.FromContext(c.UserContext())
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}

	return c.Status(code).JSON(ErrorResponse{Success: false, Error: msg})
}
