// Package extractor turns the inputs Fiscal Fox accepts (saved statement
// pages, live URLs and PDF statements) into a parsed document for the
// extraction engine.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/insightdelivered/fiscal-fox/internal/dom"
	"github.com/insightdelivered/fiscal-fox/internal/resource"
)

// LoadHTML parses a statement page.
func LoadHTML(r io.Reader) (*dom.Document, error) {
	return dom.Parse(r)
}

// LoadFile opens a saved page or a PDF statement, chosen by extension.
func LoadFile(path string) (*dom.Document, error) {
	if IsPDF(path) {
		pages, err := ExtractPDF(path)
		if err != nil {
			return nil, err
		}
		return PDFDocument(pages), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()
	return LoadHTML(f)
}

// FetchURL downloads a statement page.
func FetchURL(ctx context.Context, url string, timeout time.Duration) (*dom.Document, error) {
	body, err := resource.Download(ctx, url, timeout)
	if err != nil {
		return nil, err
	}
	return LoadHTML(bytes.NewReader(body))
}

// FetchPublicURL downloads a statement page named by a remote caller. Hosts
// resolving to internal addresses are refused with resource.ErrForbiddenAddress.
func FetchPublicURL(ctx context.Context, url string, timeout time.Duration) (*dom.Document, error) {
	body, err := resource.DownloadPublic(ctx, url, timeout)
	if err != nil {
		return nil, err
	}
	return LoadHTML(bytes.NewReader(body))
}

// IsPDF reports whether a file name has a .pdf extension.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// IsHTML reports whether a file name has an .html or .htm extension.
func IsHTML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm"
}
