// Package extract normalizes a raw knowledge source into a single cleaned
// UTF-8 text blob.
//
// A source is one of three closed kinds: an uploaded PDF, caller-supplied
// plain text, or a web page URL. Dispatch happens over the Input tagged
// union so every ingestion path is handled exhaustively at compile time.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/answerdesk/answerdesk/internal/chunker"
	"github.com/answerdesk/answerdesk/internal/log"
)

const (
	// MaxPDFBytes bounds uploaded PDF payloads; larger inputs are rejected
	// before any parsing work.
	MaxPDFBytes = 10 << 20 // 10MB

	// MaxPageChars hard-truncates extracted web page text, counted in
	// runes.
	MaxPageChars = 100_000

	// userAgent identifies our fetcher to origin servers.
	userAgent = "answerdesk-ingest/1.0"

	fetchTimeout = 30 * time.Second
)

// Extractor turns source payloads into cleaned text. The zero value is not
// usable; construct with New.
type Extractor struct {
	client *http.Client
	logger log.Logger
}

// New creates an Extractor. httpClient may be nil, in which case a default
// client with a 30-second timeout is used (URL sources only).
func New(httpClient *http.Client, logger log.Logger) *Extractor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Extractor{client: httpClient, logger: logger}
}

// Extract produces one text blob from the given source input, or fails with
// an error wrapping ErrExtraction or ErrFetch.
func (e *Extractor) Extract(ctx context.Context, input Input) (string, error) {
	switch src := input.(type) {
	case PDF:
		return e.extractPDF(src)
	case Text:
		return src.Content, nil
	case URL:
		return e.extractURL(ctx, src.Addr)
	default:
		// Unreachable for inputs constructed through this package.
		return "", fmt.Errorf("%w: unsupported input %T", ErrExtraction, input)
	}
}

func (e *Extractor) extractPDF(src PDF) (string, error) {
	if len(src.Data) == 0 {
		return "", fmt.Errorf("%w: empty PDF payload", ErrExtraction)
	}
	if len(src.Data) > MaxPDFBytes {
		return "", fmt.Errorf("%w: PDF exceeds %d bytes", ErrExtraction, MaxPDFBytes)
	}

	reader, err := pdf.NewReader(bytes.NewReader(src.Data), int64(len(src.Data)))
	if err != nil {
		return "", fmt.Errorf("%w: parsing PDF: %v", ErrExtraction, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extracting PDF text: %v", ErrExtraction, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: reading PDF text: %v", ErrExtraction, err)
	}

	e.logger.Debug("extracted pdf", "filename", src.Filename, "bytes", len(src.Data), "chars", buf.Len())
	return buf.String(), nil
}

func (e *Extractor) extractURL(ctx context.Context, addr string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: addr, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: addr, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: parsing HTML: %v", ErrExtraction, err)
	}

	// Drop non-content elements before flattening to text.
	doc.Find("script, style, nav, footer").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	text = chunker.CollapseWhitespace(text)
	text = truncateRunes(text, MaxPageChars)

	e.logger.Debug("extracted url", "url", addr, "status", resp.StatusCode, "chars", len(text))
	return text, nil
}

// truncateRunes cuts s to at most n runes, never mid-character.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
