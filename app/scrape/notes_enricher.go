package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const notesExcerptLimit = 280

// NotesEnricher fills empty item notes with a plain-text excerpt extracted
// from the item's landing page. Enrichment is best-effort: any failure
// leaves the notes empty and never fails the run.
type NotesEnricher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewNotesEnricher(httpClient *http.Client, userAgent string, timeout time.Duration) *NotesEnricher {
	return &NotesEnricher{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (e *NotesEnricher) Run(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("page URL is empty")
	}

	data, err := e.fetchPage(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch landing page: %w", err)
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = nil
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), parsedURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	excerpt := strings.Join(strings.Fields(article.TextContent), " ")
	if excerpt == "" {
		return "", fmt.Errorf("no content extracted from landing page")
	}

	if runes := []rune(excerpt); len(runes) > notesExcerptLimit {
		excerpt = strings.TrimSpace(string(runes[:notesExcerptLimit])) + "…"
	}

	return excerpt, nil
}

func (e *NotesEnricher) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
