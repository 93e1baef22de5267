package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// maxBodySize caps article downloads to keep untrusted URLs from
// exhausting memory.
const maxBodySize = 10 * 1024 * 1024

// Article is the readable content extracted from a page.
type Article struct {
	Title string
	Text  string
}

// FetchArticle downloads a page and extracts its readable text. Requests
// carry browser headers since news sites commonly block obvious
// non-browser clients.
func FetchArticle(ctx context.Context, client *http.Client, pageURL string) (*Article, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")
	req.Header.Set("Referer", "https://www.google.com/")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s returned status: %s", pageURL, resp.Status)
	}
	if resp.ContentLength > maxBodySize {
		return nil, fmt.Errorf("fetch %s: content length %d exceeds %d byte limit", pageURL, resp.ContentLength, maxBodySize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}
	if int64(len(body)) >= maxBodySize {
		return nil, fmt.Errorf("fetch %s: body exceeds %d byte limit", pageURL, maxBodySize)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	return ReadArticle(bytes.NewReader(SanitizeRuby(body)), parsed)
}

// ReadArticle extracts the readable text from raw HTML. The URL helps
// readability resolve relative links and may be nil-equivalent
// (a placeholder) for local files.
func ReadArticle(r io.Reader, u *url.URL) (*Article, error) {
	article, err := readability.FromReader(r, u)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}
	return &Article{Title: article.Title, Text: article.TextContent}, nil
}
