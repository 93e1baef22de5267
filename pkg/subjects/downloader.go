package subjects

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// DefaultAPIBaseURL is the WaniKani v2 API root.
const DefaultAPIBaseURL = "https://api.wanikani.com/v2"

// Downloader fetches the complete subject collection from the WaniKani
// API, page by page, to produce the snapshot file consumed by Load.
type Downloader struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewDownloader creates a downloader authenticating with the given API
// token.
func NewDownloader(token string) *Downloader {
	return &Downloader{
		BaseURL:    DefaultAPIBaseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type subjectsPage struct {
	Data  []json.RawMessage `json:"data"`
	Pages struct {
		NextURL *string `json:"next_url"`
	} `json:"pages"`
}

// Download walks the paginated subject collection and returns the raw
// subject records. Records are kept as raw JSON so the snapshot file
// preserves fields this tool does not model.
func (d *Downloader) Download(ctx context.Context) ([]json.RawMessage, error) {
	var all []json.RawMessage
	next := d.BaseURL + "/subjects"
	for next != "" {
		page, err := d.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if page.Pages.NextURL == nil {
			break
		}
		next = *page.Pages.NextURL
	}
	return all, nil
}

// DownloadToFile downloads all subjects and writes them as a single JSON
// array, the snapshot format. Returns the number of subjects written.
func (d *Downloader) DownloadToFile(ctx context.Context, path string) (int, error) {
	all, err := d.Download(ctx)
	if err != nil {
		return 0, err
	}
	out, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return 0, fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return len(all), nil
}

func (d *Downloader) fetchPage(ctx context.Context, url string) (*subjectsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+d.Token)

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("subjects api returned status: %s", resp.Status)
	}

	var page subjectsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode subjects page: %w", err)
	}
	return &page, nil
}
