// Package jisho queries the jisho.org dictionary API for word senses and
// supplementary kanji data. Lookups enforce an exact-match policy: the
// canonical form returned must equal the query, unless the query carries
// the partial-entry marker 〜.
package jisho

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tenten/pkg/db"
	"tenten/pkg/jptext"
)

// DefaultBaseURL is the public jisho.org endpoint.
const DefaultBaseURL = "https://jisho.org"

// ErrNoExactMatch is returned when the dictionary's canonical form
// disagrees with the queried string and no wildcard exemption applies.
var ErrNoExactMatch = errors.New("no exact dictionary match")

// Sense is one sense group of a dictionary entry.
type Sense struct {
	EnglishDefinitions []string `json:"english_definitions"`
	PartsOfSpeech      []string `json:"parts_of_speech"`
}

// JapaneseForm is one surface/reading pair of a dictionary entry.
type JapaneseForm struct {
	Word    string `json:"word"`
	Reading string `json:"reading"`
}

// WordSense is the dictionary's answer for one surface form.
type WordSense struct {
	Slug     string         `json:"slug"`
	Japanese []JapaneseForm `json:"japanese"`
	Senses   []Sense        `json:"senses"`
}

// KanjiSense is supplementary sense data for a single kanji character.
type KanjiSense struct {
	Character string   `json:"character"`
	Meanings  []string `json:"meanings"`
}

// Client performs dictionary lookups. When Cache is non-nil, responses
// are stored in and served from the local lookup cache, so repeated runs
// for the same word avoid network round-trips.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Cache      *sql.DB
}

// NewClient creates a client against the public jisho.org API.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type searchResponse struct {
	Data []WordSense `json:"data"`
}

// LookupWord fetches sense data for word and applies the exact-match
// gate: the returned slug, or one of its surface/reading pairs, must
// equal the query. Queries containing 〜 are exempt.
func (c *Client) LookupWord(ctx context.Context, word string) (*WordSense, error) {
	if cached, ok, err := c.cacheGet(db.LookupKindWord, word); err == nil && ok {
		var ws WordSense
		if err := json.Unmarshal([]byte(cached), &ws); err == nil {
			return c.gate(&ws, word)
		}
	}

	ws, err := c.search(ctx, word)
	if err != nil {
		return nil, err
	}
	gated, err := c.gate(ws, word)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(gated); err == nil {
		c.cachePut(db.LookupKindWord, word, string(payload))
	}
	return gated, nil
}

// LookupKanji fetches supplementary sense data for a single kanji
// character. Unlike word lookups there is no exact-match gate; the data
// only enriches kanji cards and a loose answer is harmless.
func (c *Client) LookupKanji(ctx context.Context, ch string) (*KanjiSense, error) {
	isKanji, err := jptext.IsKanjiChar(ch)
	if err != nil {
		return nil, err
	}
	if !isKanji {
		return nil, fmt.Errorf("jisho: %q is not a kanji character", ch)
	}

	if cached, ok, err := c.cacheGet(db.LookupKindKanji, ch); err == nil && ok {
		var ks KanjiSense
		if err := json.Unmarshal([]byte(cached), &ks); err == nil {
			return &ks, nil
		}
	}

	ws, err := c.search(ctx, ch)
	if err != nil {
		return nil, err
	}
	ks := &KanjiSense{Character: ch}
	if len(ws.Senses) > 0 {
		ks.Meanings = ws.Senses[0].EnglishDefinitions
	}
	if payload, err := json.Marshal(ks); err == nil {
		c.cachePut(db.LookupKindKanji, ch, string(payload))
	}
	return ks, nil
}

func (c *Client) gate(ws *WordSense, word string) (*WordSense, error) {
	if jptext.HasPartialMarker(word) {
		return ws, nil
	}
	if ws.Slug == word {
		return ws, nil
	}
	for _, jp := range ws.Japanese {
		if jp.Word == word || jp.Reading == word {
			return ws, nil
		}
	}
	return nil, fmt.Errorf("%w: dictionary answered %q for query %q", ErrNoExactMatch, ws.Slug, word)
}

func (c *Client) search(ctx context.Context, keyword string) (*WordSense, error) {
	u := fmt.Sprintf("%s/api/v1/search/words?keyword=%s", c.BaseURL, url.QueryEscape(keyword))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jisho returned status: %s", resp.Status)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode jisho response: %w", err)
	}
	if len(sr.Data) == 0 {
		return nil, fmt.Errorf("%w: no dictionary entry for %q", ErrNoExactMatch, keyword)
	}
	return &sr.Data[0], nil
}

func (c *Client) cacheGet(kind, query string) (string, bool, error) {
	if c.Cache == nil {
		return "", false, nil
	}
	return db.GetLookup(c.Cache, kind, query)
}

func (c *Client) cachePut(kind, query, payload string) {
	if c.Cache == nil {
		return
	}
	// Cache writes are best-effort; a failed write only costs a refetch.
	_ = db.PutLookup(c.Cache, kind, query, payload)
}
