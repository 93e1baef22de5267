// Package anki talks to an AnkiConnect endpoint: a local HTTP service
// accepting {action, version, params} requests. Only the three actions
// the card pipeline needs are implemented: findNotes, addNote, and
// storeMediaFile.
package anki

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// ProtocolVersion is the AnkiConnect API version every request carries.
const ProtocolVersion = 6

// DefaultAddress is the AnkiConnect default bind address.
const DefaultAddress = "http://127.0.0.1:8765"

// Status classifies the outcome of a write action. AnkiConnect reports a
// suppressed duplicate (or an unchanged media file) as a null result; the
// store offers no way to tell that apart from some failures, so null is
// always read as AlreadyExists.
type Status int

const (
	StatusCreated Status = iota
	StatusAlreadyExists
)

func (s Status) String() string {
	if s == StatusCreated {
		return "created"
	}
	return "already exists"
}

// Note is one flashcard record to create. Notes are write-once: the
// pipeline never updates or merges an existing note.
type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Options   NoteOptions       `json:"options"`
	Tags      []string          `json:"tags"`
}

// NoteOptions carries per-note creation flags.
type NoteOptions struct {
	AllowDuplicate bool `json:"allowDuplicate"`
}

// NewNote builds a note with duplicate suppression on, the only mode the
// pipeline uses.
func NewNote(deck, model string, fields map[string]string) Note {
	return Note{
		DeckName:  deck,
		ModelName: model,
		Fields:    fields,
		Options:   NoteOptions{AllowDuplicate: false},
		Tags:      []string{},
	}
}

// AddResult is the typed outcome of addNote.
type AddResult struct {
	Status Status
	ID     int64 // note id, only meaningful when Status is StatusCreated
}

// StoreResult is the typed outcome of storeMediaFile.
type StoreResult struct {
	Status   Status
	Filename string // stored filename, only meaningful on StatusCreated
}

// Client issues AnkiConnect actions.
type Client struct {
	Address    string
	HTTPClient *http.Client
}

// NewClient creates a client for the given AnkiConnect address.
func NewClient(address string) *Client {
	if address == "" {
		address = DefaultAddress
	}
	return &Client{
		Address:    address,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type request struct {
	Action  string      `json:"action"`
	Version int         `json:"version"`
	Params  interface{} `json:"params,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// FindNotes queries for note ids matching an Anki search string, e.g.
// `deck:Vocabs front:食べる`. An empty slice means no match.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	res, err := c.do(ctx, "findNotes", map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	if isNull(res) {
		return nil, nil
	}
	var ids []int64
	if err := json.Unmarshal(res, &ids); err != nil {
		return nil, fmt.Errorf("anki: decode findNotes result: %w", err)
	}
	return ids, nil
}

// AddNote creates a note. A null result means the store suppressed a
// duplicate, reported as StatusAlreadyExists.
func (c *Client) AddNote(ctx context.Context, note Note) (AddResult, error) {
	res, err := c.do(ctx, "addNote", map[string]Note{"note": note})
	if err != nil {
		return AddResult{}, err
	}
	if isNull(res) {
		return AddResult{Status: StatusAlreadyExists}, nil
	}
	var id int64
	if err := json.Unmarshal(res, &id); err != nil {
		return AddResult{}, fmt.Errorf("anki: decode addNote result: %w", err)
	}
	return AddResult{Status: StatusCreated, ID: id}, nil
}

// StoreMediaFile uploads data under filename. A null result means the
// store already holds identical content under that name.
func (c *Client) StoreMediaFile(ctx context.Context, filename string, data []byte) (StoreResult, error) {
	params := map[string]string{
		"filename": filename,
		"data":     base64.StdEncoding.EncodeToString(data),
	}
	res, err := c.do(ctx, "storeMediaFile", params)
	if err != nil {
		return StoreResult{}, err
	}
	if isNull(res) {
		return StoreResult{Status: StatusAlreadyExists}, nil
	}
	var stored string
	if err := json.Unmarshal(res, &stored); err != nil {
		return StoreResult{}, fmt.Errorf("anki: decode storeMediaFile result: %w", err)
	}
	return StoreResult{Status: StatusCreated, Filename: stored}, nil
}

func (c *Client) do(ctx context.Context, action string, params interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(request{Action: action, Version: ProtocolVersion, Params: params})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Address, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anki: %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anki: %s returned status: %s", action, resp.Status)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("anki: decode %s response: %w", action, err)
	}
	// The store cannot disambiguate "duplicate suppressed" from some
	// failures: both surface as a null result. When an error string rides
	// along we log it so the two cases at least read differently.
	if isNull(r.Result) && r.Error != nil && *r.Error != "" {
		log.Printf("anki: %s returned null result with error: %s", action, *r.Error)
	}
	return r.Result, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
