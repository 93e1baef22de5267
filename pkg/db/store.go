package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Lookup kinds stored in the cache.
const (
	LookupKindWord  = "word"
	LookupKindKanji = "kanji"
)

// GetLookup returns the cached payload for a query, if present.
func GetLookup(db DBExecutor, kind, query string) (string, bool, error) {
	var payload string
	err := db.QueryRow(`SELECT payload FROM lookups WHERE kind = ? AND query = ?`, kind, query).Scan(&payload)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return payload, true, nil
}

// PutLookup stores (or refreshes) the cached payload for a query.
func PutLookup(db DBExecutor, kind, query, payload string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query must be non-empty")
	}
	_, err := db.Exec(`INSERT INTO lookups (kind, query, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, query) DO UPDATE SET
		  payload = excluded.payload,
		  fetched_at = excluded.fetched_at`,
		kind, query, payload, time.Now())
	if err != nil {
		return fmt.Errorf("upsert lookup: %w", err)
	}
	return nil
}

// SyncRecord is one journal entry for a completed pipeline run.
type SyncRecord struct {
	ID              int64
	Word            string
	VocabStatus     string
	KanjiCreated    int
	RadicalsCreated int
	Fallback        string
	SyncedAt        time.Time
}

// RecordSync appends a journal entry for a completed run.
func RecordSync(db DBExecutor, rec SyncRecord) (int64, error) {
	if strings.TrimSpace(rec.Word) == "" {
		return 0, fmt.Errorf("word must be non-empty")
	}
	res, err := db.Exec(`INSERT INTO sync_log (word, vocab_status, kanji_created, radicals_created, fallback)
		VALUES (?, ?, ?, ?, ?)`,
		rec.Word, rec.VocabStatus, rec.KanjiCreated, rec.RadicalsCreated, rec.Fallback)
	if err != nil {
		return 0, fmt.Errorf("record sync: %w", err)
	}
	return res.LastInsertId()
}

// RecentSyncs returns the latest journal entries, newest first.
func RecentSyncs(db DBExecutor, limit int) ([]SyncRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`SELECT id, word, vocab_status, kanji_created, radicals_created, fallback, synced_at
		FROM sync_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SyncRecord
	for rows.Next() {
		var rec SyncRecord
		if err := rows.Scan(&rec.ID, &rec.Word, &rec.VocabStatus, &rec.KanjiCreated, &rec.RadicalsCreated, &rec.Fallback, &rec.SyncedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
