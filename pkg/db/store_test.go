package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Ensure single connection to avoid separate in-memory DBs per connection.
	db.SetMaxOpenConns(1)
	if err := InitDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitDBIdempotent(t *testing.T) {
	db := setupTestDB(t)
	// Running migrations again must not fail.
	if err := InitDB(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestLookupCacheRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	if _, ok, err := GetLookup(db, LookupKindWord, "食べる"); err != nil || ok {
		t.Fatalf("expected cache miss, got ok=%v err=%v", ok, err)
	}

	if err := PutLookup(db, LookupKindWord, "食べる", `{"slug":"食べる"}`); err != nil {
		t.Fatalf("put: %v", err)
	}
	payload, ok, err := GetLookup(db, LookupKindWord, "食べる")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || payload != `{"slug":"食べる"}` {
		t.Fatalf("unexpected cache hit: ok=%v payload=%q", ok, payload)
	}

	// Kinds are independent namespaces.
	if _, ok, _ := GetLookup(db, LookupKindKanji, "食べる"); ok {
		t.Error("word cache entry leaked into kanji kind")
	}

	// Refreshing replaces the payload.
	if err := PutLookup(db, LookupKindWord, "食べる", `{"slug":"v2"}`); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	payload, _, _ = GetLookup(db, LookupKindWord, "食べる")
	if payload != `{"slug":"v2"}` {
		t.Errorf("expected refreshed payload, got %q", payload)
	}
}

func TestPutLookupRejectsEmptyQuery(t *testing.T) {
	db := setupTestDB(t)
	if err := PutLookup(db, LookupKindWord, "  ", "{}"); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSyncJournal(t *testing.T) {
	db := setupTestDB(t)

	id1, err := RecordSync(db, SyncRecord{Word: "食い止める", VocabStatus: "created", KanjiCreated: 2, RadicalsCreated: 2})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	id2, err := RecordSync(db, SyncRecord{Word: "食い止める", VocabStatus: "exists"})
	if err != nil {
		t.Fatalf("record 2: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("expected increasing ids, got %d then %d", id1, id2)
	}

	recs, err := RecentSyncs(db, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	// Newest first.
	if recs[0].VocabStatus != "exists" || recs[1].KanjiCreated != 2 {
		t.Errorf("unexpected order: %+v", recs)
	}
	if recs[0].SyncedAt.IsZero() {
		t.Error("synced_at not populated")
	}
}

func TestRecordSyncRejectsEmptyWord(t *testing.T) {
	db := setupTestDB(t)
	if _, err := RecordSync(db, SyncRecord{Word: ""}); err == nil {
		t.Fatal("expected error for empty word")
	}
}
