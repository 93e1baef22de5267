package db

// migrationsSQL holds the schema. Statements are idempotent so InitDB
// can run on every start.
const migrationsSQL = `
CREATE TABLE IF NOT EXISTS lookups (
    kind TEXT NOT NULL,
    query TEXT NOT NULL,
    payload TEXT NOT NULL,
    fetched_at DATETIME NOT NULL,
    PRIMARY KEY (kind, query)
);

CREATE TABLE IF NOT EXISTS sync_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    word TEXT NOT NULL,
    vocab_status TEXT NOT NULL,
    kanji_created INTEGER NOT NULL DEFAULT 0,
    radicals_created INTEGER NOT NULL DEFAULT 0,
    fallback TEXT NOT NULL DEFAULT '',
    synced_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sync_log_word ON sync_log(word);
`
