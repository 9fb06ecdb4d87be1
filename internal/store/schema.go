package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
    kind                 TEXT NOT NULL,
    key                  TEXT NOT NULL,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    payload              BLOB NOT NULL,
    cached_at_ns         INTEGER NOT NULL,
    PRIMARY KEY (kind, key)
);

CREATE INDEX IF NOT EXISTS idx_entries_cached ON entries(cached_at_ns);
`
