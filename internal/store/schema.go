package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
    file_path     TEXT NOT NULL,
    ts            TEXT NOT NULL,
    input_tokens  INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    cache_creation_tokens INTEGER NOT NULL DEFAULT 0,
    cache_read_tokens     INTEGER NOT NULL DEFAULT 0,
    model         TEXT NOT NULL DEFAULT '',
    cost_usd      REAL NOT NULL DEFAULT 0,
    message_id    TEXT NOT NULL DEFAULT '',
    request_id    TEXT NOT NULL DEFAULT '',
    project_path  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entries_file ON entries(file_path);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path     TEXT PRIMARY KEY,
    mtime_ns      INTEGER NOT NULL,
    size_bytes    INTEGER NOT NULL,
    parsed_at     TEXT NOT NULL
);
`
