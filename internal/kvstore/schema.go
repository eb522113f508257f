package kvstore

// Schema for the settings database. A single flat table: every stored value
// is text-encoded by the typed accessors, mirroring the string/bool/int/
// int64/float scalar set the store exposes.
const Schema = `
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
