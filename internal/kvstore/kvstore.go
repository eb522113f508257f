// Package kvstore implements the durable map underneath the state layer: a
// flat key→scalar table on a local SQLite database, optionally encrypted
// with SQLCipher. Every put is a single synchronous durable commit; there is
// no batching and no cross-key transaction.
package kvstore

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/studykit/devicestate/internal/errs"
)

const (
	// DefaultFileName is the settings database filename inside the data directory.
	DefaultFileName = "settings.db"

	// KeySize is the required SQLCipher key length in bytes.
	KeySize = 32

	// maxOpenConns stays low: SQLite is single-writer and the store is a
	// single process-local map, not a connection-pooled service.
	maxOpenConns = 2
	maxIdleConns = 1
)

// Map is the durable key-value store. All methods are safe for concurrent
// use; individual writes are serialized by SQLite itself.
type Map struct {
	db *sql.DB
}

// NewFromSQL wraps an existing sql.DB as a Map. The settings schema must
// already be applied. Used by the test constructors.
func NewFromSQL(db *sql.DB) *Map {
	return &Map{db: db}
}

// Open creates or opens the settings database in dir. A non-empty key
// enables SQLCipher encryption and must be exactly KeySize bytes. The schema
// is applied idempotently and the connection is verified before returning.
func Open(dir string, key []byte) (*Map, error) {
	if len(key) != 0 && len(key) != KeySize {
		return nil, errs.New(errs.InvalidArgument,
			fmt.Sprintf("store key must be %d bytes, got %d", KeySize, len(key)))
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, errs.Wrap(errs.Unavailable, "create data directory", err)
	}

	dsn := filepath.Join(dir, DefaultFileName)
	if len(key) > 0 {
		dsn = fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", dsn, hex.EncodeToString(key))
	}
	dsn = appendParams(dsn, commonParams())

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "open settings database", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	// A trivial query verifies both the connection and, when encrypted,
	// that the key actually decrypts the file.
	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.Unavailable, "verify settings database", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.Unavailable, "initialize settings schema", err)
	}

	return &Map{db: db}, nil
}

// Close closes the underlying database.
func (m *Map) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// raw returns the stored text for key. ok is false when the key is absent.
func (m *Map) raw(key string) (string, bool, error) {
	var value string
	err := m.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.Wrap(errs.Unavailable, "read setting "+key, err)
	}
	return value, true, nil
}

// put writes one key durably. INSERT OR REPLACE commits immediately; setters
// never batch writes.
func (m *Map) put(key, value string) error {
	if _, err := m.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
		return errs.Wrap(errs.Unavailable, "write setting "+key, err)
	}
	return nil
}

// Sync performs an empty write transaction. Used by the facade's open path
// to prove the database is writable before any caller depends on it.
func (m *Map) Sync() error {
	tx, err := m.db.Begin()
	if err != nil {
		return errs.Wrap(errs.Unavailable, "settings database not writable", err)
	}
	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.Unavailable, "settings database commit failed", err)
	}
	return nil
}

// Delete removes key. Removing an absent key is not an error at this layer;
// the registry enforces its own invariants above.
func (m *Map) Delete(key string) error {
	if _, err := m.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return errs.Wrap(errs.Unavailable, "delete setting "+key, err)
	}
	return nil
}

// Has reports whether key is present.
func (m *Map) Has(key string) (bool, error) {
	_, ok, err := m.raw(key)
	return ok, err
}

// Keys returns all keys with the given prefix, sorted. An empty prefix
// returns every key.
func (m *Map) Keys(prefix string) ([]string, error) {
	query := `SELECT key FROM settings ORDER BY key`
	args := []any{}
	if prefix != "" {
		query = `SELECT key FROM settings WHERE key LIKE ? || '%' ESCAPE '\' ORDER BY key`
		args = append(args, escapeLike(prefix))
	}
	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "list settings", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errs.Wrap(errs.Unavailable, "scan settings key", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.Unavailable, "iterate settings keys", err)
	}
	return keys, nil
}

// GetString returns the string stored under key. ok is false when absent.
func (m *Map) GetString(key string) (string, bool, error) {
	return m.raw(key)
}

// PutString stores a string under key with an immediate durable commit.
func (m *Map) PutString(key, value string) error {
	return m.put(key, value)
}

// GetBool returns the bool stored under key.
func (m *Map) GetBool(key string) (bool, bool, error) {
	raw, ok, err := m.raw(key)
	if err != nil || !ok {
		return false, ok, err
	}
	v, perr := strconv.ParseBool(raw)
	if perr != nil {
		return false, false, errs.Wrap(errs.DecodeError, "setting "+key+" is not a bool", perr)
	}
	return v, true, nil
}

// PutBool stores a bool under key.
func (m *Map) PutBool(key string, value bool) error {
	return m.put(key, strconv.FormatBool(value))
}

// GetInt returns the int stored under key.
func (m *Map) GetInt(key string) (int, bool, error) {
	raw, ok, err := m.raw(key)
	if err != nil || !ok {
		return 0, ok, err
	}
	v, perr := strconv.Atoi(raw)
	if perr != nil {
		return 0, false, errs.Wrap(errs.DecodeError, "setting "+key+" is not an int", perr)
	}
	return v, true, nil
}

// PutInt stores an int under key.
func (m *Map) PutInt(key string, value int) error {
	return m.put(key, strconv.Itoa(value))
}

// GetInt64 returns the int64 stored under key.
func (m *Map) GetInt64(key string) (int64, bool, error) {
	raw, ok, err := m.raw(key)
	if err != nil || !ok {
		return 0, ok, err
	}
	v, perr := strconv.ParseInt(raw, 10, 64)
	if perr != nil {
		return 0, false, errs.Wrap(errs.DecodeError, "setting "+key+" is not an int64", perr)
	}
	return v, true, nil
}

// PutInt64 stores an int64 under key.
func (m *Map) PutInt64(key string, value int64) error {
	return m.put(key, strconv.FormatInt(value, 10))
}

// GetFloat64 returns the float stored under key.
func (m *Map) GetFloat64(key string) (float64, bool, error) {
	raw, ok, err := m.raw(key)
	if err != nil || !ok {
		return 0, ok, err
	}
	v, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return 0, false, errs.Wrap(errs.DecodeError, "setting "+key+" is not a float", perr)
	}
	return v, true, nil
}

// PutFloat64 stores a float under key.
func (m *Map) PutFloat64(key string, value float64) error {
	return m.put(key, strconv.FormatFloat(value, 'g', -1, 64))
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func commonParams() string {
	// WAL + FULL keeps every commit durable, matching the per-write commit
	// contract of the original SharedPreferences-backed store.
	return "_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"
}

func appendParams(dsn, params string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}
