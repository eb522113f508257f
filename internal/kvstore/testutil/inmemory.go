// Package testutil provides in-memory store constructors for tests.
package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/studykit/devicestate/internal/kvstore"
)

var memCounter atomic.Int64

// NewMapInMemory creates an isolated in-memory settings store. Each call
// gets its own shared-cache database, so parallel tests never collide.
func NewMapInMemory() (*kvstore.Map, error) {
	name := fmt.Sprintf("devicestate-test-%d", memCounter.Add(1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := sql.Open(kvstore.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open in-memory settings database: %w", err)
	}

	// Keep one connection alive for the lifetime of the Map; a shared-cache
	// memory database is dropped when its last connection closes.
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping in-memory settings database: %w", err)
	}

	if err := applyFastPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply fast pragmas: %w", err)
	}

	if _, err := db.Exec(kvstore.Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize in-memory settings schema: %w", err)
	}

	return kvstore.NewFromSQL(db), nil
}

func applyFastPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=MEMORY",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}
