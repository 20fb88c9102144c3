// Package db persists the manager's mod metadata: links from local mods to
// their remote source pages, plus a cache of fetched source metadata.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB is a handle on the metadata database. It embeds *sql.DB, so the typed
// accessors in metadata.go and ad-hoc queries share one connection pool.
type DB struct {
	*sql.DB
}

// Open opens the sqlite file at path, creating it when absent, and brings
// the schema up to date before returning the handle.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	d := &DB{DB: conn}
	if err := d.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return d, nil
}
