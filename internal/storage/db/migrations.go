package db

import "fmt"

func (d *DB) migrate() error {
	if _, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var version int
	err := d.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return fmt.Errorf("getting schema version: %w", err)
	}

	migrations := []func(*DB) error{
		migrateV1,
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](d); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := d.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

func migrateV1(d *DB) error {
	statements := []string{
		`CREATE TABLE mod_links (
			game_id TEXT NOT NULL,
			mod_id TEXT NOT NULL,
			source_id TEXT NOT NULL,
			remote_id TEXT NOT NULL,
			linked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY(game_id, mod_id)
		)`,
		`CREATE TABLE mod_metadata (
			source_id TEXT NOT NULL,
			remote_id TEXT NOT NULL,
			game_slug TEXT NOT NULL,
			name TEXT NOT NULL,
			summary TEXT,
			author TEXT,
			version TEXT,
			page_url TEXT,
			picture_url TEXT,
			fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY(source_id, remote_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := d.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}
	return nil
}
