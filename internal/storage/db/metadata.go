package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"m3m/internal/source"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ModLink ties a locally installed mod to its page at a remote source.
type ModLink struct {
	GameID   string
	ModID    string
	SourceID string
	RemoteID string
	LinkedAt time.Time
}

// SaveModLink inserts or replaces a mod's source link.
func (d *DB) SaveModLink(link ModLink) error {
	_, err := d.Exec(`
		INSERT INTO mod_links (game_id, mod_id, source_id, remote_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(game_id, mod_id) DO UPDATE SET
			source_id = excluded.source_id,
			remote_id = excluded.remote_id,
			linked_at = CURRENT_TIMESTAMP
	`, link.GameID, link.ModID, link.SourceID, link.RemoteID)
	if err != nil {
		return fmt.Errorf("saving mod link: %w", err)
	}
	return nil
}

// GetModLink returns the source link for one mod.
func (d *DB) GetModLink(gameID, modID string) (*ModLink, error) {
	link := &ModLink{GameID: gameID, ModID: modID}
	err := d.QueryRow(`
		SELECT source_id, remote_id, linked_at
		FROM mod_links WHERE game_id = ? AND mod_id = ?
	`, gameID, modID).Scan(&link.SourceID, &link.RemoteID, &link.LinkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting mod link: %w", err)
	}
	return link, nil
}

// GetModLinks returns all source links for a game.
func (d *DB) GetModLinks(gameID string) ([]ModLink, error) {
	rows, err := d.Query(`
		SELECT mod_id, source_id, remote_id, linked_at
		FROM mod_links WHERE game_id = ? ORDER BY mod_id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("listing mod links: %w", err)
	}
	defer rows.Close()

	var links []ModLink
	for rows.Next() {
		link := ModLink{GameID: gameID}
		if err := rows.Scan(&link.ModID, &link.SourceID, &link.RemoteID, &link.LinkedAt); err != nil {
			return nil, fmt.Errorf("scanning mod link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// DeleteModLink removes a mod's source link.
func (d *DB) DeleteModLink(gameID, modID string) error {
	res, err := d.Exec(`DELETE FROM mod_links WHERE game_id = ? AND mod_id = ?`, gameID, modID)
	if err != nil {
		return fmt.Errorf("deleting mod link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveMetadata inserts or refreshes a cached metadata record.
func (d *DB) SaveMetadata(m source.Metadata) error {
	_, err := d.Exec(`
		INSERT INTO mod_metadata (source_id, remote_id, game_slug, name, summary, author, version, page_url, picture_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, remote_id) DO UPDATE SET
			game_slug = excluded.game_slug,
			name = excluded.name,
			summary = excluded.summary,
			author = excluded.author,
			version = excluded.version,
			page_url = excluded.page_url,
			picture_url = excluded.picture_url,
			fetched_at = CURRENT_TIMESTAMP
	`, m.Source, m.RemoteID, m.GameSlug, m.Name, m.Summary, m.Author, m.Version, m.PageURL, m.PictureURL)
	if err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}
	return nil
}

// GetMetadata returns a cached metadata record and when it was fetched.
func (d *DB) GetMetadata(sourceID, remoteID string) (source.Metadata, time.Time, error) {
	m := source.Metadata{Source: sourceID, RemoteID: remoteID}
	var fetchedAt time.Time
	err := d.QueryRow(`
		SELECT game_slug, name, summary, author, version, page_url, picture_url, fetched_at
		FROM mod_metadata WHERE source_id = ? AND remote_id = ?
	`, sourceID, remoteID).Scan(&m.GameSlug, &m.Name, &m.Summary, &m.Author, &m.Version, &m.PageURL, &m.PictureURL, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return source.Metadata{}, time.Time{}, ErrNotFound
	}
	if err != nil {
		return source.Metadata{}, time.Time{}, fmt.Errorf("getting metadata: %w", err)
	}
	return m, fetchedAt, nil
}
