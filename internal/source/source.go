// Package source defines the interface to remote mod repositories that can
// supply metadata for locally installed mods.
package source

import "context"

// Metadata is what a remote repository knows about a mod.
type Metadata struct {
	Source     string // source identifier, e.g. "nexus"
	RemoteID   string // source-specific mod ID
	GameSlug   string // source-specific game domain
	Name       string
	Summary    string
	Author     string
	Version    string
	PageURL    string
	PictureURL string
}

// Query identifies a mod at a remote repository.
type Query struct {
	GameSlug string
	RemoteID string
}

// MetadataSource fetches mod metadata from a remote repository.
type MetadataSource interface {
	// ID returns the source identifier used in metadata records.
	ID() string
	// Lookup fetches metadata for one mod.
	Lookup(ctx context.Context, q Query) (Metadata, error)
	// Search finds mods at the source matching a free-text query.
	Search(ctx context.Context, gameSlug, text string, limit int) ([]Metadata, error)
}
