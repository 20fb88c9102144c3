// Package nexus implements the Nexus Mods metadata source.
package nexus

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"m3m/internal/source"
)

// Nexus implements source.MetadataSource against the Nexus Mods API.
type Nexus struct {
	client *Client
}

// New creates a Nexus Mods source.
func New(httpClient *http.Client, apiKey string) *Nexus {
	return &Nexus{client: NewClient(httpClient, apiKey)}
}

// ID returns the source identifier.
func (n *Nexus) ID() string {
	return "nexus"
}

// Lookup fetches metadata for one mod.
func (n *Nexus) Lookup(ctx context.Context, q source.Query) (source.Metadata, error) {
	modID, err := strconv.Atoi(q.RemoteID)
	if err != nil {
		return source.Metadata{}, fmt.Errorf("nexus mod ID %q: %w", q.RemoteID, err)
	}
	data, err := n.client.GetMod(ctx, q.GameSlug, modID)
	if err != nil {
		return source.Metadata{}, err
	}
	return n.toMetadata(*data, q.GameSlug), nil
}

// Search finds mods matching the text.
func (n *Nexus) Search(ctx context.Context, gameSlug, text string, limit int) ([]source.Metadata, error) {
	if limit <= 0 {
		limit = 20
	}
	results, err := n.client.SearchMods(ctx, gameSlug, text, limit)
	if err != nil {
		return nil, err
	}
	metas := make([]source.Metadata, len(results))
	for i, r := range results {
		metas[i] = n.toMetadata(r, gameSlug)
	}
	return metas, nil
}

func (n *Nexus) toMetadata(d ModData, gameSlug string) source.Metadata {
	if d.Game.DomainName != "" {
		gameSlug = d.Game.DomainName
	}
	return source.Metadata{
		Source:     n.ID(),
		RemoteID:   strconv.Itoa(d.ModID),
		GameSlug:   gameSlug,
		Name:       d.Name,
		Summary:    d.Summary,
		Author:     d.Author,
		Version:    d.Version,
		PageURL:    fmt.Sprintf("https://www.nexusmods.com/%s/mods/%d", gameSlug, d.ModID),
		PictureURL: d.PictureURL,
	}
}
