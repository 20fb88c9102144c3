package nexus

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hasura/go-graphql-client"
)

const graphqlEndpoint = "https://api.nexusmods.com/v2/graphql"

// Client wraps the Nexus Mods GraphQL API.
type Client struct {
	gql    *graphql.Client
	apiKey string
}

// NewClient creates a Nexus API client. The API key, when set, is attached
// to every request.
func NewClient(httpClient *http.Client, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	transport := &apiKeyTransport{
		base:   httpClient.Transport,
		apiKey: apiKey,
	}
	authed := &http.Client{Transport: transport}
	return &Client{
		gql:    graphql.NewClient(graphqlEndpoint, authed),
		apiKey: apiKey,
	}
}

type apiKeyTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.apiKey != "" {
		req.Header.Set("apikey", t.apiKey)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// GetMod fetches one mod by game domain and numeric ID.
func (c *Client) GetMod(ctx context.Context, gameSlug string, modID int) (*ModData, error) {
	var query struct {
		Mod ModData `graphql:"mod(gameId: $gameId, modId: $modId)"`
	}
	variables := map[string]interface{}{
		"gameId": graphql.String(gameSlug),
		"modId":  graphql.Int(modID),
	}
	if err := c.gql.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("querying mod: %w", err)
	}
	return &query.Mod, nil
}

// SearchMods finds mods whose name matches the search text.
func (c *Client) SearchMods(ctx context.Context, gameSlug, search string, limit int) ([]ModData, error) {
	var query struct {
		Mods struct {
			Nodes []ModData `graphql:"nodes"`
		} `graphql:"mods(gameId: $gameId, filter: {name: $name}, first: $first)"`
	}
	variables := map[string]interface{}{
		"gameId": graphql.String(gameSlug),
		"name":   graphql.String(search),
		"first":  graphql.Int(limit),
	}
	if err := c.gql.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("searching mods: %w", err)
	}
	return query.Mods.Nodes, nil
}
