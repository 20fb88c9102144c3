package nexus

// ModData is the GraphQL mod node shape we select.
type ModData struct {
	ModID      int    `graphql:"modId"`
	Name       string `graphql:"name"`
	Summary    string `graphql:"summary"`
	Author     string `graphql:"author"`
	Version    string `graphql:"version"`
	PictureURL string `graphql:"pictureUrl"`
	Game       struct {
		DomainName string `graphql:"domainName"`
	} `graphql:"game"`
}
