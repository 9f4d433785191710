package github

import (
	"context"
	"fmt"
	"net/http"

	graphql "github.com/cli/shurcooL-graphql"
)

// DefaultGraphQLURL is the public GitHub GraphQL endpoint.
const DefaultGraphQLURL = "https://api.github.com/graphql"

// GraphQLClient answers repository-level questions the REST listing cannot
// answer in one request. It requires an authenticated HTTP client.
type GraphQLClient struct {
	gql *graphql.Client
}

// NewGraphQLClient creates a client for endpoint that sends requests through
// httpClient, typically Client.HTTPClient().
func NewGraphQLClient(endpoint string, httpClient *http.Client) *GraphQLClient {
	if endpoint == "" {
		endpoint = DefaultGraphQLURL
	}
	return &GraphQLClient{gql: graphql.NewClient(endpoint, httpClient)}
}

// RepositoryStats fetches the total number of pull requests in owner/repo.
func (c *GraphQLClient) RepositoryStats(ctx context.Context, owner, repo string) (*RepositoryStats, error) {
	var q struct {
		Repository struct {
			PullRequests struct {
				TotalCount graphql.Int
			}
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	variables := map[string]interface{}{
		"owner": graphql.String(owner),
		"repo":  graphql.String(repo),
	}

	if err := c.gql.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to fetch repository stats: %w", err)
	}

	return &RepositoryStats{
		TotalPullRequests: int(q.Repository.PullRequests.TotalCount),
	}, nil
}
