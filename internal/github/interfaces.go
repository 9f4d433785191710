package github

import (
	"context"

	"github.com/ryo246912/gh-pr-report/internal/models"
)

// GitHubClient defines the REST operations the report pipeline needs
type GitHubClient interface {
	ListPullRequests(ctx context.Context, owner, repo string, page, perPage int) ([]models.PullRequest, error)
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
}

// StatsClient provides repository-level metadata
type StatsClient interface {
	RepositoryStats(ctx context.Context, owner, repo string) (*RepositoryStats, error)
}

// Ensure implementations satisfy the interfaces
var (
	_ GitHubClient = (*Client)(nil)
	_ StatsClient  = (*GraphQLClient)(nil)
)
