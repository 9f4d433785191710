package github

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/opt/null"
	"github.com/ryo246912/gh-pr-report/internal/models"
)

// PageCall records the arguments of one ListPullRequests call
type PageCall struct {
	Page    int
	PerPage int
}

// MockClient implements GitHubClient for testing. Upstream holds every pull
// request the fake repository has, newest first, and pages are sliced out of
// it the same way the REST API does: offset = (page-1)*perPage.
type MockClient struct {
	// Control test behavior
	Upstream   []models.PullRequest
	PageErrors map[int]error
	Diffs      map[int]string
	DiffErrors map[int]error

	// Track method calls
	PageCalls []PageCall
	DiffCalls []int

	// Store call arguments for verification
	LastOwner string
	LastRepo  string
}

// ListPullRequests mocks the paginated listing endpoint
func (m *MockClient) ListPullRequests(ctx context.Context, owner, repo string, page, perPage int) ([]models.PullRequest, error) {
	m.PageCalls = append(m.PageCalls, PageCall{Page: page, PerPage: perPage})
	m.LastOwner = owner
	m.LastRepo = repo

	if err, ok := m.PageErrors[page]; ok {
		return nil, err
	}

	start := (page - 1) * perPage
	if start >= len(m.Upstream) {
		return []models.PullRequest{}, nil
	}
	end := min(start+perPage, len(m.Upstream))

	out := make([]models.PullRequest, end-start)
	copy(out, m.Upstream[start:end])
	return out, nil
}

// GetPullRequestDiff mocks the diff media type request
func (m *MockClient) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	m.DiffCalls = append(m.DiffCalls, number)
	m.LastOwner = owner
	m.LastRepo = repo

	if err, ok := m.DiffErrors[number]; ok {
		return "", err
	}
	if diff, ok := m.Diffs[number]; ok {
		return diff, nil
	}
	return fmt.Sprintf("diff --git a/file%d.go b/file%d.go\n", number, number), nil
}

// Reset clears all tracking data for fresh test
func (m *MockClient) Reset() {
	m.PageCalls = nil
	m.DiffCalls = nil
	m.LastOwner = ""
	m.LastRepo = ""
}

// MockStatsClient implements StatsClient for testing
type MockStatsClient struct {
	Stats  *RepositoryStats
	Err    error
	Called bool
}

// RepositoryStats mocks the GraphQL stats query
func (m *MockStatsClient) RepositoryStats(ctx context.Context, owner, repo string) (*RepositoryStats, error) {
	m.Called = true
	return m.Stats, m.Err
}

// CreateTestPRs returns count pull requests numbered count down to 1, newest
// first. Every third one is merged and every other one has no author.
func CreateTestPRs(count int) []models.PullRequest {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	prs := make([]models.PullRequest, count)
	for i := 0; i < count; i++ {
		number := count - i
		created := base.Add(time.Duration(number) * time.Hour)
		pr := models.PullRequest{
			Number:    number,
			Title:     fmt.Sprintf("Test PR #%d", number),
			State:     models.StateOpen,
			HTMLURL:   fmt.Sprintf("https://github.com/owner/repo/pull/%d", number),
			CreatedAt: null.From(created),
		}
		if i%2 == 0 {
			pr.Author = null.From(fmt.Sprintf("user%d", number))
		}
		if i%3 == 0 {
			closed := created.Add(30 * time.Minute)
			pr.State = models.StateClosed
			pr.MergedAt = null.From(closed)
			pr.ClosedAt = null.From(closed)
		}
		prs[i] = pr
	}
	return prs
}

// Error helpers for testing error conditions
func NewAPIError(status int, message string) error {
	return &APIError{StatusCode: status, Message: message, URL: "https://api.github.com/test"}
}

func NewNetworkError() error {
	return fmt.Errorf("network connection failed")
}

var _ GitHubClient = (*MockClient)(nil)
var _ StatsClient = (*MockStatsClient)(nil)
