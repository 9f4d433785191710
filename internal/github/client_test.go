package github

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prerrors "github.com/ryo246912/gh-pr-report/internal/errors"
	"github.com/ryo246912/gh-pr-report/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{BaseURL: server.URL, Token: token, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

func TestClient_ListPullRequests(t *testing.T) {
	var gotPath, gotQuery, gotAuth, gotAccept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"number": 42,
				"title": "Add pagination",
				"state": "closed",
				"user": {"login": "octocat"},
				"html_url": "https://github.com/owner/repo/pull/42",
				"created_at": "2024-03-01T12:00:00Z",
				"merged_at": "2024-03-02T08:30:00Z",
				"closed_at": "2024-03-02T08:30:00Z"
			},
			{
				"number": 41,
				"title": "Ghost author",
				"state": "open",
				"user": null,
				"html_url": "https://github.com/owner/repo/pull/41",
				"created_at": "2024-02-28T09:15:00Z",
				"merged_at": null
			}
		]`))
	}, "secret-token")

	prs, err := client.ListPullRequests(context.Background(), "owner", "repo", 2, 30)
	require.NoError(t, err)
	require.Len(t, prs, 2)

	assert.Equal(t, "/repos/owner/repo/pulls", gotPath)
	assert.Equal(t, "direction=desc&page=2&per_page=30&sort=created&state=all", gotQuery)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, jsonMediaType, gotAccept)

	first := prs[0]
	assert.Equal(t, 42, first.Number)
	assert.Equal(t, "Add pagination", first.Title)
	assert.Equal(t, models.StateClosed, first.State)
	login, ok := first.Author.Get()
	assert.True(t, ok)
	assert.Equal(t, "octocat", login)
	merged, ok := first.MergedAt.Get()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC), merged)

	second := prs[1]
	_, ok = second.Author.Get()
	assert.False(t, ok, "null user should leave the author absent")
	_, ok = second.MergedAt.Get()
	assert.False(t, ok, "null merged_at should be absent")
	_, ok = second.ClosedAt.Get()
	assert.False(t, ok, "missing closed_at should be absent")
}

func TestClient_ListPullRequests_Unauthenticated(t *testing.T) {
	var gotAuth string
	var sawAuth bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, sawAuth = r.Header["Authorization"]
		_, _ = w.Write([]byte(`[]`))
	}, "")

	prs, err := client.ListPullRequests(context.Background(), "owner", "repo", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, prs)
	assert.False(t, sawAuth)
	assert.Empty(t, gotAuth)
	assert.False(t, client.Authenticated())
}

func TestClient_ListPullRequests_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		headers  map[string]string
		body     string
		sentinel error
	}{
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     `{"message": "Not Found"}`,
			sentinel: prerrors.ErrNotFound,
		},
		{
			name:     "bad credentials",
			status:   http.StatusUnauthorized,
			body:     `{"message": "Bad credentials"}`,
			sentinel: prerrors.ErrUnauthorized,
		},
		{
			name:     "primary rate limit",
			status:   http.StatusForbidden,
			headers:  map[string]string{"X-RateLimit-Remaining": "0"},
			body:     `{"message": "API rate limit exceeded"}`,
			sentinel: prerrors.ErrRateLimit,
		},
		{
			name:     "secondary rate limit",
			status:   http.StatusTooManyRequests,
			sentinel: prerrors.ErrRateLimit,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `oops`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, "token")

			_, err := client.ListPullRequests(context.Background(), "owner", "repo", 1, 10)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestClient_ListPullRequests_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	}, "")

	_, err := client.ListPullRequests(context.Background(), "owner", "repo", 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode pull requests page 1")
}

func TestClient_ListPullRequests_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := NewClient(Options{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.ListPullRequests(context.Background(), "owner", "repo", 1, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, prerrors.ErrNetworkFailure)
}

func TestClient_GetPullRequestDiff(t *testing.T) {
	const diff = "diff --git a/main.go b/main.go\n+fmt.Println(\"hi\")\n"

	var gotPath, gotAccept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(diff))
	}, "token")

	got, err := client.GetPullRequestDiff(context.Background(), "owner", "repo", 42)
	require.NoError(t, err)
	assert.Equal(t, diff, got)
	assert.Equal(t, "/repos/owner/repo/pulls/42", gotPath)
	assert.Equal(t, diffMediaType, gotAccept)
}

func TestClient_GetPullRequestDiff_Failure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, "")

	_, err := client.GetPullRequestDiff(context.Background(), "owner", "repo", 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, prerrors.ErrNotFound)
	assert.Contains(t, err.Error(), "#7")
}

func TestClient_BaseURLWithPathPrefix(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, err := NewClient(Options{BaseURL: server.URL + "/api/v3"})
	require.NoError(t, err)

	_, err = client.ListPullRequests(context.Background(), "owner", "repo", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, "/api/v3/repos/owner/repo/pulls", gotPath)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "not a url"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid API URL"))
}

func TestLimitedReader(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		limit   int64
		wantErr bool
	}{
		{name: "under limit", body: "abc", limit: 10},
		{name: "exactly at limit", body: "abcde", limit: 5},
		{name: "over limit", body: "abcdef", limit: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &limitedReader{ReadCloser: io.NopCloser(strings.NewReader(tt.body)), limit: tt.limit}
			buf := new(strings.Builder)
			_, err := io.Copy(buf, rc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.body, buf.String())
		})
	}
}
