package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	prerrors "github.com/ryo246912/gh-pr-report/internal/errors"
	"github.com/ryo246912/gh-pr-report/internal/models"
)

const (
	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL = "https://api.github.com/"

	// MaxPageSize is the largest per_page the pulls endpoint honours.
	MaxPageSize = 100

	apiVersion    = "2022-11-28"
	jsonMediaType = "application/vnd.github+json"
	diffMediaType = "application/vnd.github.diff"

	maxDiffBytes = 10 << 20
)

// Options configures a Client
type Options struct {
	// BaseURL of the REST API. Defaults to DefaultAPIURL.
	BaseURL string
	// Token is optional; without it requests are unauthenticated.
	Token   string
	Timeout time.Duration
	// Transport overrides http.DefaultTransport, mainly for tests.
	Transport http.RoundTripper
}

// Client wraps the GitHub REST API
type Client struct {
	http          *http.Client
	baseURL       *url.URL
	authenticated bool
}

func NewClient(opts Options) (*Client, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultAPIURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	baseURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", opts.BaseURL, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: scheme and host are required", opts.BaseURL)
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		http: &http.Client{
			Transport: &authTransport{token: opts.Token, base: base},
			Timeout:   opts.Timeout,
		},
		baseURL:       baseURL,
		authenticated: opts.Token != "",
	}, nil
}

// HTTPClient returns the authenticated HTTP client so other API clients can
// share its transport.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Authenticated reports whether requests carry a token
func (c *Client) Authenticated() bool {
	return c.authenticated
}

// ListPullRequests fetches one page of pull requests in all states, newest
// created first.
func (c *Client) ListPullRequests(ctx context.Context, owner, repo string, page, perPage int) ([]models.PullRequest, error) {
	endpoint := c.baseURL.JoinPath("repos", owner, repo, "pulls")
	endpoint.RawQuery = url.Values{
		"state":     {"all"},
		"sort":      {"created"},
		"direction": {"desc"},
		"per_page":  {strconv.Itoa(perPage)},
		"page":      {strconv.Itoa(page)},
	}.Encode()

	resp, err := c.get(ctx, endpoint.String(), jsonMediaType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull requests page %d: %w", page, err)
	}
	defer resp.Body.Close()

	var items []pullRequestResponse
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode pull requests page %d: %w", page, err)
	}

	prs := make([]models.PullRequest, 0, len(items))
	for _, item := range items {
		prs = append(prs, item.toModel())
	}
	return prs, nil
}

// GetPullRequestDiff fetches the diff of a single pull request. The diff is
// selected through the Accept media type on the regular pull request endpoint.
func (c *Client) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	endpoint := c.baseURL.JoinPath("repos", owner, repo, "pulls", strconv.Itoa(number))

	resp, err := c.get(ctx, endpoint.String(), diffMediaType)
	if err != nil {
		return "", fmt.Errorf("failed to fetch diff for #%d: %w", number, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(&limitedReader{ReadCloser: resp.Body, limit: maxDiffBytes})
	if err != nil {
		return "", fmt.Errorf("failed to read diff for #%d: %w", number, err)
	}
	return string(body), nil
}

// get issues a GET and returns the response only for 2xx statuses. The
// caller closes the body.
func (c *Client) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", prerrors.ErrNetworkFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newAPIError(resp)
	}
	return resp, nil
}
