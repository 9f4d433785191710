package service

import (
	"context"
	"fmt"

	prerrors "github.com/ryo246912/gh-pr-report/internal/errors"
	"github.com/ryo246912/gh-pr-report/internal/github"
	"github.com/ryo246912/gh-pr-report/internal/models"
	"go.uber.org/zap"
)

// Decision is the outcome of inspecting one page of results.
type Decision int

const (
	Continue Decision = iota
	StopExhausted
	StopTargetReached
	StopShortPage
	StopPageFailed
)

func (d Decision) String() string {
	switch d {
	case Continue:
		return "continue"
	case StopExhausted:
		return "exhausted"
	case StopTargetReached:
		return "target reached"
	case StopShortPage:
		return "short page"
	case StopPageFailed:
		return "page failed"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// decide inspects the page just received. accumulated already includes it.
func decide(desired, requested, received, accumulated int) Decision {
	switch {
	case received == 0:
		return StopExhausted
	case accumulated >= desired:
		return StopTargetReached
	case received < requested:
		return StopShortPage
	default:
		return Continue
	}
}

// nextQuery returns the page index and per_page for the next request.
// Upstream offsets are (page-1)*per_page, so the final request asks for only
// the remainder when that keeps the offset aligned with what was already
// read. Otherwise it asks for a full page and the result is truncated, so an
// unaligned final request can read up to pageSize-remaining extra records.
func nextQuery(desired, pageSize, accumulated int) (page, perPage int) {
	remaining := desired - accumulated
	if remaining < pageSize && accumulated%remaining == 0 {
		return accumulated/remaining + 1, remaining
	}
	return accumulated/pageSize + 1, pageSize
}

// fetchState is the pagination state between pages.
type fetchState struct {
	accumulated int
	page        int
}

// FetchResult holds the pull requests gathered by Fetch, newest first.
type FetchResult struct {
	PullRequests []models.PullRequest
	Requests     int
	Stop         Decision
	// PartialErr is the failure of a page after the first, if any. The
	// pull requests gathered before it are still returned.
	PartialErr error
}

// Fetcher pages through a repository's pull requests
type Fetcher struct {
	client github.GitHubClient
	pacer  *Pacer
	log    *zap.SugaredLogger
}

// NewFetcher creates a Fetcher. The pacer is shared with the DiffFetcher.
func NewFetcher(client github.GitHubClient, pacer *Pacer, log *zap.SugaredLogger) *Fetcher {
	return &Fetcher{client: client, pacer: pacer, log: log}
}

// Fetch retrieves up to req.Count pull requests. It fails only if the first
// page cannot be fetched; a later failure returns what was gathered so far
// with PartialErr set.
func (f *Fetcher) Fetch(ctx context.Context, req models.FetchRequest) (*FetchResult, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("%w: got %d", prerrors.ErrInvalidCount, req.Count)
	}

	owner, repo := req.Repository.Owner, req.Repository.Name
	pageSize := min(github.MaxPageSize, req.Count)
	result := &FetchResult{PullRequests: make([]models.PullRequest, 0, pageSize)}

	var state fetchState
	decision := Continue
	for decision == Continue {
		page, perPage := nextQuery(req.Count, pageSize, state.accumulated)

		prs, err := f.fetchPage(ctx, owner, repo, page, perPage)
		result.Requests++
		if err != nil {
			if result.Requests == 1 {
				return nil, fmt.Errorf("%w: %w", prerrors.ErrFirstPageFailed, err)
			}
			f.log.Warnw("page fetch failed, keeping partial results",
				"owner", owner, "repo", repo, "page", page,
				"fetched", state.accumulated, "error", err)
			result.PartialErr = err
			decision = StopPageFailed
			break
		}

		result.PullRequests = append(result.PullRequests, prs...)
		state = fetchState{accumulated: len(result.PullRequests), page: page}
		decision = decide(req.Count, perPage, len(prs), state.accumulated)

		f.log.Debugw("fetched page",
			"page", state.page, "per_page", perPage, "received", len(prs),
			"accumulated", state.accumulated, "decision", decision.String())
	}

	if len(result.PullRequests) > req.Count {
		result.PullRequests = result.PullRequests[:req.Count]
	}
	result.Stop = decision
	return result, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, owner, repo string, page, perPage int) ([]models.PullRequest, error) {
	if err := f.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	return f.client.ListPullRequests(ctx, owner, repo, page, perPage)
}
