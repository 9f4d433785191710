package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ryo246912/gh-pr-report/internal/github"
	"github.com/ryo246912/gh-pr-report/internal/models"
	"github.com/ryo246912/gh-pr-report/internal/report"
	"go.uber.org/zap"
)

// ReportService contains the business logic
type ReportService struct {
	fetcher *Fetcher
	diffs   *DiffFetcher
	stats   github.StatsClient
	log     *zap.SugaredLogger
}

// NewReportService creates a new service instance. stats may be nil, in
// which case repository totals are not looked up.
func NewReportService(fetcher *Fetcher, diffs *DiffFetcher, stats github.StatsClient, log *zap.SugaredLogger) *ReportService {
	return &ReportService{
		fetcher: fetcher,
		diffs:   diffs,
		stats:   stats,
		log:     log,
	}
}

// RunOptions describes one report run
type RunOptions struct {
	Repository    models.Repository
	Count         int
	Verbose       bool
	OutputDir     string
	Authenticated bool
}

// RunResult summarizes a completed run
type RunResult struct {
	PullRequests []models.PullRequest
	Written      int
	// Path is empty when nothing was written.
	Path  string
	Fetch *FetchResult
}

// Run handles the complete workflow: fetch, then write. It fails only when
// the first page cannot be fetched or the report file cannot be written.
func (s *ReportService) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	repo := opts.Repository

	if !opts.Authenticated {
		s.log.Warnw("no GitHub token configured; requests are subject to unauthenticated rate limits",
			"repository", repo.FullName())
	}

	s.logRepositoryStats(ctx, repo, opts.Count)

	fetched, err := s.fetcher.Fetch(ctx, models.FetchRequest{Repository: repo, Count: opts.Count})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull requests for %s: %w", repo.FullName(), err)
	}

	s.log.Infow("fetched pull requests",
		"repository", repo.FullName(),
		"count", len(fetched.PullRequests),
		"requests", fetched.Requests,
		"stop", fetched.Stop.String())

	result := &RunResult{PullRequests: fetched.PullRequests, Fetch: fetched}
	if len(fetched.PullRequests) == 0 {
		s.log.Warnw("no pull requests found", "repository", repo.FullName())
		return result, nil
	}

	path := filepath.Join(opts.OutputDir, repo.ReportFileName())
	written, err := report.WriteFile(ctx, path, fetched.PullRequests, report.Options{
		Verbose:    opts.Verbose,
		Diffs:      s.diffs,
		Repository: repo,
	}, s.log)
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	result.Written = written
	result.Path = path
	return result, nil
}

// logRepositoryStats reports the repository's total pull request count when
// a stats client is available. Failures are not fatal.
func (s *ReportService) logRepositoryStats(ctx context.Context, repo models.Repository, desired int) {
	if s.stats == nil {
		return
	}

	stats, err := s.stats.RepositoryStats(ctx, repo.Owner, repo.Name)
	if err != nil {
		s.log.Debugw("repository stats unavailable", "repository", repo.FullName(), "error", err)
		return
	}

	s.log.Infow("repository pull requests", "repository", repo.FullName(), "total", stats.TotalPullRequests)
	if stats.TotalPullRequests < desired {
		s.log.Infow("repository has fewer pull requests than requested",
			"requested", desired, "available", stats.TotalPullRequests)
	}
}
