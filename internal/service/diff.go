package service

import (
	"context"
	"fmt"

	prerrors "github.com/ryo246912/gh-pr-report/internal/errors"
	"github.com/ryo246912/gh-pr-report/internal/github"
	"go.uber.org/zap"
)

// DiffFetcher retrieves one pull request diff per call, paced like pages
type DiffFetcher struct {
	client github.GitHubClient
	pacer  *Pacer
	log    *zap.SugaredLogger
}

func NewDiffFetcher(client github.GitHubClient, pacer *Pacer, log *zap.SugaredLogger) *DiffFetcher {
	return &DiffFetcher{client: client, pacer: pacer, log: log}
}

// FetchDiff returns the diff text of pull request number. Any failure is
// wrapped in ErrDiffUnavailable; callers treat it as an absent diff.
func (d *DiffFetcher) FetchDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	if err := d.pacer.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: #%d: %w", prerrors.ErrDiffUnavailable, number, err)
	}

	diff, err := d.client.GetPullRequestDiff(ctx, owner, repo, number)
	if err != nil {
		d.log.Warnw("diff fetch failed", "owner", owner, "repo", repo, "number", number, "error", err)
		return "", fmt.Errorf("%w: #%d: %w", prerrors.ErrDiffUnavailable, number, err)
	}
	return diff, nil
}
