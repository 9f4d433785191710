package github

import (
	"time"

	"github.com/aarondl/opt/null"
	"github.com/ryo246912/gh-pr-report/internal/models"
)

// pullRequestResponse is one element of the pulls listing. Pointer fields
// decode JSON null and missing keys alike.
type pullRequestResponse struct {
	Number    int          `json:"number"`
	Title     string       `json:"title"`
	State     string       `json:"state"`
	User      *models.User `json:"user"`
	HTMLURL   string       `json:"html_url"`
	CreatedAt *time.Time   `json:"created_at"`
	MergedAt  *time.Time   `json:"merged_at"`
	ClosedAt  *time.Time   `json:"closed_at"`
}

func (r pullRequestResponse) toModel() models.PullRequest {
	pr := models.PullRequest{
		Number:    r.Number,
		Title:     r.Title,
		State:     models.State(r.State),
		HTMLURL:   r.HTMLURL,
		CreatedAt: null.FromPtr(r.CreatedAt),
		MergedAt:  null.FromPtr(r.MergedAt),
		ClosedAt:  null.FromPtr(r.ClosedAt),
	}
	if r.User != nil && r.User.Login != "" {
		pr.Author = null.From(r.User.Login)
	}
	return pr
}

// RepositoryStats is repository metadata used for progress logging.
type RepositoryStats struct {
	TotalPullRequests int
}
