package models

import (
	"fmt"
	"time"

	"github.com/aarondl/opt/null"
)

// State is the upstream pull request state. Merged pull requests are closed.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// PullRequest represents PR metadata as listed by the pulls endpoint.
// Optional fields are null when upstream omits them or sends null.
type PullRequest struct {
	Number    int
	Title     string
	State     State
	Author    null.Val[string]
	HTMLURL   string
	CreatedAt null.Val[time.Time]
	MergedAt  null.Val[time.Time]
	ClosedAt  null.Val[time.Time]
}

// User represents a GitHub user
type User struct {
	Login string `json:"login"`
}

// Repository identifies an owner/name pair
type Repository struct {
	Owner string
	Name  string
}

// FullName returns "owner/name"
func (r Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// ReportFileName is the deterministic name of the report written for r.
func (r Repository) ReportFileName() string {
	return fmt.Sprintf("%s_%s_prs.txt", r.Owner, r.Name)
}

// FetchRequest asks for the Count most recently created pull requests.
// Count must be positive; callers validate it before fetching.
type FetchRequest struct {
	Repository Repository
	Count      int
}
