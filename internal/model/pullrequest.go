package model

import (
	"time"
)

type Repository struct {
	Owner string
	Name  string
}

type GithubPullRequest struct {
	ID           int64
	PrNumber     int
	Title        string
	State        string
	AuthorSlug   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastModified string
	Merged       bool
	MergedAt     *time.Time
	MergedBy     string
	ChangedFiles int
	Comments     int
	Commits      int
	Deletions    int
}

// ReviewRequest is a pending reviewer, either a user or a team.
type ReviewRequest struct {
	Login string
	Team  bool
}

type Review struct {
	ID          int64
	Reviewer    string
	State       string
	SubmittedAt time.Time
}
