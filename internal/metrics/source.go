// Package metrics walks repositories and pull requests and reduces their
// review history into review latency records.
package metrics

import (
	"context"
	"iter"

	"github.com/jinwoo1225/gh-prmetrics/internal/model"
)

// Source is the GitHub data the pipeline reads. Every sequence is lazy and
// ends after yielding its first error.
type Source interface {
	Repositories(ctx context.Context) iter.Seq2[*model.Repository, error]
	PullRequests(ctx context.Context, repo *model.Repository, state string) iter.Seq2[*model.GithubPullRequest, error]
	PullRequest(ctx context.Context, repo *model.Repository, number int) (*model.GithubPullRequest, error)
	ReviewRequests(ctx context.Context, repo *model.Repository, number int) iter.Seq2[*model.ReviewRequest, error]
	Reviews(ctx context.Context, repo *model.Repository, number int) iter.Seq2[*model.Review, error]
}
