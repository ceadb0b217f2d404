package pullrequest

import (
	"context"
	"iter"
	"net/http"

	gh "github.com/google/go-github/v45/github"
	"github.com/pkg/errors"

	"github.com/jinwoo1225/gh-prmetrics/internal/model"
)

// Pull requests are listed newest first; the limiter in the metrics pipeline
// depends on it.
const (
	sortCreated   = "created"
	directionDesc = "desc"
)

// Fetcher reads repositories, pull requests and their reviews from the GitHub REST API.
type Fetcher struct {
	client *gh.Client
}

func NewFetcher(client *gh.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Repositories lists every repository visible to the authenticated user.
func (f *Fetcher) Repositories(ctx context.Context) iter.Seq2[*model.Repository, error] {
	repos := paginate(ctx, func(ctx context.Context, opts gh.ListOptions) ([]*gh.Repository, *gh.Response, error) {
		return f.client.Repositories.List(ctx, "", &gh.RepositoryListOptions{ListOptions: opts})
	})
	return mapSeq(repos, func(repo *gh.Repository) *model.Repository {
		return &model.Repository{
			Owner: repo.GetOwner().GetLogin(),
			Name:  repo.GetName(),
		}
	})
}

// PullRequests lists the pull requests of repo in the given state, newest first.
// Listed pull requests lack the detail fields; see PullRequest.
func (f *Fetcher) PullRequests(ctx context.Context, repo *model.Repository, state string) iter.Seq2[*model.GithubPullRequest, error] {
	pulls := paginate(ctx, func(ctx context.Context, opts gh.ListOptions) ([]*gh.PullRequest, *gh.Response, error) {
		return f.client.PullRequests.List(ctx, repo.Owner, repo.Name, &gh.PullRequestListOptions{
			State:       state,
			Sort:        sortCreated,
			Direction:   directionDesc,
			ListOptions: opts,
		})
	})
	return mapSeq(pulls, func(pull *gh.PullRequest) *model.GithubPullRequest {
		return toPullRequest(pull, "")
	})
}

// PullRequest fetches the full snapshot of a single pull request.
func (f *Fetcher) PullRequest(ctx context.Context, repo *model.Repository, number int) (*model.GithubPullRequest, error) {
	pull, resp, err := f.client.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching pull request %s/%s#%d", repo.Owner, repo.Name, number)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("not ok status fetching pull request %s/%s#%d: %s", repo.Owner, repo.Name, number, resp.Status)
	}
	return toPullRequest(pull, resp.Header.Get("Last-Modified")), nil
}

// ReviewRequests lists the users and teams whose review is still requested.
func (f *Fetcher) ReviewRequests(ctx context.Context, repo *model.Repository, number int) iter.Seq2[*model.ReviewRequest, error] {
	return paginate(ctx, func(ctx context.Context, opts gh.ListOptions) ([]*model.ReviewRequest, *gh.Response, error) {
		reviewers, resp, err := f.client.PullRequests.ListReviewers(ctx, repo.Owner, repo.Name, number, &opts)
		if err != nil || reviewers == nil {
			return nil, resp, err
		}
		requests := make([]*model.ReviewRequest, 0, len(reviewers.Users)+len(reviewers.Teams))
		for _, user := range reviewers.Users {
			requests = append(requests, &model.ReviewRequest{Login: user.GetLogin()})
		}
		for _, team := range reviewers.Teams {
			requests = append(requests, &model.ReviewRequest{Login: team.GetSlug(), Team: true})
		}
		return requests, resp, nil
	})
}

// Reviews lists the submitted reviews of a pull request in submission order.
// A pending review of the authenticated user has no submission time and is left out.
func (f *Fetcher) Reviews(ctx context.Context, repo *model.Repository, number int) iter.Seq2[*model.Review, error] {
	reviews := paginate(ctx, func(ctx context.Context, opts gh.ListOptions) ([]*gh.PullRequestReview, *gh.Response, error) {
		return f.client.PullRequests.ListReviews(ctx, repo.Owner, repo.Name, number, &opts)
	})
	submitted := filterSeq(reviews, func(review *gh.PullRequestReview) bool {
		return review.SubmittedAt != nil
	})
	return mapSeq(submitted, func(review *gh.PullRequestReview) *model.Review {
		return &model.Review{
			ID:          review.GetID(),
			Reviewer:    review.GetUser().GetLogin(),
			State:       review.GetState(),
			SubmittedAt: review.GetSubmittedAt(),
		}
	})
}

func toPullRequest(pull *gh.PullRequest, lastModified string) *model.GithubPullRequest {
	if lastModified == "" {
		lastModified = model.FormatDate(pull.GetUpdatedAt())
	}
	return &model.GithubPullRequest{
		ID:           pull.GetID(),
		PrNumber:     pull.GetNumber(),
		Title:        pull.GetTitle(),
		State:        pull.GetState(),
		AuthorSlug:   pull.GetUser().GetLogin(),
		CreatedAt:    pull.GetCreatedAt(),
		UpdatedAt:    pull.GetUpdatedAt(),
		LastModified: lastModified,
		Merged:       pull.GetMerged() || pull.MergedAt != nil,
		MergedAt:     pull.MergedAt,
		MergedBy:     pull.GetMergedBy().GetLogin(),
		ChangedFiles: pull.GetChangedFiles(),
		Comments:     pull.GetComments(),
		Commits:      pull.GetCommits(),
		Deletions:    pull.GetDeletions(),
	}
}

func mapSeq[From, To any](seq iter.Seq2[From, error], convert func(From) To) iter.Seq2[To, error] {
	return func(yield func(To, error) bool) {
		for item, err := range seq {
			if err != nil {
				var zero To
				yield(zero, err)
				return
			}
			if !yield(convert(item), nil) {
				return
			}
		}
	}
}

// filterSeq drops the items keep rejects. Errors pass through.
func filterSeq[T any](seq iter.Seq2[T, error], keep func(T) bool) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for item, err := range seq {
			if err == nil && !keep(item) {
				continue
			}
			if !yield(item, err) {
				return
			}
		}
	}
}
