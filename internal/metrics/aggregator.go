package metrics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/jinwoo1225/gh-prmetrics/internal/model"
)

// Latency is how long after creation a pull request received its first and
// its last review. Both are zero without reviews.
type Latency struct {
	First time.Duration
	Last  time.Duration
}

// ReviewLatency measures first and last against createdAt. first and last may
// be the same review, or both nil.
func ReviewLatency(createdAt time.Time, first, last *model.Review) Latency {
	if first == nil || last == nil {
		return Latency{}
	}
	return Latency{
		First: first.SubmittedAt.Sub(createdAt),
		Last:  last.SubmittedAt.Sub(createdAt),
	}
}

// Minutes truncates d to whole minutes.
func Minutes(d time.Duration) int {
	return int(d / time.Minute)
}

// Aggregator turns a pull request into a MetricsRecord.
type Aggregator struct {
	src Source
	log *zap.Logger
}

func NewAggregator(src Source, log *zap.Logger) *Aggregator {
	return &Aggregator{src: src, log: log}
}

// Aggregate completes pull with its detail fields and walks every review request
// and review it has. The walks are never capped.
func (a *Aggregator) Aggregate(ctx context.Context, repo *model.Repository, pull *model.GithubPullRequest) (*model.MetricsRecord, error) {
	detail, err := a.src.PullRequest(ctx, repo, pull.PrNumber)
	if err != nil {
		return nil, err
	}

	log := a.log.With(zap.String("repository", repo.Name), zap.Int("number", pull.PrNumber))

	reviewRequestCount := 0
	for request, err := range a.src.ReviewRequests(ctx, repo, pull.PrNumber) {
		if err != nil {
			return nil, errors.Wrapf(err, "listing review requests of %s#%d", repo.Name, pull.PrNumber)
		}
		reviewRequestCount++
		log.Debug("review requested", zap.String("reviewer", request.Login), zap.Bool("team", request.Team))
	}

	var first, last *model.Review
	reviewCount := 0
	for review, err := range a.src.Reviews(ctx, repo, pull.PrNumber) {
		if err != nil {
			return nil, errors.Wrapf(err, "listing reviews of %s#%d", repo.Name, pull.PrNumber)
		}
		reviewCount++
		log.Debug("review submitted",
			zap.Int64("id", review.ID),
			zap.String("reviewer", review.Reviewer),
			zap.String("state", review.State),
			zap.Time("submittedAt", review.SubmittedAt))
		if first == nil {
			first = review
		}
		last = review
	}

	latency := ReviewLatency(pull.CreatedAt, first, last)
	return &model.MetricsRecord{
		Repository:            repo.Name,
		PrID:                  detail.ID,
		Title:                 detail.Title,
		State:                 detail.State,
		CreatedAt:             pull.CreatedAt,
		Creator:               detail.AuthorSlug,
		LastModified:          detail.LastModified,
		Merged:                detail.Merged,
		MergedAt:              detail.MergedAt,
		MergedBy:              detail.MergedBy,
		ChangedFiles:          detail.ChangedFiles,
		Comments:              detail.Comments,
		Commits:               detail.Commits,
		Deletions:             detail.Deletions,
		ReviewRequestCount:    reviewRequestCount,
		ReviewCount:           reviewCount,
		MinutesToFirstReview:  Minutes(latency.First),
		MinutesToLastReview:   Minutes(latency.Last),
		MinutesBetweenReviews: Minutes(latency.Last) - Minutes(latency.First),
	}, nil
}
