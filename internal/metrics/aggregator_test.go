package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jinwoo1225/gh-prmetrics/internal/model"
)

func review(at time.Time) *model.Review {
	return &model.Review{SubmittedAt: at}
}

func aggregate(t *testing.T, src *fakeSource, number int) *model.MetricsRecord {
	t.Helper()
	record, err := NewAggregator(src, zap.NewNop()).Aggregate(context.Background(), src.repos[0], src.pulls["demo"][number-1])
	require.NoError(t, err)
	return record
}

func TestAggregate_NoReviews(t *testing.T) {
	src := newFakeSource("demo")
	src.addPull("demo", &model.GithubPullRequest{PrNumber: 1, CreatedAt: daysAgo(3)})

	record := aggregate(t, src, 1)
	assert.Equal(t, 0, record.ReviewCount)
	assert.Equal(t, 0, record.MinutesToFirstReview)
	assert.Equal(t, 0, record.MinutesToLastReview)
	assert.Equal(t, 0, record.MinutesBetweenReviews)
}

func TestAggregate_SingleReview(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := newFakeSource("demo")
	src.addPull("demo", &model.GithubPullRequest{PrNumber: 1, CreatedAt: created})
	src.reviews[1] = []*model.Review{review(created.Add(90*time.Minute + 59*time.Second))}

	record := aggregate(t, src, 1)
	assert.Equal(t, 1, record.ReviewCount)
	assert.Equal(t, 90, record.MinutesToFirstReview)
	assert.Equal(t, 90, record.MinutesToLastReview)
	assert.Equal(t, 0, record.MinutesBetweenReviews)
}

func TestAggregate_FirstAndLastReview(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := newFakeSource("demo")
	src.addPull("demo", &model.GithubPullRequest{PrNumber: 1, CreatedAt: created})
	src.reviews[1] = []*model.Review{
		review(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		review(time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)),
		review(time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC)),
	}

	record := aggregate(t, src, 1)
	assert.Equal(t, 3, record.ReviewCount)
	assert.Equal(t, 1440, record.MinutesToFirstReview)
	assert.Equal(t, 3780, record.MinutesToLastReview)
	assert.Equal(t, 2340, record.MinutesBetweenReviews)
}

func TestAggregate_LogsReviewersAtDebug(t *testing.T) {
	src := newFakeSource("demo")
	src.addPull("demo", &model.GithubPullRequest{PrNumber: 1, CreatedAt: daysAgo(2)})
	src.requests[1] = 1
	src.reviews[1] = []*model.Review{{ID: 9, Reviewer: "dave", State: "APPROVED", SubmittedAt: daysAgo(1)}}

	core, logs := observer.New(zapcore.DebugLevel)
	_, err := NewAggregator(src, zap.New(core)).Aggregate(context.Background(), src.repos[0], src.pulls["demo"][0])
	require.NoError(t, err)

	requested := logs.FilterMessage("review requested").AllUntimed()
	require.Len(t, requested, 1)
	assert.Equal(t, "reviewer", requested[0].ContextMap()["reviewer"])
	assert.Equal(t, false, requested[0].ContextMap()["team"])

	submitted := logs.FilterMessage("review submitted").AllUntimed()
	require.Len(t, submitted, 1)
	fields := submitted[0].ContextMap()
	assert.Equal(t, int64(9), fields["id"])
	assert.Equal(t, "dave", fields["reviewer"])
	assert.Equal(t, "APPROVED", fields["state"])
	assert.Equal(t, "demo", fields["repository"])
}

func TestAggregate_CopiesDetailFields(t *testing.T) {
	mergedAt := daysAgo(1)
	src := newFakeSource("demo")
	src.addPull("demo", &model.GithubPullRequest{
		ID:           42,
		PrNumber:     1,
		Title:        "add feature",
		AuthorSlug:   "bob",
		CreatedAt:    daysAgo(2),
		LastModified: "Fri, 31 May 2024 00:00:00 GMT",
		Merged:       true,
		MergedAt:     &mergedAt,
		MergedBy:     "carol",
		ChangedFiles: 1,
		Comments:     2,
		Commits:      3,
		Deletions:    4,
	})
	src.requests[1] = 2

	record := aggregate(t, src, 1)
	assert.Equal(t, &model.MetricsRecord{
		Repository:         "demo",
		PrID:               42,
		Title:              "add feature",
		State:              "closed",
		CreatedAt:          daysAgo(2),
		Creator:            "bob",
		LastModified:       "Fri, 31 May 2024 00:00:00 GMT",
		Merged:             true,
		MergedAt:           &mergedAt,
		MergedBy:           "carol",
		ChangedFiles:       1,
		Comments:           2,
		Commits:            3,
		Deletions:          4,
		ReviewRequestCount: 2,
	}, record)
	assert.Equal(t, 1, src.details)
}

func TestAggregate_ReviewError(t *testing.T) {
	src := newFakeSource("demo")
	src.addPull("demo", &model.GithubPullRequest{PrNumber: 1, CreatedAt: daysAgo(2)})
	src.reviewsErr = errors.New("connection reset")

	record, err := NewAggregator(src, zap.NewNop()).Aggregate(context.Background(), src.repos[0], src.pulls["demo"][0])
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Nil(t, record)
}

func TestReviewLatency(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := review(created.Add(time.Hour))
	last := review(created.Add(5 * time.Hour))

	assert.Equal(t, Latency{}, ReviewLatency(created, nil, nil))
	assert.Equal(t, Latency{First: time.Hour, Last: time.Hour}, ReviewLatency(created, first, first))
	assert.Equal(t, Latency{First: time.Hour, Last: 5 * time.Hour}, ReviewLatency(created, first, last))
}

func TestMinutes(t *testing.T) {
	cases := map[time.Duration]int{
		0:                            0,
		59 * time.Second:             0,
		time.Minute:                  1,
		61*time.Minute + time.Second: 61,
		-90 * time.Second:            -1,
	}
	for input, want := range cases {
		assert.Equal(t, want, Minutes(input), input.String())
	}
}
