package metrics

import (
	"context"
	"fmt"
	"iter"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jinwoo1225/gh-prmetrics/internal/config"
	"github.com/jinwoo1225/gh-prmetrics/internal/model"
)

var now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return now }

func daysAgo(days int) time.Time {
	return now.Add(-time.Duration(days) * day)
}

// fakeSource serves canned data and records how far each listing was read.
type fakeSource struct {
	repos    []*model.Repository
	pulls    map[string][]*model.GithubPullRequest
	requests map[int]int
	reviews  map[int][]*model.Review

	reposErr   error
	reviewsErr error

	listed  map[string]int
	details int
}

func newFakeSource(repos ...string) *fakeSource {
	src := &fakeSource{
		pulls:    map[string][]*model.GithubPullRequest{},
		requests: map[int]int{},
		reviews:  map[int][]*model.Review{},
		listed:   map[string]int{},
	}
	for _, name := range repos {
		src.repos = append(src.repos, &model.Repository{Owner: "octo", Name: name})
	}
	return src
}

func (s *fakeSource) addPull(repo string, pull *model.GithubPullRequest) {
	if pull.AuthorSlug == "" {
		pull.AuthorSlug = "alice"
	}
	if pull.State == "" {
		pull.State = "closed"
	}
	if pull.Title == "" {
		pull.Title = fmt.Sprintf("change #%d", pull.PrNumber)
	}
	s.pulls[repo] = append(s.pulls[repo], pull)
}

func (s *fakeSource) Repositories(context.Context) iter.Seq2[*model.Repository, error] {
	return seqOf(s.repos, s.reposErr, nil)
}

func (s *fakeSource) PullRequests(_ context.Context, repo *model.Repository, _ string) iter.Seq2[*model.GithubPullRequest, error] {
	return seqOf(s.pulls[repo.Name], nil, func() { s.listed[repo.Name]++ })
}

func (s *fakeSource) PullRequest(_ context.Context, repo *model.Repository, number int) (*model.GithubPullRequest, error) {
	s.details++
	for _, pull := range s.pulls[repo.Name] {
		if pull.PrNumber == number {
			detail := *pull
			return &detail, nil
		}
	}
	return nil, errors.Errorf("pull request %d not found", number)
}

func (s *fakeSource) ReviewRequests(_ context.Context, _ *model.Repository, number int) iter.Seq2[*model.ReviewRequest, error] {
	requests := make([]*model.ReviewRequest, s.requests[number])
	for i := range requests {
		requests[i] = &model.ReviewRequest{Login: "reviewer"}
	}
	return seqOf(requests, nil, nil)
}

func (s *fakeSource) Reviews(_ context.Context, _ *model.Repository, number int) iter.Seq2[*model.Review, error] {
	return seqOf(s.reviews[number], s.reviewsErr, nil)
}

// seqOf yields items, then err if set. onYield runs before every item.
func seqOf[T any](items []T, err error, onYield func()) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if onYield != nil {
				onYield()
			}
			if !yield(item, nil) {
				return
			}
		}
		if err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

func newConfig(t *testing.T, overrides map[string]any) *config.RunConfig {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	for key, value := range overrides {
		v.Set(key, value)
	}
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func collect(t *testing.T, p *Pipeline) ([]*model.MetricsRecord, error) {
	t.Helper()
	var records []*model.MetricsRecord
	for record, err := range p.Records(context.Background()) {
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

func newTestPipeline(src Source, cfg *config.RunConfig) *Pipeline {
	return NewPipeline(src, cfg, fixedNow, zap.NewNop())
}
