package metrics

import (
	"context"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/jinwoo1225/gh-prmetrics/internal/config"
	"github.com/jinwoo1225/gh-prmetrics/internal/model"
)

// Pipeline chains repository selection, pull request filtering and aggregation.
type Pipeline struct {
	src        Source
	cfg        *config.RunConfig
	filter     *Filter
	aggregator *Aggregator
	log        *zap.Logger
}

func NewPipeline(src Source, cfg *config.RunConfig, now func() time.Time, log *zap.Logger) *Pipeline {
	return &Pipeline{
		src:        src,
		cfg:        cfg,
		filter:     NewFilter(cfg, now, log),
		aggregator: NewAggregator(src, log),
		log:        log,
	}
}

// Records yields one record per selected pull request, one repository at a
// time. The sequence is single use and ends at the first error.
func (p *Pipeline) Records(ctx context.Context) iter.Seq2[*model.MetricsRecord, error] {
	return func(yield func(*model.MetricsRecord, error) bool) {
		for repo, err := range SelectRepositories(ctx, p.src, p.cfg.Matchers.Repo) {
			if err != nil {
				yield(nil, err)
				return
			}
			p.log.Info("scanning repository", zap.String("owner", repo.Owner), zap.String("repository", repo.Name))

			for pull, err := range p.filter.PullRequests(ctx, p.src, repo) {
				if err != nil {
					yield(nil, err)
					return
				}
				record, err := p.aggregator.Aggregate(ctx, repo, pull)
				if err != nil {
					yield(nil, err)
					return
				}
				p.log.Debug("measured pull request",
					zap.String("repository", repo.Name),
					zap.Int("number", pull.PrNumber),
					zap.Int("reviews", record.ReviewCount),
					zap.Int("minutesToFirstReview", record.MinutesToFirstReview))
				if !yield(record, nil) {
					return
				}
			}
		}
	}
}
