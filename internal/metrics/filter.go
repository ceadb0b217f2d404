package metrics

import (
	"context"
	"iter"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/jinwoo1225/gh-prmetrics/internal/config"
	"github.com/jinwoo1225/gh-prmetrics/internal/model"
)

// ErrUnorderedListing is returned when a repository lists a pull request newer
// than the one before it. The count and age limits abort a repository on the
// first pull request past the limit, which is only correct for newest first
// listings.
var ErrUnorderedListing = errors.New("pull requests are not listed newest first")

const day = 24 * time.Hour

// Filter selects the pull requests of a repository worth measuring.
type Filter struct {
	cfg *config.RunConfig
	now func() time.Time
	log *zap.Logger
}

func NewFilter(cfg *config.RunConfig, now func() time.Time, log *zap.Logger) *Filter {
	return &Filter{cfg: cfg, now: now, log: log}
}

// PullRequests yields the pull requests of repo that pass the merged, creator
// and title filters. A skipped pull request does not count against MaxCount.
// The listing is abandoned once MaxCount pull requests were accepted or the
// first pull request older than MaxDays shows up.
func (f *Filter) PullRequests(ctx context.Context, src Source, repo *model.Repository) iter.Seq2[*model.GithubPullRequest, error] {
	return func(yield func(*model.GithubPullRequest, error) bool) {
		log := f.log.With(zap.String("repository", repo.Name))
		accepted := 0
		var previous time.Time

		for pull, err := range src.PullRequests(ctx, repo, f.cfg.State) {
			if err != nil {
				yield(nil, errors.Wrapf(err, "listing pull requests of %s", repo.Name))
				return
			}
			if !previous.IsZero() && pull.CreatedAt.After(previous) {
				yield(nil, errors.Wrapf(ErrUnorderedListing, "%s#%d created %s after %s",
					repo.Name, pull.PrNumber, model.FormatDate(pull.CreatedAt), model.FormatDate(previous)))
				return
			}
			previous = pull.CreatedAt

			if reason := f.skipReason(pull); reason != "" {
				log.Debug("skipping pull request", zap.Int("number", pull.PrNumber), zap.String("reason", reason))
				continue
			}
			if accepted >= f.cfg.MaxCount {
				log.Debug("max count reached", zap.Int("maxCount", f.cfg.MaxCount))
				return
			}
			if age := AgeInDays(f.now(), pull.CreatedAt); age > f.cfg.MaxDays {
				log.Debug("max age reached", zap.Int("number", pull.PrNumber), zap.Int("ageDays", age), zap.Int("maxDays", f.cfg.MaxDays))
				return
			}

			accepted++
			if !yield(pull, nil) {
				return
			}
			if accepted >= f.cfg.MaxCount {
				log.Debug("max count reached", zap.Int("maxCount", f.cfg.MaxCount))
				return
			}
		}
	}
}

func (f *Filter) skipReason(pull *model.GithubPullRequest) string {
	switch {
	case f.cfg.MergedOnly && !pull.Merged:
		return "not merged"
	case !f.cfg.Matchers.Creator.MatchString(pull.AuthorSlug):
		return "creator does not match"
	case f.cfg.Matchers.SkipTitle.MatchString(pull.Title):
		return "title matches skip pattern"
	}
	return ""
}

// AgeInDays returns the number of whole days between createdAt and now.
func AgeInDays(now, createdAt time.Time) int {
	return int(now.Sub(createdAt) / day)
}
