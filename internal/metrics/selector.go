package metrics

import (
	"context"
	"iter"

	"github.com/pkg/errors"

	"github.com/jinwoo1225/gh-prmetrics/internal/config"
	"github.com/jinwoo1225/gh-prmetrics/internal/model"
)

// SelectRepositories yields the repositories of src whose name contains a match
// of matcher, in listing order.
func SelectRepositories(ctx context.Context, src Source, matcher config.Matcher) iter.Seq2[*model.Repository, error] {
	return func(yield func(*model.Repository, error) bool) {
		for repo, err := range src.Repositories(ctx) {
			if err != nil {
				yield(nil, errors.Wrap(err, "listing repositories"))
				return
			}
			if !matcher.MatchString(repo.Name) {
				continue
			}
			if !yield(repo, nil) {
				return
			}
		}
	}
}
