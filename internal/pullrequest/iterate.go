package pullrequest

import (
	"context"
	"iter"
	"net/http"

	gh "github.com/google/go-github/v45/github"
	"github.com/pkg/errors"
)

const perPage = 100

// paginate lazily walks every page fetch returns, requesting the next page only
// once the consumer has drained the current one. The first error ends the
// sequence.
func paginate[T any](ctx context.Context, fetch func(ctx context.Context, opts gh.ListOptions) ([]T, *gh.Response, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		opts := gh.ListOptions{PerPage: perPage}
		for {
			results, resp, err := fetch(ctx, opts)
			if err != nil {
				yield(zero, errors.Wrap(err, "error running gh api call"))
				return
			}
			if resp.StatusCode != http.StatusOK {
				yield(zero, errors.Errorf("not ok status running gh api call: %s", resp.Status))
				return
			}
			for _, result := range results {
				if !yield(result, nil) {
					return
				}
			}
			if resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
		}
	}
}
