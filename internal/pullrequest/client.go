package pullrequest

import (
	"fmt"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
	gh "github.com/google/go-github/v45/github"
	"github.com/pkg/errors"
)

const (
	githubAPIHost = "api.github.com"
	githubHost    = "github.com"
)

// NewClient returns a GitHub REST client for host. github.com is reached through
// api.github.com, every other host through https://{host}/api/v3. An empty token
// falls back to the credentials gh has stored for the host.
func NewClient(host, token string) (*gh.Client, error) {
	httpClient, err := api.NewHTTPClient(api.ClientOptions{
		Host:      authHost(host),
		AuthToken: token,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating http client")
	}

	if host == githubAPIHost || host == githubHost {
		return gh.NewClient(httpClient), nil
	}

	baseURL := fmt.Sprintf("https://%s/api/v3/", host)
	client, err := gh.NewEnterpriseClient(baseURL, baseURL, httpClient)
	if err != nil {
		return nil, errors.Wrapf(err, "creating enterprise client for %s", host)
	}
	return client, nil
}

// authHost maps an API host to the host gh keeps credentials under.
func authHost(host string) string {
	if host == githubAPIHost {
		return githubHost
	}
	return strings.TrimPrefix(host, "api.")
}
