// Package githubclt provides a github API client.
package githubclt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/simplesurance/prflow/internal/flowerr"
	"github.com/simplesurance/prflow/internal/logfields"
)

const DefaultHTTPClientTimeout = time.Minute

const loggerName = "github_client"

// perPage is the page size used for all paginated list requests.
const perPage = 100

var (
	ErrPullRequestIsClosed = errors.New("pull request is closed")
	ErrNotFound            = errors.New("not found")
)

type Option func(*options)

type options struct {
	enterpriseURL string
}

// WithEnterpriseURL configures the client to use the API of a GitHub
// Enterprise Server instance instead of github.com.
// url is the base URL of the server, with or without the /api/v3 suffix.
func WithEnterpriseURL(url string) Option {
	return func(o *options) {
		o.enterpriseURL = url
	}
}

// New returns a new github api client.
func New(oauthAPItoken string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := newHTTPClient(oauthAPItoken)

	clt := Client{
		restClt:    github.NewClient(httpClient),
		graphQLClt: githubv4.NewClient(httpClient),
		logger:     zap.L().Named(loggerName),
	}

	if o.enterpriseURL != "" {
		// GITHUB_API_URL of enterprise servers contains the /api/v3 path,
		// go-github appends it itself
		url := strings.TrimSuffix(strings.TrimSuffix(o.enterpriseURL, "/"), "/api/v3")

		restClt, err := clt.restClt.WithEnterpriseURLs(url, url)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise url failed: %w", err)
		}

		clt.restClt = restClt
		clt.graphQLClt = githubv4.NewEnterpriseClient(url+"/api/graphql", httpClient)
	}

	return &clt, nil
}

func newHTTPClient(apiToken string) *http.Client {
	if apiToken == "" {
		return &http.Client{
			Timeout: DefaultHTTPClientTimeout,
		}
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: apiToken},
	)

	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = DefaultHTTPClientTimeout

	return tc
}

// Client is an github API client.
// All methods return a flowerr.RetryableError when an operation can be retried.
// This can be e.g. the case when the API ratelimit is exceeded.
type Client struct {
	restClt    *github.Client
	graphQLClt *githubv4.Client
	logger     *zap.Logger
}

func (clt *Client) wrapRetryableErrors(err error) error {
	switch v := err.(type) {
	case *github.RateLimitError:
		clt.logger.Info(
			"rate limit exceeded",
			logfields.Event("github_api_rate_limit_exceeded"),
			zap.Int("github_api_rate_limit", v.Rate.Limit),
			zap.Time("github_api_rate_limit_reset_time", v.Rate.Reset.Time),
		)

		return flowerr.NewRetryableError(err, v.Rate.Reset.Time)

	case *github.AbuseRateLimitError:
		if retryAfter := v.GetRetryAfter(); retryAfter > 0 {
			return flowerr.NewRetryableError(err, time.Now().Add(retryAfter))
		}

		return flowerr.NewRetryableAnytimeError(err)

	case *github.ErrorResponse:
		if v.Response.StatusCode >= 500 && v.Response.StatusCode < 600 {
			return flowerr.NewRetryableAnytimeError(err)
		}
	}

	return err
}

var graphQlHTTPStatusErrRe = regexp.MustCompile(`^non-200 OK status code: ([0-9]+) .*`)

func (clt *Client) wrapGraphQLRetryableErrors(err error) error {
	matches := graphQlHTTPStatusErrRe.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return err
	}

	errcode, atoiErr := strconv.Atoi(matches[1])
	if atoiErr != nil {
		clt.logger.Info(
			"parsing http code from error string failed",
			zap.Error(atoiErr),
			zap.String("error_string", err.Error()),
			zap.String("http_errcode", matches[1]),
		)
		return err
	}

	if errcode >= 500 && errcode < 600 {
		return flowerr.NewRetryableAnytimeError(err)
	}

	return err
}

func isNotFound(err error) bool {
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		return respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound
	}

	return false
}
