// Package inspect provides read-only diagnostics about pull requests.
package inspect

import (
	"context"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/githubclt"
)

const loggerName = "inspector"

type GithubClient interface {
	PullRequest(ctx context.Context, owner, repo string, number int) (*githubclt.PullRequest, error)
	PullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*githubclt.Review, error)
	Mergeable(ctx context.Context, owner, repo string, prNumber int) (*bool, error)
	BranchHeadSHA(ctx context.Context, owner, repo, branch string) (string, error)
	CompareCommits(ctx context.Context, owner, repo, base, head string) (*githubclt.Comparison, error)
	FileContent(ctx context.Context, owner, repo, path, ref string) (*githubclt.FileContent, error)
}

type Inspector struct {
	clt    GithubClient
	logger *zap.Logger
}

func New(clt GithubClient) *Inspector {
	return &Inspector{
		clt:    clt,
		logger: zap.L().Named(loggerName),
	}
}
