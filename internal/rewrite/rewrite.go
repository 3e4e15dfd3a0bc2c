// Package rewrite creates new commits for pull requests via the GitHub git
// data API and points the pull request branch to them.
// Existing commits are never modified.
package rewrite

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/githubclt"
	"github.com/simplesurance/prflow/internal/logfields"
)

//go:generate mockgen -destination mocks/mock_githubclient.go -package mocks . GithubClient

const loggerName = "rewriter"

const defFileFetchConcurrency = 8

// Names of the operations, used as prefix of the Needed field in results.
const (
	OperationSquash     = "squash"
	OperationRebase     = "rebase"
	OperationCherryPick = "cherryPick"
)

type GithubClient interface {
	PullRequest(ctx context.Context, owner, repo string, number int) (*githubclt.PullRequest, error)
	PullRequestCommits(ctx context.Context, owner, repo string, number int) ([]*githubclt.Commit, error)
	PullRequestFiles(ctx context.Context, owner, repo string, number int) ([]*githubclt.ChangedFile, error)
	BranchHeadSHA(ctx context.Context, owner, repo, branch string) (string, error)
	CompareCommits(ctx context.Context, owner, repo, base, head string) (*githubclt.Comparison, error)
	Commit(ctx context.Context, owner, repo, sha string) (*githubclt.Commit, error)
	FileContent(ctx context.Context, owner, repo, path, ref string) (*githubclt.FileContent, error)
	CreateBlob(ctx context.Context, owner, repo string, content []byte) (string, error)
	CreateTree(ctx context.Context, owner, repo, baseTree string, entries []*githubclt.TreeEntry) (string, error)
	CreateCommit(ctx context.Context, owner, repo string, commit *githubclt.Commit) (string, error)
	UpdateBranch(ctx context.Context, owner, repo, branch, sha string, force bool) error
	CreateBranch(ctx context.Context, owner, repo, branch, sha string) error
	DeleteBranch(ctx context.Context, owner, repo, branch string) error
}

type Rewriter struct {
	clt    GithubClient
	logger *zap.Logger

	fileFetchConcurrency int
	now                  func() time.Time
}

type Option func(*Rewriter)

// WithFileFetchConcurrency sets how many file contents are fetched in
// parallel by RebaseSingleCommit.
func WithFileFetchConcurrency(n int) Option {
	return func(r *Rewriter) {
		if n > 0 {
			r.fileFetchConcurrency = n
		}
	}
}

func New(clt GithubClient, opts ...Option) *Rewriter {
	r := Rewriter{
		clt:                  clt,
		logger:               zap.L().Named(loggerName),
		fileFetchConcurrency: defFileFetchConcurrency,
		now:                  time.Now,
	}

	for _, o := range opts {
		o(&r)
	}

	return &r
}

// openPullRequest retrieves the pull request, an error wrapping
// githubclt.ErrPullRequestIsClosed is returned when it is not open.
func (r *Rewriter) openPullRequest(ctx context.Context, owner, repo string, prNumber int) (*githubclt.PullRequest, error) {
	pr, err := r.clt.PullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("retrieving pull request failed: %w", err)
	}

	if pr.State != githubclt.PullRequestStateOpen {
		return nil, fmt.Errorf("pull request #%d has state %q: %w", prNumber, pr.State, githubclt.ErrPullRequestIsClosed)
	}

	return pr, nil
}

func (r *Rewriter) prLogger(owner, repo string, prNumber int, operation string) *zap.Logger {
	return r.logger.With(
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(prNumber),
		logfields.Operation(operation),
	)
}

// replay creates for every commit a new commit with the same tree, message
// and author on top of onto.
// Commits with multiple parents are skipped.
// If afterCommit is not nil it is called with the SHA of every created
// commit.
// It returns the SHA of the last created commit and how many commits were
// created.
func (r *Rewriter) replay(
	ctx context.Context,
	logger *zap.Logger,
	owner, repo, onto string,
	commits []*githubclt.Commit,
	afterCommit func(context.Context, string) error,
) (string, int, error) {
	parent := onto
	var created int

	for _, c := range commits {
		if len(c.Parents) > 1 {
			logger.Warn(
				"skipping merge commit, merge commits can not be replayed",
				logfields.Commit(c.SHA),
			)
			continue
		}

		sha, err := r.clt.CreateCommit(ctx, owner, repo, &githubclt.Commit{
			Message: c.Message,
			Tree:    c.Tree,
			Parents: []string{parent},
			Author:  c.Author,
		})
		if err != nil {
			return "", created, fmt.Errorf("creating copy of commit %s failed: %w", c.SHA, err)
		}

		logger.Debug(
			"replayed commit",
			logfields.Commit(sha),
			zap.String("original_commit", c.SHA),
			zap.String("parent", parent),
		)

		if afterCommit != nil {
			if err := afterCommit(ctx, sha); err != nil {
				return "", created, err
			}
		}

		parent = sha
		created++
	}

	return parent, created, nil
}

// rebaseNeeded returns false if head and baseTip are the same commit.
func (r *Rewriter) rebaseNeeded(ctx context.Context, owner, repo, baseTip, head string) (bool, error) {
	cmp, err := r.clt.CompareCommits(ctx, owner, repo, baseTip, head)
	if err != nil {
		return false, fmt.Errorf("comparing base branch head %s with pull request head %s failed: %w", baseTip, head, err)
	}

	return cmp.Status != githubclt.CompareStatusIdentical, nil
}
