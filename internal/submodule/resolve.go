// Package submodule determines for changed submodule pointers of a pull
// request which branch and pull request of the submodule repository they
// refer to.
package submodule

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/githubclt"
	"github.com/simplesurance/prflow/internal/logfields"
)

const loggerName = "submodule_resolver"

// recentCommitsLimit is how many commits of the base branch are searched for
// a submodule commit.
const recentCommitsLimit = 100

var (
	// ErrAmbiguousSHA is returned when a commit is the head of multiple
	// branches and is not associated with a pull request.
	ErrAmbiguousSHA = errors.New("commit is the head of multiple branches")
	// ErrUnresolvableSHA is returned when a commit could not be associated
	// with a branch or pull request.
	ErrUnresolvableSHA = errors.New("commit is not part of the base branch, no branch head and not associated with a pull request")
)

type GithubClient interface {
	PullRequest(ctx context.Context, owner, repo string, number int) (*githubclt.PullRequest, error)
	PullRequestFiles(ctx context.Context, owner, repo string, number int) ([]*githubclt.ChangedFile, error)
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)
	FileContent(ctx context.Context, owner, repo, path, ref string) (*githubclt.FileContent, error)
	SubmoduleCommit(ctx context.Context, owner, repo, path, ref string) (string, error)
	RecentCommits(ctx context.Context, owner, repo, branch string, limit int) ([]string, error)
	OpenPullRequestsWithHead(ctx context.Context, owner, repo, sha string) ([]*githubclt.PullRequest, error)
	PullRequestsWithCommit(ctx context.Context, owner, repo, sha string) ([]*githubclt.PullRequest, error)
	BranchesWithHead(ctx context.Context, owner, repo, sha string) ([]string, error)
}

type Resolver struct {
	clt    GithubClient
	logger *zap.Logger
}

func NewResolver(clt GithubClient) *Resolver {
	return &Resolver{
		clt:    clt,
		logger: zap.L().Named(loggerName),
	}
}

// ResolveBranchAndPR determines the branch and pull request number of sha in
// the repository owner/repo.
// The following rules are evaluated in order, the first one that matches
// determines the result:
//  1. sha is one of the last 100 commits of baseBranch: (baseBranch, PRNumberOnBaseBranch)
//  2. sha is the head of exactly one open pull request: (pr branch, pr number)
//  3. sha belongs to merged pull requests: (branch, number) of the most recently merged one
//  4. sha is the head of exactly one branch: (branch, PRNumberNone)
//  5. sha is the head of multiple branches: ErrAmbiguousSHA
//
// If none matches ErrUnresolvableSHA is returned.
func (r *Resolver) ResolveBranchAndPR(ctx context.Context, owner, repo, baseBranch, sha string) (string, int, error) {
	logger := r.logger.With(
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.BaseBranch(baseBranch),
		logfields.Commit(sha),
	)

	recent, err := r.clt.RecentCommits(ctx, owner, repo, baseBranch, recentCommitsLimit)
	if err != nil {
		return "", 0, fmt.Errorf("retrieving recent commits of base branch %q failed: %w", baseBranch, err)
	}

	if slices.Contains(recent, sha) {
		logger.Debug("commit is part of the base branch")
		return baseBranch, PRNumberOnBaseBranch, nil
	}

	openPRs, err := r.clt.OpenPullRequestsWithHead(ctx, owner, repo, sha)
	if err != nil {
		return "", 0, fmt.Errorf("retrieving open pull requests failed: %w", err)
	}

	// branches are only retrieved when needed
	var branches []string
	var branchesRetrieved bool
	headBranches := func() ([]string, error) {
		if branchesRetrieved {
			return branches, nil
		}

		var err error
		branches, err = r.clt.BranchesWithHead(ctx, owner, repo, sha)
		if err != nil {
			return nil, fmt.Errorf("retrieving branches with head commit failed: %w", err)
		}

		branchesRetrieved = true
		return branches, nil
	}

	if len(openPRs) == 1 {
		pr := openPRs[0]

		branches, err := headBranches()
		if err != nil {
			return "", 0, err
		}

		if len(branches) == 1 && branches[0] != pr.HeadBranch {
			logger.Warn(
				"commit is the head of an open pull request but the only branch containing it has a different name",
				logfields.PullRequest(pr.Number),
				logfields.Branch(pr.HeadBranch),
				zap.String("containing_branch", branches[0]),
			)
		}

		logger.Debug("commit is the head of an open pull request", logfields.PullRequest(pr.Number))
		return pr.HeadBranch, pr.Number, nil
	}

	if len(openPRs) > 1 {
		logger.Debug("commit is the head of multiple open pull requests", zap.Int("pull_request_count", len(openPRs)))
	}

	prs, err := r.clt.PullRequestsWithCommit(ctx, owner, repo, sha)
	if err != nil {
		return "", 0, fmt.Errorf("retrieving pull requests associated with commit failed: %w", err)
	}

	if merged := latestMerged(prs); merged != nil {
		logger.Debug("commit belongs to a merged pull request", logfields.PullRequest(merged.Number))
		return merged.HeadBranch, merged.Number, nil
	}

	branches, err = headBranches()
	if err != nil {
		return "", 0, err
	}

	switch len(branches) {
	case 0:
		return "", 0, ErrUnresolvableSHA

	case 1:
		logger.Debug("commit is the head of a branch without pull request", logfields.Branch(branches[0]))
		return branches[0], PRNumberNone, nil

	default:
		return "", 0, fmt.Errorf("%w: %v", ErrAmbiguousSHA, branches)
	}
}

func latestMerged(prs []*githubclt.PullRequest) *githubclt.PullRequest {
	var result *githubclt.PullRequest

	for _, pr := range prs {
		if !pr.IsMerged() {
			continue
		}

		if result == nil || pr.MergedAt.After(result.MergedAt) {
			result = pr
		}
	}

	return result
}
