package rewrite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/logfields"
	"github.com/simplesurance/prflow/internal/opresult"
)

// Rebase replays the commits of a pull request, oldest first, onto the head
// of its base branch and force-updates the pull request branch to the last
// replayed commit.
// Merge commits are skipped.
// Errors are not returned, they are logged and reported in the result.
func (r *Rewriter) Rebase(ctx context.Context, owner, repo string, prNumber int) *opresult.Result {
	logger := r.prLogger(owner, repo, prNumber, OperationRebase)

	res, err := r.rebase(ctx, logger, owner, repo, prNumber)
	if err != nil {
		logger.Error("rebasing pull request failed", zap.Error(err))
		return opresult.Failed(OperationRebase, err)
	}

	return res
}

func (r *Rewriter) rebase(ctx context.Context, logger *zap.Logger, owner, repo string, prNumber int) (*opresult.Result, error) {
	pr, err := r.openPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, err
	}

	baseTip, err := r.clt.BranchHeadSHA(ctx, owner, repo, pr.BaseBranch)
	if err != nil {
		return nil, fmt.Errorf("retrieving head of base branch failed: %w", err)
	}

	logger = logger.With(logfields.BaseBranch(pr.BaseBranch), logfields.Branch(pr.HeadBranch))

	needed, err := r.rebaseNeeded(ctx, owner, repo, baseTip, pr.HeadSHA)
	if err != nil {
		return nil, err
	}

	if !needed {
		logger.Info("pull request head is the base branch head, rebase not needed")
		return opresult.Skipped(OperationRebase), nil
	}

	commits, err := r.clt.PullRequestCommits(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("retrieving pull request commits failed: %w", err)
	}

	head, created, err := r.replay(ctx, logger, owner, repo, baseTip, commits, nil)
	if err != nil {
		return nil, err
	}

	if created == 0 {
		logger.Info("pull request contains no commits that can be replayed")
		return opresult.NoChanges(OperationRebase), nil
	}

	if err := r.clt.UpdateBranch(ctx, owner, repo, pr.HeadBranch, head, true); err != nil {
		return nil, fmt.Errorf("updating branch %q to %s failed: %w", pr.HeadBranch, head, err)
	}

	logger.Info(
		"rebased pull request",
		logfields.Commit(head),
		zap.Int("replayed_commit_count", created),
	)

	return opresult.Success(OperationRebase, head), nil
}
