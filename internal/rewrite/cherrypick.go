package rewrite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/logfields"
	"github.com/simplesurance/prflow/internal/opresult"
)

const cherryPickBranchPrefix = "prflow/cherry-pick-"

func (r *Rewriter) cherryPickBranchName(prNumber int) string {
	return fmt.Sprintf("%s%d-%d", cherryPickBranchPrefix, prNumber, r.now().Unix())
}

// CherryPick applies the commits of a pull request one by one onto a
// temporary branch that starts at the head of the base branch.
// The pull request branch is then force-updated to the head of the temporary
// branch. The temporary branch is always deleted.
// Errors are not returned, they are logged and reported in the result.
func (r *Rewriter) CherryPick(ctx context.Context, owner, repo string, prNumber int) *opresult.Result {
	logger := r.prLogger(owner, repo, prNumber, OperationCherryPick)

	res, err := r.cherryPick(ctx, logger, owner, repo, prNumber)
	if err != nil {
		logger.Error("cherry-picking pull request commits failed", zap.Error(err))
		return opresult.Failed(OperationCherryPick, err)
	}

	return res
}

func (r *Rewriter) cherryPick(ctx context.Context, logger *zap.Logger, owner, repo string, prNumber int) (*opresult.Result, error) {
	pr, err := r.openPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, err
	}

	baseTip, err := r.clt.BranchHeadSHA(ctx, owner, repo, pr.BaseBranch)
	if err != nil {
		return nil, fmt.Errorf("retrieving head of base branch failed: %w", err)
	}

	commits, err := r.clt.PullRequestCommits(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("retrieving pull request commits failed: %w", err)
	}

	tmpBranch := r.cherryPickBranchName(prNumber)
	logger = logger.With(
		logfields.BaseBranch(pr.BaseBranch),
		logfields.Branch(pr.HeadBranch),
		zap.String("cherry_pick_branch", tmpBranch),
	)

	if err := r.clt.CreateBranch(ctx, owner, repo, tmpBranch, baseTip); err != nil {
		return nil, fmt.Errorf("creating branch %q failed: %w", tmpBranch, err)
	}

	logger.Debug("created temporary branch", logfields.Commit(baseTip))

	defer func() {
		// ctx might already be expired, deletion is still attempted
		err := r.clt.DeleteBranch(context.WithoutCancel(ctx), owner, repo, tmpBranch)
		if err != nil {
			logger.Warn("deleting temporary branch failed", zap.Error(err))
			return
		}

		logger.Debug("deleted temporary branch")
	}()

	advance := func(ctx context.Context, sha string) error {
		if err := r.clt.UpdateBranch(ctx, owner, repo, tmpBranch, sha, false); err != nil {
			return fmt.Errorf("updating branch %q to %s failed: %w", tmpBranch, sha, err)
		}
		return nil
	}

	head, created, err := r.replay(ctx, logger, owner, repo, baseTip, commits, advance)
	if err != nil {
		return nil, err
	}

	if created == 0 {
		logger.Info("pull request contains no commits that can be cherry-picked")
		return opresult.NoChanges(OperationCherryPick), nil
	}

	if err := r.clt.UpdateBranch(ctx, owner, repo, pr.HeadBranch, head, true); err != nil {
		return nil, fmt.Errorf("updating branch %q to %s failed: %w", pr.HeadBranch, head, err)
	}

	logger.Info(
		"cherry-picked pull request commits onto base branch",
		logfields.Commit(head),
		zap.Int("cherry_picked_commit_count", created),
	)

	return opresult.Success(OperationCherryPick, head), nil
}
