package rewrite

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/githubclt"
	"github.com/simplesurance/prflow/internal/logfields"
	"github.com/simplesurance/prflow/internal/opresult"
)

// Squash replaces the commits of a pull request with a single commit.
// The commit has the tree of the last pull request commit, the parent of the
// first one, the author of the last one and a message that is created from
// the pull request title and body.
// Pull requests with less then 2 commits are not changed.
//
// Contrary to the other operations, failures are returned as error.
func (r *Rewriter) Squash(ctx context.Context, owner, repo string, prNumber int) (*opresult.Result, error) {
	logger := r.prLogger(owner, repo, prNumber, OperationSquash)

	pr, err := r.openPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, err
	}

	commits, err := r.clt.PullRequestCommits(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("retrieving pull request commits failed: %w", err)
	}

	if len(commits) <= 1 {
		logger.Info(
			"pull request has less then 2 commits, squashing not needed",
			zap.Int("commit_count", len(commits)),
		)
		return opresult.Skipped(OperationSquash), nil
	}

	first := commits[0]
	last := commits[len(commits)-1]

	if len(first.Parents) == 0 {
		return nil, fmt.Errorf("first pull request commit %s has no parent", first.SHA)
	}

	if last.Tree == "" {
		return nil, errors.New("github returned last pull request commit with empty tree sha")
	}

	sha, err := r.clt.CreateCommit(ctx, owner, repo, &githubclt.Commit{
		Message: squashMessage(pr),
		Tree:    last.Tree,
		Parents: []string{first.Parents[0]},
		Author:  last.Author,
	})
	if err != nil {
		return nil, fmt.Errorf("creating squash commit failed: %w", err)
	}

	if err := r.clt.UpdateBranch(ctx, owner, repo, pr.HeadBranch, sha, true); err != nil {
		return nil, fmt.Errorf("updating branch %q to %s failed: %w", pr.HeadBranch, sha, err)
	}

	logger.Info(
		"squashed pull request commits",
		logfields.Branch(pr.HeadBranch),
		logfields.Commit(sha),
		zap.Int("squashed_commit_count", len(commits)),
	)

	return opresult.Success(OperationSquash, sha), nil
}

func squashMessage(pr *githubclt.PullRequest) string {
	if pr.Body == "" {
		return pr.Title
	}

	return pr.Title + "\n\n" + pr.Body
}
