package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/logfields"
	"github.com/simplesurance/prflow/internal/opresult"
	"github.com/simplesurance/prflow/internal/rewrite"
)

const (
	strategyReplay   = "replay"
	strategyTreeDiff = "tree-diff"
	strategyAuto     = "auto"
)

var rebaseArgs struct {
	strategy string
}

var squashCmd = &cobra.Command{
	Use:   "squash",
	Short: "Squash all commits of a pull request into a single commit",
	Long: `Squash all commits of a pull request into a single commit.

The commit message is the title and body of the pull request, the author is
the author of the last commit. Pull requests with a single commit are not
modified. The command fails when squashing fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requirePullRequest(); err != nil {
			return err
		}

		ctx, cancelFn := state.context(cmd)
		defer cancelFn()

		rw := state.rewriter()

		return state.runOperation(ctx, rewrite.OperationSquash, func(ctx context.Context) (any, error) {
			return rw.Squash(ctx, globalArgs.owner, globalArgs.repo, globalArgs.prNumber)
		})
	},
}

var rebaseCmd = &cobra.Command{
	Use:   "rebase",
	Short: "Rebase a pull request onto the head of its base branch",
	Long: `Rebase a pull request onto the head of its base branch.

Strategies:
  replay     recreate every commit of the pull request on top of the base
             branch, merge commits are skipped
  tree-diff  create a single commit on top of the base branch that contains
             the files differing between the pull request and the base
             branch, requires a pull request with exactly 1 commit
  auto       tree-diff for pull requests with 1 commit, replay otherwise

Failures are reported in the result, the command does not fail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requirePullRequest(); err != nil {
			return err
		}

		switch rebaseArgs.strategy {
		case strategyReplay, strategyTreeDiff, strategyAuto:
		default:
			return fmt.Errorf("--strategy: unsupported value %q", rebaseArgs.strategy)
		}

		ctx, cancelFn := state.context(cmd)
		defer cancelFn()

		rw := state.rewriter()

		return state.runResultOperation(ctx, rewrite.OperationRebase, func(ctx context.Context) *opresult.Result {
			return rebase(ctx, rw, rebaseArgs.strategy)
		})
	},
}

func rebase(ctx context.Context, rw *rewrite.Rewriter, strategy string) *opresult.Result {
	owner, repo, prNumber := globalArgs.owner, globalArgs.repo, globalArgs.prNumber

	if strategy == strategyAuto {
		pr, err := state.clt.PullRequest(ctx, owner, repo, prNumber)
		if err != nil {
			return opresult.Failed(rewrite.OperationRebase, fmt.Errorf("retrieving pull request failed: %w", err))
		}

		strategy = strategyReplay
		if pr.CommitCount == 1 {
			strategy = strategyTreeDiff
		}

		logger.Debug(
			"selected rebase strategy",
			logfields.Event("rebase_strategy_selected"),
			logfields.PullRequest(prNumber),
			zap.String("strategy", strategy),
			zap.Int("commit_count", pr.CommitCount),
		)
	}

	if strategy == strategyTreeDiff {
		return rw.RebaseSingleCommit(ctx, owner, repo, prNumber)
	}

	return rw.Rebase(ctx, owner, repo, prNumber)
}

var cherryPickCmd = &cobra.Command{
	Use:   "cherry-pick",
	Short: "Rebase a pull request by cherry-picking its commits onto a temporary branch",
	Long: `Rebase a pull request by cherry-picking its commits onto a temporary
branch that is created at the head of the base branch. The pull request
branch is updated to the result and the temporary branch is deleted.

Failures are reported in the result, the command does not fail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requirePullRequest(); err != nil {
			return err
		}

		ctx, cancelFn := state.context(cmd)
		defer cancelFn()

		rw := state.rewriter()

		return state.runResultOperation(ctx, rewrite.OperationCherryPick, func(ctx context.Context) *opresult.Result {
			return rw.CherryPick(ctx, globalArgs.owner, globalArgs.repo, globalArgs.prNumber)
		})
	},
}

func init() {
	rebaseCmd.Flags().StringVar(
		&rebaseArgs.strategy,
		"strategy",
		strategyReplay,
		fmt.Sprintf("rebase strategy, one of: %s, %s, %s", strategyReplay, strategyTreeDiff, strategyAuto),
	)

	rootCmd.AddCommand(squashCmd, rebaseCmd, cherryPickCmd)
}
