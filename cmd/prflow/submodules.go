package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/simplesurance/prflow/internal/submodule"
)

const (
	operationSubmodules    = "submodules"
	operationResolveCommit = "resolveSubmoduleCommit"
)

var resolveArgs struct {
	sha        string
	baseBranch string
}

type resolveResult struct {
	Branch   string `json:"branch"`
	PRNumber int    `json:"pr_number"`
}

var submodulesCmd = &cobra.Command{
	Use:   "submodules",
	Short: "Resolve the branches and pull requests of submodule pointers changed by a pull request",
	Long: `Resolve the branches and pull requests of submodule pointers changed by a pull request.

For every submodule whose pointer is changed by the pull request, the branch
and pull request of the submodule repository that contain the new pointer
commit are determined. A pr_number of 0 means the commit is part of the
base branch, -1 that it is the head of a branch without a pull request,
-2 that resolving it failed.
Submodules that could not be resolved have the error field set, they do not
fail the command.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requirePullRequest(); err != nil {
			return err
		}

		ctx, cancelFn := state.context(cmd)
		defer cancelFn()

		resolver := submodule.NewResolver(state.clt)

		return state.runOperation(ctx, operationSubmodules, func(ctx context.Context) (any, error) {
			return resolver.EnrichSubmodules(ctx, globalArgs.owner, globalArgs.repo, globalArgs.prNumber)
		})
	},
}

var resolveCommitCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the branch and pull request of a commit",
	Long: `Resolve the branch and pull request of a commit in the repository
passed via --owner and --repo.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireRepository(); err != nil {
			return err
		}

		if resolveArgs.sha == "" {
			return errors.New("--sha must be set")
		}

		if resolveArgs.baseBranch == "" {
			return errors.New("--base-branch must be set")
		}

		ctx, cancelFn := state.context(cmd)
		defer cancelFn()

		resolver := submodule.NewResolver(state.clt)

		return state.runOperation(ctx, operationResolveCommit, func(ctx context.Context) (any, error) {
			branch, prNumber, err := resolver.ResolveBranchAndPR(ctx, globalArgs.owner, globalArgs.repo, resolveArgs.baseBranch, resolveArgs.sha)
			if err != nil {
				return nil, err
			}

			return &resolveResult{Branch: branch, PRNumber: prNumber}, nil
		})
	},
}

func init() {
	flags := resolveCommitCmd.Flags()
	flags.StringVar(&resolveArgs.sha, "sha", "", "commit to resolve")
	flags.StringVar(&resolveArgs.baseBranch, "base-branch", "", "branch whose recent commits are searched first")

	submodulesCmd.AddCommand(resolveCommitCmd)
	rootCmd.AddCommand(submodulesCmd)
}
