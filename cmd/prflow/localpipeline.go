package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simplesurance/prflow/internal/localpipeline"
)

var localPipelineArgs struct {
	dir            string
	remote         string
	prBranch       string
	targetBranch   string
	noMerge        bool
	initSubmodules bool
	submodulePaths []string
}

var localPipelineCmd = &cobra.Command{
	Use:   "local-pipeline",
	Short: "Squash, rebase, push and merge a pull request in a local git checkout",
	Long: `Squash, rebase, push and merge a pull request in a local git checkout.

The commits of the pull request branch are squashed into a single commit
that is rebased onto the target branch and pushed. Afterwards the target
branch is fast-forwarded to the pull request branch and pushed, unless
--no-merge is passed.

Rebase conflicts in submodule pointers are resolved by using the pointer of
the pull request. Conflicts in other files fail the command.

When --pr-branch or --target-branch are not passed, they are taken from the
workflow event or retrieved from the pull request on GitHub.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if globalArgs.prNumber <= 0 {
			return errors.New("--pr must be set to a pull request number")
		}

		if state.config.DryRun {
			return errors.New("local-pipeline does not support dry-runs")
		}

		ctx, cancelFn := state.context(cmd)
		defer cancelFn()

		return state.runOperation(ctx, localpipeline.OperationName, runLocalPipeline)
	},
}

func runLocalPipeline(ctx context.Context) (any, error) {
	prBranch, targetBranch := localPipelineArgs.prBranch, localPipelineArgs.targetBranch

	if workflowEvent != nil && workflowEvent.PullRequestNr == globalArgs.prNumber {
		if prBranch == "" {
			prBranch = workflowEvent.Branch
		}

		if targetBranch == "" {
			targetBranch = workflowEvent.BaseBranch
		}
	}

	if prBranch == "" || targetBranch == "" {
		if err := requireRepository(); err != nil {
			return nil, fmt.Errorf("--pr-branch and --target-branch must be passed or the repository be known: %w", err)
		}

		pr, err := state.clt.PullRequest(ctx, globalArgs.owner, globalArgs.repo, globalArgs.prNumber)
		if err != nil {
			return nil, fmt.Errorf("retrieving pull request failed: %w", err)
		}

		if prBranch == "" {
			prBranch = pr.HeadBranch
		}

		if targetBranch == "" {
			targetBranch = pr.BaseBranch
		}
	}

	opts := []localpipeline.Option{localpipeline.WithRemote(localPipelineArgs.remote)}
	if localPipelineArgs.noMerge {
		opts = append(opts, localpipeline.WithoutMerge())
	}

	if localPipelineArgs.initSubmodules {
		opts = append(opts, localpipeline.WithInitSubmodules())
	}

	if len(localPipelineArgs.submodulePaths) > 0 {
		opts = append(opts, localpipeline.WithSubmodulePaths(localPipelineArgs.submodulePaths))
	}

	p := localpipeline.New(localPipelineArgs.dir, globalArgs.prNumber, prBranch, targetBranch, opts...)

	res, err := p.Run(ctx)
	if err != nil {
		var conflictErr *localpipeline.ConflictError
		if errors.As(err, &conflictErr) {
			return nil, fmt.Errorf(
				"rebasing %s onto %s caused conflicts in files that are not submodules: %s",
				prBranch, targetBranch, strings.Join(conflictErr.Files, ", "),
			)
		}

		return nil, err
	}

	return res, nil
}

func init() {
	flags := localPipelineCmd.Flags()

	flags.StringVar(&localPipelineArgs.dir, "dir", ".", "path to the git repository")
	flags.StringVar(&localPipelineArgs.remote, "remote", "origin", "name of the git remote")
	flags.StringVar(&localPipelineArgs.prBranch, "pr-branch", "", "name of the pull request branch")
	flags.StringVar(&localPipelineArgs.targetBranch, "target-branch", "", "name of the branch the pull request is merged into")
	flags.BoolVar(&localPipelineArgs.noMerge, "no-merge", false, "only push the pull request branch, do not merge it into the target branch")
	flags.BoolVar(&localPipelineArgs.initSubmodules, "init-submodules", false, "initialize submodules recursively after checking out the pull request branch")
	addSubmodulePathFlag(flags, &localPipelineArgs.submodulePaths, "whose conflicts are resolved automatically")

	rootCmd.AddCommand(localPipelineCmd)
}
