package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simplesurance/prflow/internal/inspect"
)

const (
	operationApprovals = "approvals"
	operationConflicts = "conflicts"
)

var conflictsArgs struct {
	submodulePaths []string
}

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Count approvals and change requests of a pull request",
	Long: `Count approvals and change requests of a pull request.

Only the latest approving or change requesting review of each reviewer is
counted, dismissed reviews are ignored.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requirePullRequest(); err != nil {
			return err
		}

		ctx, cancelFn := state.context(cmd)
		defer cancelFn()

		in := inspect.New(state.clt)

		return state.runOperation(ctx, operationApprovals, func(ctx context.Context) (any, error) {
			return in.Approvals(ctx, globalArgs.owner, globalArgs.repo, globalArgs.prNumber)
		})
	},
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Determine files of a pull request that probably conflict with its base branch",
	Long: `Determine files of a pull request that probably conflict with its base branch.

The conflicting files are approximated by the files that were changed on the
base branch and the pull request branch since their merge-base.
The command fails when files that are not submodules probably conflict.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requirePullRequest(); err != nil {
			return err
		}

		ctx, cancelFn := state.context(cmd)
		defer cancelFn()

		in := inspect.New(state.clt)

		var report *inspect.ConflictReport
		err := state.runOperation(ctx, operationConflicts, func(ctx context.Context) (any, error) {
			var err error
			report, err = in.ProbeConflicts(ctx, globalArgs.owner, globalArgs.repo, globalArgs.prNumber, conflictsArgs.submodulePaths)
			return report, err
		})
		if err != nil {
			return err
		}

		if report.HasNonSubmoduleConflicts() {
			err := fmt.Errorf(
				"pull request #%d probably conflicts with its base branch in files that are not submodules: %s",
				globalArgs.prNumber, strings.Join(report.NonSubmoduleConflicts, ", "),
			)

			return state.fail(err.Error(), err)
		}

		return nil
	},
}

func init() {
	addSubmodulePathFlag(conflictsCmd.Flags(), &conflictsArgs.submodulePaths, "that is excluded from failing conflicts")

	rootCmd.AddCommand(approvalsCmd, conflictsCmd)
}
