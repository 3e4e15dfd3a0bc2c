package inspect

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/githubclt"
	"github.com/simplesurance/prflow/internal/logfields"
	"github.com/simplesurance/prflow/internal/set"
	"github.com/simplesurance/prflow/internal/submodule"
)

// ConflictReport lists files that probably conflict when a pull request is
// merged.
// The files are determined by intersecting the files changed on the base
// branch and on the pull request branch since their merge-base. A file in
// the report is not guaranteed to conflict, the report is always
// approximate.
type ConflictReport struct {
	Mergeable             *bool    `json:"mergeable"`
	FilesWithConflicts    []string `json:"files_with_conflicts"`
	SubmoduleConflicts    []string `json:"submodule_conflicts"`
	NonSubmoduleConflicts []string `json:"non_submodule_conflicts"`
	Approximate           bool     `json:"approximate"`
}

// HasNonSubmoduleConflicts returns true if files that are not submodules
// might conflict.
func (r *ConflictReport) HasNonSubmoduleConflicts() bool {
	return len(r.NonSubmoduleConflicts) > 0
}

func newConflictReport(mergeable *bool) *ConflictReport {
	return &ConflictReport{
		Mergeable:             mergeable,
		FilesWithConflicts:    []string{},
		SubmoduleConflicts:    []string{},
		NonSubmoduleConflicts: []string{},
		Approximate:           true,
	}
}

// ProbeConflicts determines the files of a pull request that probably
// conflict with its base branch.
// Files are only probed when GitHub reports that the pull request is not
// mergeable and the pull request and base branch diverged.
// If submodulePaths is nil, the submodules are read from the manifest file
// of the pull request.
func (in *Inspector) ProbeConflicts(ctx context.Context, owner, repo string, prNumber int, submodulePaths []string) (*ConflictReport, error) {
	logger := in.logger.With(
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(prNumber),
	)

	pr, err := in.clt.PullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("retrieving pull request failed: %w", err)
	}

	mergeable := pr.Mergeable
	if mergeable == nil {
		mergeable, err = in.clt.Mergeable(ctx, owner, repo, prNumber)
		if err != nil {
			return nil, fmt.Errorf("retrieving mergeable status failed: %w", err)
		}
	}

	report := newConflictReport(mergeable)

	if mergeable == nil || *mergeable {
		logger.Debug("pull request is not known to be unmergeable, skipping conflict probing")
		return report, nil
	}

	baseTip, err := in.clt.BranchHeadSHA(ctx, owner, repo, pr.BaseBranch)
	if err != nil {
		return nil, fmt.Errorf("retrieving head of base branch failed: %w", err)
	}

	cmp, err := in.clt.CompareCommits(ctx, owner, repo, baseTip, pr.HeadSHA)
	if err != nil {
		return nil, fmt.Errorf("comparing base branch with pull request failed: %w", err)
	}

	if cmp.Status != githubclt.CompareStatusDiverged {
		logger.Debug(
			"pull request and base branch did not diverge, skipping conflict probing",
			zap.String("compare_status", cmp.Status),
		)
		return report, nil
	}

	baseChanges, err := in.clt.CompareCommits(ctx, owner, repo, cmp.MergeBaseSHA, baseTip)
	if err != nil {
		return nil, fmt.Errorf("retrieving changes on base branch failed: %w", err)
	}

	prChanges, err := in.clt.CompareCommits(ctx, owner, repo, cmp.MergeBaseSHA, pr.HeadSHA)
	if err != nil {
		return nil, fmt.Errorf("retrieving changes of pull request failed: %w", err)
	}

	conflicting := set.New(baseChanges.Files...).Intersection(set.New(prChanges.Files...)).Slice()
	sort.Strings(conflicting)

	if len(conflicting) == 0 {
		return report, nil
	}

	if submodulePaths == nil {
		submodulePaths, err = in.submodulePaths(ctx, owner, repo, pr.HeadSHA)
		if err != nil {
			return nil, err
		}
	}

	report.FilesWithConflicts = conflicting
	for _, f := range conflicting {
		if isSubmodulePath(submodulePaths, f) {
			report.SubmoduleConflicts = append(report.SubmoduleConflicts, f)
		} else {
			report.NonSubmoduleConflicts = append(report.NonSubmoduleConflicts, f)
		}
	}

	logger.Info(
		"found files that probably conflict",
		logfields.Commit(cmp.MergeBaseSHA),
		zap.Strings("submodule_conflicts", report.SubmoduleConflicts),
		zap.Strings("non_submodule_conflicts", report.NonSubmoduleConflicts),
	)

	return report, nil
}

func (in *Inspector) submodulePaths(ctx context.Context, owner, repo, ref string) ([]string, error) {
	fc, err := in.clt.FileContent(ctx, owner, repo, submodule.ManifestPath, ref)
	if err != nil {
		return nil, fmt.Errorf("retrieving %s failed: %w", submodule.ManifestPath, err)
	}

	if fc == nil {
		return []string{}, nil
	}

	sms, err := submodule.ParseManifest(fc.Content)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(sms))
	for _, sm := range sms {
		result = append(result, sm.Path)
	}

	return result, nil
}

func isSubmodulePath(submodulePaths []string, p string) bool {
	for _, sp := range submodulePaths {
		if submodule.ContainsPath(sp, p) {
			return true
		}
	}

	return false
}
