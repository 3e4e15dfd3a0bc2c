package submodule

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/logfields"
)

type EnrichResult struct {
	// ChangedSubmodules contains the paths of the submodules whose pointer
	// is changed by the pull request.
	ChangedSubmodules []string `json:"changed_submodules"`
	// EnrichedSubmodules contains the resolved descriptors of the changed
	// submodules, descriptors that could not be resolved have the Error
	// field set.
	EnrichedSubmodules []*Submodule `json:"enriched_submodules"`
}

// EnrichSubmodules determines the submodules changed by a pull request and
// resolves the branch and pull request of their new pointer commits.
// Errors resolving individual submodules are logged and recorded in the
// descriptor, they do not cause EnrichSubmodules to fail.
func (r *Resolver) EnrichSubmodules(ctx context.Context, owner, repo string, prNumber int) (*EnrichResult, error) {
	logger := r.logger.With(
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(prNumber),
	)

	result := EnrichResult{
		ChangedSubmodules:  []string{},
		EnrichedSubmodules: []*Submodule{},
	}

	pr, err := r.clt.PullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("retrieving pull request failed: %w", err)
	}

	manifest, err := r.clt.FileContent(ctx, owner, repo, ManifestPath, pr.HeadSHA)
	if err != nil {
		return nil, fmt.Errorf("retrieving %s failed: %w", ManifestPath, err)
	}

	if manifest == nil {
		logger.Info("repository has no submodules")
		return &result, nil
	}

	submodules, err := ParseManifest(manifest.Content)
	if err != nil {
		return nil, err
	}

	files, err := r.clt.PullRequestFiles(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("retrieving changed files of pull request failed: %w", err)
	}

	filenames := make([]string, 0, len(files))
	for _, f := range files {
		filenames = append(filenames, f.Filename)
	}

	changed := ChangedSubmodules(submodules, filenames)
	if len(changed) == 0 {
		logger.Info("pull request does not change submodules", zap.Int("submodule_count", len(submodules)))
		return &result, nil
	}

	defaultBranch, err := r.clt.DefaultBranch(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("retrieving default branch failed: %w", err)
	}

	targetsDefaultBranch := pr.BaseBranch == defaultBranch

	for _, sm := range changed {
		result.ChangedSubmodules = append(result.ChangedSubmodules, sm.Path)

		if sm.RepoOwner == "" {
			sm.RepoOwner = owner
		}

		smLogger := logger.With(logfields.Submodule(sm.Path))

		if err := r.enrich(ctx, owner, repo, pr.HeadSHA, pr.BaseBranch, targetsDefaultBranch, sm); err != nil {
			smLogger.Warn("resolving submodule failed", zap.Error(err))
			sm.PRBranch = ""
			sm.PRNumber = PRNumberUnresolved
			sm.Error = err.Error()
		} else {
			smLogger.Info(
				"resolved submodule",
				logfields.Commit(sm.SHA),
				logfields.Branch(sm.PRBranch),
				zap.Int("submodule_pull_request", sm.PRNumber),
			)
		}

		result.EnrichedSubmodules = append(result.EnrichedSubmodules, sm)
	}

	return &result, nil
}

func (r *Resolver) enrich(
	ctx context.Context,
	owner, repo, headSHA, prBaseBranch string,
	targetsDefaultBranch bool,
	sm *Submodule,
) error {
	defaultBranch, err := r.clt.DefaultBranch(ctx, sm.RepoOwner, sm.RepoName)
	if err != nil {
		return fmt.Errorf("retrieving default branch of %s/%s failed: %w", sm.RepoOwner, sm.RepoName, err)
	}

	sm.DefaultBranch = defaultBranch
	sm.BaseBranch = BaseBranch(defaultBranch, prBaseBranch, targetsDefaultBranch)

	sha, err := r.clt.SubmoduleCommit(ctx, owner, repo, sm.Path, headSHA)
	if err != nil {
		return fmt.Errorf("retrieving submodule commit failed: %w", err)
	}

	sm.SHA = sha

	branch, prNumber, err := r.ResolveBranchAndPR(ctx, sm.RepoOwner, sm.RepoName, sm.BaseBranch, sha)
	if err != nil {
		return err
	}

	sm.PRBranch = branch
	sm.PRNumber = prNumber

	return nil
}

// BaseBranch returns the branch of a submodule repository that is the
// counterpart of the base branch of the enclosing pull request.
// If the enclosing pull request targets the default branch of its repository
// it is the default branch of the submodule, otherwise a branch with the
// same name then the enclosing base branch.
func BaseBranch(submoduleDefaultBranch, prBaseBranch string, prTargetsDefaultBranch bool) string {
	if prTargetsDefaultBranch {
		return submoduleDefaultBranch
	}

	return prBaseBranch
}
