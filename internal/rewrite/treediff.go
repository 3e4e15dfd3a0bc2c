package rewrite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/githubclt"
	"github.com/simplesurance/prflow/internal/logfields"
	"github.com/simplesurance/prflow/internal/opresult"
	"github.com/simplesurance/prflow/internal/routines"
	"github.com/simplesurance/prflow/internal/set"
)

// RebaseSingleCommit rebases a pull request that consists of exactly one
// commit by creating a new tree on top of the base branch head.
// The tree only contains the files whose content on the pull request branch
// differs from the base branch head. The content of all other files is taken
// from the base branch.
// Errors are not returned, they are logged and reported in the result.
func (r *Rewriter) RebaseSingleCommit(ctx context.Context, owner, repo string, prNumber int) *opresult.Result {
	logger := r.prLogger(owner, repo, prNumber, OperationRebase).With(zap.String("strategy", "tree-diff"))

	res, err := r.rebaseSingleCommit(ctx, logger, owner, repo, prNumber)
	if err != nil {
		logger.Error("rebasing pull request failed", zap.Error(err))
		return opresult.Failed(OperationRebase, err)
	}

	return res
}

func (r *Rewriter) rebaseSingleCommit(ctx context.Context, logger *zap.Logger, owner, repo string, prNumber int) (*opresult.Result, error) {
	pr, err := r.openPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, err
	}

	commits, err := r.clt.PullRequestCommits(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("retrieving pull request commits failed: %w", err)
	}

	if len(commits) != 1 {
		return nil, fmt.Errorf("pull request has %d commits, tree-diff rebase requires exactly 1", len(commits))
	}

	commit := commits[0]

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

	files, err := r.clt.PullRequestFiles(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("retrieving changed files of pull request failed: %w", err)
	}

	diffs, err := r.fetchDiffs(ctx, owner, repo, changedPaths(files), pr.HeadSHA, baseTip)
	if err != nil {
		return nil, err
	}

	if len(diffs) == 0 {
		logger.Info("content of all changed files is identical on the base branch, nothing to rebase")
		return opresult.NoChanges(OperationRebase), nil
	}

	entries, err := r.treeEntries(ctx, owner, repo, diffs)
	if err != nil {
		return nil, err
	}

	baseCommit, err := r.clt.Commit(ctx, owner, repo, baseTip)
	if err != nil {
		return nil, fmt.Errorf("retrieving base branch head commit failed: %w", err)
	}

	tree, err := r.clt.CreateTree(ctx, owner, repo, baseCommit.Tree, entries)
	if err != nil {
		return nil, fmt.Errorf("creating tree failed: %w", err)
	}

	sha, err := r.clt.CreateCommit(ctx, owner, repo, &githubclt.Commit{
		Message: commit.Message,
		Tree:    tree,
		Parents: []string{baseTip},
		Author:  commit.Author,
	})
	if err != nil {
		return nil, fmt.Errorf("creating commit failed: %w", err)
	}

	if err := r.clt.UpdateBranch(ctx, owner, repo, pr.HeadBranch, sha, true); err != nil {
		return nil, fmt.Errorf("updating branch %q to %s failed: %w", pr.HeadBranch, sha, err)
	}

	logger.Info(
		"rebased pull request",
		logfields.Commit(sha),
		logfields.Tree(tree),
		zap.Int("changed_file_count", len(entries)),
	)

	return opresult.Success(OperationRebase, sha), nil
}

// changedPaths returns the sorted paths of files, for renamed files the
// previous path is included.
func changedPaths(files []*githubclt.ChangedFile) []string {
	paths := set.New[string]()

	for _, f := range files {
		paths.Add(f.Filename)
		if f.PreviousFilename != "" {
			paths.Add(f.PreviousFilename)
		}
	}

	result := paths.Slice()
	sort.Strings(result)

	return result
}

// fileDiff is a path whose content differs between the pull request and
// the base branch.
// head is nil if the path does not exist on the pull request branch.
type fileDiff struct {
	path string
	head *githubclt.FileContent
	base *githubclt.FileContent
}

// fetchDiffs retrieves the content of paths at headRef and baseRef in
// parallel and returns the paths that differ, sorted by path.
func (r *Rewriter) fetchDiffs(ctx context.Context, owner, repo string, paths []string, headRef, baseRef string) ([]*fileDiff, error) {
	var mu sync.Mutex
	var result []*fileDiff
	var errs []error

	pool := routines.NewPool(r.fileFetchConcurrency)

	for _, path := range paths {
		path := path

		pool.Queue(func() {
			d, err := r.fetchDiff(ctx, owner, repo, path, headRef, baseRef)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs = append(errs, err)
				return
			}

			if d != nil {
				result = append(result, d)
			}
		})
	}

	pool.Wait()

	if len(errs) != 0 {
		return nil, errors.Join(errs...)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].path < result[j].path
	})

	return result, nil
}

func (r *Rewriter) fetchDiff(ctx context.Context, owner, repo, path, headRef, baseRef string) (*fileDiff, error) {
	head, err := r.clt.FileContent(ctx, owner, repo, path, headRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving %q at %s failed: %w", path, headRef, err)
	}

	base, err := r.clt.FileContent(ctx, owner, repo, path, baseRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving %q at %s failed: %w", path, baseRef, err)
	}

	if sameContent(head, base) {
		return nil, nil
	}

	return &fileDiff{path: path, head: head, base: base}, nil
}

func sameContent(a, b *githubclt.FileContent) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.Type != b.Type {
		return false
	}

	if a.SHA != "" && a.SHA == b.SHA {
		return true
	}

	if a.Type == "submodule" {
		return false
	}

	return bytes.Equal(a.Content, b.Content)
}

// treeEntries converts diffs to tree entries, blobs are created for new
// file and symlink contents.
func (r *Rewriter) treeEntries(ctx context.Context, owner, repo string, diffs []*fileDiff) ([]*githubclt.TreeEntry, error) {
	result := make([]*githubclt.TreeEntry, 0, len(diffs))

	for _, d := range diffs {
		if d.head == nil {
			result = append(result, &githubclt.TreeEntry{
				Path: d.path,
				Mode: entryMode(d.base),
				Type: entryType(d.base),
			})
			continue
		}

		if d.head.Type == "submodule" {
			sha := d.head.SHA
			result = append(result, &githubclt.TreeEntry{
				Path: d.path,
				SHA:  &sha,
				Mode: githubclt.ModeSubmodule,
				Type: githubclt.TypeCommit,
			})
			continue
		}

		sha, err := r.clt.CreateBlob(ctx, owner, repo, d.head.Content)
		if err != nil {
			return nil, fmt.Errorf("creating blob for %q failed: %w", d.path, err)
		}

		result = append(result, &githubclt.TreeEntry{
			Path: d.path,
			SHA:  &sha,
			Mode: entryMode(d.head),
			Type: githubclt.TypeBlob,
		})
	}

	return result, nil
}

// entryMode returns the tree mode for fc.
// The contents API does not expose the executable bit, regular files are
// always created with ModeFile.
func entryMode(fc *githubclt.FileContent) string {
	switch fc.Type {
	case "symlink":
		return githubclt.ModeSymlink
	case "submodule":
		return githubclt.ModeSubmodule
	default:
		return githubclt.ModeFile
	}
}

func entryType(fc *githubclt.FileContent) string {
	if fc.Type == "submodule" {
		return githubclt.TypeCommit
	}

	return githubclt.TypeBlob
}
