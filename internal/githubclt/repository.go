package githubclt

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v62/github"

	"github.com/simplesurance/prflow/internal/set"
)

// maxCompareCommits limits how many commits are retrieved by CompareCommits.
const maxCompareCommits = 250

func isUnprocessable(err error) bool {
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		return respErr.Response != nil && respErr.Response.StatusCode == http.StatusUnprocessableEntity
	}

	return false
}

// DefaultBranch returns the name of the default branch of a repository.
func (clt *Client) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	r, _, err := clt.restClt.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", clt.wrapRetryableErrors(err)
	}

	if r.GetDefaultBranch() == "" {
		return "", errors.New("github returned an empty default_branch field")
	}

	return r.GetDefaultBranch(), nil
}

// BranchHeadSHA returns the SHA of the commit branch points to.
func (clt *Client) BranchHeadSHA(ctx context.Context, owner, repo, branch string) (string, error) {
	b, _, err := clt.restClt.Repositories.GetBranch(ctx, owner, repo, branch, 1)
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("branch %q: %w", branch, ErrNotFound)
		}

		return "", clt.wrapRetryableErrors(err)
	}

	sha := b.GetCommit().GetSHA()
	if sha == "" {
		return "", errors.New("github returned branch with empty commit sha")
	}

	return sha, nil
}

// CompareCommits compares base with head.
// The returned Comparison contains the SHAs of commits unique to head and
// the union of changed files.
func (clt *Client) CompareCommits(ctx context.Context, owner, repo, base, head string) (*Comparison, error) {
	var result Comparison
	files := set.New[string]()

	opts := github.ListOptions{PerPage: perPage}
	for {
		cmp, resp, err := clt.restClt.Repositories.CompareCommits(ctx, owner, repo, base, head, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		if opts.Page <= 1 {
			if cmp.Status == nil {
				return nil, errors.New("github returned a nil status field")
			}

			result.Status = cmp.GetStatus()
			result.AheadBy = cmp.GetAheadBy()
			result.BehindBy = cmp.GetBehindBy()
			result.MergeBaseSHA = cmp.GetMergeBaseCommit().GetSHA()
		}

		for _, c := range cmp.Commits {
			result.Commits = append(result.Commits, c.GetSHA())
		}

		for _, f := range cmp.Files {
			if !files.Contains(f.GetFilename()) {
				files.Add(f.GetFilename())
				result.Files = append(result.Files, f.GetFilename())
			}
		}

		if resp.NextPage == 0 || len(result.Commits) >= maxCompareCommits {
			return &result, nil
		}

		opts.Page = resp.NextPage
	}
}

// FileContent returns the content of path at ref.
// If the path does not exist at ref, nil is returned.
func (clt *Client) FileContent(ctx context.Context, owner, repo, path, ref string) (*FileContent, error) {
	content, dir, _, err := clt.restClt.Repositories.GetContents(
		ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref},
	)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}

		return nil, clt.wrapRetryableErrors(err)
	}

	if content == nil {
		return nil, fmt.Errorf("path is a directory with %d entries, expected a file", len(dir))
	}

	result := FileContent{
		Path: content.GetPath(),
		Type: content.GetType(),
		SHA:  content.GetSHA(),
	}

	switch result.Type {
	case "submodule":
		return &result, nil

	case "symlink":
		result.Content = []byte(content.GetTarget())
		return &result, nil
	}

	if content.GetEncoding() == "none" {
		// files >1MB are not returned inline
		raw, _, err := clt.restClt.Git.GetBlobRaw(ctx, owner, repo, result.SHA)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		result.Content = raw
		return &result, nil
	}

	str, err := content.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding content of %q failed: %w", path, err)
	}

	result.Content = []byte(str)

	return &result, nil
}

// SubmoduleCommit returns the SHA of the commit the submodule at path
// points to at ref.
func (clt *Client) SubmoduleCommit(ctx context.Context, owner, repo, path, ref string) (string, error) {
	fc, err := clt.FileContent(ctx, owner, repo, path, ref)
	if err != nil {
		return "", err
	}

	if fc == nil {
		return "", fmt.Errorf("submodule %q at %q: %w", path, ref, ErrNotFound)
	}

	if fc.Type != "submodule" {
		return "", fmt.Errorf("path %q is a %s, expected a submodule", path, fc.Type)
	}

	return fc.SHA, nil
}

// RecentCommits returns the SHAs of the last limit commits of branch, newest
// first. limit must be <=100.
func (clt *Client) RecentCommits(ctx context.Context, owner, repo, branch string, limit int) ([]string, error) {
	commits, _, err := clt.restClt.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
		SHA:         branch,
		ListOptions: github.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, clt.wrapRetryableErrors(err)
	}

	result := make([]string, 0, len(commits))
	for _, c := range commits {
		result = append(result, c.GetSHA())
	}

	return result, nil
}

// BranchesWithHead returns the names of all branches whose head commit is sha.
func (clt *Client) BranchesWithHead(ctx context.Context, owner, repo, sha string) ([]string, error) {
	branches, _, err := clt.restClt.Repositories.ListBranchesHeadCommit(ctx, owner, repo, sha)
	if err != nil {
		if isNotFound(err) || isUnprocessable(err) {
			return nil, nil
		}

		return nil, clt.wrapRetryableErrors(err)
	}

	result := make([]string, 0, len(branches))
	for _, b := range branches {
		result = append(result, b.GetName())
	}

	return result, nil
}
