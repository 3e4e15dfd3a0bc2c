package githubclt

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/google/go-github/v62/github"
)

// branchRef returns the git-data API reference name for a branch.
func branchRef(branch string) string {
	return "heads/" + branch
}

// Commit returns the git commit object with the given SHA.
func (clt *Client) Commit(ctx context.Context, owner, repo, sha string) (*Commit, error) {
	c, _, err := clt.restClt.Git.GetCommit(ctx, owner, repo, sha)
	if err != nil {
		return nil, clt.wrapRetryableErrors(err)
	}

	return toCommit(c), nil
}

// CreateCommit creates a new commit object and returns its SHA.
// The SHA and Committer fields of c are ignored, the committer is the
// authenticated user.
func (clt *Client) CreateCommit(ctx context.Context, owner, repo string, c *Commit) (string, error) {
	if c.Tree == "" {
		return "", errors.New("tree sha is empty")
	}

	parents := make([]*github.Commit, 0, len(c.Parents))
	for _, p := range c.Parents {
		parents = append(parents, &github.Commit{SHA: github.String(p)})
	}

	created, _, err := clt.restClt.Git.CreateCommit(ctx, owner, repo, &github.Commit{
		Message: github.String(c.Message),
		Tree:    &github.Tree{SHA: github.String(c.Tree)},
		Parents: parents,
		Author:  fromIdentity(c.Author),
	}, nil)
	if err != nil {
		return "", clt.wrapRetryableErrors(err)
	}

	return created.GetSHA(), nil
}

// CreateTree creates a new tree by applying entries to baseTree and returns
// the SHA of the new tree.
func (clt *Client) CreateTree(ctx context.Context, owner, repo, baseTree string, entries []*TreeEntry) (string, error) {
	ghEntries := make([]*github.TreeEntry, 0, len(entries))
	for _, e := range entries {
		ghEntries = append(ghEntries, &github.TreeEntry{
			Path: github.String(e.Path),
			SHA:  e.SHA,
			Mode: github.String(e.Mode),
			Type: github.String(e.Type),
		})
	}

	tree, _, err := clt.restClt.Git.CreateTree(ctx, owner, repo, baseTree, ghEntries)
	if err != nil {
		return "", clt.wrapRetryableErrors(err)
	}

	return tree.GetSHA(), nil
}

// CreateBlob stores content as blob object and returns its SHA.
func (clt *Client) CreateBlob(ctx context.Context, owner, repo string, content []byte) (string, error) {
	blob, _, err := clt.restClt.Git.CreateBlob(ctx, owner, repo, &github.Blob{
		Content:  github.String(base64.StdEncoding.EncodeToString(content)),
		Encoding: github.String("base64"),
	})
	if err != nil {
		return "", clt.wrapRetryableErrors(err)
	}

	return blob.GetSHA(), nil
}

// UpdateBranch points branch to sha.
// When force is true, the update is done also when it is not a fast-forward.
func (clt *Client) UpdateBranch(ctx context.Context, owner, repo, branch, sha string, force bool) error {
	_, _, err := clt.restClt.Git.UpdateRef(ctx, owner, repo, &github.Reference{
		Ref:    github.String(branchRef(branch)),
		Object: &github.GitObject{SHA: github.String(sha)},
	}, force)

	return clt.wrapRetryableErrors(err)
}

// CreateBranch creates a new branch pointing to sha.
func (clt *Client) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	_, _, err := clt.restClt.Git.CreateRef(ctx, owner, repo, &github.Reference{
		Ref:    github.String("refs/" + branchRef(branch)),
		Object: &github.GitObject{SHA: github.String(sha)},
	})

	return clt.wrapRetryableErrors(err)
}

// DeleteBranch deletes a branch.
// If the branch does not exist, the operation succeeds.
func (clt *Client) DeleteBranch(ctx context.Context, owner, repo, branch string) error {
	_, err := clt.restClt.Git.DeleteRef(ctx, owner, repo, branchRef(branch))
	if err != nil {
		// GitHub responds with 422 instead of 404 for missing refs
		if isNotFound(err) || isUnprocessable(err) {
			clt.logger.Debug("deleting branch failed, branch does not exist, interpreting it as success")
			return nil
		}

		return clt.wrapRetryableErrors(err)
	}

	return nil
}
