package githubclt

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/logfields"
)

// DryClient is a github-client that does not do any changes on github.
// All operations that could cause a change are simulated and always succeed.
// Read operations are forwarded to the wrapped Client.
// Simulated object creations return placeholder SHAs.
type DryClient struct {
	*Client
	logger *zap.Logger
	objCnt atomic.Uint64
}

func NewDryClient(clt *Client) *DryClient {
	return &DryClient{
		Client: clt,
		logger: clt.logger.Named("dry_run"),
	}
}

func (c *DryClient) fakeSHA(kind string) string {
	return fmt.Sprintf("dry-run-%s-%d", kind, c.objCnt.Add(1))
}

func (c *DryClient) CreateCommit(_ context.Context, owner, repo string, commit *Commit) (string, error) {
	sha := c.fakeSHA("commit")
	c.logger.Info(
		"simulated creating commit",
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.Tree(commit.Tree),
		zap.Strings("git.parents", commit.Parents),
		logfields.Commit(sha),
	)

	return sha, nil
}

func (c *DryClient) CreateTree(_ context.Context, owner, repo, baseTree string, entries []*TreeEntry) (string, error) {
	sha := c.fakeSHA("tree")
	c.logger.Info(
		"simulated creating tree",
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		zap.String("git.base_tree", baseTree),
		zap.Int("tree_entries", len(entries)),
		logfields.Tree(sha),
	)

	return sha, nil
}

func (c *DryClient) CreateBlob(_ context.Context, owner, repo string, content []byte) (string, error) {
	sha := c.fakeSHA("blob")
	c.logger.Debug(
		"simulated creating blob",
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		zap.Int("blob_size", len(content)),
	)

	return sha, nil
}

func (c *DryClient) UpdateBranch(_ context.Context, owner, repo, branch, sha string, force bool) error {
	c.logger.Info(
		"simulated updating branch",
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.Branch(branch),
		logfields.Commit(sha),
		zap.Bool("force", force),
	)

	return nil
}

func (c *DryClient) CreateBranch(_ context.Context, owner, repo, branch, sha string) error {
	c.logger.Info(
		"simulated creating branch",
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.Branch(branch),
		logfields.Commit(sha),
	)

	return nil
}

func (c *DryClient) DeleteBranch(_ context.Context, owner, repo, branch string) error {
	c.logger.Info(
		"simulated deleting branch",
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.Branch(branch),
	)

	return nil
}

func (c *DryClient) AppendToIssueComment(_ context.Context, owner, repo string, commentID int64, _ string) error {
	c.logger.Info(
		"simulated editing issue comment, no comment changed on github",
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		zap.Int64("github.comment_id", commentID),
	)

	return nil
}
