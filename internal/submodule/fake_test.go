package submodule

import (
	"context"
	"fmt"

	"github.com/simplesurance/prflow/internal/githubclt"
)

// fakeClient is an in-memory GithubClient.
// All maps are keyed by "<owner>/<repo>" and optionally further elements
// separated by ":".
type fakeClient struct {
	pullRequests   map[string]*githubclt.PullRequest
	files          map[string][]*githubclt.ChangedFile
	defaultBranch  map[string]string
	content        map[string]*githubclt.FileContent
	recentCommits  map[string][]string
	prsWithCommit  map[string][]*githubclt.PullRequest
	branchesByHead map[string][]string

	calls []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		pullRequests:   map[string]*githubclt.PullRequest{},
		files:          map[string][]*githubclt.ChangedFile{},
		defaultBranch:  map[string]string{},
		content:        map[string]*githubclt.FileContent{},
		recentCommits:  map[string][]string{},
		prsWithCommit:  map[string][]*githubclt.PullRequest{},
		branchesByHead: map[string][]string{},
	}
}

func key(owner, repo string, elems ...any) string {
	k := owner + "/" + repo
	for _, e := range elems {
		k += fmt.Sprintf(":%v", e)
	}
	return k
}

func (c *fakeClient) record(method, k string) {
	c.calls = append(c.calls, method+" "+k)
}

func (c *fakeClient) PullRequest(_ context.Context, owner, repo string, number int) (*githubclt.PullRequest, error) {
	k := key(owner, repo, number)
	c.record("PullRequest", k)

	pr, ok := c.pullRequests[k]
	if !ok {
		return nil, fmt.Errorf("pull request %s: %w", k, githubclt.ErrNotFound)
	}

	return pr, nil
}

func (c *fakeClient) PullRequestFiles(_ context.Context, owner, repo string, number int) ([]*githubclt.ChangedFile, error) {
	k := key(owner, repo, number)
	c.record("PullRequestFiles", k)
	return c.files[k], nil
}

func (c *fakeClient) DefaultBranch(_ context.Context, owner, repo string) (string, error) {
	k := key(owner, repo)
	c.record("DefaultBranch", k)

	b, ok := c.defaultBranch[k]
	if !ok {
		return "", fmt.Errorf("repository %s: %w", k, githubclt.ErrNotFound)
	}

	return b, nil
}

func (c *fakeClient) FileContent(_ context.Context, owner, repo, path, ref string) (*githubclt.FileContent, error) {
	k := key(owner, repo, ref, path)
	c.record("FileContent", k)
	return c.content[k], nil
}

func (c *fakeClient) SubmoduleCommit(ctx context.Context, owner, repo, path, ref string) (string, error) {
	fc, err := c.FileContent(ctx, owner, repo, path, ref)
	if err != nil {
		return "", err
	}

	if fc == nil || fc.Type != "submodule" {
		return "", fmt.Errorf("no submodule at %s: %w", path, githubclt.ErrNotFound)
	}

	return fc.SHA, nil
}

func (c *fakeClient) RecentCommits(_ context.Context, owner, repo, branch string, limit int) ([]string, error) {
	k := key(owner, repo, branch)
	c.record("RecentCommits", k)

	commits := c.recentCommits[k]
	if len(commits) > limit {
		commits = commits[:limit]
	}

	return commits, nil
}

func (c *fakeClient) OpenPullRequestsWithHead(_ context.Context, owner, repo, sha string) ([]*githubclt.PullRequest, error) {
	c.record("OpenPullRequestsWithHead", key(owner, repo, sha))

	var result []*githubclt.PullRequest
	for prKey, pr := range c.pullRequests {
		if prKey != key(owner, repo, pr.Number) {
			continue
		}

		if pr.State == "open" && pr.HeadSHA == sha {
			result = append(result, pr)
		}
	}

	return result, nil
}

func (c *fakeClient) PullRequestsWithCommit(_ context.Context, owner, repo, sha string) ([]*githubclt.PullRequest, error) {
	k := key(owner, repo, sha)
	c.record("PullRequestsWithCommit", k)
	return c.prsWithCommit[k], nil
}

func (c *fakeClient) BranchesWithHead(_ context.Context, owner, repo, sha string) ([]string, error) {
	k := key(owner, repo, sha)
	c.record("BranchesWithHead", k)
	return c.branchesByHead[k], nil
}

func (c *fakeClient) addPR(owner, repo string, pr *githubclt.PullRequest) {
	c.pullRequests[key(owner, repo, pr.Number)] = pr
}
