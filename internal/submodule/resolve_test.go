package submodule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/prflow/internal/githubclt"
)

const smOwner = "org"
const smRepo = "libfoo"

func newTestResolver(t *testing.T) (*Resolver, *fakeClient) {
	t.Helper()

	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	clt := newFakeClient()
	return NewResolver(clt), clt
}

func TestResolveBaseBranchHasPrecedence(t *testing.T) {
	r, clt := newTestResolver(t)

	clt.recentCommits[key(smOwner, smRepo, "main")] = []string{"x3", "s1", "x1"}
	clt.addPR(smOwner, smRepo, &githubclt.PullRequest{
		Number: 7, State: "open", HeadBranch: "feature", HeadSHA: "s1",
	})
	clt.branchesByHead[key(smOwner, smRepo, "s1")] = []string{"feature"}

	branch, prNumber, err := r.ResolveBranchAndPR(context.Background(), smOwner, smRepo, "main", "s1")
	require.NoError(t, err)

	assert.Equal(t, "main", branch)
	assert.Equal(t, PRNumberOnBaseBranch, prNumber)
	assert.Equal(t, []string{"RecentCommits org/libfoo:main"}, clt.calls)
}

func TestResolveOpenPR(t *testing.T) {
	r, clt := newTestResolver(t)

	clt.addPR(smOwner, smRepo, &githubclt.PullRequest{
		Number: 7, State: "open", HeadBranch: "feature", HeadSHA: "s1",
	})
	clt.branchesByHead[key(smOwner, smRepo, "s1")] = []string{"other"}

	branch, prNumber, err := r.ResolveBranchAndPR(context.Background(), smOwner, smRepo, "main", "s1")
	require.NoError(t, err)

	assert.Equal(t, "feature", branch)
	assert.Equal(t, 7, prNumber)
}

func TestResolveMostRecentlyMergedPR(t *testing.T) {
	r, clt := newTestResolver(t)

	now := time.Now()
	clt.prsWithCommit[key(smOwner, smRepo, "s1")] = []*githubclt.PullRequest{
		{Number: 3, State: "closed", HeadBranch: "old", MergedAt: now.Add(-time.Hour)},
		{Number: 4, State: "closed", HeadBranch: "newer", MergedAt: now},
		{Number: 5, State: "closed", HeadBranch: "abandoned"},
	}

	branch, prNumber, err := r.ResolveBranchAndPR(context.Background(), smOwner, smRepo, "main", "s1")
	require.NoError(t, err)

	assert.Equal(t, "newer", branch)
	assert.Equal(t, 4, prNumber)
}

func TestResolveBranchWithoutPR(t *testing.T) {
	r, clt := newTestResolver(t)

	clt.branchesByHead[key(smOwner, smRepo, "s1")] = []string{"wip"}

	branch, prNumber, err := r.ResolveBranchAndPR(context.Background(), smOwner, smRepo, "main", "s1")
	require.NoError(t, err)

	assert.Equal(t, "wip", branch)
	assert.Equal(t, PRNumberNone, prNumber)
}

func TestResolveMultipleBranchesFails(t *testing.T) {
	r, clt := newTestResolver(t)

	clt.branchesByHead[key(smOwner, smRepo, "s1")] = []string{"wip", "wip-copy"}

	branch, _, err := r.ResolveBranchAndPR(context.Background(), smOwner, smRepo, "main", "s1")
	require.ErrorIs(t, err, ErrAmbiguousSHA)
	assert.Empty(t, branch)
}

func TestResolveUnknownCommitFails(t *testing.T) {
	r, _ := newTestResolver(t)

	_, _, err := r.ResolveBranchAndPR(context.Background(), smOwner, smRepo, "main", "s1")
	require.ErrorIs(t, err, ErrUnresolvableSHA)
}
