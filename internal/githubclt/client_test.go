package githubclt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/prflow/internal/flowerr"
)

const apiPrefix = "/api/v3"

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	restClt, err := github.NewClient(srv.Client()).WithEnterpriseURLs(srv.URL, srv.URL)
	require.NoError(t, err)

	return &Client{
		restClt:    restClt,
		graphQLClt: githubv4.NewEnterpriseClient(srv.URL+"/api/graphql", srv.Client()),
		logger:     zap.L(),
	}
}

func TestWrapRetryableErrorsGraphql(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(503)
	}))

	t.Cleanup(srv.Close)

	clt := Client{
		logger:     zap.L(),
		graphQLClt: githubv4.NewEnterpriseClient(srv.URL, srv.Client()),
	}

	s, err := clt.Mergeable(context.Background(), "test", "test", 123)
	require.Error(t, err)
	assert.Nil(t, s)

	var retryableErr *flowerr.RetryableError
	assert.ErrorAs(t, err, &retryableErr)
}

func TestWrapRetryableErrorsGraphqlWithNonStatusErr(t *testing.T) {
	err := errors.New("error")
	wrappedErr := (&Client{}).wrapGraphQLRetryableErrors(err)
	assert.Equal(t, err, wrappedErr)
}

func TestWrapRetryableErrorsServerError(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/repos/o/r", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	clt := newTestClient(t, mux)

	_, err := clt.DefaultBranch(context.Background(), "o", "r")
	require.Error(t, err)

	retryable, _ := flowerr.IsRetryable(err)
	assert.True(t, retryable)
}

func TestPullRequestCommitsPagination(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/repos/o/r/pulls/42/commits", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"sha":"c2","commit":{"message":"second","tree":{"sha":"t2"}},"parents":[{"sha":"c1"}]}]`)
			return
		}

		w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?page=2>; rel="next"`, r.Host, r.URL.Path))
		fmt.Fprint(w, `[{"sha":"c1","commit":{"message":"first","tree":{"sha":"t1"},"author":{"name":"Jo","email":"jo@example.com"}},"parents":[{"sha":"b0"}]}]`)
	})

	clt := newTestClient(t, mux)

	commits, err := clt.PullRequestCommits(context.Background(), "o", "r", 42)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	assert.Equal(t, "c1", commits[0].SHA)
	assert.Equal(t, []string{"b0"}, commits[0].Parents)
	assert.Equal(t, "t1", commits[0].Tree)
	assert.Equal(t, "Jo", commits[0].Author.Name)
	assert.Equal(t, "c2", commits[1].SHA)
	assert.Equal(t, []string{"c1"}, commits[1].Parents)
}

func TestCreateTreeDeleteEntryHasNullSHA(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	var reqBody map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/repos/o/r/git/trees", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &reqBody))

		fmt.Fprint(w, `{"sha":"newtree"}`)
	})

	clt := newTestClient(t, mux)

	sha, err := clt.CreateTree(context.Background(), "o", "r", "basetree", []*TreeEntry{
		{Path: "removed.txt", Mode: ModeFile, Type: TypeBlob},
	})
	require.NoError(t, err)
	assert.Equal(t, "newtree", sha)

	assert.Equal(t, "basetree", reqBody["base_tree"])
	entries, ok := reqBody["tree"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)

	entry := entries[0].(map[string]any)
	assert.Equal(t, "removed.txt", entry["path"])
	assert.Contains(t, entry, "sha")
	assert.Nil(t, entry["sha"])
}

func TestFileContentNotFound(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/repos/o/r/contents/missing.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	clt := newTestClient(t, mux)

	fc, err := clt.FileContent(context.Background(), "o", "r", "missing.txt", "main")
	require.NoError(t, err)
	assert.Nil(t, fc)
}

func TestSubmoduleCommit(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/repos/o/r/contents/vendor/libfoo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "feature-x", r.URL.Query().Get("ref"))
		fmt.Fprint(w, `{"type":"submodule","path":"vendor/libfoo","sha":"abc123"}`)
	})

	clt := newTestClient(t, mux)

	sha, err := clt.SubmoduleCommit(context.Background(), "o", "r", "vendor/libfoo", "feature-x")
	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)
}

func TestAppendToIssueComment(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	var newBody string

	mux := http.NewServeMux()
	mux.HandleFunc(apiPrefix+"/repos/o/r/issues/comments/7", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `{"id":7,"body":"rebase status:"}`)

		case http.MethodPatch:
			var c github.IssueComment
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&c))
			newBody = c.GetBody()
			fmt.Fprint(w, `{"id":7}`)

		default:
			t.Errorf("unexpected method: %s", r.Method)
		}
	})

	clt := newTestClient(t, mux)

	err := clt.AppendToIssueComment(context.Background(), "o", "r", 7, "rebased onto main")
	require.NoError(t, err)
	assert.Equal(t, "rebase status:\n\nrebased onto main", newBody)
}

func TestMergeableStateToBool(t *testing.T) {
	v, err := mergeableStateToBool(githubv4.MergeableStateConflicting)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, *v)

	v, err = mergeableStateToBool(githubv4.MergeableStateMergeable)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, *v)

	v, err = mergeableStateToBool(githubv4.MergeableStateUnknown)
	require.NoError(t, err)
	assert.Nil(t, v)
}
