package workflowevent

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pullRequestEventPayload = `{
  "action": "synchronize",
  "number": 42,
  "pull_request": {
    "number": 42,
    "head": {"ref": "feature", "sha": "8ad9dec4298f6b8f020997373cf4fe22005f2c06"},
    "base": {"ref": "main", "sha": "1b2c3d"}
  },
  "repository": {"name": "app", "owner": {"login": "simplesurance"}}
}`

const issueCommentEventPayload = `{
  "action": "created",
  "issue": {"number": 7, "pull_request": {"url": "https://api.github.com/repos/simplesurance/app/pulls/7"}},
  "comment": {"id": 1, "body": "/rebase"},
  "repository": {"name": "app", "owner": {"login": "simplesurance"}}
}`

const issueCommentOnIssuePayload = `{
  "action": "created",
  "issue": {"number": 8},
  "comment": {"id": 2, "body": "hello"},
  "repository": {"name": "app", "owner": {"login": "simplesurance"}}
}`

func TestParse(t *testing.T) {
	type testcase struct {
		name      string
		eventType string
		payload   string
		expected  Event
	}

	testcases := []testcase{
		{
			name:      "pullRequest",
			eventType: "pull_request",
			payload:   pullRequestEventPayload,
			expected: Event{
				Type:            "pull_request",
				RepositoryOwner: "simplesurance",
				Repository:      "app",
				PullRequestNr:   42,
				CommitID:        "8ad9dec4298f6b8f020997373cf4fe22005f2c06",
				Branch:          "feature",
				BaseBranch:      "main",
			},
		},
		{
			name:      "pullRequestTarget",
			eventType: "pull_request_target",
			payload:   pullRequestEventPayload,
			expected: Event{
				Type:            "pull_request_target",
				RepositoryOwner: "simplesurance",
				Repository:      "app",
				PullRequestNr:   42,
				CommitID:        "8ad9dec4298f6b8f020997373cf4fe22005f2c06",
				Branch:          "feature",
				BaseBranch:      "main",
			},
		},
		{
			name:      "issueCommentOnPullRequest",
			eventType: "issue_comment",
			payload:   issueCommentEventPayload,
			expected: Event{
				Type:            "issue_comment",
				RepositoryOwner: "simplesurance",
				Repository:      "app",
				PullRequestNr:   7,
			},
		},
		{
			name:      "issueCommentOnIssue",
			eventType: "issue_comment",
			payload:   issueCommentOnIssuePayload,
			expected: Event{
				Type:            "issue_comment",
				RepositoryOwner: "simplesurance",
				Repository:      "app",
			},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := Parse(tc.eventType, []byte(tc.payload))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, *ev)
		})
	}
}

func TestParseUnsupportedEvent(t *testing.T) {
	_, err := Parse("push", []byte(`{"ref": "refs/heads/main"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedEvent))
}

func TestFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(pullRequestEventPayload), 0o600))

	env := map[string]string{
		EventNameEnv: "pull_request",
		EventPathEnv: path,
	}

	ev, err := FromEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, 42, ev.PullRequestNr)
	assert.Equal(t, "simplesurance", ev.RepositoryOwner)
}

func TestFromEnvNotInWorkflow(t *testing.T) {
	ev, err := FromEnv(func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	assert.Nil(t, ev)
}
