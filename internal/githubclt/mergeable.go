package githubclt

import (
	"context"
	"fmt"

	"github.com/shurcooL/githubv4"
)

// Mergeable returns if a pull request can be merged into its base branch
// without conflicts.
// It returns nil when GitHub has not computed the mergeability yet.
func (clt *Client) Mergeable(ctx context.Context, owner, repo string, prNumber int) (*bool, error) {
	var q struct {
		Repository struct {
			PullRequest struct {
				Mergeable githubv4.MergeableState
			} `graphql:"pullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	vars := map[string]any{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(repo),
		"number": githubv4.Int(prNumber),
	}

	if err := clt.graphQLClt.Query(ctx, &q, vars); err != nil {
		return nil, clt.wrapGraphQLRetryableErrors(err)
	}

	return mergeableStateToBool(q.Repository.PullRequest.Mergeable)
}

func mergeableStateToBool(state githubv4.MergeableState) (*bool, error) {
	var result bool

	switch state {
	case githubv4.MergeableStateMergeable:
		result = true
	case githubv4.MergeableStateConflicting:
		result = false
	case githubv4.MergeableStateUnknown:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported mergeable state: %q", state)
	}

	return &result, nil
}
