package inspect

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/logfields"
)

// Review states as returned by the GitHub API.
const (
	ReviewStateApproved         = "APPROVED"
	ReviewStateChangesRequested = "CHANGES_REQUESTED"
	ReviewStateCommented        = "COMMENTED"
	ReviewStateDismissed        = "DISMISSED"
	ReviewStatePending          = "PENDING"
)

type ApprovalTally struct {
	ApprovalCount      int `json:"approvalCount"`
	ChangeRequestCount int `json:"changeRequestCount"`
}

// Approvals returns how many reviewers approved a pull request and how many
// requested changes. Only the latest decisive review of each reviewer is
// counted.
func (in *Inspector) Approvals(ctx context.Context, owner, repo string, prNumber int) (*ApprovalTally, error) {
	reviews, err := in.clt.PullRequestReviews(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("retrieving reviews failed: %w", err)
	}

	states := make(map[string]string, len(reviews))
	for _, r := range reviews {
		switch r.State {
		case ReviewStateApproved, ReviewStateChangesRequested:
			states[r.User] = r.State
		case ReviewStateDismissed:
			delete(states, r.User)
		}
	}

	var result ApprovalTally
	for _, state := range states {
		if state == ReviewStateApproved {
			result.ApprovalCount++
		} else {
			result.ChangeRequestCount++
		}
	}

	in.logger.Debug(
		"counted reviews",
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(prNumber),
		zap.Int("review_count", len(reviews)),
		zap.Int("approval_count", result.ApprovalCount),
		zap.Int("change_request_count", result.ChangeRequestCount),
	)

	return &result, nil
}
