package githubclt

import (
	"context"
	"strings"

	"github.com/google/go-github/v62/github"
)

// AppendToIssueComment appends text as new paragraph to an existing issue or
// pull request comment. The existing body is never modified.
func (clt *Client) AppendToIssueComment(ctx context.Context, owner, repo string, commentID int64, text string) error {
	comment, _, err := clt.restClt.Issues.GetComment(ctx, owner, repo, commentID)
	if err != nil {
		return clt.wrapRetryableErrors(err)
	}

	body := comment.GetBody()
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	if body != "" {
		body += "\n"
	}

	body += text

	_, _, err = clt.restClt.Issues.EditComment(ctx, owner, repo, commentID, &github.IssueComment{Body: &body})
	return clt.wrapRetryableErrors(err)
}
