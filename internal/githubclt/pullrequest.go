package githubclt

import (
	"context"
	"errors"
	"sort"

	"github.com/google/go-github/v62/github"
)

// PullRequest returns the pull request with the given number.
func (clt *Client) PullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	pr, _, err := clt.restClt.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, clt.wrapRetryableErrors(err)
	}

	if pr.GetHead() == nil {
		return nil, errors.New("got pull request object with empty head")
	}

	if pr.GetHead().GetRef() == "" {
		return nil, errors.New("got pull request object with empty head ref field")
	}

	if pr.GetBase().GetRef() == "" {
		return nil, errors.New("got pull request object with empty base ref field")
	}

	return toPullRequest(pr), nil
}

// PullRequestCommits returns all commits of a pull request, oldest first.
func (clt *Client) PullRequestCommits(ctx context.Context, owner, repo string, number int) ([]*Commit, error) {
	var result []*Commit

	opts := github.ListOptions{PerPage: perPage}
	for {
		commits, resp, err := clt.restClt.PullRequests.ListCommits(ctx, owner, repo, number, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		for _, c := range commits {
			result = append(result, repositoryCommitToCommit(c))
		}

		if resp.NextPage == 0 {
			return result, nil
		}

		opts.Page = resp.NextPage
	}
}

// PullRequestFiles returns the files changed in a pull request.
func (clt *Client) PullRequestFiles(ctx context.Context, owner, repo string, number int) ([]*ChangedFile, error) {
	var result []*ChangedFile

	opts := github.ListOptions{PerPage: perPage}
	for {
		files, resp, err := clt.restClt.PullRequests.ListFiles(ctx, owner, repo, number, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		for _, f := range files {
			result = append(result, &ChangedFile{
				Filename:         f.GetFilename(),
				PreviousFilename: f.GetPreviousFilename(),
				Status:           f.GetStatus(),
			})
		}

		if resp.NextPage == 0 {
			return result, nil
		}

		opts.Page = resp.NextPage
	}
}

// PullRequestReviews returns all reviews of a pull request in chronological
// order.
func (clt *Client) PullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*Review, error) {
	var result []*Review

	opts := github.ListOptions{PerPage: perPage}
	for {
		reviews, resp, err := clt.restClt.PullRequests.ListReviews(ctx, owner, repo, number, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		for _, r := range reviews {
			result = append(result, &Review{
				User:        r.GetUser().GetLogin(),
				State:       r.GetState(),
				SubmittedAt: r.GetSubmittedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SubmittedAt.Before(result[j].SubmittedAt)
	})

	return result, nil
}

// PullRequestsWithCommit returns the pull requests that are associated with
// the commit. It includes open, closed and merged pull requests.
func (clt *Client) PullRequestsWithCommit(ctx context.Context, owner, repo, sha string) ([]*PullRequest, error) {
	var result []*PullRequest

	opts := github.ListOptions{PerPage: perPage}
	for {
		prs, resp, err := clt.restClt.PullRequests.ListPullRequestsWithCommit(ctx, owner, repo, sha, &opts)
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}

			return nil, clt.wrapRetryableErrors(err)
		}

		for _, pr := range prs {
			result = append(result, toPullRequest(pr))
		}

		if resp.NextPage == 0 {
			return result, nil
		}

		opts.Page = resp.NextPage
	}
}

// OpenPullRequestsWithHead returns all open pull requests whose head commit
// is sha.
func (clt *Client) OpenPullRequestsWithHead(ctx context.Context, owner, repo, sha string) ([]*PullRequest, error) {
	var result []*PullRequest

	it := clt.ListPullRequests(ctx, owner, repo, "open", "created", "desc")
	for {
		pr, err := it.Next()
		if err != nil {
			return nil, err
		}

		if pr == nil {
			return result, nil
		}

		if pr.GetHead().GetSHA() == sha {
			result = append(result, toPullRequest(pr))
		}
	}
}

type PRIterator interface {
	Next() (*github.PullRequest, error)
}

type PRIter struct {
	clt *Client

	ctx   context.Context
	owner string
	repo  string

	filterState   string
	sort          string
	sortDirection string

	unseen []*github.PullRequest

	nextPage int
	finished bool
}

// Next returns the next pullRequest.
// When the last result was returned a nil PullRequest is returned.
func (it *PRIter) Next() (*github.PullRequest, error) {
	if len(it.unseen) > 0 {
		result := it.unseen[0]
		it.unseen = it.unseen[1:]

		return result, nil
	}

	if it.finished {
		return nil, nil
	}

	prs, resp, err := it.clt.restClt.PullRequests.List(it.ctx, it.owner, it.repo, &github.PullRequestListOptions{
		State:     it.filterState,
		Sort:      it.sort,
		Direction: it.sortDirection,
		ListOptions: github.ListOptions{
			Page:    it.nextPage,
			PerPage: perPage,
		},
	})
	if err != nil {
		return nil, it.clt.wrapRetryableErrors(err)
	}

	if resp.NextPage == 0 || len(prs) == 0 {
		it.finished = true
	} else {
		it.nextPage = resp.NextPage
	}

	it.unseen = prs

	return it.Next()
}

// ListPullRequests returns an iterator for receiving all pull requests.
// The parameters state, sort, sortDirection expect the same values then their
// pendants in the struct github.PullRequestListOptions.
func (clt *Client) ListPullRequests(ctx context.Context, owner, repo, state, sort, sortDirection string) PRIterator {
	return &PRIter{
		clt:           clt,
		ctx:           ctx,
		owner:         owner,
		repo:          repo,
		filterState:   state,
		sort:          sort,
		sortDirection: sortDirection,
		nextPage:      1,
	}
}
