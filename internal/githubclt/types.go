package githubclt

import (
	"time"

	"github.com/google/go-github/v62/github"
)

// Comparison status values returned by CompareCommits.
const (
	CompareStatusIdentical = "identical"
	CompareStatusAhead     = "ahead"
	CompareStatusBehind    = "behind"
	CompareStatusDiverged  = "diverged"
)

// PullRequestStateOpen is the State of pull requests that are neither
// closed nor merged.
const PullRequestStateOpen = "open"

// PullRequest is a read-only snapshot of a GitHub pull request.
type PullRequest struct {
	Number     int
	Title      string
	Body       string
	State      string
	HeadBranch string
	HeadSHA    string
	BaseBranch string
	// Mergeable is nil when GitHub has not computed the mergeability yet.
	Mergeable   *bool
	MergedAt    time.Time
	CommitCount int
}

func (pr *PullRequest) IsMerged() bool {
	return !pr.MergedAt.IsZero()
}

// Identity is the author or committer of a commit.
type Identity struct {
	Name  string
	Email string
	Date  time.Time
}

// Commit is a git commit object.
type Commit struct {
	SHA       string
	Parents   []string
	Tree      string
	Author    Identity
	Committer Identity
	Message   string
}

// TreeEntry is an element of a tree that is created via CreateTree.
// A nil SHA deletes the path from the base tree.
type TreeEntry struct {
	Path string
	SHA  *string
	Mode string
	Type string
}

// File modes and types of tree entries.
const (
	ModeFile      = "100644"
	ModeSymlink   = "120000"
	ModeSubmodule = "160000"

	TypeBlob   = "blob"
	TypeCommit = "commit"
)

// ChangedFile is a file that was changed in a pull request.
type ChangedFile struct {
	Filename string
	// PreviousFilename is only set when the file was renamed.
	PreviousFilename string
	Status           string
}

// Comparison is the result of comparing two commits.
type Comparison struct {
	Status       string
	AheadBy      int
	BehindBy     int
	MergeBaseSHA string
	// Commits contains the SHAs of the commits that are reachable from
	// head but not from base, oldest first.
	Commits []string
	Files   []string
}

// Review is a pull request review.
type Review struct {
	User        string
	State       string
	SubmittedAt time.Time
}

// FileContent is the content of a path at a specific ref.
type FileContent struct {
	Path string
	// Type is one of "file", "symlink" or "submodule".
	Type string
	// SHA is the blob SHA, for submodules it is the SHA of the commit the
	// submodule points to.
	SHA     string
	Content []byte
}

func toPullRequest(pr *github.PullRequest) *PullRequest {
	return &PullRequest{
		Number:      pr.GetNumber(),
		Title:       pr.GetTitle(),
		Body:        pr.GetBody(),
		State:       pr.GetState(),
		HeadBranch:  pr.GetHead().GetRef(),
		HeadSHA:     pr.GetHead().GetSHA(),
		BaseBranch:  pr.GetBase().GetRef(),
		Mergeable:   pr.Mergeable,
		MergedAt:    pr.GetMergedAt().Time,
		CommitCount: pr.GetCommits(),
	}
}

func toIdentity(a *github.CommitAuthor) Identity {
	if a == nil {
		return Identity{}
	}

	return Identity{
		Name:  a.GetName(),
		Email: a.GetEmail(),
		Date:  a.GetDate().Time,
	}
}

func fromIdentity(i Identity) *github.CommitAuthor {
	if i.Name == "" && i.Email == "" {
		return nil
	}

	result := github.CommitAuthor{
		Name:  github.String(i.Name),
		Email: github.String(i.Email),
	}

	if !i.Date.IsZero() {
		result.Date = &github.Timestamp{Time: i.Date}
	}

	return &result
}

func parentSHAs(parents []*github.Commit) []string {
	result := make([]string, 0, len(parents))
	for _, p := range parents {
		result = append(result, p.GetSHA())
	}

	return result
}

func toCommit(c *github.Commit) *Commit {
	return &Commit{
		SHA:       c.GetSHA(),
		Parents:   parentSHAs(c.Parents),
		Tree:      c.GetTree().GetSHA(),
		Author:    toIdentity(c.GetAuthor()),
		Committer: toIdentity(c.GetCommitter()),
		Message:   c.GetMessage(),
	}
}

// repositoryCommitToCommit converts the commit objects returned by the
// list-commit endpoints. Their parent information is only set on the outer
// RepositoryCommit object.
func repositoryCommitToCommit(rc *github.RepositoryCommit) *Commit {
	result := toCommit(rc.GetCommit())
	result.SHA = rc.GetSHA()
	result.Parents = parentSHAs(rc.Parents)

	// rc.Commit.Verification is not converted, signatures of rewritten
	// commits would not verify.

	return result
}
