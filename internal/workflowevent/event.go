// Package workflowevent reads the GitHub webhook event that triggered a
// GitHub Actions workflow run.
package workflowevent

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/logfields"
)

// Environment variables set by GitHub Actions.
const (
	EventNameEnv = "GITHUB_EVENT_NAME"
	EventPathEnv = "GITHUB_EVENT_PATH"
)

// ErrUnsupportedEvent is returned when the event payload can not be parsed
// because the event type is unknown.
var ErrUnsupportedEvent = errors.New("unsupported event type")

// Event contains the pull request related fields of a webhook event.
// Fields that are not part of the event have their zero value.
type Event struct {
	// Type is the webhook event type, e.g. "pull_request".
	Type            string
	RepositoryOwner string
	Repository      string
	// PullRequestNr is 0 if the event does not refer to a pull request.
	PullRequestNr int
	// CommitID is the head commit of the pull request.
	CommitID   string
	Branch     string
	BaseBranch string
}

func (e *Event) LogFields() []zap.Field {
	fields := make([]zap.Field, 0, 6) // cap == max. size of fields we append

	fields = append(fields, zap.String("github.event_type", e.Type))

	if e.Repository != "" {
		fields = append(fields, logfields.Repository(e.Repository))
	}

	if e.CommitID != "" {
		fields = append(fields, logfields.Commit(e.CommitID))
	}

	if e.Branch != "" {
		fields = append(fields, logfields.Branch(e.Branch))
	}

	if e.BaseBranch != "" {
		fields = append(fields, logfields.BaseBranch(e.BaseBranch))
	}

	if e.PullRequestNr != 0 {
		fields = append(fields, logfields.PullRequest(e.PullRequestNr))
	}

	return fields
}

// FromEnv reads the event of the workflow run from the file referenced by
// the GITHUB_EVENT_PATH environment variable.
// If the environment variables are not set, nil is returned.
func FromEnv(lookup func(string) (string, bool)) (*Event, error) {
	eventType, ok := lookup(EventNameEnv)
	if !ok || eventType == "" {
		return nil, nil
	}

	path, ok := lookup(EventPathEnv)
	if !ok || path == "" {
		return nil, nil
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event file failed: %w", err)
	}

	return Parse(eventType, payload)
}

// Parse converts a webhook event payload of type eventType to an Event.
func Parse(eventType string, payload []byte) (*Event, error) {
	ghEvent, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		return nil, fmt.Errorf("parsing %s event failed: %w", eventType, err)
	}

	ev := Event{Type: eventType}

	switch event := ghEvent.(type) {
	case *github.PullRequestEvent:
		ev.setRepository(event.GetRepo())
		ev.setPullRequest(event.GetPullRequest())

	case *github.PullRequestTargetEvent:
		ev.setRepository(event.GetRepo())
		ev.setPullRequest(event.GetPullRequest())

	case *github.PullRequestReviewEvent:
		ev.setRepository(event.GetRepo())
		ev.setPullRequest(event.GetPullRequest())

	case *github.IssueCommentEvent:
		ev.setRepository(event.GetRepo())
		if event.GetIssue().IsPullRequest() {
			ev.PullRequestNr = event.GetIssue().GetNumber()
		}

	case *github.WorkflowDispatchEvent:
		ev.setRepository(event.GetRepo())

	default:
		return nil, fmt.Errorf("%s: %w", eventType, ErrUnsupportedEvent)
	}

	return &ev, nil
}

func (e *Event) setRepository(repo *github.Repository) {
	if repo == nil {
		return
	}

	e.RepositoryOwner = repo.GetOwner().GetLogin()
	e.Repository = repo.GetName()
}

func (e *Event) setPullRequest(pr *github.PullRequest) {
	if pr == nil {
		return
	}

	e.PullRequestNr = pr.GetNumber()
	e.CommitID = pr.GetHead().GetSHA()
	e.Branch = pr.GetHead().GetRef()
	e.BaseBranch = pr.GetBase().GetRef()
}
