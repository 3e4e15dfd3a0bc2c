// Package localpipeline squashes, rebases, merges and pushes a pull request
// branch in a local git repository.
// Conflicts in submodule pointers that happen during the rebase are resolved
// automatically by using the submodule commit of the pull request.
package localpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/logfields"
	"github.com/simplesurance/prflow/internal/opresult"
	"github.com/simplesurance/prflow/internal/submodule"
)

const loggerName = "local_pipeline"

const OperationName = "localPipeline"

const defRemote = "origin"

// maxRebaseSteps limits how often a rebase is continued after resolving
// conflicts.
const maxRebaseSteps = 1000

// State is a step of the rebase conflict handling.
type State string

const (
	StateRebasing          State = "rebasing"
	StateConflictsDetected State = "conflicts_detected"
	StateFatal             State = "fatal"
	StateAutoResolved      State = "auto_resolved"
	StateContinueRebase    State = "continue_rebase"
	StatePushed            State = "pushed"
)

func logState(s State) zap.Field {
	return zap.String("state", string(s))
}

// ConflictError is returned when rebasing caused conflicts in files that are
// not submodules.
type ConflictError struct {
	Files []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("rebase conflicts in files that are not submodules: %s", strings.Join(e.Files, ", "))
}

type Pipeline struct {
	git    *Git
	logger *zap.Logger

	remote         string
	prNumber       int
	prBranch       string
	targetBranch   string
	initSubmodules bool
	submodulePaths []string
	merge          bool
}

type Option func(*Pipeline)

// WithRemote sets the name of the git remote, the default is "origin".
func WithRemote(name string) Option {
	return func(p *Pipeline) {
		p.remote = name
	}
}

// WithInitSubmodules initializes submodules recursively after checking out
// the pull request branch.
func WithInitSubmodules() Option {
	return func(p *Pipeline) {
		p.initSubmodules = true
	}
}

// WithSubmodulePaths sets the paths of the submodules whose conflicts are
// resolved automatically.
// By default the paths are read from the .gitmodules file of the pull
// request branch.
func WithSubmodulePaths(paths []string) Option {
	return func(p *Pipeline) {
		p.submodulePaths = paths
	}
}

// WithoutMerge disables fast-forwarding and pushing the target branch, the
// pull request branch is only squashed, rebased and pushed.
func WithoutMerge() Option {
	return func(p *Pipeline) {
		p.merge = false
	}
}

// WithEnv sets additional environment variables for git commands.
func WithEnv(env []string) Option {
	return func(p *Pipeline) {
		p.git.Env = env
	}
}

// New creates a pipeline that operates on the git repository in dir.
func New(dir string, prNumber int, prBranch, targetBranch string, opts ...Option) *Pipeline {
	logger := zap.L().Named(loggerName).With(
		logfields.PullRequest(prNumber),
		logfields.Branch(prBranch),
		logfields.BaseBranch(targetBranch),
	)

	p := Pipeline{
		git:          NewGit(dir, logger),
		logger:       logger,
		remote:       defRemote,
		prNumber:     prNumber,
		prBranch:     prBranch,
		targetBranch: targetBranch,
		merge:        true,
	}

	for _, o := range opts {
		o(&p)
	}

	return &p
}

func (p *Pipeline) remoteRef(branch string) string {
	return "refs/remotes/" + p.remote + "/" + branch
}

// Run fetches the pull request and target branch, squashes the pull request
// commits, rebases them onto the target branch and pushes the result.
// If merging is enabled the target branch is then fast-forwarded to the
// pull request branch and pushed.
// If the rebase causes conflicts in files that are not submodules, the rebase
// is aborted and a *ConflictError is returned.
func (p *Pipeline) Run(ctx context.Context) (*opresult.Result, error) {
	if err := p.fetch(ctx); err != nil {
		return nil, err
	}

	if _, err := p.git.Run(ctx, "checkout", "-B", p.prBranch, p.remoteRef(p.prBranch)); err != nil {
		return nil, err
	}

	origHead, err := p.git.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}

	if p.initSubmodules {
		if _, err := p.git.Run(ctx, "submodule", "update", "--init", "--recursive"); err != nil {
			return nil, err
		}
	}

	smPaths, err := p.readSubmodulePaths()
	if err != nil {
		return nil, err
	}

	if err := p.squash(ctx); err != nil {
		return nil, fmt.Errorf("squashing commits failed: %w", err)
	}

	if err := p.rebase(ctx, smPaths); err != nil {
		return nil, err
	}

	head, err := p.git.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}

	changed := head != origHead
	if changed {
		_, err := p.git.Run(ctx,
			"push",
			fmt.Sprintf("--force-with-lease=refs/heads/%s:%s", p.prBranch, origHead),
			p.remote,
			"HEAD:refs/heads/"+p.prBranch,
		)
		if err != nil {
			return nil, fmt.Errorf("pushing pull request branch failed: %w", err)
		}

		p.logger.Info("pushed pull request branch", logState(StatePushed), logfields.Commit(head))
	} else {
		p.logger.Info("pull request branch is unchanged, skipping push", logfields.Commit(head))
	}

	if p.merge {
		if err := p.mergeAndPush(ctx); err != nil {
			return nil, err
		}

		return opresult.Success(OperationName, head), nil
	}

	if !changed {
		return opresult.Skipped(OperationName), nil
	}

	return opresult.Success(OperationName, head), nil
}

func (p *Pipeline) fetch(ctx context.Context) error {
	args := []string{"fetch", "--no-tags"}

	shallow, err := p.git.Run(ctx, "rev-parse", "--is-shallow-repository")
	if err != nil {
		return err
	}

	if shallow == "true" {
		args = append(args, "--unshallow")
	}

	args = append(args,
		p.remote,
		fmt.Sprintf("+refs/heads/%s:%s", p.prBranch, p.remoteRef(p.prBranch)),
		fmt.Sprintf("+refs/heads/%s:%s", p.targetBranch, p.remoteRef(p.targetBranch)),
	)

	_, err = p.git.Run(ctx, args...)
	return err
}

func (p *Pipeline) readSubmodulePaths() ([]string, error) {
	if p.submodulePaths != nil {
		return p.submodulePaths, nil
	}

	data, err := os.ReadFile(filepath.Join(p.git.Dir, submodule.ManifestPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	sms, err := submodule.ParseManifest(data)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(sms))
	for _, sm := range sms {
		result = append(result, sm.Path)
	}

	return result, nil
}

// squash replaces the commits since the merge-base with the target branch
// with a single commit.
func (p *Pipeline) squash(ctx context.Context) error {
	mergeBase, err := p.git.Run(ctx, "merge-base", "HEAD", p.remoteRef(p.targetBranch))
	if err != nil {
		return err
	}

	out, err := p.git.Run(ctx, "rev-list", "--count", mergeBase+"..HEAD")
	if err != nil {
		return err
	}

	cnt, err := strconv.Atoi(out)
	if err != nil {
		return fmt.Errorf("parsing commit count %q failed: %w", out, err)
	}

	if cnt <= 1 {
		p.logger.Debug("squashing not needed", zap.Int("commit_count", cnt))
		return nil
	}

	log, err := p.git.Run(ctx, "log", "--reverse", "--format=%B%x00", mergeBase+"..HEAD")
	if err != nil {
		return err
	}

	var msgs []string
	for _, msg := range strings.Split(log, "\x00") {
		msg = strings.TrimSpace(msg)
		if msg != "" {
			msgs = append(msgs, msg)
		}
	}

	if _, err := p.git.Run(ctx, "reset", "--soft", mergeBase); err != nil {
		return err
	}

	args := []string{
		"commit", "--no-verify", "--allow-empty",
		"-m", fmt.Sprintf("Squashed commits of PR #%d", p.prNumber),
	}
	if len(msgs) > 0 {
		args = append(args, "-m", strings.Join(msgs, "\n\n"))
	}

	if _, err := p.git.Run(ctx, args...); err != nil {
		return err
	}

	p.logger.Info("squashed commits", zap.Int("commit_count", cnt), logfields.Commit(mergeBase))

	return nil
}

func (p *Pipeline) rebase(ctx context.Context, submodulePaths []string) error {
	upstream := p.remoteRef(p.targetBranch)

	p.logger.Info("rebasing onto target branch", logState(StateRebasing))

	_, exitCode, err := p.git.Exec(ctx, ExecOpts{AllowFailure: true}, "rebase", upstream)

	for step := 0; ; step++ {
		if err != nil {
			return err
		}

		if exitCode == 0 {
			return nil
		}

		if step >= maxRebaseSteps {
			p.abortRebase(ctx)
			return fmt.Errorf("rebase did not finish after resolving conflicts %d times", step)
		}

		var conflicts []string
		conflicts, err = p.git.Lines(ctx, "diff", "--name-only", "--diff-filter=U")
		if err != nil {
			p.abortRebase(ctx)
			return err
		}

		if len(conflicts) == 0 {
			p.abortRebase(ctx)
			return fmt.Errorf("rebase failed with exit code %d without conflicting files", exitCode)
		}

		p.logger.Info("rebase caused conflicts", logState(StateConflictsDetected), zap.Strings("files", conflicts))

		var nonSubmodule []string
		for _, f := range conflicts {
			if !isSubmodulePath(submodulePaths, f) {
				nonSubmodule = append(nonSubmodule, f)
			}
		}

		if len(nonSubmodule) > 0 {
			p.logger.Error(
				"conflicts in files that are not submodules can not be resolved",
				logState(StateFatal),
				zap.Strings("files", nonSubmodule),
			)
			p.abortRebase(ctx)
			return &ConflictError{Files: nonSubmodule}
		}

		for _, path := range conflicts {
			if err := p.acceptTheirs(ctx, path); err != nil {
				p.abortRebase(ctx)
				return err
			}
		}

		p.logger.Info("resolved submodule conflicts", logState(StateAutoResolved), zap.Strings("files", conflicts))
		p.logger.Debug("continuing rebase", logState(StateContinueRebase))

		exitCode, err = p.continueRebase(ctx)
		if err != nil {
			p.abortRebase(ctx)
			return err
		}
	}
}

// continueRebase runs "rebase --continue" without opening an editor for the
// commit message. A non-zero exit code is not an error, it is returned
// for the next conflict resolution step.
func (p *Pipeline) continueRebase(ctx context.Context) (int, error) {
	_, exitCode, err := p.git.Exec(ctx, ExecOpts{AllowFailure: true}, "-c", "core.editor=true", "rebase", "--continue")
	if err != nil {
		return exitCode, fmt.Errorf("continuing rebase failed: %w", err)
	}

	return exitCode, nil
}

// acceptTheirs resolves the conflict of path by staging the version of the
// commit that is replayed.
func (p *Pipeline) acceptTheirs(ctx context.Context, path string) error {
	entries, err := p.git.Lines(ctx, "ls-files", "--unmerged", "--", path)
	if err != nil {
		return err
	}

	for _, e := range entries {
		// format: <mode> SP <sha> SP <stage> TAB <path>
		meta, entryPath, found := strings.Cut(e, "\t")
		if !found || entryPath != path {
			continue
		}

		fields := strings.Fields(meta)
		if len(fields) != 3 || fields[2] != "3" {
			continue
		}

		_, err := p.git.Run(ctx, "update-index", "--cacheinfo", fields[0]+","+fields[1]+","+path)
		return err
	}

	// the path was deleted by the replayed commit
	_, err = p.git.Run(ctx, "rm", "--cached", "--quiet", "--", path)
	return err
}

func (p *Pipeline) abortRebase(ctx context.Context) {
	_, exitCode, err := p.git.Exec(context.WithoutCancel(ctx), ExecOpts{AllowFailure: true}, "rebase", "--abort")
	if err != nil || exitCode != 0 {
		p.logger.Warn("aborting rebase failed", logfields.ExitCode(exitCode), zap.Error(err))
	}
}

func (p *Pipeline) mergeAndPush(ctx context.Context) error {
	if _, err := p.git.Run(ctx, "checkout", "-B", p.targetBranch, p.remoteRef(p.targetBranch)); err != nil {
		return err
	}

	if _, err := p.git.Run(ctx, "pull", "--ff-only", p.remote, p.targetBranch); err != nil {
		return fmt.Errorf("updating target branch failed: %w", err)
	}

	if _, err := p.git.Run(ctx, "merge", "--ff-only", p.prBranch); err != nil {
		return fmt.Errorf("fast-forwarding target branch failed: %w", err)
	}

	if _, err := p.git.Run(ctx, "push", p.remote, "HEAD:refs/heads/"+p.targetBranch); err != nil {
		return fmt.Errorf("pushing target branch failed: %w", err)
	}

	p.logger.Info("merged pull request into target branch", logState(StatePushed))

	return nil
}

func isSubmodulePath(submodulePaths []string, p string) bool {
	for _, sp := range submodulePaths {
		if submodule.ContainsPath(sp, p) {
			return true
		}
	}

	return false
}
