package localpipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/logfields"
)

// CommandError is returned when a command exits with a non-zero code.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s failed", strings.Join(e.Args, " "))

	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	}

	if e.Stderr != "" {
		msg += ": " + e.Stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Git runs git commands in a fixed working directory.
type Git struct {
	Dir string
	// Env is appended to the environment of the current process.
	Env []string

	logger *zap.Logger
}

func NewGit(dir string, logger *zap.Logger) *Git {
	return &Git{
		Dir:    dir,
		logger: logger,
	}
}

// ExecOpts configures an individual command execution.
type ExecOpts struct {
	// AllowFailure makes Exec return the output and a nil error when the
	// command exits with a non-zero code.
	AllowFailure bool
}

// Exec runs git with args and returns its trimmed stdout.
// The returned exit code is -1 if the command could not be started.
func (g *Git) Exec(ctx context.Context, opts ExecOpts, args ...string) (string, int, error) {
	var stdout, stderr bytes.Buffer

	logger := g.logger.With(logfields.Command("git", args), logfields.WorkDir(g.Dir))
	logger.Debug("running command")

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(g.Env) > 0 {
		cmd.Env = append(os.Environ(), g.Env...)
	}

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	if err == nil {
		return out, 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return "", -1, &CommandError{Args: args, ExitCode: -1, Err: err}
	}

	exitCode := exitErr.ExitCode()
	if opts.AllowFailure {
		logger.Debug(
			"command failed, failure is allowed",
			logfields.ExitCode(exitCode),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
		)
		return out, exitCode, nil
	}

	return out, exitCode, &CommandError{
		Args:     args,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr.String()),
		Err:      err,
	}
}

// Run runs git with args and returns its trimmed stdout. Non-zero exit codes
// are returned as *CommandError.
func (g *Git) Run(ctx context.Context, args ...string) (string, error) {
	out, _, err := g.Exec(ctx, ExecOpts{}, args...)
	return out, err
}

// Lines runs git with args and returns the non-empty lines of stdout.
func (g *Git) Lines(ctx context.Context, args ...string) ([]string, error) {
	out, err := g.Run(ctx, args...)
	if err != nil {
		return nil, err
	}

	return splitLines(out), nil
}

func splitLines(s string) []string {
	var result []string

	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			result = append(result, l)
		}
	}

	return result
}
