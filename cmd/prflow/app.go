package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/cfg"
	"github.com/simplesurance/prflow/internal/ciout"
	"github.com/simplesurance/prflow/internal/flowerr"
	"github.com/simplesurance/prflow/internal/githubclt"
	"github.com/simplesurance/prflow/internal/inspect"
	"github.com/simplesurance/prflow/internal/logfields"
	"github.com/simplesurance/prflow/internal/metrics"
	"github.com/simplesurance/prflow/internal/opresult"
	"github.com/simplesurance/prflow/internal/retry"
	"github.com/simplesurance/prflow/internal/rewrite"
	"github.com/simplesurance/prflow/internal/submodule"
)

const defGithubAPIURL = "https://api.github.com"

const (
	metricsResultSuccess = "success"
	metricsResultFailed  = "failed"
)

type githubClient interface {
	rewrite.GithubClient
	submodule.GithubClient
	inspect.GithubClient
	AppendToIssueComment(ctx context.Context, owner, repo string, commentID int64, text string) error
}

// reportedError is returned by commands after the failure was written to
// the step outputs and as error annotation.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

type app struct {
	config  *cfg.Config
	clt     githubClient
	retryer *retry.Retryer
	metrics *metrics.Collector
	out     *ciout.Writer

	// annotations receives the workflow command annotations, it must not be
	// the writer of out to keep the JSON result parseable.
	annotations io.Writer
}

func newApp(config *cfg.Config) (*app, error) {
	var opts []githubclt.Option
	if config.GithubAPIURL != "" && config.GithubAPIURL != defGithubAPIURL {
		opts = append(opts, githubclt.WithEnterpriseURL(config.GithubAPIURL))
	}

	restClt, err := githubclt.New(config.GithubAPIToken, opts...)
	if err != nil {
		return nil, err
	}

	var clt githubClient = restClt
	if config.DryRun {
		clt = githubclt.NewDryClient(restClt)
	}

	retryTimeout, err := config.RetryTimeoutDuration()
	if err != nil {
		return nil, err
	}

	var writerOpts []ciout.Option
	if globalArgs.jqQuery != "" {
		filter, err := ciout.NewFilter(globalArgs.jqQuery)
		if err != nil {
			return nil, fmt.Errorf("--jq: %w", err)
		}

		writerOpts = append(writerOpts, ciout.WithFilter(filter))
	}

	a := app{
		config:  config,
		clt:     clt,
		retryer: retry.NewRetryer(retryTimeout),
		out:     ciout.NewWriter(os.Stdout, writerOpts...),

		annotations: os.Stderr,
	}

	if config.Metrics.PushgatewayURL != "" {
		a.metrics = metrics.NewCollector()
	}

	return &a, nil
}

// context returns the context for running the command, it is cancelled
// when the --timeout expires or a termination signal is received.
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if globalArgs.timeout > 0 {
		return context.WithTimeout(ctx, globalArgs.timeout)
	}

	return context.WithCancel(ctx)
}

func (a *app) rewriter() *rewrite.Rewriter {
	return rewrite.New(a.clt, rewrite.WithFileFetchConcurrency(a.config.FileFetchConcurrency))
}

func (a *app) logFields(operation string) []zap.Field {
	return []zap.Field{
		logfields.Operation(operation),
		logfields.RepositoryOwner(globalArgs.owner),
		logfields.Repository(globalArgs.repo),
		logfields.PullRequest(globalArgs.prNumber),
	}
}

// observe records the operation metrics and pushes them to the pushgateway.
// Pushing failures are logged but do not fail the command.
func (a *app) observe(ctx context.Context, operation, result string, started time.Time) {
	if a.metrics == nil {
		return
	}

	repository := globalArgs.owner + "/" + globalArgs.repo
	a.metrics.ObserveOperation(repository, operation, result, time.Since(started))

	// the operation context might already be expired
	pushCtx, cancelFn := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancelFn()

	err := a.metrics.Push(pushCtx, a.config.Metrics.PushgatewayURL, a.config.Metrics.Job, map[string]string{
		"repository": repository,
		"operation":  operation,
	})
	if err != nil {
		logger.Warn(
			"pushing metrics failed",
			append(a.logFields(operation),
				logfields.Event("metrics_push_failed"),
				zap.Error(err),
			)...,
		)
	}
}

// fail writes msg as failure message step output and error annotation.
func (a *app) fail(msg string, err error) error {
	logger.Error(msg, logfields.Event("operation_failed"), zap.Error(err))

	if outErr := a.out.SetFailureMessage(msg); outErr != nil {
		logger.Warn(
			"writing failure message to step outputs failed",
			logfields.Event("output_write_failed"),
			zap.Error(outErr),
		)
	}

	ciout.Error(a.annotations, msg)

	return &reportedError{err: err}
}

// runOperation runs fn, it is retried when it fails with a retryable error
// and the retry timeout is configured.
// The result of a successful run is written to the outputs, failures are
// reported via fail.
func (a *app) runOperation(ctx context.Context, operation string, fn func(context.Context) (any, error)) error {
	var result any

	started := time.Now()
	err := a.retryer.Run(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	}, a.logFields(operation))
	if err != nil {
		a.observe(ctx, operation, metricsResultFailed, started)
		return a.fail(fmt.Sprintf("%s failed: %s", operation, err), err)
	}

	a.observe(ctx, operation, metricsResult(result), started)

	return a.out.WriteResult(ctx, result)
}

// runResultOperation runs an operation that reports failures as part of
// its result instead of returning an error.
// Failed results are written to the outputs like successful ones, the
// command does not fail.
func (a *app) runResultOperation(ctx context.Context, operation string, fn func(context.Context) *opresult.Result) error {
	var res *opresult.Result

	started := time.Now()
	err := a.retryer.Run(ctx, func(ctx context.Context) error {
		res = fn(ctx)
		if res.Failed() {
			if retryable, _ := flowerr.IsRetryable(res.Err); retryable {
				return res.Err
			}
		}

		return nil
	}, a.logFields(operation))
	if res == nil {
		res = opresult.Failed(operation, err)
	}

	a.observe(ctx, operation, string(res.Status), started)

	if res.Failed() {
		ciout.Warning(a.annotations, fmt.Sprintf("%s of pull request #%d failed: %s", operation, globalArgs.prNumber, res.Err))
	}

	return a.out.WriteResult(ctx, res)
}

func metricsResult(result any) string {
	if res, ok := result.(*opresult.Result); ok && res != nil {
		return string(res.Status)
	}

	return metricsResultSuccess
}
