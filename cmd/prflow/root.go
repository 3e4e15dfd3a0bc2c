package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/simplesurance/prflow/internal/cfg"
	"github.com/simplesurance/prflow/internal/logfields"
	"github.com/simplesurance/prflow/internal/workflowevent"
)

// repositoryEnv is set by GitHub Actions to "<owner>/<repository>".
const repositoryEnv = "GITHUB_REPOSITORY"

type globalArguments struct {
	cfgFile  string
	verbose  bool
	owner    string
	repo     string
	prNumber int
	dryRun   bool
	jqQuery  string
	timeout  time.Duration
}

var globalArgs globalArguments

// state is initialized by the PersistentPreRunE function of rootCmd.
var state *app

// workflowEvent is the event that triggered the workflow run, it is nil when
// prflow does not run in a GitHub Actions workflow.
var workflowEvent *workflowevent.Event

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Squash, rebase and inspect GitHub pull requests from CI workflows",
	Long: `prflow runs single pull request lifecycle steps of a CI workflow.

Results are written as JSON to stdout and, when GITHUB_OUTPUT is set, as
step outputs. Logs are written to stderr.

When running in a GitHub Actions workflow, the repository and pull request
default to the ones of the event that triggered the workflow run.

The GitHub API token is read from the GITHUB_TOKEN environment variable or
the configuration file. Environment variables can also be defined in a .env
file in the current directory.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&globalArgs.cfgFile, "cfg-file", "c", "", "path to an optional TOML configuration file")
	flags.BoolVarP(&globalArgs.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&globalArgs.owner, "owner", "", "owner of the repository, defaults to the owner part of $"+repositoryEnv)
	flags.StringVar(&globalArgs.repo, "repo", "", "name of the repository, defaults to the name part of $"+repositoryEnv)
	flags.IntVar(&globalArgs.prNumber, "pr", 0, "number of the pull request, defaults to the pull request of the workflow event")
	flags.BoolVar(&globalArgs.dryRun, "dry-run", false, "simulate all changes on GitHub")
	flags.StringVar(&globalArgs.jqQuery, "jq", "", "jq expression that is applied to the result before it is written to stdout")
	flags.DurationVar(&globalArgs.timeout, "timeout", 0, "abort the command after this duration, 0 disables the timeout")
}

func loadConfig(cmd *cobra.Command) (*cfg.Config, error) {
	if err := cfg.LoadDotEnv(); err != nil {
		return nil, err
	}

	config, err := cfg.LoadFile(globalArgs.cfgFile)
	if err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("dry-run") {
		config.DryRun = globalArgs.dryRun
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setup(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mustInitLogger(config, globalArgs.verbose)

	if err := resolveRepository(); err != nil {
		return err
	}

	resolvePullRequest()

	logger.Debug(
		"loaded configuration",
		logfields.Event("cfg_loaded"),
		zap.String("cfg_file", globalArgs.cfgFile),
		zap.String("github_api_token", hide(config.GithubAPIToken)),
		zap.String("github_api_url", config.GithubAPIURL),
		zap.String("log_format", config.LogFormat),
		zap.String("log_time_key", config.LogTimeKey),
		zap.String("log_level", config.LogLevel),
		zap.String("retry_timeout", config.RetryTimeout),
		zap.Int("file_fetch_concurrency", config.FileFetchConcurrency),
		zap.Bool("dry_run", config.DryRun),
		zap.String("pushgateway_url", config.Metrics.PushgatewayURL),
		logfields.RepositoryOwner(globalArgs.owner),
		logfields.Repository(globalArgs.repo),
		logfields.PullRequest(globalArgs.prNumber),
	)

	state, err = newApp(config)
	return err
}

// resolveRepository sets the owner and repository arguments from
// $GITHUB_REPOSITORY when they were not passed.
func resolveRepository() error {
	if globalArgs.owner != "" && globalArgs.repo != "" {
		return nil
	}

	val := os.Getenv(repositoryEnv)
	if val == "" {
		return nil
	}

	owner, repo, found := strings.Cut(val, "/")
	if !found || owner == "" || repo == "" {
		return fmt.Errorf("%s environment variable has an invalid value: %q, expecting <owner>/<repository>", repositoryEnv, val)
	}

	if globalArgs.owner == "" {
		globalArgs.owner = owner
	}

	if globalArgs.repo == "" {
		globalArgs.repo = repo
	}

	return nil
}

// resolvePullRequest sets the pull request number argument from the
// workflow event when it was not passed.
func resolvePullRequest() {
	ev, err := workflowevent.FromEnv(os.LookupEnv)
	if err != nil {
		logger.Debug(
			"workflow event is not used, reading it failed",
			logfields.Event("workflow_event_read_failed"),
			zap.Error(err),
		)
		return
	}

	if ev == nil {
		return
	}

	if globalArgs.owner == "" && globalArgs.repo == "" {
		globalArgs.owner = ev.RepositoryOwner
		globalArgs.repo = ev.Repository
	}

	// the event of a different repository is not applicable
	if ev.RepositoryOwner != globalArgs.owner || ev.Repository != globalArgs.repo {
		return
	}

	workflowEvent = ev

	if globalArgs.prNumber == 0 {
		globalArgs.prNumber = ev.PullRequestNr
	}

	logger.Debug("read workflow event", append(ev.LogFields(), logfields.Event("workflow_event_read"))...)
}

func requireRepository() error {
	if globalArgs.owner == "" {
		return errors.New("--owner must be set")
	}

	if globalArgs.repo == "" {
		return errors.New("--repo must be set")
	}

	return nil
}

func requirePullRequest() error {
	if err := requireRepository(); err != nil {
		return err
	}

	if globalArgs.prNumber <= 0 {
		return errors.New("--pr must be set to a pull request number")
	}

	return nil
}

func addSubmodulePathFlag(flags *pflag.FlagSet, dst *[]string, usage string) {
	flags.StringSliceVar(
		dst,
		"submodule-path",
		nil,
		"path of a submodule "+usage+", can be passed multiple times, defaults to the submodules in .gitmodules of the pull request branch",
	)
}
