package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/ryo246912/gh-pr-report/internal/config"
	prerrors "github.com/ryo246912/gh-pr-report/internal/errors"
	"github.com/ryo246912/gh-pr-report/internal/github"
	"github.com/ryo246912/gh-pr-report/internal/service"
	"github.com/ryo246912/gh-pr-report/internal/ui"
	"github.com/ryo246912/gh-pr-report/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "gh-pr-report <owner> <repo> [count]",
		Short: "Write the most recent pull requests of a repository to a text report",
		Long: `gh-pr-report fetches the most recently created pull requests of a GitHub
repository, in all states, and writes them to <owner>_<repo>_prs.txt.

The repository may also come from PR_REPORT_OWNER/PR_REPORT_REPO, GH_REPO or
the current git checkout. A token is read from --token, PR_REPORT_TOKEN,
GITHUB_TOKEN or the gh CLI login; without one, requests are unauthenticated.`,
		Version:       version,
		Args:          validateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), configPath)
			if err != nil {
				return err
			}
			if err := cfg.ApplyArgs(args); err != nil {
				return err
			}

			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("%w: %w", prerrors.ErrInvalidConfig, err)
			}
			defer func() { _ = log.Sync() }()

			var prompter ui.Prompter
			if cfg.Interactive && isatty.IsTerminal(os.Stdin.Fd()) {
				prompter = &ui.DefaultPrompter{}
			}

			return runReport(cmd.Context(), cfg, repositoryResolvers(config.CurrentRepository, prompter), log, stdout)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.BoolP("verbose", "v", false, "Include each pull request's diff in the report")
	flags.String("token", "", "GitHub token (default: PR_REPORT_TOKEN, GITHUB_TOKEN or gh auth)")
	flags.Duration("delay", config.DefaultDelay, "Pause between consecutive API requests")
	flags.Duration("timeout", config.DefaultTimeout, "Timeout for each API request")
	flags.String("output-dir", ".", "Directory the report file is written to")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("summary", false, "Also print a one-line summary per pull request to stdout")
	flags.BoolP("interactive", "i", false, "Prompt for the repository when it cannot be resolved")
	flags.String("api-url", config.DefaultAPIURL, "GitHub REST API base URL")
	flags.String("graphql-url", config.DefaultGraphQLURL, "GitHub GraphQL endpoint")
	flags.String("host", config.DefaultHost, "GitHub host used to look up gh CLI credentials")
	flags.StringVar(&configPath, "config", "", "Path to a config file")

	return cmd
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 3 {
		return fmt.Errorf("%w: expected <owner> <repo> [count], got %d arguments", prerrors.ErrInvalidArguments, len(args))
	}
	if len(args) == 1 {
		return fmt.Errorf("%w: <repo> is required when <owner> is given", prerrors.ErrInvalidArguments)
	}
	return nil
}

// repositoryResolvers orders the fallbacks used when no coordinates were
// given: the current checkout first, then the prompter when one is set.
func repositoryResolvers(current config.RepositoryResolver, prompter ui.Prompter) []config.RepositoryResolver {
	resolvers := []config.RepositoryResolver{current}
	if prompter != nil {
		resolvers = append(resolvers, prompter.PromptRepository)
	}
	return resolvers
}

// runReport wires the clients and services for cfg and performs one run.
func runReport(ctx context.Context, cfg *config.Config, resolvers []config.RepositoryResolver, log *zap.SugaredLogger, stdout io.Writer) error {
	repo, err := cfg.ResolveRepository(resolvers...)
	if err != nil {
		return err
	}
	token := cfg.ResolveToken()

	client, err := github.NewClient(github.Options{
		BaseURL: cfg.APIURL,
		Token:   token,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", prerrors.ErrInvalidConfig, err)
	}

	// GraphQL rejects anonymous requests.
	var stats github.StatsClient
	if client.Authenticated() {
		stats = github.NewGraphQLClient(cfg.GraphQLURL, client.HTTPClient())
	}

	pacer := service.NewPacer(cfg.Delay)
	reportService := service.NewReportService(
		service.NewFetcher(client, pacer, log),
		service.NewDiffFetcher(client, pacer, log),
		stats,
		log,
	)

	result, err := reportService.Run(ctx, service.RunOptions{
		Repository:    repo,
		Count:         cfg.Count,
		Verbose:       cfg.Verbose,
		OutputDir:     cfg.OutputDir,
		Authenticated: client.Authenticated(),
	})
	if err != nil {
		return err
	}

	if result.Fetch.PartialErr != nil {
		log.Warnw("report is incomplete", "fetched", len(result.PullRequests), "error", result.Fetch.PartialErr)
	}

	if cfg.Summary {
		if err := ui.PrintSummary(stdout, result.PullRequests); err != nil {
			return err
		}
	}

	if result.Written == 0 {
		fmt.Fprintln(stdout, "No pull requests to write.")
		return nil
	}
	fmt.Fprintf(stdout, "Successfully written %d pull requests to %s\n", result.Written, result.Path)
	return nil
}

// mapErrorToExitCode maps errors to exit codes: 2 for usage and
// configuration problems, 1 for everything else.
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, prerrors.ErrMissingRepository) ||
		errors.Is(err, prerrors.ErrInvalidCount) ||
		errors.Is(err, prerrors.ErrInvalidConfig) ||
		errors.Is(err, prerrors.ErrInvalidArguments) {
		return 2
	}

	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(mapErrorToExitCode(err))
	}
}
