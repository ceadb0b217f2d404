package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jinwoo1225/gh-prmetrics/internal/config"
	"github.com/jinwoo1225/gh-prmetrics/internal/logging"
	"github.com/jinwoo1225/gh-prmetrics/internal/metrics"
	"github.com/jinwoo1225/gh-prmetrics/internal/pullrequest"
	"github.com/jinwoo1225/gh-prmetrics/internal/report"
	"github.com/jinwoo1225/gh-prmetrics/internal/ui"
	"github.com/jinwoo1225/gh-prmetrics/internal/utils"
)

const (
	appName    = "gh-prmetrics"
	appVersion = "0.1.0"
	configFlag = "config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	cmd := &cobra.Command{
		Use:   "gh prmetrics",
		Short: "Export pull request review latency metrics to CSV",
		Long: `Walk every repository visible to the authenticated user and write one CSV row per
pull request with its review request count, review count and the minutes it waited
for its first and last review.

Pull requests are read newest first. Reaching --maxCount accepted pull requests, or
the first pull request older than --maxDays, ends the scan of a repository.`,
		Version:      appVersion,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindConfig(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.String(config.TokenKey, "", "GitHub token to use (defaults to GITHUB_TOKEN, GH_TOKEN or the token gh stores for the host)")
	flags.String(config.ReposKey, config.DefaultRepos, "Regex to match repos you want to check")
	flags.String(config.SkipTitlesKey, config.DefaultSkipTitles, "Regex to match PR titles you want to skip - release, for example")
	flags.String(config.CreatorKey, config.DefaultCreator, "Regex to match user login who created the PR. Skip non-matches")
	flags.String(config.StateKey, config.DefaultState, "State of the PRs: open, closed or all")
	flags.String(config.HostKey, config.DefaultHost, "Enterprise host to use, as in https://{hostname}/api/v3")
	flags.BoolP(config.MergedKey, "m", false, "Traverse only merged PRs")
	flags.Int(config.MaxCountKey, config.DefaultMaxCount, "Maximum number of PRs to traverse per repo")
	flags.Int(config.MaxDaysKey, config.DefaultMaxDays, "Maximum PR age in days")
	flags.String(config.OutputKey, config.DefaultOutput, `Output CSV file path with the PR metrics, "-" for stdout`)
	flags.String(config.LogLevelKey, config.DefaultLogLevel, "Log level: debug, info, warn or error")
	flags.String(configFlag, "", "Optional YAML file holding any of the flags above")

	return cmd
}

// bindConfig layers flags over environment variables over the optional config file.
func bindConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return errors.Wrap(err, "binding flags")
	}
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(config.TokenKey, config.EnvPrefix+"_TOKEN", "GITHUB_TOKEN", "GH_TOKEN"); err != nil {
		return errors.Wrap(err, "binding token environment")
	}

	if path := v.GetString(configFlag); path != "" {
		v.SetConfigFile(utils.ExpandHome(path))
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config file %s", path)
		}
	}
	return nil
}

func run(ctx context.Context, v *viper.Viper, stdout, stderr io.Writer) (err error) {
	start := time.Now()

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	// Keep stdout clean when it carries the CSV.
	banner := stdout
	if cfg.Output == report.Stdout {
		banner = stderr
	}
	fmt.Fprintln(banner, ui.StartBanner(appName, appVersion))

	redacted := cfg.Redacted()
	log.Info("starting export",
		zap.String("host", redacted.Host),
		zap.String("token", redacted.Token),
		zap.String("repos", cfg.RepoPattern),
		zap.String("skipTitles", cfg.SkipTitlePattern),
		zap.String("creator", cfg.CreatorPattern),
		zap.String("state", cfg.State),
		zap.Bool("merged", cfg.MergedOnly),
		zap.Int("maxCount", cfg.MaxCount),
		zap.Int("maxDays", cfg.MaxDays),
		zap.String("output", cfg.Output))

	client, err := pullrequest.NewClient(cfg.Host, cfg.Token)
	if err != nil {
		return err
	}

	out, err := report.Create(cfg.Output)
	if err != nil {
		return err
	}
	defer closeOutput(out, &err)

	pipeline := metrics.NewPipeline(pullrequest.NewFetcher(client), cfg, time.Now, log)
	written, err := report.Export(report.NewWriter(out), pipeline.Records(ctx))
	if err != nil {
		// cobra prints the returned error.
		return errors.Wrapf(err, "export aborted after %d records", written)
	}

	end := time.Now()
	log.Info("export finished", zap.Int("records", written), zap.Duration("elapsed", end.Sub(start)))
	fmt.Fprintln(banner, ui.FinishBanner(start, end, written, cfg.Output))
	return nil
}

// closeOutput closes c and reports its error through err unless err is already set.
func closeOutput(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = errors.Wrap(cerr, "closing output")
	}
}
