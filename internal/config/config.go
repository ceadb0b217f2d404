package config

import (
	"regexp"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Keys shared by flags, environment variables and the config file.
const (
	TokenKey      = "token"
	HostKey       = "enterprise"
	ReposKey      = "repos"
	SkipTitlesKey = "skipTitles"
	CreatorKey    = "creator"
	StateKey      = "state"
	MergedKey     = "merged"
	MaxCountKey   = "maxCount"
	MaxDaysKey    = "maxDays"
	OutputKey     = "outputCSV"
	LogLevelKey   = "log-level"
)

const (
	DefaultHost       = "api.github.com"
	DefaultRepos      = ".*"
	DefaultSkipTitles = "^$"
	DefaultCreator    = ".*"
	DefaultState      = "closed"
	DefaultMaxCount   = 4096
	DefaultMaxDays    = 120
	DefaultOutput     = "pr-metrics.csv"
	DefaultLogLevel   = "info"

	// EnvPrefix namespaces environment overrides, e.g. GH_PRMETRICS_MAXDAYS.
	EnvPrefix = "GH_PRMETRICS"
)

var validStates = []string{"open", "closed", "all"}

// Matcher reports whether a string contains a match. *regexp.Regexp satisfies it.
type Matcher interface {
	MatchString(s string) bool
}

// Matchers is the predicate set the pipeline filters with.
type Matchers struct {
	Repo      Matcher
	SkipTitle Matcher
	Creator   Matcher
}

// RunConfig is the immutable configuration of a single export run.
type RunConfig struct {
	Token            string
	Host             string
	RepoPattern      string
	SkipTitlePattern string
	CreatorPattern   string
	State            string
	MergedOnly       bool
	MaxCount         int
	MaxDays          int
	Output           string
	LogLevel         string

	Matchers Matchers
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(HostKey, DefaultHost)
	v.SetDefault(ReposKey, DefaultRepos)
	v.SetDefault(SkipTitlesKey, DefaultSkipTitles)
	v.SetDefault(CreatorKey, DefaultCreator)
	v.SetDefault(StateKey, DefaultState)
	v.SetDefault(MergedKey, false)
	v.SetDefault(MaxCountKey, DefaultMaxCount)
	v.SetDefault(MaxDaysKey, DefaultMaxDays)
	v.SetDefault(OutputKey, DefaultOutput)
	v.SetDefault(LogLevelKey, DefaultLogLevel)
}

// Load builds a RunConfig from v, compiling every pattern up front so that
// malformed input fails before any network access.
func Load(v *viper.Viper) (*RunConfig, error) {
	maxCount, err := nonNegativeInt(v, MaxCountKey)
	if err != nil {
		return nil, err
	}
	maxDays, err := nonNegativeInt(v, MaxDaysKey)
	if err != nil {
		return nil, err
	}
	merged, err := cast.ToBoolE(v.Get(MergedKey))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", MergedKey)
	}

	cfg := &RunConfig{
		Token:            strings.TrimSpace(v.GetString(TokenKey)),
		Host:             normalizeHost(v.GetString(HostKey)),
		RepoPattern:      v.GetString(ReposKey),
		SkipTitlePattern: v.GetString(SkipTitlesKey),
		CreatorPattern:   v.GetString(CreatorKey),
		State:            strings.ToLower(v.GetString(StateKey)),
		MergedOnly:       merged,
		MaxCount:         maxCount,
		MaxDays:          maxDays,
		Output:           v.GetString(OutputKey),
		LogLevel:         v.GetString(LogLevelKey),
	}

	if !slices.Contains(validStates, cfg.State) {
		return nil, errors.Errorf("invalid %s %q: must be one of %s", StateKey, cfg.State, strings.Join(validStates, ", "))
	}
	if cfg.Host == "" {
		return nil, errors.Errorf("%s must not be empty", HostKey)
	}
	if cfg.Output == "" {
		return nil, errors.Errorf("%s must not be empty", OutputKey)
	}

	if cfg.Matchers.Repo, err = compile(ReposKey, cfg.RepoPattern); err != nil {
		return nil, err
	}
	if cfg.Matchers.SkipTitle, err = compile(SkipTitlesKey, cfg.SkipTitlePattern); err != nil {
		return nil, err
	}
	if cfg.Matchers.Creator, err = compile(CreatorKey, cfg.CreatorPattern); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Redacted returns a copy that is safe to log.
func (c *RunConfig) Redacted() RunConfig {
	redacted := *c
	if redacted.Token != "" {
		redacted.Token = "***"
	}
	return redacted
}

func compile(key, pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling %s pattern %q", key, pattern)
	}
	return re, nil
}

func nonNegativeInt(v *viper.Viper, key string) (int, error) {
	n, err := cast.ToIntE(v.Get(key))
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", key)
	}
	if n < 0 {
		return 0, errors.Errorf("%s must not be negative, got %d", key, n)
	}
	return n, nil
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimSuffix(host, "/")
	return strings.TrimSuffix(host, "/api/v3")
}
