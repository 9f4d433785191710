// Package config loads gh-pr-report settings from defaults, an optional
// config file, the environment, a .env file and command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/auth"
	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	prerrors "github.com/ryo246912/gh-pr-report/internal/errors"
	"github.com/ryo246912/gh-pr-report/internal/github"
	"github.com/ryo246912/gh-pr-report/internal/models"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix = "PR_REPORT"
	envFile   = ".env"

	DefaultCount      = 50
	DefaultDelay      = time.Second
	DefaultTimeout    = 30 * time.Second
	DefaultHost       = "github.com"
	DefaultAPIURL     = github.DefaultAPIURL
	DefaultGraphQLURL = github.DefaultGraphQLURL
)

// Config holds the resolved settings for one run.
type Config struct {
	Owner       string        `mapstructure:"owner"`
	Repo        string        `mapstructure:"repo"`
	Count       int           `mapstructure:"count" validate:"gt=0"`
	Verbose     bool          `mapstructure:"verbose"`
	Token       string        `mapstructure:"token"`
	Host        string        `mapstructure:"host" validate:"required,hostname_port|hostname"`
	APIURL      string        `mapstructure:"api_url" validate:"required,url"`
	GraphQLURL  string        `mapstructure:"graphql_url" validate:"required,url"`
	Delay       time.Duration `mapstructure:"delay" validate:"gte=0"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	OutputDir   string        `mapstructure:"output_dir" validate:"required"`
	LogLevel    string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Summary     bool          `mapstructure:"summary"`
	Interactive bool          `mapstructure:"interactive"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"verbose":     "verbose",
	"token":       "token",
	"delay":       "delay",
	"timeout":     "timeout",
	"output-dir":  "output_dir",
	"log-level":   "log_level",
	"summary":     "summary",
	"interactive": "interactive",
	"api-url":     "api_url",
	"graphql-url": "graphql_url",
	"host":        "host",
}

// Load builds a Config. Flags override the environment, which overrides the
// config file at configPath (if any), which overrides the defaults.
func Load(flags *pflag.FlagSet, configPath string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := v.BindEnv("token", envPrefix+"_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind token env: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read config file %s: %w", prerrors.ErrInvalidConfig, configPath, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", prerrors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("owner", "")
	v.SetDefault("repo", "")
	v.SetDefault("count", DefaultCount)
	v.SetDefault("verbose", false)
	v.SetDefault("token", "")
	v.SetDefault("host", DefaultHost)
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("graphql_url", DefaultGraphQLURL)
	v.SetDefault("delay", DefaultDelay)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("output_dir", ".")
	v.SetDefault("log_level", "info")
	v.SetDefault("summary", false)
	v.SetDefault("interactive", false)
}

// loadDotEnv exports variables from path without overriding ones already set.
// A missing file is not an error.
func loadDotEnv(path string) error {
	envMap, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: read %s: %w", prerrors.ErrInvalidConfig, path, err)
	}
	for k, val := range envMap {
		if _, exists := os.LookupEnv(k); !exists {
			_ = os.Setenv(k, val)
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports the first violation.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", prerrors.ErrInvalidConfig, err)
	}
	return nil
}

// ApplyArgs applies the positional arguments <owner> <repo> [count].
func (c *Config) ApplyArgs(args []string) error {
	if len(args) >= 1 {
		c.Owner = args[0]
	}
	if len(args) >= 2 {
		c.Repo = args[1]
	}
	if len(args) >= 3 {
		count, err := ParseCount(args[2])
		if err != nil {
			return err
		}
		c.Count = count
	}
	return nil
}

// ParseCount parses a desired pull request count, which must be a positive integer.
func ParseCount(s string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", prerrors.ErrInvalidCount, s)
	}
	if count <= 0 {
		return 0, fmt.Errorf("%w: got %d", prerrors.ErrInvalidCount, count)
	}
	return count, nil
}

// RepositoryResolver supplies repository coordinates from some fallback source.
type RepositoryResolver func() (models.Repository, error)

// ResolveRepository returns the configured repository. Resolvers are tried in
// order only when neither owner nor repo was given; a half-specified pair is
// always an error.
func (c *Config) ResolveRepository(resolvers ...RepositoryResolver) (models.Repository, error) {
	switch {
	case c.Owner != "" && c.Repo != "":
		return models.Repository{Owner: c.Owner, Name: c.Repo}, nil
	case c.Owner != "" || c.Repo != "":
		return models.Repository{}, fmt.Errorf("%w: both owner and repo are required", prerrors.ErrMissingRepository)
	}

	for _, resolve := range resolvers {
		if resolve == nil {
			continue
		}
		repo, err := resolve()
		if err != nil || repo.Owner == "" || repo.Name == "" {
			continue
		}
		c.Owner, c.Repo = repo.Owner, repo.Name
		return repo, nil
	}
	return models.Repository{}, prerrors.ErrMissingRepository
}

// CurrentRepository resolves the repository of the working directory (or GH_REPO).
func CurrentRepository() (models.Repository, error) {
	repo, err := repository.Current()
	if err != nil {
		return models.Repository{}, fmt.Errorf("failed to get current repository: %w", err)
	}
	return models.Repository{Owner: repo.Owner, Name: repo.Name}, nil
}

var tokenForHost = auth.TokenForHost

// ResolveToken returns the configured token, falling back to the gh CLI
// credentials for c.Host. An empty result means unauthenticated access.
func (c *Config) ResolveToken() string {
	if c.Token != "" {
		return c.Token
	}
	token, _ := tokenForHost(c.Host)
	c.Token = token
	return token
}
