package domain

import (
	"strings"
	"time"
)

// Config is the kcatflux configuration loaded from kcatflux.yaml, the environment and flags.
type Config struct {
	Directory DirectoryConfig
	Cache     CacheConfig
	Mapping   MappingConfig
	Kcat      KcatConfig
	Paths     PathsConfig
}

// DirectoryConfig configures the taxonomy directory client.
type DirectoryConfig struct {
	// ContactEmail is presented to the service on every call. Required.
	ContactEmail string
	APIKey       string
	Tool         string
	BaseURL      string

	Timeout     time.Duration
	MaxRetries  int
	MinInterval time.Duration
	Backoff     BackoffConfig
}

// BackoffConfig is the delay growth policy between retries.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

type CacheConfig struct {
	Path string
}

type MappingConfig struct {
	KeyColumn  string
	Depth      int
	RankedOnly bool
}

type KcatConfig struct {
	MinBiGGAccuracy float64
}

type PathsConfig struct {
	ReportsDir string
}

const (
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// NCBI allows 3 requests/s without an API key and 10 with one.
	DefaultMinInterval        = 340 * time.Millisecond
	DefaultMinIntervalWithKey = 100 * time.Millisecond
)

// DefaultConfig provides sane defaults if kcatflux.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Directory: DirectoryConfig{
			Tool:        "kcatflux",
			BaseURL:     DefaultBaseURL,
			Timeout:     30 * time.Second,
			MaxRetries:  3,
			MinInterval: DefaultMinInterval,
			Backoff: BackoffConfig{
				Initial:    1 * time.Second,
				Max:        30 * time.Second,
				Multiplier: 2,
			},
		},
		Cache: CacheConfig{
			Path: ".kcatflux/lineages.json.gz",
		},
		Mapping: MappingConfig{
			KeyColumn: "ORGANISM",
			Depth:     4,
		},
		Kcat: KcatConfig{
			MinBiGGAccuracy: 0.8,
		},
		Paths: PathsConfig{
			ReportsDir: "reports",
		},
	}
}

// Validate checks the directory settings. A missing contact credential is a
// configuration error and must be reported before any network call.
func (c DirectoryConfig) Validate() error {
	var problems []string
	if strings.TrimSpace(c.ContactEmail) == "" {
		return &OpError{
			Op:   "config.validate",
			Kind: KindInvalidConfig,
			Err:  ErrMissingCredential,
		}
	}
	if !strings.Contains(c.ContactEmail, "@") {
		problems = append(problems, "contact_email must be an email address")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		problems = append(problems, "base_url is required")
	}
	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if c.MaxRetries < 0 {
		problems = append(problems, "max_retries must be >= 0")
	}
	if c.MinInterval < 0 {
		problems = append(problems, "min_interval must be >= 0")
	}
	if c.Backoff.Initial < 0 || c.Backoff.Max < 0 {
		problems = append(problems, "backoff delays must be >= 0")
	}
	if c.Backoff.Multiplier < 1 {
		problems = append(problems, "backoff.multiplier must be >= 1")
	}
	if len(problems) == 0 {
		return nil
	}
	return &OpError{
		Op:   "config.validate",
		Kind: KindInvalidConfig,
		Err:  &ValidationError{Problems: problems},
	}
}

// ValidationError lists every problem found in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }
