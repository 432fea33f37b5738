package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// EnvPrefix namespaces environment overrides: KCATFLUX_CONTACT_EMAIL, KCATFLUX_TIMEOUT, ...
const EnvPrefix = "KCATFLUX"

// Load reads a kcatflux.yaml file and applies environment overrides.
// A missing file yields defaults plus environment.
func Load(path string) (domain.Config, error) {
	var dto YAMLConfig

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return domain.DefaultConfig(), &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	default:
		if err := yaml.Unmarshal(b, &dto); err != nil {
			return domain.DefaultConfig(), &domain.OpError{
				Op:   "config.load",
				Kind: domain.KindInvalidConfig,
				Path: path,
				Err:  err,
			}
		}
	}

	return Build(path, dto, NewEnv())
}

// NewEnv returns a viper instance bound to the KCATFLUX_* variables.
func NewEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	_ = v.BindEnv("contact_email")
	_ = v.BindEnv("api_key", EnvPrefix+"_API_KEY", "NCBI_API_KEY")
	_ = v.BindEnv("tool")
	_ = v.BindEnv("base_url")
	_ = v.BindEnv("timeout")
	_ = v.BindEnv("max_retries")
	_ = v.BindEnv("min_interval")
	_ = v.BindEnv("cache_path")
	_ = v.BindEnv("reports_dir")
	return v
}

// Build maps a parsed file and overlays env. The API-key rate applies when no
// min_interval was given explicitly.
func Build(path string, dto YAMLConfig, env *viper.Viper) (domain.Config, error) {
	cfg, err := MapConfig(path, dto)
	if err != nil {
		return cfg, err
	}
	explicitInterval := strings.TrimSpace(dto.KcatFlux.Directory.MinInterval) != ""

	if env != nil {
		set, err := applyEnv(&cfg, env)
		if err != nil {
			return cfg, err
		}
		explicitInterval = explicitInterval || set["min_interval"]
	}

	if !explicitInterval && cfg.Directory.APIKey != "" {
		cfg.Directory.MinInterval = domain.DefaultMinIntervalWithKey
	}
	return cfg, nil
}

func applyEnv(cfg *domain.Config, v *viper.Viper) (map[string]bool, error) {
	set := map[string]bool{}
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			if s := strings.TrimSpace(v.GetString(key)); s != "" {
				*dst = s
				set[key] = true
			}
		}
	}

	str("contact_email", &cfg.Directory.ContactEmail)
	str("api_key", &cfg.Directory.APIKey)
	str("tool", &cfg.Directory.Tool)
	str("base_url", &cfg.Directory.BaseURL)
	str("cache_path", &cfg.Cache.Path)
	str("reports_dir", &cfg.Paths.ReportsDir)

	for key, dst := range map[string]*time.Duration{
		"timeout":      &cfg.Directory.Timeout,
		"min_interval": &cfg.Directory.MinInterval,
	} {
		if !v.IsSet(key) {
			continue
		}
		d, err := parseDuration(v.GetString(key))
		if err != nil {
			return nil, invalidField("env", envName(key), err.Error())
		}
		*dst = d
		set[key] = true
	}

	if v.IsSet("max_retries") {
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString("max_retries")))
		if err != nil || n < 0 {
			return nil, invalidField("env", envName("max_retries"), "must be a non-negative integer")
		}
		cfg.Directory.MaxRetries = n
		set["max_retries"] = true
	}

	return set, nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}
