package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// MapConfig applies the parsed file on top of domain.DefaultConfig.
func MapConfig(path string, y YAMLConfig) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	d := y.KcatFlux.Directory

	setString(&cfg.Directory.ContactEmail, d.ContactEmail)
	setString(&cfg.Directory.APIKey, d.APIKey)
	setString(&cfg.Directory.Tool, d.Tool)
	setString(&cfg.Directory.BaseURL, d.BaseURL)

	durations := []struct {
		field string
		raw   string
		dst   *time.Duration
	}{
		{"directory.timeout", d.Timeout, &cfg.Directory.Timeout},
		{"directory.min_interval", d.MinInterval, &cfg.Directory.MinInterval},
		{"directory.backoff.initial", d.Backoff.Initial, &cfg.Directory.Backoff.Initial},
		{"directory.backoff.max", d.Backoff.Max, &cfg.Directory.Backoff.Max},
	}
	for _, dur := range durations {
		if strings.TrimSpace(dur.raw) == "" {
			continue
		}
		v, err := parseDuration(dur.raw)
		if err != nil {
			return cfg, invalidField(path, dur.field, err.Error())
		}
		*dur.dst = v
	}

	if d.MaxRetries != nil {
		if *d.MaxRetries < 0 {
			return cfg, invalidField(path, "directory.max_retries", "must be >= 0")
		}
		cfg.Directory.MaxRetries = *d.MaxRetries
	}
	if d.Backoff.Multiplier != nil {
		cfg.Directory.Backoff.Multiplier = *d.Backoff.Multiplier
	}

	setString(&cfg.Cache.Path, y.KcatFlux.Cache.Path)

	m := y.KcatFlux.Mapping
	setString(&cfg.Mapping.KeyColumn, m.KeyColumn)
	if m.Depth != nil {
		if *m.Depth <= 0 {
			return cfg, invalidField(path, "mapping.depth", "must be positive")
		}
		cfg.Mapping.Depth = *m.Depth
	}
	if m.RankedOnly != nil {
		cfg.Mapping.RankedOnly = *m.RankedOnly
	}

	if acc := y.KcatFlux.Kcat.MinBiGGAccuracy; acc != nil {
		if *acc < 0 || *acc > 1 {
			return cfg, invalidField(path, "kcat.min_bigg_accuracy", "must be within [0, 1]")
		}
		cfg.Kcat.MinBiGGAccuracy = *acc
	}

	setString(&cfg.Paths.ReportsDir, y.KcatFlux.Paths.ReportsDir)

	return cfg, nil
}

func setString(dst *string, v string) {
	if s := strings.TrimSpace(v); s != "" {
		*dst = s
	}
}

func parseDuration(raw string) (time.Duration, error) {
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", raw)
	}
	return v, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
